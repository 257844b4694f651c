package ui

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"robles/internal/forms"
	"robles/internal/listview"
	"robles/internal/store"
)

type column[T any] struct {
	title string
	width int
	// field is the sort key shown with an arrow in the header, if any.
	field  string
	render func(T) string
}

// entityDef describes one record page. A nil schema makes the page
// read-only.
type entityDef[T any] struct {
	screen   screen
	title    string
	noun     string
	spec     listview.Spec[T]
	sortBy   string
	columns  []column[T]
	initials bool

	list func(ctx context.Context) ([]T, error)

	schema *forms.Schema
	values func(T) forms.Values
	// submit creates when editing is false, otherwise updates id.
	submit   func(ctx context.Context, id int, editing bool, v forms.Values) error
	remove   func(ctx context.Context, id int) error
	describe func(T) string

	// suggest feeds name suggestions into the form, if set.
	suggest      func(ctx context.Context) ([]string, error)
	suggestField string
}

type loadedMsg[T any] struct {
	seq   int
	items []T
	err   error
}

// submittedMsg reports on the draft that was current when it was sent.
type submittedMsg struct {
	editing bool
	draft   int
	err     error
}

type deletedMsg struct {
	id  int
	err error
}

type suggestionsMsg struct {
	names []string
	err   error
}

type focusArea int

const (
	focusList focusArea = iota
	focusSearch
	focusForm
	focusConfirm
	focusInitial
)

// entityPage is the list + form screen shared by every record type. Each
// visit gets a fresh instance; nothing is shared between pages.
type entityPage[T any] struct {
	def  entityDef[T]
	deps *deps
	req  requester

	store  *store.Store[T]
	list   *listview.Controller[T]
	table  table.Model
	search textinput.Model
	editor *editor

	focus   focusArea
	visible []T
	view    listview.View[T]

	loading    bool
	seq        int
	submitting bool
	deleting   bool

	confirmID    int
	confirmLabel string

	notice notice
	width  int
	height int
}

func newEntityPage[T any](def entityDef[T], d *deps, req requester, pageSize int) *entityPage[T] {
	def.spec.PageSize = pageSize

	cols := make([]table.Column, 0, len(def.columns))
	for _, c := range def.columns {
		cols = append(cols, table.Column{Title: c.title, Width: c.width})
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(pageSize+1),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	ts.Selected = d.styles.MenuSelected
	t.SetStyles(ts)

	si := textinput.New()
	si.Placeholder = "search…"
	si.Prompt = "/ "
	si.CharLimit = 128
	si.Width = 28
	si.Cursor.SetMode(cursor.CursorStatic)

	p := &entityPage[T]{
		def:    def,
		deps:   d,
		req:    req,
		store:  store.New[T](),
		list:   listview.New(def.spec, def.sortBy),
		table:  t,
		search: si,
	}
	if def.schema != nil {
		p.editor = newEditor(*def.schema, d.styles, d.keys.Complete)
	}
	p.refreshRows()
	return p
}

func (p *entityPage[T]) editable() bool { return p.def.schema != nil }

func (p *entityPage[T]) init() tea.Cmd {
	cmds := []tea.Cmd{p.load()}
	if p.def.suggest != nil && p.editor != nil {
		suggest := p.def.suggest
		cmds = append(cmds, p.req.cmd(func() tea.Msg {
			ctx, cancel := p.deps.context()
			defer cancel()
			names, err := suggest(ctx)
			return suggestionsMsg{names: names, err: err}
		}))
	}
	return tea.Batch(cmds...)
}

// load refetches the whole list. Only the latest request is applied.
func (p *entityPage[T]) load() tea.Cmd {
	p.seq++
	p.loading = true
	seq, list := p.seq, p.def.list
	return p.req.cmd(func() tea.Msg {
		ctx, cancel := p.deps.context()
		defer cancel()
		items, err := list(ctx)
		return loadedMsg[T]{seq: seq, items: items, err: err}
	})
}

func (p *entityPage[T]) capturing() bool {
	return p.focus != focusList
}

func (p *entityPage[T]) keys() help.KeyMap {
	k := p.deps.keys
	switch p.focus {
	case focusForm:
		return k.formHelp()
	case focusConfirm:
		return k.confirmHelp()
	case focusSearch, focusInitial:
		return bindings{k.Cancel}
	}
	return k.listHelp(p.editable(), p.def.initials)
}

func (p *entityPage[T]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		return nil
	case loadedMsg[T]:
		if msg.seq != p.seq {
			p.deps.logger.Debug("dropping superseded list response", zap.String("page", p.def.title), zap.Int("seq", msg.seq))
			return nil
		}
		p.loading = false
		if msg.err != nil {
			p.store.Fail(msg.err)
			p.deps.logger.Error("list failed", zap.String("page", p.def.title), zap.Error(msg.err))
			p.notice = errorNotice("could not load "+p.def.title, msg.err)
			return nil
		}
		p.store.Replace(msg.items)
		p.refreshRows()
		return nil
	case suggestionsMsg:
		if msg.err != nil {
			p.deps.logger.Warn("suggestions failed", zap.String("page", p.def.title), zap.Error(msg.err))
			return nil
		}
		p.editor.SetSuggestions(p.def.suggestField, msg.names)
		return nil
	case submittedMsg:
		p.submitting = false
		action := "create " + p.def.noun
		if msg.editing {
			action = "update " + p.def.noun
		}
		current := msg.draft == p.editor.draft
		if msg.err != nil {
			p.deps.logger.Error("submit failed", zap.String("page", p.def.title), zap.Bool("editing", msg.editing), zap.Error(msg.err))
			if current {
				p.editor.form.SetErrors(fieldErrors(msg.err))
			}
			p.notice = errorNotice("could not "+action, msg.err)
			return nil
		}
		if current {
			p.editor.form.Succeeded()
			p.editor.Reset()
			p.editor.blurAll()
			p.focus = focusList
		}
		if msg.editing {
			p.notice = success(p.def.noun + " updated")
		} else {
			p.notice = success(p.def.noun + " created")
		}
		return p.load()
	case deletedMsg:
		p.deleting = false
		p.focus = focusList
		if msg.err != nil {
			p.deps.logger.Error("delete failed", zap.String("page", p.def.title), zap.Int("id", msg.id), zap.Error(msg.err))
			p.notice = errorNotice("could not delete "+p.def.noun, msg.err)
			return nil
		}
		if id, editing := p.editor.form.EditingID(); editing && id == msg.id {
			p.editor.Reset()
		}
		p.notice = success(p.def.noun + " deleted")
		return p.load()
	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return nil
}

func (p *entityPage[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := p.deps.keys
	switch p.focus {
	case focusConfirm:
		switch {
		case key.Matches(msg, k.Confirm):
			if p.deleting {
				return nil
			}
			p.deleting = true
			p.notice = notice{text: "deleting…"}
			id, remove := p.confirmID, p.def.remove
			return p.req.cmd(func() tea.Msg {
				ctx, cancel := p.deps.context()
				defer cancel()
				return deletedMsg{id: id, err: remove(ctx, id)}
			})
		case key.Matches(msg, k.Deny):
			if p.deleting {
				return nil
			}
			p.focus = focusList
			p.notice = notice{text: "delete cancelled"}
		}
		return nil

	case focusSearch:
		if key.Matches(msg, k.Cancel) {
			p.search.SetValue("")
			p.search.Blur()
			p.focus = focusList
			p.list.SetQuery("")
			p.refreshRows()
			return nil
		}
		if msg.Type == tea.KeyEnter {
			p.search.Blur()
			p.focus = focusList
			return nil
		}
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		if p.search.Value() != p.list.Query() {
			p.list.SetQuery(p.search.Value())
			p.refreshRows()
		}
		return cmd

	case focusInitial:
		p.focus = focusList
		initial := ""
		if r := msg.Runes; msg.Type == tea.KeyRunes && len(r) == 1 && unicode.IsLetter(r[0]) {
			initial = string(r[0])
		}
		p.list.SetInitial(initial)
		p.refreshRows()
		return nil

	case focusForm:
		switch {
		case key.Matches(msg, k.Cancel):
			p.editor.Reset()
			p.editor.blurAll()
			p.focus = focusList
			return nil
		case key.Matches(msg, k.NextField):
			return p.editor.Move(1)
		case key.Matches(msg, k.PrevField):
			return p.editor.Move(-1)
		case key.Matches(msg, k.Submit):
			return p.submit()
		}
		return p.editor.Update(msg)
	}

	switch {
	case key.Matches(msg, k.Up):
		p.table.MoveUp(1)
	case key.Matches(msg, k.Down):
		p.table.MoveDown(1)
	case key.Matches(msg, k.NextPage):
		p.list.Next(p.store.Items())
		p.refreshRows()
	case key.Matches(msg, k.PrevPage):
		p.list.Prev(p.store.Items())
		p.refreshRows()
	case key.Matches(msg, k.Search):
		p.focus = focusSearch
		return p.search.Focus()
	case key.Matches(msg, k.Initial) && p.def.initials:
		p.focus = focusInitial
		p.notice = notice{text: "press a letter, any other key clears"}
	case key.Matches(msg, k.SortField):
		p.list.CycleField()
		p.refreshRows()
	case key.Matches(msg, k.SortDir):
		p.list.Toggle(p.list.Sort().Field)
		p.refreshRows()
	case key.Matches(msg, k.Refresh):
		p.notice = notice{}
		return p.load()
	case key.Matches(msg, k.New) && p.editable():
		p.editor.Reset()
		p.focus = focusForm
		return p.editor.Focus()
	case key.Matches(msg, k.Edit) && p.editable():
		it, ok := p.selected()
		if !ok {
			return nil
		}
		p.editor.Load(p.def.spec.ID(it), p.def.values(it))
		p.focus = focusForm
		return p.editor.Focus()
	case key.Matches(msg, k.Delete) && p.editable():
		it, ok := p.selected()
		if !ok {
			return nil
		}
		p.confirmID = p.def.spec.ID(it)
		p.confirmLabel = p.def.describe(it)
		p.focus = focusConfirm
	}
	return nil
}

// submit validates locally and sends the draft. Invalid drafts never reach
// the service; enter is ignored while a submit is in flight.
func (p *entityPage[T]) submit() tea.Cmd {
	if p.submitting {
		return nil
	}
	p.editor.Flush()
	if !p.editor.form.Validate() {
		p.notice = failure("fix the highlighted fields")
		return nil
	}
	id, editing := p.editor.form.EditingID()
	values, submit, draft := p.editor.form.Values(), p.def.submit, p.editor.draft
	p.submitting = true
	p.notice = notice{text: "saving…"}
	return p.req.cmd(func() tea.Msg {
		ctx, cancel := p.deps.context()
		defer cancel()
		return submittedMsg{editing: editing, draft: draft, err: submit(ctx, id, editing, values)}
	})
}

func (p *entityPage[T]) selected() (T, bool) {
	var zero T
	i := p.table.Cursor()
	if i < 0 || i >= len(p.visible) {
		return zero, false
	}
	return p.visible[i], true
}

// refreshRows re-derives the visible page and pushes it into the table.
func (p *entityPage[T]) refreshRows() {
	p.view = p.list.View(p.store.Items())
	p.visible = p.view.Items

	rows := make([]table.Row, 0, len(p.visible))
	for _, it := range p.visible {
		row := make(table.Row, 0, len(p.def.columns))
		for _, c := range p.def.columns {
			row = append(row, c.render(it))
		}
		rows = append(rows, row)
	}
	p.table.SetRows(rows)
	switch c := p.table.Cursor(); {
	case c >= len(rows):
		p.table.SetCursor(max(0, len(rows)-1))
	case c < 0 && len(rows) > 0:
		p.table.SetCursor(0)
	}

	sort := p.list.Sort()
	cols := p.table.Columns()
	for i, c := range p.def.columns {
		title := c.title
		if c.field != "" && c.field == sort.Field {
			title += " " + sort.Dir.Arrow()
		}
		cols[i].Title = title
	}
	p.table.SetColumns(cols)
}

func (p *entityPage[T]) render(w, h int) string {
	st := p.deps.styles
	lines := []string{st.Title.Render(p.def.title)}

	meta := []string{}
	if p.focus == focusSearch || p.search.Value() != "" {
		meta = append(meta, p.search.View())
	}
	if in := p.list.Initial(); in != "" {
		meta = append(meta, "initial: "+strings.ToUpper(in))
	}
	meta = append(meta, st.Muted.Render("sort: "+p.list.Sort().Field+" "+p.list.Sort().Dir.String()))
	lines = append(lines, strings.Join(meta, "  "), "")

	switch {
	case p.loading && !p.store.Loaded():
		lines = append(lines, "loading…")
	case p.store.Err() != nil && !p.store.Loaded():
		lines = append(lines, st.Error.Render(p.def.title+" unavailable, r to retry"))
	case p.view.Total == 0:
		lines = append(lines, st.Muted.Render("no "+p.def.title+" to show"))
	default:
		lines = append(lines, p.table.View())
	}

	footer := fmt.Sprintf("showing %d–%d of %d · page %d/%d",
		p.view.First, p.view.Last, p.view.Total, p.view.Page, p.view.Pages)
	if p.store.Loaded() {
		footer += " · updated " + p.store.LoadedAt().Format("15:04:05")
		if p.store.Err() != nil {
			footer += " (stale)"
		}
	}
	lines = append(lines, "", st.Muted.Render(footer))
	if n := p.notice.view(st); n != "" {
		lines = append(lines, n)
	}
	listBlock := strings.Join(lines, "\n")

	if p.focus == focusConfirm {
		modal := st.Modal.Render(strings.Join([]string{
			"Delete " + p.def.noun + "?",
			"",
			p.confirmLabel,
			"",
			"This cannot be undone. y=delete  n/esc=cancel",
		}, "\n"))
		return lipgloss.JoinVertical(lipgloss.Left, st.Main.Width(max(20, w-2)).Render(listBlock), modal)
	}

	if p.editor == nil {
		return st.Main.Width(max(20, w-2)).Render(listBlock)
	}

	formW := 40
	listW := max(20, w-formW-4)
	title := "New " + p.def.noun
	if _, editing := p.editor.form.EditingID(); editing {
		title = "Edit " + p.def.noun
	}
	formStyle := st.Main
	if p.focus == focusForm {
		formStyle = st.Form
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		st.Main.Width(listW).Render(listBlock),
		formStyle.Width(formW).Render(p.editor.View(title)),
	)
}
