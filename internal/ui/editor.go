package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"robles/internal/forms"
)

// editor renders a forms.Form as a column of text inputs. The form owns the
// values; the inputs mirror them.
type editor struct {
	form   *forms.Form
	inputs []textinput.Model
	focus  int
	st     styles
	// draft changes whenever the form is loaded or reset.
	draft int
}

func newEditor(schema forms.Schema, st styles, complete key.Binding) *editor {
	e := &editor{form: forms.New(schema), st: st}
	for _, f := range schema.Fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.Width = 32
		ti.KeyMap.AcceptSuggestion = complete
		ti.Cursor.SetMode(cursor.CursorStatic)
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		e.inputs = append(e.inputs, ti)
	}
	return e
}

// Focus puts the cursor on the first field.
func (e *editor) Focus() tea.Cmd {
	e.blurAll()
	e.focus = 0
	if len(e.inputs) == 0 {
		return nil
	}
	return e.inputs[0].Focus()
}

func (e *editor) blurAll() {
	for i := range e.inputs {
		e.inputs[i].Blur()
	}
}

// Move shifts focus by delta fields, running the on-blur transform of the
// field being left.
func (e *editor) Move(delta int) tea.Cmd {
	if len(e.inputs) == 0 {
		return nil
	}
	e.leave()
	e.focus = (e.focus + delta + len(e.inputs)) % len(e.inputs)
	return e.inputs[e.focus].Focus()
}

func (e *editor) leave() {
	fields := e.form.Fields()
	key := fields[e.focus].Key
	v := e.form.Blur(key)
	e.inputs[e.focus].SetValue(v)
	e.inputs[e.focus].Blur()
}

// Update forwards a key to the focused input and stores the (possibly
// reformatted) value in the form.
func (e *editor) Update(msg tea.Msg) tea.Cmd {
	if len(e.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	ti := &e.inputs[e.focus]
	before := ti.Value()
	*ti, cmd = ti.Update(msg)
	if ti.Value() == before {
		return cmd
	}
	key := e.form.Fields()[e.focus].Key
	if stored := e.form.Set(key, ti.Value()); stored != ti.Value() {
		ti.SetValue(stored)
		ti.CursorEnd()
	}
	return cmd
}

// Flush applies the on-blur transform of the focused field, as leaving it
// would.
func (e *editor) Flush() {
	if len(e.inputs) == 0 {
		return
	}
	key := e.form.Fields()[e.focus].Key
	e.inputs[e.focus].SetValue(e.form.Blur(key))
}

// Load switches the form to edit mode for record id.
func (e *editor) Load(id int, v forms.Values) {
	e.form.Edit(id, v)
	e.draft++
	e.sync()
}

// Reset returns to create mode with an empty draft.
func (e *editor) Reset() {
	e.form.Cancel()
	e.draft++
	e.sync()
}

func (e *editor) sync() {
	for i, f := range e.form.Fields() {
		e.inputs[i].SetValue(e.form.Value(f.Key))
		e.inputs[i].CursorEnd()
	}
}

func (e *editor) SetSuggestions(key string, s []string) {
	for i, f := range e.form.Fields() {
		if f.Key == key {
			e.inputs[i].ShowSuggestions = len(s) > 0
			e.inputs[i].SetSuggestions(s)
		}
	}
}

func (e *editor) View(title string) string {
	lines := []string{e.st.Title.Render(title), ""}
	errs := e.form.Errors()
	for i, f := range e.form.Fields() {
		marker := "  "
		if i == e.focus && e.inputs[i].Focused() {
			marker = "▶ "
		}
		lines = append(lines, marker+e.st.Label.Render(f.Label))
		lines = append(lines, "  "+e.inputs[i].View())
		if msg := errs[f.Key]; msg != "" {
			lines = append(lines, "  "+e.st.FieldError.Render(msg))
		}
	}
	if id, ok := e.form.EditingID(); ok {
		lines = append(lines, "", e.st.Muted.Render(fmt.Sprintf("editing #%d", id)))
	}
	return strings.Join(lines, "\n")
}
