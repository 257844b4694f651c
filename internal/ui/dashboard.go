package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"robles/internal/records"
)

type menuItem struct {
	label string
	to    screen
	hint  string
}

var menu = []menuItem{
	{label: "Clients", to: screenClients, hint: "people interested in a lot"},
	{label: "Appointments", to: screenAppointments, hint: "visits to the property"},
	{label: "Payments", to: screenPayments, hint: "money received"},
	{label: "Report", to: screenReports, hint: "per-client summary"},
	{label: "Sign out", to: screenLogout, hint: "forget this session"},
}

// dashboardPage is the menu shown after signing in.
type dashboardPage struct {
	deps     *deps
	user     records.User
	selected int
	notice   notice
}

func newDashboardPage(d *deps, u records.User, n notice) *dashboardPage {
	return &dashboardPage{deps: d, user: u, notice: n}
}

func (p *dashboardPage) init() tea.Cmd  { return nil }
func (p *dashboardPage) capturing() bool { return false }

func (p *dashboardPage) keys() help.KeyMap {
	k := p.deps.keys
	return bindings{k.Up, k.Down, k.Open, k.Back}
}

func (p *dashboardPage) update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	k := p.deps.keys
	switch {
	case key.Matches(km, k.Up):
		p.selected = (p.selected - 1 + len(menu)) % len(menu)
	case key.Matches(km, k.Down):
		p.selected = (p.selected + 1) % len(menu)
	case key.Matches(km, k.Open):
		return navigate(menu[p.selected].to)
	}
	return nil
}

func (p *dashboardPage) render(w, h int) string {
	st := p.deps.styles
	name := p.user.Name
	if name == "" {
		name = p.user.Email
	}
	lines := []string{st.Title.Render("Welcome, " + name), ""}
	for i, it := range menu {
		label := "  " + it.label
		if i == p.selected {
			lines = append(lines, st.MenuSelected.Render("▶ "+it.label)+"  "+st.Muted.Render(it.hint))
			continue
		}
		lines = append(lines, st.MenuItem.Render(label))
	}
	if n := p.notice.view(st); n != "" {
		lines = append(lines, "", n)
	}
	return st.Main.Width(max(20, w-2)).Render(strings.Join(lines, "\n"))
}
