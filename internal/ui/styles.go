package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	App          lipgloss.Style
	Header       lipgloss.Style
	Title        lipgloss.Style
	MenuItem     lipgloss.Style
	MenuSelected lipgloss.Style
	Main         lipgloss.Style
	Form         lipgloss.Style
	Label        lipgloss.Style
	FieldError   lipgloss.Style
	Muted        lipgloss.Style
	Modal        lipgloss.Style
	HelpBar      lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
}

func newStyles() styles {
	border := lipgloss.RoundedBorder()

	return styles{
		App: lipgloss.NewStyle(),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("28")).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("34")),
		MenuItem: lipgloss.NewStyle(),
		MenuSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("22")),
		Main: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Form: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("34")).
			Padding(0, 1),
		Label:      lipgloss.NewStyle().Bold(true),
		FieldError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2),
		HelpBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}
