package console

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	name     lipgloss.Style
	detail   lipgloss.Style
	faint    lipgloss.Style
	success  lipgloss.Style
	errorMsg lipgloss.Style
	warning  lipgloss.Style
	active   lipgloss.Style
	section  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		name:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		faint:    lipgloss.NewStyle().Faint(true),
		success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		errorMsg: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("120")),
		section:  lipgloss.NewStyle().MarginTop(1),
	}
}
