package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	title   lipgloss.Style
	heading lipgloss.Style
	chapter lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	info    lipgloss.Style
	panel   lipgloss.Style
	spinner lipgloss.Style
}

func defaultTheme() theme {
	const (
		ink    = lipgloss.Color("#E63946")
		paper  = lipgloss.Color("#F1FAEE")
		teal   = lipgloss.Color("#2A9D8F")
		sand   = lipgloss.Color("#E9C46A")
		orange = lipgloss.Color("#F4A261")
		slate  = lipgloss.Color("#8D99AE")
		mint   = lipgloss.Color("#80ED99")
	)

	return theme{
		title:   lipgloss.NewStyle().Bold(true).Foreground(ink).MarginBottom(1),
		heading: lipgloss.NewStyle().Foreground(teal),
		chapter: lipgloss.NewStyle().Foreground(sand),
		muted:   lipgloss.NewStyle().Foreground(slate),
		ok:      lipgloss.NewStyle().Foreground(mint),
		warn:    lipgloss.NewStyle().Foreground(orange),
		bad:     lipgloss.NewStyle().Foreground(ink),
		info:    lipgloss.NewStyle().Foreground(paper),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(1, 2),
		spinner: lipgloss.NewStyle().Foreground(ink),
	}
}
