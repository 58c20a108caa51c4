package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles of the search client.
type Styles struct {
	Header   lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Alive    lipgloss.Style
	Dead     lipgloss.Style
	Unknown  lipgloss.Style
	Name     lipgloss.Style
	Footer   lipgloss.Style
	Selected lipgloss.Style
}

func DefaultStyles() Styles {
	green := lipgloss.Color("#97ce4c")
	muted := lipgloss.Color("#8b949e")
	return Styles{
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color("#0b3d2e")).
			Foreground(green).
			Padding(0, 2).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(muted).
			Width(10),
		Focused: lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			Width(10),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f85149")).
			Bold(true),
		Alive:   lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950")),
		Dead:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149")),
		Unknown: lipgloss.NewStyle().Foreground(muted),
		Name:    lipgloss.NewStyle().Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1),
		Selected: lipgloss.NewStyle().
			Foreground(green).
			Underline(true),
	}
}
