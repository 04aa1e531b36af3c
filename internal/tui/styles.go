package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#6b7785")
	destructive = lipgloss.Color("#e53935")
	info        = lipgloss.Color("#2196F3")
)

// Styles holds the lipgloss styles shared by every page.
type Styles struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Label    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Notice   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Box      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Label:    lipgloss.NewStyle().Foreground(muted).Width(10),
		Selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(destructive),
		Notice:   lipgloss.NewStyle().Foreground(info),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Help:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
	}
}
