package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette and styles for the monitor dashboard.
type Theme struct {
	// Color palette
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
	Muted   lipgloss.Color

	// Panel styles
	PanelStyle lipgloss.Style
	TitleStyle lipgloss.Style

	// Dataset status styles
	StatusDone    lipgloss.Style
	StatusActive  lipgloss.Style
	StatusStalled lipgloss.Style
	StatusPending lipgloss.Style

	// Table styles
	HeaderStyle lipgloss.Style
	RowStyle    lipgloss.Style
}

// DefaultTheme returns a theme with default colors and styles.
func DefaultTheme() *Theme {
	theme := &Theme{
		// Amber CRT palette
		Primary: lipgloss.Color("#FFD966"),
		Success: lipgloss.Color("#FFB000"),
		Warning: lipgloss.Color("#FFB000"),
		Danger:  lipgloss.Color("#FF6B6B"),
		Muted:   lipgloss.Color("#805800"),
	}

	theme.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Muted).
		Padding(0, 1)

	theme.TitleStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	theme.StatusDone = lipgloss.NewStyle().
		Foreground(theme.Success).
		Bold(true)

	theme.StatusActive = lipgloss.NewStyle().
		Foreground(theme.Primary)

	theme.StatusStalled = lipgloss.NewStyle().
		Foreground(theme.Danger).
		Bold(true)

	theme.StatusPending = lipgloss.NewStyle().
		Foreground(theme.Muted)

	theme.HeaderStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Underline(true)

	theme.RowStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E6C265"))

	return theme
}
