// Package components contains the reusable building blocks of the
// monitor dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-ing/Agent0/internal/tui/styles"
)

// Panel is a bordered container with a title and multi-line content.
type Panel struct {
	title   string
	content string
	width   int
	theme   *styles.Theme
}

// NewPanel creates a new Panel with the given title.
func NewPanel(title string) *Panel {
	return &Panel{
		title: title,
		width: 60,
		theme: styles.DefaultTheme(),
	}
}

// SetContent sets the content of the panel.
func (p *Panel) SetContent(content string) {
	p.content = content
}

// SetWidth sets the outer width of the panel, borders included.
func (p *Panel) SetWidth(width int) {
	if width > 0 {
		p.width = width
	}
}

// Title returns the panel's title.
func (p *Panel) Title() string {
	return p.title
}

// Render renders the panel with borders and title.
func (p *Panel) Render() string {
	const (
		topLeft     = "┌"
		topRight    = "┐"
		bottomLeft  = "└"
		bottomRight = "┘"
		horizontal  = "─"
		vertical    = "│"
	)

	contentWidth := p.width - 4
	if contentWidth < 1 {
		contentWidth = 1
	}
	innerWidth := p.width - 2

	borderStyle := lipgloss.NewStyle().Foreground(p.theme.Muted)
	titleStyle := p.theme.TitleStyle

	var topBorder string
	if p.title != "" {
		titleText := " " + p.title + " "
		remaining := innerWidth - lipgloss.Width(titleText)
		if remaining > 0 {
			topBorder = borderStyle.Render(topLeft) +
				titleStyle.Render(titleText) +
				borderStyle.Render(strings.Repeat(horizontal, remaining)+topRight)
		} else {
			topBorder = borderStyle.Render(topLeft + strings.Repeat(horizontal, innerWidth) + topRight)
		}
	} else {
		topBorder = borderStyle.Render(topLeft + strings.Repeat(horizontal, innerWidth) + topRight)
	}
	bottomBorder := borderStyle.Render(bottomLeft + strings.Repeat(horizontal, innerWidth) + bottomRight)

	rows := []string{topBorder}
	for _, line := range strings.Split(p.content, "\n") {
		rows = append(rows, borderStyle.Render(vertical)+" "+fitLine(line, contentWidth)+" "+borderStyle.Render(vertical))
	}
	rows = append(rows, bottomBorder)

	return strings.Join(rows, "\n")
}

// fitLine truncates or pads a line to exactly width visible cells.
func fitLine(line string, width int) string {
	visible := lipgloss.Width(line)
	if visible > width {
		runes := []rune(line)
		if len(runes) > width {
			if width > 3 {
				return string(runes[:width-3]) + "..."
			}
			return string(runes[:width])
		}
		return line
	}
	return line + strings.Repeat(" ", width-visible)
}
