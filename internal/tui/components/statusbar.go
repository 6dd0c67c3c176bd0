package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-ing/Agent0/internal/tui/styles"
)

// StatusBar shows the run status on the left, a message in the middle,
// and key hints on the right.
type StatusBar struct {
	status     string
	message    string
	keyHints   string
	width      int
	theme      *styles.Theme
	isError    bool
	leftStyle  lipgloss.Style
	rightStyle lipgloss.Style
	errStyle   lipgloss.Style
}

// NewStatusBar creates a new status bar.
func NewStatusBar(width int) *StatusBar {
	theme := styles.DefaultTheme()
	return &StatusBar{
		status:   "pending",
		message:  "waiting for logs",
		keyHints: "r refresh | f follow | q quit",
		width:    width,
		theme:    theme,
		leftStyle: lipgloss.NewStyle().
			Background(theme.Success).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Padding(0, 1),
		rightStyle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),
		errStyle: lipgloss.NewStyle().
			Foreground(theme.Danger).
			Bold(true).
			Padding(0, 1),
	}
}

// SetStatus sets the run status shown on the left.
func (s *StatusBar) SetStatus(status string) {
	s.status = status
}

// SetMessage sets the status message.
func (s *StatusBar) SetMessage(message string) {
	s.message = message
	s.isError = false
}

// SetError sets an error message, styled distinctly.
func (s *StatusBar) SetError(message string) {
	s.message = message
	s.isError = true
}

// SetKeyHints sets the key hint text on the right.
func (s *StatusBar) SetKeyHints(hints string) {
	s.keyHints = hints
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	if width > 0 {
		s.width = width
	}
}

// Render renders the status bar as a single line.
func (s *StatusBar) Render() string {
	left := s.leftStyle.Render(strings.ToUpper(s.status))

	messageStyle := s.rightStyle
	if s.isError {
		messageStyle = s.errStyle
	}
	message := messageStyle.Render(s.message)
	right := s.rightStyle.Render(s.keyHints)

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(message) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + message + strings.Repeat(" ", gap) + right
}
