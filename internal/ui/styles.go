// Package ui holds terminal styling shared by the rx commands.
package ui

import "github.com/charmbracelet/lipgloss"

// ANSI256 colors used by command output.
var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(74)).Bold(true)
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(250))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(245))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(71))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(167)).Bold(true)
)

var noColor bool

func render(s string, style lipgloss.Style) string {
	if noColor {
		return s
	}
	return style.Render(s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(s, accentStyle) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(s, mutedStyle) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(s, commandStyle) }

// RenderOK returns s styled as a success message.
func RenderOK(s string) string { return render(s, okStyle) }

// RenderFail returns s styled as a failure message.
func RenderFail(s string) string { return render(s, failStyle) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
