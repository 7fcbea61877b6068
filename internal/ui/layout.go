// Package ui provides the shared terminal layout frame.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tkiley/jobtrail/internal/theme"
)

// Layout manages the terminal frame dimensions: a one-line header, the
// content area, and a one-line status bar.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:  width,
		Height: height,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - 2
}

// padToWidth renders filler in the given style so a partial bar spans
// the full terminal width.
func (l Layout) padToWidth(style lipgloss.Style, used int) string {
	gap := l.Width - used
	if gap < 0 {
		gap = 0
	}
	return style.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(style.GetBackground()).
			Render(""),
	)
}

// RenderHeader renders the top header bar with the app title on the
// left and the scan status on the right.
func (l Layout) RenderHeader(title string, scanStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(scanStatus)

	filler := l.padToWidth(
		theme.HeaderStyle,
		lipgloss.Width(titleRendered)+lipgloss.Width(statusRendered),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints or
// transient status text.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)
	filler := l.padToWidth(theme.StatusBarStyle, lipgloss.Width(rendered))

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
