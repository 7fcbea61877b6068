package applist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/theme"
)

// ApplicationItem wraps a model.Application so it can be used in a
// bubbles/list.
type ApplicationItem struct {
	App model.Application
}

// FilterValue returns the string used for fuzzy filtering.
func (i ApplicationItem) FilterValue() string {
	return i.App.Company + " " + i.App.JobTitle
}

// Title returns the company and role for the list.
func (i ApplicationItem) Title() string {
	return i.App.Company + " / " + i.App.JobTitle
}

// Description returns a short summary line for the list.
func (i ApplicationItem) Description() string {
	parts := []string{
		string(i.App.Status),
		relativeTime(i.App.LastUpdate),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering list items.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	appItem, ok := item.(ApplicationItem)
	if !ok {
		return
	}

	a := appItem.App
	isSelected := index == m.Index()

	statusBadge := theme.StatusStyle(a.Status).Render(string(a.Status))

	company := lipgloss.NewStyle().
		Bold(true).
		Render(a.Company)

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(a.LastUpdate))

	line := fmt.Sprintf(
		"%s %s · %s  %s",
		statusBadge, company, a.JobTitle, timeStr,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
