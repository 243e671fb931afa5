package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/tasker/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	DescNormal    lipgloss.Color

	// Status colors
	Pending    lipgloss.Color
	InProgress lipgloss.Color
	Done       lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	DescNormal:    lipgloss.Color("#636E72"), // Gray

	Pending:    lipgloss.Color("#74B9FF"), // Light blue
	InProgress: lipgloss.Color("#FDCB6E"), // Yellow
	Done:       lipgloss.Color("#00B894"), // Green
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderUser lipgloss.Style
	HeaderInfo lipgloss.Style

	// Task list
	TaskID             lipgloss.Style
	TaskTitle          lipgloss.Style
	TaskDesc           lipgloss.Style
	SelectionIndicator lipgloss.Style
	Empty              lipgloss.Style

	// Status badges
	StatusPending    lipgloss.Style
	StatusInProgress lipgloss.Style
	StatusDone       lipgloss.Style

	// Dialog
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogPrompt lipgloss.Style

	// Input
	Input       lipgloss.Style
	InputPrompt lipgloss.Style

	// Sign-in form
	Form      lipgloss.Style
	FormTitle lipgloss.Style
	FormLabel lipgloss.Style

	// Messages
	ErrorMsg  lipgloss.Style
	NoticeMsg lipgloss.Style
	Footer    lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		HeaderUser: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		HeaderInfo: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskID: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskDesc: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),

		SelectionIndicator: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected),

		Empty: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Italic(true),

		StatusPending: lipgloss.NewStyle().
			Foreground(Colors.Pending),

		StatusInProgress: lipgloss.NewStyle().
			Foreground(Colors.InProgress),

		StatusDone: lipgloss.NewStyle().
			Foreground(Colors.Done),

		Dialog: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		DialogPrompt: lipgloss.NewStyle(),

		Input: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		InputPrompt: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		Form: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Secondary),

		FormTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		FormLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(10),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		NoticeMsg: lipgloss.NewStyle().
			Foreground(Colors.Success),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),
	}
}

// StatusStyle returns the style for a given status.
func (s Styles) StatusStyle(status domain.Status) lipgloss.Style {
	switch status {
	case domain.StatusPending:
		return s.StatusPending
	case domain.StatusInProgress:
		return s.StatusInProgress
	case domain.StatusDone:
		return s.StatusDone
	default:
		return s.StatusPending
	}
}

// StatusIcon returns an icon for a given status.
func StatusIcon(status domain.Status) string {
	switch status {
	case domain.StatusPending:
		return "○"
	case domain.StatusInProgress:
		return "●"
	case domain.StatusDone:
		return "✓"
	default:
		return "?"
	}
}

// StatusText returns a short fixed-width label for a status.
func StatusText(status domain.Status) string {
	switch status {
	case domain.StatusPending:
		return "todo"
	case domain.StatusInProgress:
		return "doing"
	case domain.StatusDone:
		return "done"
	default:
		return string(status)
	}
}
