package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/runoshun/tasker/internal/domain"
)

type taskItem struct {
	task domain.Task
}

func (t taskItem) FilterValue() string {
	return t.task.Title
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// descIndent aligns the description under the title.
const descIndent = "                   "

type taskDelegate struct {
	styles Styles
}

func newTaskDelegate(styles Styles) taskDelegate {
	return taskDelegate{styles: styles}
}

func (d taskDelegate) Height() int {
	return 2
}

func (d taskDelegate) Spacing() int {
	return 1
}

func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(taskItem)
	if !ok {
		return
	}
	task := ti.task
	selected := index == m.Index()

	indicatorChar := " "
	if selected {
		indicatorChar = ">"
	}

	idStr := fmt.Sprintf("%3d", task.ID)
	statusIcon := StatusIcon(task.Status)
	statusText := fmt.Sprintf("%-5s", StatusText(task.Status))

	prefixWidth := runewidth.StringWidth(descIndent)
	listWidth := m.Width()
	maxTitleLen := listWidth - prefixWidth - 2
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}

	title := escapeNewlines(task.Title)
	if runewidth.StringWidth(title) > maxTitleLen {
		title = runewidth.Truncate(title, maxTitleLen-3, "...")
	}

	indicator := d.styles.SelectionIndicator.Bold(selected).Render(indicatorChar)
	idPart := d.styles.TaskID.Bold(selected).Render(idStr)
	iconPart := d.styles.StatusStyle(task.Status).Bold(selected).Render(statusIcon)
	textPart := d.styles.StatusStyle(task.Status).Bold(selected).Render(statusText)
	titleStyle := d.styles.TaskTitle.Bold(selected)
	if task.IsDone() {
		titleStyle = titleStyle.Strikethrough(true)
	}
	titlePart := titleStyle.Render(title)

	line := "  " + indicator + " " + idPart + "  " + iconPart + " " + textPart + "  " + titlePart
	_, _ = fmt.Fprintln(w, line)

	descLine := descIndent
	if task.Description != "" {
		desc := escapeNewlines(task.Description)
		maxDescLen := listWidth - prefixWidth - 2
		if maxDescLen < 10 {
			maxDescLen = 10
		}
		if runewidth.StringWidth(desc) > maxDescLen {
			desc = runewidth.Truncate(desc, maxDescLen-3, "...")
		}
		descLine += desc
	}
	_, _ = fmt.Fprint(w, d.styles.TaskDesc.Render(descLine))
}
