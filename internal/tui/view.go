package tui

import (
	"fmt"
	"strings"

	"github.com/runoshun/tasker/internal/domain"
)

// View renders the TUI.
func (m *Model) View() string {
	var content string
	switch m.route() {
	case domain.RouteLoading:
		content = m.viewLoading()
	case domain.RouteLogin:
		content = m.viewLogin()
	case domain.RouteProtected:
		content = m.viewDashboard()
	}
	return m.styles.App.Render(content)
}

func (m *Model) viewLoading() string {
	return m.spinner.View() + " Restoring session..."
}

func (m *Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("tasker"))
	b.WriteString("\n\n")
	b.WriteString(m.form.view(m.styles, m.authBusy))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render(m.help.View(m.authKeys)))
	return b.String()
}

// viewDashboard renders the task list view.
func (m *Model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	b.WriteString(m.viewTaskList())
	b.WriteString("\n")

	// Dialogs/overlays
	switch m.mode {
	case ModeNormal:
	case ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
		b.WriteString("\n")
	case ModeInputTitle, ModeInputDesc:
		b.WriteString("\n")
		b.WriteString(m.viewTaskInput())
		b.WriteString("\n")
	}

	// Message line
	switch {
	case m.err != nil:
		b.WriteString(m.styles.ErrorMsg.Render("Error: " + m.err.Error()))
	case m.notice != "":
		b.WriteString(m.styles.NoticeMsg.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

// viewHeader renders the title, the signed-in user and per-status counts.
func (m *Model) viewHeader() string {
	parts := []string{
		m.styles.Header.Render("tasker"),
		m.styles.HeaderUser.Render(m.userLabel()),
	}

	counts := m.sync.Counts()
	var c []string
	for _, status := range domain.AllStatuses() {
		c = append(c, m.styles.StatusStyle(status).Render(fmt.Sprintf("%s %d", StatusIcon(status), counts[status])))
	}
	parts = append(parts, strings.Join(c, "  "))

	if m.filter != "" {
		parts = append(parts, m.styles.HeaderInfo.Render("filter: "+m.filter.Display()))
	}
	if m.loading {
		parts = append(parts, m.spinner.View())
	}

	return strings.Join(parts, "   ")
}

// userLabel names the signed-in user.
func (m *Model) userLabel() string {
	id := m.container.Session.Identity()
	switch {
	case id == nil:
		return "signed in"
	case id.Name != "":
		return id.Name
	case id.Email != "":
		return id.Email
	default:
		return fmt.Sprintf("user %d", id.ID)
	}
}

func (m *Model) viewTaskList() string {
	if len(m.taskList.Items()) > 0 {
		return m.taskList.View()
	}
	if m.loading {
		return m.styles.Empty.Render(m.spinner.View() + " Loading tasks...")
	}
	if m.filter != "" && len(m.sync.Tasks()) > 0 {
		return m.styles.Empty.Render(fmt.Sprintf("No %s tasks.", m.filter.Display()))
	}
	return m.styles.Empty.Render("No tasks yet. Press n to add one.")
}

func (m *Model) viewTaskInput() string {
	var b strings.Builder
	b.WriteString(m.styles.DialogTitle.Render("New task"))
	b.WriteString("\n")
	if m.mode == ModeInputTitle {
		b.WriteString(m.styles.InputPrompt.Render("Title: "))
		b.WriteString(m.titleInput.View())
	} else {
		b.WriteString(m.styles.InputPrompt.Render("Title: "))
		b.WriteString(m.titleInput.Value())
		b.WriteString("\n")
		b.WriteString(m.styles.InputPrompt.Render("Description: "))
		b.WriteString(m.descInput.View())
	}
	return m.styles.Input.Render(b.String())
}

func (m *Model) viewConfirmDialog() string {
	var b strings.Builder
	b.WriteString(m.styles.DialogTitle.Render("Confirm"))
	b.WriteString("\n")
	b.WriteString(m.styles.DialogPrompt.Render(m.confirmPrompt + " [y/N]"))
	return m.styles.Dialog.Render(b.String())
}
