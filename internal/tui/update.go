package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/usecase"
)

// Notices shown to the user.
const (
	noticeSessionEnded   = "Your session has ended. Please log in again."
	noticeAccountCreated = "Account created. Log in to continue."
	noticeDeleteCanceled = "Deletion cancelled"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayoutSizes()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case MsgSessionRestored:
		if msg.Err != nil {
			m.form.err = fmt.Errorf("could not read stored login: %w", msg.Err)
		}
		if m.route() == domain.RouteProtected {
			m.loading = true
			return m, m.loadTasks()
		}
		return m, m.form.applyFocus()

	case MsgAuthCompleted:
		m.authBusy = false
		if msg.Err != nil {
			m.form.err = msg.Err
			return m, nil
		}
		if msg.Action == authRegister {
			return m, m.form.showLogin(msg.Email, noticeAccountCreated)
		}
		m.form.reset()
		m.resetDashboard()
		m.loading = true
		return m, m.loadTasks()

	case MsgLoggedOut:
		cmd := m.resetToLogin("")
		if msg.Err != nil {
			m.form.err = fmt.Errorf("logged out, but %w", msg.Err)
		}
		return m, cmd

	case MsgTasksLoaded:
		m.loading = false
		if msg.Err != nil {
			return m, m.handleError(msg.Err)
		}
		m.updateTaskList()
		return m, nil

	case MsgTaskCreated:
		m.updateTaskList()
		if i := domain.IndexOfTask(m.sync.Filter(m.filter), msg.Task.ID); i >= 0 {
			m.taskList.Select(i)
		}
		m.notice = fmt.Sprintf("Created #%d", msg.Task.ID)
		return m, nil

	case MsgTaskUpdated:
		m.updateTaskList()
		return m, nil

	case MsgTaskDeleted:
		m.updateTaskList()
		m.notice = fmt.Sprintf("Deleted #%d", msg.TaskID)
		return m, nil

	case MsgConfirmRequested:
		// Only one dialog at a time; a request that arrives while another
		// is open or while typing a task is denied.
		if m.route() != domain.RouteProtected || m.confirmReply != nil || m.mode != ModeNormal {
			msg.reply <- false
			return m, m.confirmer.wait()
		}
		m.mode = ModeConfirm
		m.confirmPrompt = msg.Prompt
		m.confirmReply = msg.reply
		return m, m.confirmer.wait()

	case MsgError:
		return m, m.handleError(msg.Err)
	}

	return m, nil
}

// handleError routes a failed operation to the right place.
// A rejected credential has already invalidated the session, so the
// route guard now resolves to the login form.
func (m *Model) handleError(err error) tea.Cmd {
	switch {
	case usecase.IsCancelled(err):
		m.notice = noticeDeleteCanceled
		return nil
	case errors.Is(err, domain.ErrUnauthorized):
		return m.resetToLogin(noticeSessionEnded)
	default:
		m.err = err
		return nil
	}
}

// resetDashboard drops all per-user dashboard state.
func (m *Model) resetDashboard() {
	m.sync = m.newSync()
	m.filter = ""
	m.err = nil
	m.notice = ""
	m.mode = ModeNormal
	m.titleInput.Reset()
	m.descInput.Reset()
	m.answerConfirm(false)
	m.updateTaskList()
}

// resetToLogin clears the dashboard and shows the login form with notice.
func (m *Model) resetToLogin(notice string) tea.Cmd {
	m.resetDashboard()
	m.loading = false
	m.form.reset()
	m.form.notice = notice
	return m.form.applyFocus()
}

// answerConfirm replies to a pending confirmation, if any.
func (m *Model) answerConfirm(ok bool) {
	if m.confirmReply != nil {
		m.confirmReply <- ok
		m.confirmReply = nil
	}
	m.confirmPrompt = ""
	if m.mode == ModeConfirm {
		m.mode = ModeNormal
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.answerConfirm(false)
		return m, tea.Quit
	}

	switch m.route() {
	case domain.RouteLoading:
		return m, nil
	case domain.RouteLogin:
		return m.handleAuthMode(msg)
	case domain.RouteProtected:
	}

	switch m.mode {
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeInputTitle:
		return m.handleInputTitleMode(msg)
	case ModeInputDesc:
		return m.handleInputDescMode(msg)
	case ModeNormal:
	}
	return m.handleNormalMode(msg)
}

func (m *Model) handleAuthMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.authKeys.Quit):
		return m, tea.Quit
	case m.authBusy:
		return m, nil
	case key.Matches(msg, m.authKeys.Toggle):
		return m, m.form.toggle()
	case key.Matches(msg, m.authKeys.Next):
		return m, m.form.next()
	case key.Matches(msg, m.authKeys.Prev):
		return m, m.form.prev()
	case key.Matches(msg, m.authKeys.Submit):
		if !m.form.onLastField() {
			return m, m.form.next()
		}
		if err := m.form.validate(); err != nil {
			m.form.err = err
			return m, nil
		}
		m.form.err = nil
		m.form.notice = ""
		m.authBusy = true
		return m, m.submitAuth(m.form.action, domain.RegisterInput{
			Name:     m.form.value(fieldName),
			Email:    m.form.value(fieldEmail),
			Password: m.form.value(fieldPassword),
		})
	}
	return m, m.form.update(msg)
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.updateLayoutSizes()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.err = nil
		m.notice = ""
		return m, nil
	}

	// Any action clears the previous message
	m.err = nil
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.New):
		m.mode = ModeInputTitle
		m.titleInput.Reset()
		m.descInput.Reset()
		m.updateLayoutSizes()
		return m, m.titleInput.Focus()

	case key.Matches(msg, m.keys.CycleStatus):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		return m, m.setStatus(task.ID, task.Status.Next())

	case key.Matches(msg, m.keys.SetPending):
		return m, m.setSelectedStatus(domain.StatusPending)

	case key.Matches(msg, m.keys.SetInProgress):
		return m, m.setSelectedStatus(domain.StatusInProgress)

	case key.Matches(msg, m.keys.SetDone):
		return m, m.setSelectedStatus(domain.StatusDone)

	case key.Matches(msg, m.keys.Delete):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		return m, m.removeTask(task.ID)

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadTasks()

	case key.Matches(msg, m.keys.Filter):
		m.filter = nextFilter(m.filter)
		m.updateTaskList()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout()
	}

	// Navigation is handled by the list
	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

// setSelectedStatus moves the selected task to status unless it is already there.
func (m *Model) setSelectedStatus(status domain.Status) tea.Cmd {
	task := m.SelectedTask()
	if task == nil || task.Status == status {
		return nil
	}
	return m.setStatus(task.ID, status)
}

func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.answerConfirm(true)
	case key.Matches(msg, m.keys.Deny):
		m.answerConfirm(false)
	}
	return m, nil
}

func (m *Model) handleInputTitleMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.cancelInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if _, err := domain.ValidateTitle(m.titleInput.Value()); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.mode = ModeInputDesc
		m.titleInput.Blur()
		return m, m.descInput.Focus()
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m *Model) handleInputDescMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.cancelInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		title := m.titleInput.Value()
		desc := strings.TrimSpace(m.descInput.Value())
		m.cancelInput()
		return m, m.createTask(title, desc)
	}

	var cmd tea.Cmd
	m.descInput, cmd = m.descInput.Update(msg)
	return m, cmd
}

// cancelInput leaves the new-task inputs.
func (m *Model) cancelInput() {
	m.mode = ModeNormal
	m.err = nil
	m.titleInput.Blur()
	m.descInput.Blur()
	m.titleInput.Reset()
	m.descInput.Reset()
	m.updateLayoutSizes()
}

// updateLayoutSizes recomputes component sizes after a resize or mode change.
func (m *Model) updateLayoutSizes() {
	width := m.width - 4 // App padding
	if width < 20 {
		width = 20
	}
	// App padding, header, message line and footer
	height := m.height - 2 - 2 - 2 - lipgloss.Height(m.help.View(m.keys))
	if m.mode.IsInputMode() {
		height -= 4
	}
	if height < 3 {
		height = 3
	}
	m.taskList.SetSize(width, height)
	m.titleInput.Width = width - 6
	m.descInput.Width = width - 6
}
