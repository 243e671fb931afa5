package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasker/internal/app"
	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/usecase"
)

// Model is the main bubbletea model for the TUI.
// The view is chosen by the route guard from the session status on every render.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	sync      *usecase.TaskSync
	confirmer *confirmBridge
	err       error

	// Pending confirmation answer channel (nil unless ModeConfirm)
	confirmReply chan<- bool

	// Components (structs with pointers)
	keys     KeyMap
	authKeys authKeyMap
	styles   Styles
	help     help.Model
	spinner  spinner.Model
	taskList list.Model
	form     authForm

	// Input state (large structs)
	titleInput textinput.Model
	descInput  textinput.Model

	// Strings
	notice        string
	confirmPrompt string
	filter        domain.Status

	// Numeric state (smaller types last)
	mode     Mode
	width    int
	height   int
	loading  bool
	authBusy bool
}

// New creates a new TUI Model with the given container.
func New(c *app.Container) *Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200

	di := textinput.New()
	di.Placeholder = "Task description (optional)"
	di.CharLimit = 1000

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	styles := DefaultStyles()
	delegate := newTaskDelegate(styles)
	taskList := list.New([]list.Item{}, delegate, 0, 0)
	taskList.SetShowTitle(false)
	taskList.SetShowStatusBar(false)
	taskList.SetShowHelp(false)
	taskList.SetShowPagination(true)
	taskList.SetFilteringEnabled(false)
	taskList.DisableQuitKeybindings()

	m := &Model{
		container:  c,
		confirmer:  newConfirmBridge(),
		keys:       DefaultKeyMap(),
		authKeys:   defaultAuthKeyMap(),
		styles:     styles,
		help:       help.New(),
		spinner:    sp,
		taskList:   taskList,
		form:       newAuthForm(),
		titleInput: ti,
		descInput:  di,
		mode:       ModeNormal,
	}
	m.sync = m.newSync()
	return m
}

// newSync returns a fresh synchronizer so no tasks survive a change of user.
func (m *Model) newSync() *usecase.TaskSync {
	var confirmer domain.Confirmer
	if m.container.AppConfig == nil || m.container.AppConfig.TUI.ShouldConfirmDelete() {
		confirmer = m.confirmer
	}
	return m.container.TaskSync(confirmer)
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.restoreSession(),
		m.confirmer.wait(),
	)
}

// route returns the view the session currently resolves to.
func (m *Model) route() domain.Route {
	return domain.GuardRoute(m.container.Session.Status())
}

// Commands run in their own goroutines. They capture what they need up
// front and never touch model fields.

// restoreSession returns a command that resolves the persisted credential.
func (m *Model) restoreSession() tea.Cmd {
	session := m.container.Session
	return func() tea.Msg {
		return MsgSessionRestored{Err: session.Restore()}
	}
}

// loadTasks returns a command that reloads tasks from the server.
func (m *Model) loadTasks() tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		_, err := sync.List(context.Background())
		return MsgTasksLoaded{Err: err}
	}
}

// submitAuth returns a command that sends the form to the server.
func (m *Model) submitAuth(action authAction, in domain.RegisterInput) tea.Cmd {
	session := m.container.Session
	return func() tea.Msg {
		var err error
		if action == authRegister {
			err = session.Register(context.Background(), in)
		} else {
			err = session.Login(context.Background(), domain.LoginInput{Email: in.Email, Password: in.Password})
		}
		return MsgAuthCompleted{Action: action, Email: in.Email, Err: err}
	}
}

// logout returns a command that ends the session.
func (m *Model) logout() tea.Cmd {
	session := m.container.Session
	return func() tea.Msg {
		return MsgLoggedOut{Err: session.Logout()}
	}
}

// createTask returns a command that creates a task.
func (m *Model) createTask(title, description string) tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		task, err := sync.CreateWithInput(context.Background(), usecase.CreateTaskInput{
			Title:       title,
			Description: description,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskCreated{Task: *task}
	}
}

// setStatus returns a command that updates a task's status.
func (m *Model) setStatus(id int, status domain.Status) tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		task, err := sync.UpdateStatus(context.Background(), id, status)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskUpdated{Task: *task}
	}
}

// removeTask returns a command that deletes a task after confirmation.
// The confirmation dialog is driven by MsgConfirmRequested.
func (m *Model) removeTask(id int) tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		if err := sync.Remove(context.Background(), id); err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskDeleted{TaskID: id}
	}
}

// SelectedTask returns the currently selected task, or nil if none.
func (m *Model) SelectedTask() *domain.Task {
	if m.taskList.SelectedItem() == nil {
		return nil
	}
	if ti, ok := m.taskList.SelectedItem().(taskItem); ok {
		task := ti.task
		return &task
	}
	return nil
}

// updateTaskList rebuilds the list items from the synchronizer,
// keeping the selection on the same task when it is still shown.
func (m *Model) updateTaskList() {
	selectedID := 0
	if t := m.SelectedTask(); t != nil {
		selectedID = t.ID
	}

	tasks := m.sync.Filter(m.filter)
	items := make([]list.Item, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskItem{task: task})
	}
	m.taskList.SetItems(items)

	if i := domain.IndexOfTask(tasks, selectedID); i >= 0 {
		m.taskList.Select(i)
	} else if m.taskList.Index() >= len(items) && len(items) > 0 {
		m.taskList.Select(len(items) - 1)
	}
}

// nextFilter returns the filter that follows f: all → pending → in_progress → done → all.
func nextFilter(f domain.Status) domain.Status {
	switch f {
	case "":
		return domain.StatusPending
	case domain.StatusDone:
		return ""
	default:
		return f.Next()
	}
}
