package tui

import "github.com/runoshun/tasker/internal/domain"

// Msg is the sealed interface for all TUI messages.
// All message types must implement the sealed() method.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgSessionRestored is sent once the persisted credential has been checked.
type MsgSessionRestored struct {
	Err error // Credential file could not be read (session is Unauthenticated)
}

func (MsgSessionRestored) sealed() {}

// MsgAuthCompleted is sent when a login or registration request returns.
type MsgAuthCompleted struct {
	Err    error
	Email  string
	Action authAction
}

func (MsgAuthCompleted) sealed() {}

// MsgLoggedOut is sent when logout has finished.
type MsgLoggedOut struct {
	Err error // Persisted credential could not be removed
}

func (MsgLoggedOut) sealed() {}

// MsgTasksLoaded is sent when the task list has been fetched.
// The tasks themselves live in the synchronizer.
type MsgTasksLoaded struct {
	Err error
}

func (MsgTasksLoaded) sealed() {}

// MsgTaskCreated is sent when a new task is created.
type MsgTaskCreated struct {
	Task domain.Task
}

func (MsgTaskCreated) sealed() {}

// MsgTaskUpdated is sent when a task has been updated.
type MsgTaskUpdated struct {
	Task domain.Task
}

func (MsgTaskUpdated) sealed() {}

// MsgTaskDeleted is sent when a task is deleted.
type MsgTaskDeleted struct {
	TaskID int
}

func (MsgTaskDeleted) sealed() {}

// MsgConfirmRequested is sent when an operation is waiting for a yes/no answer.
// The answer must be sent on reply exactly once.
type MsgConfirmRequested struct {
	reply  chan<- bool
	Prompt string
}

func (MsgConfirmRequested) sealed() {}

// MsgError is sent when an operation fails.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}
