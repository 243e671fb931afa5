package domain

import (
	"context"
	"time"
)

// CredentialSource provides the current bearer credential.
// Implementations must return the live value on every call.
type CredentialSource interface {
	// Credential returns the current token, or "" when there is none.
	Credential() string
}

// SessionHandle is the view of the session the task synchronizer depends on.
type SessionHandle interface {
	CredentialSource

	// Invalidate drops the credential after the server rejected it.
	Invalidate(reason string)
}

// CredentialStore persists the credential between runs.
type CredentialStore interface {
	// Load returns the stored credential, or nil if none is stored.
	Load() (*StoredCredential, error)

	// Save replaces the stored credential.
	Save(cred StoredCredential) error

	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear() error
}

// AuthAPI is the server's authentication endpoint group.
type AuthAPI interface {
	// Register creates an account. It does not log in.
	Register(ctx context.Context, in RegisterInput) error

	// Login exchanges credentials for a token and identity.
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}

// TaskAPI is the server's task endpoint group.
type TaskAPI interface {
	// ListTasks returns all tasks of the authenticated user in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns the server representation.
	CreateTask(ctx context.Context, in CreateTaskRequest) (*Task, error)

	// UpdateTask updates a task and returns the server representation.
	UpdateTask(ctx context.Context, id int, in UpdateTaskRequest) (*Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int) error
}

// CreateTaskRequest is the body of a create call.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateTaskRequest is the body of an update call. Nil fields are not sent.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// IsEmpty returns true if no field is set.
func (r UpdateTaskRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil
}

// Confirmer asks the user to approve a destructive action.
// Implementations may block until the user answers or ctx is done.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Logger writes operational log entries.
// taskID is 0 for entries not tied to a task.
type Logger interface {
	Debug(taskID int, category, msg string)
	Info(taskID int, category, msg string)
	Warn(taskID int, category, msg string)
	Error(taskID int, category, msg string)
}

// NopLogger discards all entries.
type NopLogger struct{}

func (NopLogger) Debug(int, string, string) {}
func (NopLogger) Info(int, string, string)  {}
func (NopLogger) Warn(int, string, string)  {}
func (NopLogger) Error(int, string, string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (defaults + global + override + env).
	Load() (*Config, error)
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// GetOverrideConfigInfo returns information about the override config file.
	GetOverrideConfigInfo() ConfigInfo

	// InitGlobalConfig creates the global config file with the default template.
	InitGlobalConfig() error
}

// ConfigInfo contains information about a config file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// CommandExecutor runs external programs.
type CommandExecutor interface {
	// ExecuteInteractive runs cmd attached to the terminal and waits for it to exit.
	ExecuteInteractive(ctx context.Context, cmd *ExecCommand) error
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
