// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/runoshun/tasker/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTaskAPI is a test double for domain.TaskAPI that behaves like the server:
// tasks are kept newest first and IDs are assigned sequentially.
// Fields are ordered to minimize memory padding.
type MockTaskAPI struct {
	ListErr    error
	CreateErr  error
	UpdateErr  error
	DeleteErr  error
	Tasks      []domain.Task
	Now        time.Time
	mu         sync.Mutex
	NextIDN    int
	ListCalls  int
	CreateCall int
	UpdateCall int
	DeleteCall int
}

// Ensure MockTaskAPI implements domain.TaskAPI.
var _ domain.TaskAPI = (*MockTaskAPI)(nil)

// NewMockTaskAPI creates a new MockTaskAPI with no tasks.
func NewMockTaskAPI() *MockTaskAPI {
	return &MockTaskAPI{
		Tasks:   []domain.Task{},
		NextIDN: 1,
		Now:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Calls returns the total number of calls made to the API.
func (m *MockTaskAPI) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls + m.CreateCall + m.UpdateCall + m.DeleteCall
}

// ListTasks returns a copy of the server-side tasks.
func (m *MockTaskAPI) ListTasks(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Task, len(m.Tasks))
	copy(out, m.Tasks)
	return out, nil
}

// CreateTask stores a new pending task at the front.
func (m *MockTaskAPI) CreateTask(_ context.Context, in domain.CreateTaskRequest) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCall++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	task := domain.Task{
		ID:          m.NextIDN,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusPending,
		CreatedAt:   domain.NewTimestamp(m.Now),
	}
	m.NextIDN++
	m.Tasks = append([]domain.Task{task}, m.Tasks...)
	return &task, nil
}

// UpdateTask applies the set fields to a stored task.
func (m *MockTaskAPI) UpdateTask(_ context.Context, id int, in domain.UpdateTaskRequest) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCall++
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	i := domain.IndexOfTask(m.Tasks, id)
	if i < 0 {
		return nil, &domain.TransportError{StatusCode: http.StatusNotFound, Message: "Task not found"}
	}
	if in.Title != nil {
		m.Tasks[i].Title = *in.Title
	}
	if in.Description != nil {
		m.Tasks[i].Description = *in.Description
	}
	if in.Status != nil {
		m.Tasks[i].Status = *in.Status
	}
	task := m.Tasks[i]
	return &task, nil
}

// DeleteTask removes a stored task.
func (m *MockTaskAPI) DeleteTask(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCall++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	i := domain.IndexOfTask(m.Tasks, id)
	if i < 0 {
		return &domain.TransportError{StatusCode: http.StatusNotFound, Message: "Task not found"}
	}
	m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
	return nil
}

// MockAuthAPI is a test double for domain.AuthAPI.
// Fields are ordered to minimize memory padding.
type MockAuthAPI struct {
	RegisterErr   error
	LoginErr      error
	LoginResult   *domain.LoginResult
	LastRegister  domain.RegisterInput
	LastLogin     domain.LoginInput
	RegisterCalls int
	LoginCalls    int
}

// Ensure MockAuthAPI implements domain.AuthAPI.
var _ domain.AuthAPI = (*MockAuthAPI)(nil)

// Register records the call.
func (m *MockAuthAPI) Register(_ context.Context, in domain.RegisterInput) error {
	m.RegisterCalls++
	m.LastRegister = in
	return m.RegisterErr
}

// Login records the call and returns the configured result.
func (m *MockAuthAPI) Login(_ context.Context, in domain.LoginInput) (*domain.LoginResult, error) {
	m.LoginCalls++
	m.LastLogin = in
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	if m.LoginResult == nil {
		return nil, fmt.Errorf("no login result configured")
	}
	res := *m.LoginResult
	return &res, nil
}

// MockCredentialStore is an in-memory domain.CredentialStore.
type MockCredentialStore struct {
	Stored     *domain.StoredCredential
	LoadErr    error
	SaveErr    error
	ClearErr   error
	LoadCalls  int
	SaveCalls  int
	ClearCalls int
}

// Ensure MockCredentialStore implements domain.CredentialStore.
var _ domain.CredentialStore = (*MockCredentialStore)(nil)

// Load returns the stored credential.
func (m *MockCredentialStore) Load() (*domain.StoredCredential, error) {
	m.LoadCalls++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Stored == nil {
		return nil, nil
	}
	c := *m.Stored
	return &c, nil
}

// Save stores the credential.
func (m *MockCredentialStore) Save(cred domain.StoredCredential) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Stored = &cred
	return nil
}

// Clear removes the credential.
func (m *MockCredentialStore) Clear() error {
	m.ClearCalls++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Stored = nil
	return nil
}

// MockConfirmer is a test double for domain.Confirmer.
type MockConfirmer struct {
	Err     error
	Prompts []string
	Answer  bool
}

// Ensure MockConfirmer implements domain.Confirmer.
var _ domain.Confirmer = (*MockConfirmer)(nil)

// Confirm records the prompt and returns the configured answer.
func (m *MockConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return false, m.Err
	}
	return m.Answer, nil
}

// MockSession is a test double for domain.SessionHandle.
type MockSession struct {
	Token             string
	InvalidateReasons []string
	mu                sync.Mutex
}

// Ensure MockSession implements domain.SessionHandle.
var _ domain.SessionHandle = (*MockSession)(nil)

// Credential returns the current token.
func (m *MockSession) Credential() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Token
}

// Invalidate clears the token and records the reason.
func (m *MockSession) Invalidate(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token = ""
	m.InvalidateReasons = append(m.InvalidateReasons, reason)
}

// LogEntry is a single entry recorded by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	TaskID   int
}

// MockLogger records log entries.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) add(level string, taskID int, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID int, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Info records an info entry.
func (m *MockLogger) Info(taskID int, category, msg string) { m.add("INFO", taskID, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(taskID int, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID int, category, msg string) { m.add("ERROR", taskID, category, msg) }

// Count returns the number of entries at the given level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	InitGlobalErr      error
	GlobalConfigInfo   domain.ConfigInfo
	OverrideConfigInfo domain.ConfigInfo
	InitGlobalCalled   bool
}

// Ensure MockConfigManager implements domain.ConfigManager.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{}
}

// GetGlobalConfigInfo returns the configured global info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// GetOverrideConfigInfo returns the configured override info.
func (m *MockConfigManager) GetOverrideConfigInfo() domain.ConfigInfo {
	return m.OverrideConfigInfo
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig() error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config  *domain.Config
	LoadErr error
}

// Ensure MockConfigLoader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// NewMockConfigLoader creates a MockConfigLoader returning the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}
