package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/runoshun/tasker/internal/domain"
)

// CreateTaskInput contains the parameters for creating a task.
type CreateTaskInput struct {
	Title       string // Task title (required, trimmed)
	Description string // Task description (optional)
}

// UpdateTaskInput contains the parameters for updating a task.
// Nil fields are left unchanged.
// Fields are ordered to minimize memory padding.
type UpdateTaskInput struct {
	Title       *string        // New title (optional)
	Description *string        // New description (optional)
	Status      *domain.Status // New status (optional)
	ID          int            // Task ID (required)
}

// TaskSync keeps a local copy of the user's tasks consistent with the server.
// The local collection changes only after the server confirms a mutation,
// and always holds the server's representation of the affected task.
// Mutations are serialized so they complete in the order they were issued.
// Fields are ordered to minimize memory padding.
type TaskSync struct {
	session   domain.SessionHandle
	api       domain.TaskAPI
	confirmer domain.Confirmer
	logger    domain.Logger
	tasks     []domain.Task
	opMu      sync.Mutex
	mu        sync.RWMutex
}

// NewTaskSync creates a TaskSync bound to the given session.
// A nil confirmer approves every removal.
func NewTaskSync(session domain.SessionHandle, api domain.TaskAPI, confirmer domain.Confirmer, logger domain.Logger) *TaskSync {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &TaskSync{
		session:   session,
		api:       api,
		confirmer: confirmer,
		logger:    logger,
		tasks:     []domain.Task{},
	}
}

// Tasks returns a copy of the local collection.
func (s *TaskSync) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Filter returns the local tasks with the given status. An empty status matches all.
func (s *TaskSync) Filter(status domain.Status) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Counts returns the number of local tasks per status. Every status is present.
func (s *TaskSync) Counts() map[domain.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.Status]int, len(domain.AllStatuses()))
	for _, st := range domain.AllStatuses() {
		counts[st] = 0
	}
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts
}

// List replaces the local collection with the server's list.
func (s *TaskSync) List(ctx context.Context) ([]domain.Task, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return nil, s.fail(0, "list tasks", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	s.logger.Debug(0, "sync", fmt.Sprintf("listed %d tasks", len(tasks)))
	return s.Tasks(), nil
}

// Create creates a task with the given title and prepends it to the collection.
func (s *TaskSync) Create(ctx context.Context, title string) (*domain.Task, error) {
	return s.CreateWithInput(ctx, CreateTaskInput{Title: title})
}

// CreateWithInput creates a task and prepends the server's copy to the collection.
func (s *TaskSync) CreateWithInput(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	title, err := domain.ValidateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	task, err := s.api.CreateTask(ctx, domain.CreateTaskRequest{
		Title:       title,
		Description: in.Description,
	})
	if err != nil {
		return nil, s.fail(0, "create task", err)
	}
	if task == nil || task.ID <= 0 {
		return nil, s.fail(0, "create task", domain.ErrMissingTask)
	}

	s.mu.Lock()
	next := make([]domain.Task, 0, len(s.tasks)+1)
	next = append(next, *task)
	for _, t := range s.tasks {
		if t.ID != task.ID {
			next = append(next, t)
		}
	}
	s.tasks = next
	s.mu.Unlock()

	s.logger.Info(task.ID, "sync", fmt.Sprintf("created %q", task.Title))
	out := *task
	return &out, nil
}

// UpdateStatus sets a task's status.
func (s *TaskSync) UpdateStatus(ctx context.Context, id int, status domain.Status) (*domain.Task, error) {
	return s.Update(ctx, UpdateTaskInput{ID: id, Status: &status})
}

// Update applies the set fields to a task and replaces the local entry with
// the server's copy. If the task is no longer held locally the response is
// discarded; the collection never grows.
func (s *TaskSync) Update(ctx context.Context, in UpdateTaskInput) (*domain.Task, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	req, err := buildUpdateRequest(in)
	if err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	task, err := s.api.UpdateTask(ctx, in.ID, req)
	if err != nil {
		return nil, s.fail(in.ID, "update task", err)
	}
	if task == nil || task.ID <= 0 {
		return nil, s.fail(in.ID, "update task", domain.ErrMissingTask)
	}

	s.mu.Lock()
	replaced := false
	if i := domain.IndexOfTask(s.tasks, task.ID); i >= 0 {
		next := make([]domain.Task, len(s.tasks))
		copy(next, s.tasks)
		next[i] = *task
		s.tasks = next
		replaced = true
	}
	s.mu.Unlock()

	if replaced {
		s.logger.Info(task.ID, "sync", fmt.Sprintf("updated (status %s)", task.Status))
	} else {
		s.logger.Debug(task.ID, "sync", "updated task not held locally; response discarded")
	}
	out := *task
	return &out, nil
}

// Remove asks for confirmation and then deletes a task.
// A denied confirmation returns domain.ErrCancelled without any network call.
// Confirmation happens before the operation lock is taken.
func (s *TaskSync) Remove(ctx context.Context, id int) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if id <= 0 {
		return &domain.ValidationError{Field: "id", Value: fmt.Sprint(id), Err: domain.ErrInvalidTaskID}
	}

	if s.confirmer != nil {
		ok, err := s.confirmer.Confirm(ctx, s.removePrompt(id))
		if err != nil {
			return fmt.Errorf("confirm removal: %w", err)
		}
		if !ok {
			s.logger.Debug(id, "sync", "removal cancelled")
			return domain.ErrCancelled
		}
	}

	// The session may have ended while the user was answering.
	if err := s.requireSession(); err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.api.DeleteTask(ctx, id); err != nil {
		return s.fail(id, "delete task", err)
	}

	s.mu.Lock()
	if i := domain.IndexOfTask(s.tasks, id); i >= 0 {
		next := make([]domain.Task, 0, len(s.tasks)-1)
		next = append(next, s.tasks[:i]...)
		next = append(next, s.tasks[i+1:]...)
		s.tasks = next
	}
	s.mu.Unlock()

	s.logger.Info(id, "sync", "deleted")
	return nil
}

func (s *TaskSync) removePrompt(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := domain.IndexOfTask(s.tasks, id); i >= 0 {
		return fmt.Sprintf("Delete task #%d %q? Are you sure?", id, s.tasks[i].Title)
	}
	return fmt.Sprintf("Delete task #%d? Are you sure?", id)
}

// requireSession fails fast when there is no credential.
func (s *TaskSync) requireSession() error {
	if s.session.Credential() == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// fail logs err and, when the server rejected the credential, invalidates the session.
func (s *TaskSync) fail(taskID int, op string, err error) error {
	s.logger.Error(taskID, "sync", fmt.Sprintf("%s: %v", op, err))

	if tErr, ok := domain.AsTransportError(err); ok && tErr.IsUnauthorized() {
		reason := tErr.Message
		if reason == "" {
			reason = tErr.Error()
		}
		s.session.Invalidate(reason)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// buildUpdateRequest validates the input and converts it to a request body.
func buildUpdateRequest(in UpdateTaskInput) (domain.UpdateTaskRequest, error) {
	var req domain.UpdateTaskRequest
	if in.ID <= 0 {
		return req, &domain.ValidationError{Field: "id", Value: fmt.Sprint(in.ID), Err: domain.ErrInvalidTaskID}
	}
	if in.Title != nil {
		title, err := domain.ValidateTitle(*in.Title)
		if err != nil {
			return req, err
		}
		req.Title = &title
	}
	if in.Description != nil {
		desc := *in.Description
		req.Description = &desc
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return req, &domain.ValidationError{Field: "status", Value: string(*in.Status), Err: domain.ErrInvalidStatus}
		}
		st := *in.Status
		req.Status = &st
	}
	if req.IsEmpty() {
		return req, domain.ErrNoFieldsToUpdate
	}
	return req, nil
}

// IsCancelled reports whether err is a denied confirmation.
func IsCancelled(err error) bool {
	return errors.Is(err, domain.ErrCancelled)
}
