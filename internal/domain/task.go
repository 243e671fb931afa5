// Package domain contains core business entities and interfaces.
package domain

import (
	"strings"
	"time"
)

// Task is the client-side view of a task owned by the authenticated user.
// The server is authoritative for every field; the client never derives
// or persists fields of its own.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt   Timestamp `json:"created_at" yaml:"created_at"`                       // Server-assigned creation time
	Title       string    `json:"title" yaml:"title"`                                 // Title (required)
	Description string    `json:"description,omitempty" yaml:"description,omitempty"` // Description (optional)
	Status      Status    `json:"status" yaml:"status"`                               // Current status
	ID          int       `json:"id" yaml:"id"`                                       // Server-assigned ID
}

// Created returns the creation time as a time.Time.
func (t *Task) Created() time.Time {
	return t.CreatedAt.Time
}

// IsDone returns true if the task is finished.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}

// NormalizeTitle trims surrounding whitespace from a user-supplied title.
// An empty result means the title is not acceptable.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// ValidateTitle returns the normalized title or a ValidationError if it is empty.
func ValidateTitle(title string) (string, error) {
	normalized := NormalizeTitle(title)
	if normalized == "" {
		return "", &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	return normalized, nil
}

// IndexOfTask returns the index of the task with the given ID, or -1.
func IndexOfTask(tasks []Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
