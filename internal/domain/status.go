package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"     // Created, not started (server default)
	StatusInProgress Status = "in_progress" // Being worked on
	StatusDone       Status = "done"        // Finished
)

// AllStatuses returns all valid status values in display order.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusDone,
	}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Next returns the status that follows s in the pending → in_progress → done cycle.
// Unknown statuses restart the cycle at pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusPending
	}
}

// ParseStatus converts user input into a Status.
// Accepts the wire values plus a few spellings used on the command line.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending", "todo":
		return StatusPending, nil
	case "in_progress", "in-progress", "progress", "doing":
		return StatusInProgress, nil
	case "done", "complete", "completed":
		return StatusDone, nil
	}
	return "", &ValidationError{Field: "status", Value: s, Err: ErrInvalidStatus}
}
