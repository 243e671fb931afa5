package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tasker/internal/domain"
)

// ImportTasksInput contains the parameters for creating tasks from a file.
type ImportTasksInput struct {
	Content string // File content (YAML task list)
	DryRun  bool   // If true, parse and validate without creating tasks
}

// ImportTasksOutput contains the result of importing tasks.
type ImportTasksOutput struct {
	Tasks []domain.Task // Created tasks in file order (drafts only in dry-run mode)
}

// ImportTasks creates tasks from a YAML file through the synchronizer.
type ImportTasks struct {
	sync *TaskSync
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(sync *TaskSync) *ImportTasks {
	return &ImportTasks{sync: sync}
}

// Execute parses the content and creates each task in order.
// Tasks with a non-default status get a follow-up status update.
// On failure the tasks created so far are returned together with the error.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}

	out := &ImportTasksOutput{Tasks: make([]domain.Task, 0, len(drafts))}

	if in.DryRun {
		for _, d := range drafts {
			status := d.Status
			if status == "" {
				status = domain.StatusPending
			}
			out.Tasks = append(out.Tasks, domain.Task{
				Title:       d.Title,
				Description: d.Description,
				Status:      status,
			})
		}
		return out, nil
	}

	for i, d := range drafts {
		task, err := uc.sync.CreateWithInput(ctx, CreateTaskInput{
			Title:       d.Title,
			Description: d.Description,
		})
		if err != nil {
			return out, fmt.Errorf("task %d: %w", i+1, err)
		}
		if d.Status != "" && d.Status != task.Status {
			task, err = uc.sync.UpdateStatus(ctx, task.ID, d.Status)
			if err != nil {
				return out, fmt.Errorf("task %d: %w", i+1, err)
			}
		}
		out.Tasks = append(out.Tasks, *task)
	}

	return out, nil
}
