package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/runoshun/tasker/internal/domain"
)

// Ensure TaskClient implements domain.TaskAPI.
var _ domain.TaskAPI = (*TaskClient)(nil)

// TaskClient binds the /tasks endpoints.
type TaskClient struct {
	client *Client
}

// NewTaskClient creates a TaskClient on top of c.
func NewTaskClient(c *Client) *TaskClient {
	return &TaskClient{client: c}
}

func taskPath(id int) string {
	return "/tasks/" + strconv.Itoa(id)
}

// ListTasks returns all tasks in server order.
func (t *TaskClient) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := t.client.Do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task.
func (t *TaskClient) CreateTask(ctx context.Context, in domain.CreateTaskRequest) (*domain.Task, error) {
	var task domain.Task
	if err := t.client.Do(ctx, http.MethodPost, "/tasks", in, &task); err != nil {
		return nil, err
	}
	return checkTask(&task)
}

// UpdateTask updates a task.
func (t *TaskClient) UpdateTask(ctx context.Context, id int, in domain.UpdateTaskRequest) (*domain.Task, error) {
	var task domain.Task
	if err := t.client.Do(ctx, http.MethodPut, taskPath(id), in, &task); err != nil {
		return nil, err
	}
	return checkTask(&task)
}

// checkTask rejects a 2xx response whose body carried no task.
func checkTask(task *domain.Task) (*domain.Task, error) {
	if task.ID <= 0 {
		return nil, fmt.Errorf("decode response: %w", domain.ErrMissingTask)
	}
	return task, nil
}

// DeleteTask deletes a task. The response body, if any, is ignored.
func (t *TaskClient) DeleteTask(ctx context.Context, id int) error {
	return t.client.Do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}
