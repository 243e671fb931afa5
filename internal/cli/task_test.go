package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/testutil"
)

// seedTasks creates tasks on the mock server; the last title ends up first.
func seedTasks(t *testing.T, api *testutil.MockTaskAPI, titles ...string) {
	t.Helper()
	for _, title := range titles {
		_, err := api.CreateTask(context.Background(), domain.CreateTaskRequest{Title: title})
		require.NoError(t, err)
	}
	api.CreateCall = 0
}

// =============================================================================
// List Command Tests
// =============================================================================

func TestListCommand_Empty(t *testing.T) {
	env := newTestEnv(t, true)

	out, _, err := run(env.container, "", "list")

	require.NoError(t, err)
	assert.Equal(t, "No tasks yet.\n", out)
}

func TestListCommand_Table(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "First", "Second")

	out, _, err := run(env.container, "", "list")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[0], "TITLE")
	// Newest first, as the server returns them.
	assert.Contains(t, lines[1], "Second")
	assert.Contains(t, lines[2], "First")
	assert.Contains(t, lines[1], "pending")
	assert.Contains(t, lines[1], "2d")
}

func TestListCommand_StatusFilter(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Open", "Finished")
	env.tasks.Tasks[0].Status = domain.StatusDone

	out, _, err := run(env.container, "", "list", "--status", "done")

	require.NoError(t, err)
	assert.Contains(t, out, "Finished")
	assert.NotContains(t, out, "Open")
}

func TestListCommand_InvalidStatus(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "list", "--status", "someday")

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Equal(t, 0, env.tasks.Calls())
}

func TestListCommand_JSON(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "First", "Second")

	out, _, err := run(env.container, "", "list", "--format", "json")

	require.NoError(t, err)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "Second", tasks[0].Title)
	assert.Equal(t, 2, tasks[0].ID)
}

func TestListCommand_JSONEmptyIsArray(t *testing.T) {
	env := newTestEnv(t, true)

	out, _, err := run(env.container, "", "list", "-o", "json")

	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestListCommand_YAML(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "First")

	out, _, err := run(env.container, "", "list", "--format", "yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "title: First")
	assert.Contains(t, out, "status: pending")
	assert.Contains(t, out, "2024-01-01T00:00:00Z")
}

func TestListCommand_UnknownFormat(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "list", "--format", "xml")

	assert.ErrorContains(t, err, "unknown format")
}

func TestListCommand_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t, false)

	_, _, err := run(env.container, "", "list")

	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, 0, env.tasks.Calls())
}

func TestListCommand_RejectedCredentialLogsOut(t *testing.T) {
	env := newTestEnv(t, true)
	env.tasks.ListErr = &domain.TransportError{StatusCode: http.StatusUnauthorized, Message: "Token has expired"}

	_, _, err := run(env.container, "", "list")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, env.creds.Stored)
	assert.Equal(t, domain.SessionUnauthenticated, env.container.Session.Status())
}

// =============================================================================
// Add Command Tests
// =============================================================================

func TestAddCommand_JoinsTitleWords(t *testing.T) {
	env := newTestEnv(t, true)

	out, _, err := run(env.container, "", "add", "Buy", "milk")

	require.NoError(t, err)
	assert.Contains(t, out, "Created task #1: Buy milk")
	require.Len(t, env.tasks.Tasks, 1)
	assert.Equal(t, "Buy milk", env.tasks.Tasks[0].Title)
}

func TestAddCommand_WithDescription(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "add", "Write report", "--description", "Q3 numbers")

	require.NoError(t, err)
	require.Len(t, env.tasks.Tasks, 1)
	assert.Equal(t, "Q3 numbers", env.tasks.Tasks[0].Description)
}

func TestAddCommand_BlankTitle(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "add", "   ")

	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.Equal(t, 0, env.tasks.CreateCall)
}

func TestAddCommand_NoTitle(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "add")

	assert.ErrorContains(t, err, "title is required")
}

func TestAddCommand_DryRunRequiresFrom(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "add", "x", "--dry-run")

	assert.ErrorContains(t, err, "--dry-run")
}

func writeTasksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAddCommand_FromFile(t *testing.T) {
	env := newTestEnv(t, true)
	path := writeTasksFile(t, `
- Buy milk
- title: Write report
  description: Q3 numbers
  status: in_progress
`)

	out, _, err := run(env.container, "", "add", "--from", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Created task #1:")
	assert.Contains(t, out, "Created task #2:")
	assert.Contains(t, out, "Created 2 task(s)")
	require.Len(t, env.tasks.Tasks, 2)
	assert.Equal(t, "Write report", env.tasks.Tasks[0].Title)
	assert.Equal(t, domain.StatusInProgress, env.tasks.Tasks[0].Status)
}

func TestAddCommand_FromFileDryRun(t *testing.T) {
	// Dry runs do not need a session.
	env := newTestEnv(t, false)
	path := writeTasksFile(t, "tasks:\n  - Buy milk\n  - Walk dog\n")

	out, _, err := run(env.container, "", "add", "--from", path, "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "Task 2:")
	assert.Contains(t, out, "Title: Walk dog")
	assert.Equal(t, 0, env.tasks.Calls())
}

func TestAddCommand_FromFileWithTitle(t *testing.T) {
	env := newTestEnv(t, true)
	path := writeTasksFile(t, "- a\n")

	_, _, err := run(env.container, "", "add", "extra", "--from", path)

	assert.ErrorContains(t, err, "cannot combine")
}

func TestAddCommand_FromMissingFile(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "add", "--from", filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorContains(t, err, "read file")
}

// =============================================================================
// Status Command Tests
// =============================================================================

func TestStatusCommand(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Task")

	out, _, err := run(env.container, "", "status", "#1", "done")

	require.NoError(t, err)
	assert.Contains(t, out, "Task #1 is now Done")
	assert.Equal(t, domain.StatusDone, env.tasks.Tasks[0].Status)
}

func TestStatusCommand_InvalidStatus(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "status", "1", "later")

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Equal(t, 0, env.tasks.Calls())
}

func TestStatusCommand_UnknownTask(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "status", "42", "done")

	tErr, ok := domain.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, tErr.StatusCode)
}

// =============================================================================
// Edit Command Tests
// =============================================================================

func TestEditCommand_Title(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Old")

	out, _, err := run(env.container, "", "edit", "1", "--title", "New")

	require.NoError(t, err)
	assert.Contains(t, out, "Updated task #1: New")
	assert.Equal(t, "New", env.tasks.Tasks[0].Title)
}

func TestEditCommand_ClearDescription(t *testing.T) {
	env := newTestEnv(t, true)
	_, err := env.tasks.CreateTask(context.Background(), domain.CreateTaskRequest{Title: "T", Description: "d"})
	require.NoError(t, err)

	_, _, err = run(env.container, "", "edit", "1", "--description", "")

	require.NoError(t, err)
	assert.Equal(t, "", env.tasks.Tasks[0].Description)
}

func TestEditCommand_NoFields(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "edit", "1")

	assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)
}

func TestEditCommand_Editor(t *testing.T) {
	originalFunc := openEditorFunc
	defer func() {
		openEditorFunc = originalFunc
	}()
	openEditorFunc = func(path string) error {
		return os.WriteFile(path, []byte("# Renamed\n\nNew body\n"), 0o600)
	}

	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Old")

	_, _, err := run(env.container, "", "edit", "1", "-e")

	require.NoError(t, err)
	assert.Equal(t, "Renamed", env.tasks.Tasks[0].Title)
	assert.Equal(t, "New body", env.tasks.Tasks[0].Description)
}

func TestEditCommand_EditorNoChanges(t *testing.T) {
	originalFunc := openEditorFunc
	defer func() {
		openEditorFunc = originalFunc
	}()
	openEditorFunc = func(string) error { return nil }

	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Same")

	out, _, err := run(env.container, "", "edit", "1", "--editor")

	require.NoError(t, err)
	assert.Contains(t, out, "No changes made")
	assert.Equal(t, 0, env.tasks.UpdateCall)
}

// =============================================================================
// Rm Command Tests
// =============================================================================

func TestRmCommand_Yes(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Task")

	out, _, err := run(env.container, "", "rm", "1", "--yes")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task #1")
	assert.Empty(t, env.tasks.Tasks)
}

func TestRmCommand_ConfirmYes(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Task")

	_, stderr, err := run(env.container, "y\n", "rm", "1")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Are you sure? [y/N]")
	assert.Empty(t, env.tasks.Tasks)
}

func TestRmCommand_ConfirmNo(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Task")

	out, _, err := run(env.container, "n\n", "rm", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, 0, env.tasks.DeleteCall)
	assert.Len(t, env.tasks.Tasks, 1)
}

func TestRmCommand_ConfirmDisabledInConfig(t *testing.T) {
	env := newTestEnv(t, true)
	seedTasks(t, env.tasks, "Task")
	off := false
	env.container.AppConfig.TUI.ConfirmDelete = &off

	_, _, err := run(env.container, "", "rm", "1")

	require.NoError(t, err)
	assert.Empty(t, env.tasks.Tasks)
}

func TestRmCommand_InvalidID(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := run(env.container, "", "rm", "abc")

	assert.ErrorContains(t, err, "invalid task ID")
}

// =============================================================================
// Helpers
// =============================================================================

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "plain", input: "12", want: 12},
		{name: "hash prefix", input: "#12", want: 12},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTaskID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		want string
		d    time.Duration
	}{
		{d: -time.Second, want: "0s"},
		{d: 30 * time.Second, want: "30s"},
		{d: 5 * time.Minute, want: "5m"},
		{d: 3 * time.Hour, want: "3h"},
		{d: 50 * time.Hour, want: "2d"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

func TestParseTaskMarkdown(t *testing.T) {
	title, desc, err := parseTaskMarkdown(taskToMarkdown("Title", "line 1\nline 2"))
	require.NoError(t, err)
	assert.Equal(t, "Title", title)
	assert.Equal(t, "line 1\nline 2", desc)

	title, desc, err = parseTaskMarkdown("\n\n# Only title\n")
	require.NoError(t, err)
	assert.Equal(t, "Only title", title)
	assert.Equal(t, "", desc)

	_, _, err = parseTaskMarkdown("no heading here")
	assert.ErrorIs(t, err, errEditorNoTitle)
}
