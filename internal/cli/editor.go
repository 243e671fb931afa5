package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/infra/executor"
)

// errEditorNoTitle is returned when the edited file has no "# title" line.
var errEditorNoTitle = errors.New("edited file must start with a '# <title>' line")

// getEditor returns the user's preferred editor from environment variables.
// It checks EDITOR, then VISUAL, and defaults to vi if neither is set.
func getEditor() string {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}
	return editor
}

// openEditorFunc is a function variable for running the editor, allowing it to be mocked in tests.
var openEditorFunc = openEditor

// openEditor opens the specified file in the user's editor.
// It returns an error if the editor cannot be started or exits with a non-zero status.
func openEditor(filePath string) error {
	editor := getEditor()
	cmd := domain.NewEditorCommand(editor, filePath)
	if err := executor.NewClient().ExecuteInteractive(context.Background(), cmd); err != nil {
		return fmt.Errorf("failed to run editor %s: %w", editor, err)
	}

	return nil
}

// taskToMarkdown renders the editable fields of a task.
func taskToMarkdown(title, description string) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if description != "" {
		b.WriteString(description)
		b.WriteString("\n")
	}
	return b.String()
}

// parseTaskMarkdown is the inverse of taskToMarkdown.
// Leading blank lines are skipped; the body after the title is the description.
func parseTaskMarkdown(content string) (title, description string, err error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) || !strings.HasPrefix(lines[i], "# ") {
		return "", "", errEditorNoTitle
	}
	title = strings.TrimSpace(strings.TrimPrefix(lines[i], "# "))
	description = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
	return title, description, nil
}

// editInEditor writes content to a temp file, opens the editor and returns the result.
func editInEditor(pattern, content string) (string, error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return "", fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	if editorErr := openEditorFunc(tmpPath); editorErr != nil {
		return "", editorErr
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(edited), nil
}
