package domain

import "strings"

// ExecCommand represents an external command to be executed.
// This type is used to pass command information between layers
// without exposing implementation details.
type ExecCommand struct {
	Program string
	Dir     string
	Args    []string
}

// NewEditorCommand returns the command that opens path in editor.
// editor may carry arguments, e.g. "code --wait".
func NewEditorCommand(editor, path string) *ExecCommand {
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	args := append(parts[1:len(parts):len(parts)], path)
	return &ExecCommand{
		Program: parts[0],
		Args:    args,
	}
}
