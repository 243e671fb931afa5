package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEditorCommand(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		want   *ExecCommand
	}{
		{"plain", "vim", &ExecCommand{Program: "vim", Args: []string{"/tmp/t.md"}}},
		{"with args", "code --wait", &ExecCommand{Program: "code", Args: []string{"--wait", "/tmp/t.md"}}},
		{"blank falls back to vi", "  ", &ExecCommand{Program: "vi", Args: []string{"/tmp/t.md"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewEditorCommand(tt.editor, "/tmp/t.md"))
		})
	}
}
