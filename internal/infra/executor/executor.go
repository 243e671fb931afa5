// Package executor provides command execution functionality.
package executor

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/runoshun/tasker/internal/domain"
)

// Client implements domain.CommandExecutor interface.
type Client struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewClient creates a command executor attached to the process's terminal.
func NewClient() *Client {
	return NewClientWithIO(os.Stdin, os.Stdout, os.Stderr)
}

// NewClientWithIO creates a command executor with custom standard streams.
func NewClientWithIO(stdin io.Reader, stdout, stderr io.Writer) *Client {
	return &Client{stdin: stdin, stdout: stdout, stderr: stderr}
}

// Ensure Client implements domain.CommandExecutor interface.
var _ domain.CommandExecutor = (*Client)(nil)

// ExecuteInteractive runs a command with the client's standard streams and waits for it.
func (c *Client) ExecuteInteractive(ctx context.Context, cmd *domain.ExecCommand) error {
	// #nosec G204 - the program is the user's own $EDITOR
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	execCmd.Stdin = c.stdin
	execCmd.Stdout = c.stdout
	execCmd.Stderr = c.stderr
	return execCmd.Run()
}
