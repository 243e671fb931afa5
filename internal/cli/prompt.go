package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/runoshun/tasker/internal/domain"
)

// errNoInput is returned when stdin ends before an answer was given.
var errNoInput = errors.New("no input")

// prompter reads answers from the command's stdin.
// Fields are ordered to minimize memory padding.
type prompter struct {
	out io.Writer
	in  *bufio.Reader
	fd  uintptr
	tty bool
}

// Ensure prompter implements domain.Confirmer.
var _ domain.Confirmer = (*prompter)(nil)

// newPrompter creates a prompter bound to cmd's input and error streams.
// Prompts go to stderr so stdout stays parseable.
func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{
		out: cmd.ErrOrStderr(),
		in:  bufio.NewReader(cmd.InOrStdin()),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(f.Fd()) {
		p.fd = f.Fd()
		p.tty = true
	}
	return p
}

// readLine prints label and returns the trimmed answer.
func (p *prompter) readLine(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a secret without echo when stdin is a terminal.
func (p *prompter) readPassword(label string) (string, error) {
	if !p.tty {
		return p.readLine(label)
	}
	_, _ = fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// Confirm asks a y/N question. Anything but y/yes is a no.
func (p *prompter) Confirm(_ context.Context, prompt string) (bool, error) {
	answer, err := p.readLine(prompt + " [y/N]: ")
	if err != nil {
		if errors.Is(err, errNoInput) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
