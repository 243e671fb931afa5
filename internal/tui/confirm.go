package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasker/internal/domain"
)

type confirmRequest struct {
	reply  chan bool
	prompt string
}

// confirmBridge lets an operation running in a command goroutine ask the
// user a question. Confirm blocks until the dialog is answered; the model
// learns about the question through wait().
type confirmBridge struct {
	requests chan confirmRequest
}

// Ensure confirmBridge implements domain.Confirmer.
var _ domain.Confirmer = (*confirmBridge)(nil)

func newConfirmBridge() *confirmBridge {
	return &confirmBridge{requests: make(chan confirmRequest)}
}

// Confirm hands the prompt to the UI and waits for the answer.
func (b *confirmBridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// wait returns a command that delivers the next question as MsgConfirmRequested.
// The model re-arms it after every question.
func (b *confirmBridge) wait() tea.Cmd {
	return func() tea.Msg {
		req := <-b.requests
		return MsgConfirmRequested{Prompt: req.prompt, reply: req.reply}
	}
}
