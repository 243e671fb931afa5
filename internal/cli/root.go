// Package cli provides the command-line interface for tasker.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runoshun/tasker/internal/app"
	"github.com/runoshun/tasker/internal/tui"
)

// Command group IDs.
const (
	groupAccount = "account"
	groupTask    = "task"
	groupSetup   = "setup"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for tasker.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "tasker",
		Short: "Terminal client for your task list",
		Long: `tasker is a terminal client for a personal task-tracking service.

Sign in once with 'tasker login' and manage your tasks either with
one-shot commands (list, add, status, edit, rm) or interactively by
running tasker without arguments.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c)
		},
	}

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupAccount, Title: "Account Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	// Account commands
	loginCmd := newLoginCommand(c)
	loginCmd.GroupID = groupAccount

	registerCmd := newRegisterCommand(c)
	registerCmd.GroupID = groupAccount

	logoutCmd := newLogoutCommand(c)
	logoutCmd.GroupID = groupAccount

	whoamiCmd := newWhoamiCommand(c)
	whoamiCmd.GroupID = groupAccount

	// Task management commands
	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	addCmd := newAddCommand(c)
	addCmd.GroupID = groupTask

	statusCmd := newStatusCommand(c)
	statusCmd.GroupID = groupTask

	editCmd := newEditCommand(c)
	editCmd.GroupID = groupTask

	rmCmd := newRmCommand(c)
	rmCmd.GroupID = groupTask

	tuiCmd := newTUICommand(c)
	tuiCmd.GroupID = groupTask

	// Setup commands
	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		loginCmd,
		registerCmd,
		logoutCmd,
		whoamiCmd,
		listCmd,
		addCmd,
		statusCmd,
		editCmd,
		rmCmd,
		tuiCmd,
		configCmd,
	)

	return root
}

// launchTUI runs the interactive TUI until the user quits.
func launchTUI(c *app.Container) error {
	if c == nil {
		return fmt.Errorf("launch tui: no application container")
	}
	model := tui.New(c)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
