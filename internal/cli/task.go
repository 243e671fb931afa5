package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/tasker/internal/app"
	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/usecase"
)

// Output formats for the list command.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Status string
		Format string
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `Display your tasks, newest first.

Table output has the columns:
  ID, STATUS, AGE, TITLE

Examples:
  # List all tasks
  tasker list

  # Only unfinished work
  tasker list --status in_progress

  # Machine-readable output
  tasker list --format json
  tasker list --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var status domain.Status
			if opts.Status != "" {
				s, err := domain.ParseStatus(opts.Status)
				if err != nil {
					return err
				}
				status = s
			}
			switch opts.Format {
			case formatTable, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unknown format %q (use table, json or yaml)", opts.Format)
			}

			if err := requireSession(cmd, c); err != nil {
				return err
			}

			sync := c.TaskSync(nil)
			if _, err := sync.List(cmd.Context()); err != nil {
				return err
			}
			tasks := sync.Filter(status)

			w := cmd.OutOrStdout()
			switch opts.Format {
			case formatJSON:
				return printTasksJSON(w, tasks)
			case formatYAML:
				return printTasksYAML(w, tasks)
			default:
				if len(tasks) == 0 {
					_, _ = fmt.Fprintln(w, "No tasks yet.")
					return nil
				}
				printTaskList(w, tasks, c.Clock)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Status, "status", "s", "", "Show only tasks with this status (pending, in_progress, done)")
	cmd.Flags().StringVarP(&opts.Format, "format", "o", formatTable, "Output format: table, json or yaml")

	return cmd
}

// printTaskList prints tasks as an aligned table.
func printTaskList(w io.Writer, tasks []domain.Task, clock domain.Clock) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tAGE\tTITLE")

	// Rows
	for i := range tasks {
		task := &tasks[i]
		age := "-"
		if !task.Created().IsZero() {
			age = formatDuration(clock.Now().Sub(task.Created()))
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			task.ID,
			task.Status,
			age,
			task.Title,
		)
	}
}

func printTasksJSON(w io.Writer, tasks []domain.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return nil
}

func printTasksYAML(w io.Writer, tasks []domain.Task) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return enc.Close()
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// newAddCommand creates the add command for creating tasks.
func newAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Description string
		From        string
		DryRun      bool
	}

	cmd := &cobra.Command{
		Use:     "add <title...>",
		Aliases: []string{"new"},
		Short:   "Create a task",
		Long: `Create a new task. The words of the title do not need quoting.

With --from, tasks are created from a YAML file instead. The file is
either a list or a mapping with a 'tasks' key; each entry is a title or
a mapping with title, description and status.

Examples:
  # Simple task
  tasker add Buy milk

  # With a description
  tasker add "Write report" --description "Q3 numbers"

  # Bulk import
  tasker add --from tasks.yaml

  # Check a file without creating anything
  tasker add --from tasks.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.From != "" {
				if len(args) > 0 {
					return errors.New("cannot combine a title with --from")
				}
				return importTasksFromFile(cmd, c, opts.From, opts.DryRun)
			}
			if opts.DryRun {
				return errors.New("--dry-run can only be used with --from")
			}
			if len(args) == 0 {
				return errors.New("title is required (or use --from)")
			}

			if err := requireSession(cmd, c); err != nil {
				return err
			}

			task, err := c.TaskSync(nil).CreateWithInput(cmd.Context(), usecase.CreateTaskInput{
				Title:       strings.Join(args, " "),
				Description: opts.Description,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d: %s\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&opts.From, "from", "f", "", "Create tasks from a YAML file")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate the file without creating tasks (with --from)")

	return cmd
}

// importTasksFromFile creates tasks from a YAML file.
func importTasksFromFile(cmd *cobra.Command, c *app.Container, filePath string, dryRun bool) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if !dryRun {
		if err := requireSession(cmd, c); err != nil {
			return err
		}
	}

	uc := c.ImportTasksUseCase(c.TaskSync(nil))
	out, err := uc.Execute(cmd.Context(), usecase.ImportTasksInput{
		Content: string(content),
		DryRun:  dryRun,
	})

	w := cmd.OutOrStdout()
	if out != nil {
		if dryRun {
			_, _ = fmt.Fprintln(w, "Dry run - tasks that would be created:")
			_, _ = fmt.Fprintln(w, "")
		}
		for i := range out.Tasks {
			task := &out.Tasks[i]
			if dryRun {
				_, _ = fmt.Fprintf(w, "Task %d:\n", i+1)
			} else {
				_, _ = fmt.Fprintf(w, "Created task #%d:\n", task.ID)
			}
			_, _ = fmt.Fprintf(w, "  Title: %s\n", task.Title)
			_, _ = fmt.Fprintf(w, "  Status: %s\n", task.Status)
			if task.Description != "" {
				preview := task.Description
				if len(preview) > 50 {
					preview = preview[:50] + "..."
				}
				preview = strings.ReplaceAll(preview, "\n", " ")
				_, _ = fmt.Fprintf(w, "  Description: %s\n", preview)
			}
		}
		if !dryRun && err == nil {
			_, _ = fmt.Fprintf(w, "\nCreated %d task(s)\n", len(out.Tasks))
		}
	}
	return err
}

// newStatusCommand creates the status command for moving a task between states.
func newStatusCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a task's status",
		Long: `Set the status of a task.

Valid statuses: pending, in_progress, done
(also accepted: todo, doing, in-progress, complete)

Examples:
  tasker status 3 done
  tasker status "#3" in_progress`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}

			if err := requireSession(cmd, c); err != nil {
				return err
			}

			task, err := c.TaskSync(nil).UpdateStatus(cmd.Context(), taskID, status)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is now %s\n", task.ID, task.Status.Display())
			return nil
		},
	}
	return cmd
}

// newEditCommand creates the edit command for changing a task's title or description.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Editor      bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Long: `Edit the title or description of a task.

With --editor (-e), the task opens in $EDITOR as Markdown: the first
'# ' line is the title and the rest is the description.

Examples:
  # Rename a task
  tasker edit 3 --title "Buy oat milk"

  # Clear the description
  tasker edit 3 --description ""

  # Edit in $EDITOR
  tasker edit 3 -e`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			titleChanged := cmd.Flags().Changed("title")
			descChanged := cmd.Flags().Changed("description")
			if opts.Editor && (titleChanged || descChanged) {
				return errors.New("cannot combine --editor with --title or --description")
			}
			if !opts.Editor && !titleChanged && !descChanged {
				return domain.ErrNoFieldsToUpdate
			}

			if err := requireSession(cmd, c); err != nil {
				return err
			}
			sync := c.TaskSync(nil)

			input := usecase.UpdateTaskInput{ID: taskID}
			if opts.Editor {
				changed, err := editTaskWithEditor(cmd, sync, &input)
				if err != nil {
					return err
				}
				if !changed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes made")
					return nil
				}
			} else {
				if titleChanged {
					input.Title = &opts.Title
				}
				if descChanged {
					input.Description = &opts.Description
				}
			}

			task, err := sync.Update(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d: %s\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "New description")
	cmd.Flags().BoolVarP(&opts.Editor, "editor", "e", false, "Edit in $EDITOR")

	return cmd
}

// editTaskWithEditor opens the task in the editor and fills input with the changed fields.
// It reports whether anything changed.
func editTaskWithEditor(cmd *cobra.Command, sync *usecase.TaskSync, input *usecase.UpdateTaskInput) (bool, error) {
	tasks, err := sync.List(cmd.Context())
	if err != nil {
		return false, err
	}
	i := domain.IndexOfTask(tasks, input.ID)
	if i < 0 {
		return false, fmt.Errorf("task #%d not found", input.ID)
	}
	task := tasks[i]

	original := taskToMarkdown(task.Title, task.Description)
	edited, err := editInEditor(fmt.Sprintf("tasker-task-%d-*.md", task.ID), original)
	if err != nil {
		return false, err
	}
	if edited == original {
		return false, nil
	}

	title, description, err := parseTaskMarkdown(edited)
	if err != nil {
		return false, err
	}
	if title != task.Title {
		input.Title = &title
	}
	if description != task.Description {
		input.Description = &description
	}
	return input.Title != nil || input.Description != nil, nil
}

// newRmCommand creates the rm command for deleting a task.
func newRmCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Yes bool
	}

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Long: `Delete a task. You are asked to confirm unless --yes is given
or [tui] confirm_delete is false.

Examples:
  # Delete task by ID
  tasker rm 1

  # Delete task using # prefix, without asking
  tasker rm "#1" --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			if err := requireSession(cmd, c); err != nil {
				return err
			}

			var confirmer domain.Confirmer
			if !opts.Yes && c.AppConfig.TUI.ShouldConfirmDelete() {
				confirmer = newPrompter(cmd)
			}

			err = c.TaskSync(confirmer).Remove(cmd.Context(), taskID)
			if usecase.IsCancelled(err) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", taskID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Delete without asking")

	return cmd
}

// parseTaskID parses a task ID string, accepting an optional leading '#'.
func parseTaskID(s string) (int, error) {
	// Remove leading # if present
	s = strings.TrimPrefix(s, "#")
	var id int
	_, err := fmt.Sscanf(s, "%d", &id)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("task ID must be positive")
	}
	return id, nil
}
