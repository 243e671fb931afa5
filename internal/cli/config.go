package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/runoshun/tasker/internal/app"
	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage tasker configuration files and settings.`,
		// No RunE: shows subcommand list when called without arguments
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigInitCommand(c))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display effective configuration after merging all sources.

Shows which config files were loaded and the final merged configuration,
including TASKER_SERVER_URL and TASKER_LOG_LEVEL from the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ShowConfigUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowConfigInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			// Display loaded files section
			_, _ = fmt.Fprintln(w, "[Loaded from]")
			printConfigInfo(w, out.GlobalConfig)
			printConfigInfo(w, out.OverrideConfig)

			_, _ = fmt.Fprintln(w)

			// Display effective config in TOML format
			_, _ = fmt.Fprintln(w, "[Effective Config]")
			return formatEffectiveConfig(w, out.Effective)
		},
	}
	return cmd
}

func printConfigInfo(w io.Writer, info domain.ConfigInfo) {
	if info.Exists {
		_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
	} else {
		_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
	}
}

// formatEffectiveConfig formats the effective config in TOML format.
// The timeout is written as a duration string so the output can be pasted back into a config file.
func formatEffectiveConfig(w io.Writer, cfg *domain.Config) error {
	output := map[string]any{
		"server": map[string]any{
			"url":     cfg.Server.URL,
			"timeout": cfg.Server.Timeout.String(),
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
		},
		"tui": map[string]any{
			"confirm_delete": cfg.TUI.ShouldConfirmDelete(),
		},
	}

	enc := toml.NewEncoder(w)
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file with default values",
		Long: `Create the global config file with commented default values.

Fails if the file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitConfigUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitConfigInput{})
			if err != nil {
				if errors.Is(err, domain.ErrConfigExists) {
					return fmt.Errorf("%w: %s", err, c.ConfigManager.GetGlobalConfigInfo().Path)
				}
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", out.Path)
			return nil
		},
	}
	return cmd
}
