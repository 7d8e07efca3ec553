package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/render"
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Long: `Inspect the effective configuration (file, environment and flags
combined) or write a default config file to edit by hand.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			path, _ := config.GetConfigPath()
			_, _ = fmt.Fprintln(deps.Out, dimStyle.Render("# "+path))
			_, _ = fmt.Fprintln(deps.Out, string(data))
			return nil
		},
	})

	cmd.AddCommand(newConfigInitCmd(deps))
	cmd.AddCommand(newConfigThemesCmd(deps))

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(deps.Out, path)
			return nil
		},
	})
	return cmd
}

func newConfigInitCmd(deps *Dependencies) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config file: %w", err)
			}

			if err := config.SaveConfig(config.DefaultConfig()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(deps.Out, "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigThemesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List TUI themes and markdown styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(deps.Out, "TUI themes (tui_theme, chat --theme):")
			for _, t := range render.AvailableTUIThemes() {
				marker := "  "
				if t.Name == cfg.TUITheme {
					marker = "* "
				}
				swatch := lipgloss.NewStyle().Foreground(t.Primary).Render("●")
				_, _ = fmt.Fprintf(deps.Out, "%s%s %-18s %s\n", marker, swatch, t.Name, dimStyle.Render(t.Description))
			}

			_, _ = fmt.Fprintln(deps.Out, "\nMarkdown styles (markdown.style):")
			for _, s := range render.AvailableStyles() {
				marker := "  "
				if s.Name == cfg.Markdown.Style {
					marker = "* "
				}
				_, _ = fmt.Fprintf(deps.Out, "%s%-20s %s\n", marker, s.Name, dimStyle.Render(s.Description))
			}
			if cfg.Markdown.Style != "" && !render.IsBuiltinStyle(cfg.Markdown.Style) {
				_, _ = fmt.Fprintf(deps.Out, "* %-20s %s\n", cfg.Markdown.Style, dimStyle.Render("custom style file"))
			}
			return nil
		},
	}
}
