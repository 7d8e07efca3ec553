package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/pulsechat/internal/history"
	"github.com/diogo/pulsechat/internal/relay"
	"github.com/diogo/pulsechat/internal/render"
	"github.com/diogo/pulsechat/internal/tui"
)

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	var (
		relayURL string
		theme    string
		plain    bool
	)

	cmd := &cobra.Command{
		Use:   "chat [conversation]",
		Short: "Open the interactive chat",
		Long: `Open the two-pane chat: conversations on the left, the selected thread
on the right.

A conversation can be given by id, list position or part of the contact
name to open it right away. With a relay URL (or relay_url in the config)
messages and typing pulses pushed through the relay show up live.

Keys: Tab switches focus, ↑/↓ and Enter pick a conversation, Enter sends,
Esc closes the thread, Ctrl+Y copies the last message, Ctrl+C quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) > 0 {
				ref = args[0]
			}
			return runChat(cmd.Context(), deps, ref, relayURL, theme, plain)
		},
	}

	cmd.Flags().StringVar(&relayURL, "relay", "", "Relay websocket URL, e.g. ws://localhost:3000/ws")
	cmd.Flags().StringVar(&theme, "theme", "", "TUI theme ("+strings.Join(render.TUIThemeNames(), ", ")+")")
	cmd.Flags().BoolVar(&plain, "plain", false, "Show messages without markdown rendering")
	return cmd
}

func runChat(ctx context.Context, deps *Dependencies, ref, relayURL, theme string, plain bool) error {
	cfg, err := deps.config()
	if err != nil {
		return err
	}
	if relayURL != "" {
		cfg.RelayURL = relayURL
	}
	if theme != "" {
		if _, ok := render.TUIThemeByName(theme); !ok {
			return fmt.Errorf("unknown theme %q (available: %s)", theme, strings.Join(render.TUIThemeNames(), ", "))
		}
		cfg.TUITheme = theme
	}

	logFile, err := deps.OpenLog()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger := deps.newLogger(cfg, logFile, slog.LevelInfo)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := deps.startSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if ref != "" {
		id, err := history.Resolve(s.engine.Conversations(), ref)
		if err != nil {
			return err
		}
		s.engine.Select(id)
	}

	if cfg.RelayURL != "" {
		rc, err := relay.NewClient(cfg.RelayURL, s.engine, relay.WithLogger(logger))
		if err != nil {
			return err
		}
		go func() { _ = rc.Run(ctx) }()
	}

	tui.ApplyTheme(render.TUIThemeOrDefault(cfg.TUITheme))
	opts := []tui.Option{
		tui.WithMarkdown(render.OptionsFromConfig(cfg.Markdown, 80)),
		tui.WithClipboard(deps.Clipboard),
	}
	if plain {
		opts = append(opts, tui.WithPlainText())
	}

	logger.Info("chat started", "origin", s.engine.Origin().String(), "relay", cfg.RelayURL)
	return deps.RunTUI(ctx, s.engine, opts...)
}
