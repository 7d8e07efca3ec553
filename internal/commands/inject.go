package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/pulsechat/internal/chat"
	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/history"
)

// NewInjectCmd creates the inject command
func NewInjectCmd(deps *Dependencies) *cobra.Command {
	var (
		typing   bool
		duration time.Duration
		at       string
	)

	cmd := &cobra.Command{
		Use:   "inject <conversation> [message...]",
		Short: "Push a message or typing pulse to running chats",
		Long: `Publish an action through the chat server's relay. Every chat connected
to the relay applies it: a message appears in the conversation as if the
contact had written it, or the contact shows as typing for a while.

Examples:
  pulsechat inject alex "Found it, it's the pool size"
  pulsechat inject sarah --typing --duration 3s`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			return runInject(cmd.Context(), deps, args[0], text, typing, duration, at)
		},
	}

	cmd.Flags().BoolVar(&typing, "typing", false, "Send a typing pulse instead of a message")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Typing pulse length (default from config)")
	cmd.Flags().StringVar(&at, "time", "", "Display time for the message, e.g. \"9:15 AM\"")
	return cmd
}

func runInject(ctx context.Context, deps *Dependencies, ref, text string, typing bool, duration time.Duration, at string) error {
	if !typing && text == "" {
		return errors.New("message cannot be empty (use --typing for a typing pulse)")
	}

	cfg, err := deps.config()
	if err != nil {
		return err
	}
	logger := deps.newLogger(cfg, deps.Err, slog.LevelWarn)

	// The conversation set is fixed, so ids resolve against the seed.
	id, err := history.Resolve(config.SeedConversations(), ref)
	if err != nil {
		return err
	}

	var action chat.Action
	if typing {
		if duration <= 0 {
			duration = cfg.TypingDuration()
		}
		action = chat.TriggerTyping(id, duration)
	} else {
		action = chat.AddMessage(id, text)
		action.Payload.Time = at
	}

	pub := deps.Publisher
	if pub == nil {
		client, err := deps.NewClient(cfg, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		pub = client
	}

	n, err := pub.Publish(ctx, action)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	_, _ = fmt.Fprintf(deps.Out, "Delivered %s for %s to %d client(s)\n", action.Type, id, n)
	return nil
}
