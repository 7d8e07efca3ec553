package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/pulsechat/internal/history"
	"github.com/diogo/pulsechat/internal/models"
	"github.com/diogo/pulsechat/internal/render"
)

// NewSendCmd creates the send command
func NewSendCmd(deps *Dependencies) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "send <conversation> <message...>",
		Short: "Send one message and print the reply",
		Long: `Send a message to a conversation, wait for the contact's reply and print
it. Both messages are saved to the conversation history.

Output is decorated on a terminal and plain when piped; --raw forces plain
output.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), deps, args[0], strings.Join(args[1:], " "), raw)
		},
	}

	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print only the reply text")
	return cmd
}

func runSend(ctx context.Context, deps *Dependencies, ref, text string, raw bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("message cannot be empty")
	}

	cfg, err := deps.config()
	if err != nil {
		return err
	}
	logger := deps.newLogger(cfg, deps.Err, slog.LevelWarn)

	s, err := deps.startSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := history.Resolve(s.engine.Conversations(), ref)
	if err != nil {
		return err
	}
	s.engine.Select(id)
	conv, _ := s.engine.Conversation(id)

	decorated := !raw && deps.IsTTY()
	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Err, conv.Name+" is typing")
		spin.start()
	}

	if !s.engine.Submit(text) {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("could not send to %s", conv.Name)
	}
	s.engine.Wait()

	conv, _ = s.engine.Conversation(id)
	reply, ok := conv.LastMessage()
	if !ok || reply.Sender != models.SenderOther {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("no reply from %s", conv.Name)
	}
	if spin != nil {
		spin.stopWithSuccess("Delivered")
	}

	if !decorated {
		_, _ = fmt.Fprintln(deps.Out, reply.Text)
	} else {
		width := bubbleWidth()
		body := render.MessageBody(reply.Text, render.OptionsFromConfig(cfg.Markdown, width-4))
		label := contactLabelStyle.Render(conv.Name) + dimStyle.Render("  "+reply.Time)
		_, _ = fmt.Fprintln(deps.Out, label)
		_, _ = fmt.Fprintln(deps.Out, contactBubbleStyle.Width(width).Render(body))
	}

	if cfg.CopyToClipboard {
		if err := deps.Clipboard(reply.Text); err != nil {
			warn := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			_, _ = fmt.Fprintln(deps.Err, warn)
		} else if decorated {
			_, _ = fmt.Fprintln(deps.Err, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}
	return nil
}
