package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/history"
	"github.com/diogo/pulsechat/internal/models"
	"github.com/diogo/pulsechat/internal/render"
)

// NewHistoryCmd creates the history command and its subcommands
func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage stored conversations",
		Long: `View, export and reset the conversation history kept by the storage
backend. Conversations can be referred to by id, by 1-based index as
shown by 'history list', or by part of the contact name.`,
	}

	cmd.AddCommand(newHistoryListCmd(deps))
	cmd.AddCommand(newHistoryShowCmd(deps))
	cmd.AddCommand(newHistoryResetCmd(deps))
	cmd.AddCommand(newHistoryExportCmd(deps))
	return cmd
}

func newHistoryListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := loadConversations(cmd.Context(), deps)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(deps.Out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "#\tID\tNAME\tROLE\tMESSAGES\tLAST")
			_, _ = fmt.Fprintln(w, "-\t--\t----\t----\t--------\t----")
			for i, item := range render.ConversationList(convs, "") {
				conv := convs[i]
				last := item.Preview
				if item.Time != "" {
					last = item.Time + "  " + last
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
					i+1, item.ID, item.Name, conv.Role, len(conv.Messages), truncate(last, 60))
			}
			return w.Flush()
		},
	}
}

func newHistoryShowCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation>",
		Short: "Show a conversation thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := loadConversations(cmd.Context(), deps)
			if err != nil {
				return err
			}
			id, err := history.Resolve(convs, args[0])
			if err != nil {
				return err
			}

			thread := render.ActiveThread(convs, id, nil)
			header := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render(thread.Name)
			_, _ = fmt.Fprintf(deps.Out, "%s %s\n\n", header, dimStyle.Render(thread.Role))
			if len(thread.Items) == 0 {
				_, _ = fmt.Fprintln(deps.Out, dimStyle.Render(models.NoMessagesText))
				return nil
			}

			selfStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
			for _, item := range thread.Items {
				label := contactLabelStyle.Render(item.Author)
				if item.Self {
					label = selfStyle.Render(item.Author)
				}
				_, _ = fmt.Fprintf(deps.Out, "%s %s\n%s\n\n", label, dimStyle.Render(item.Time), item.Text)
			}
			return nil
		},
	}
}

func newHistoryResetCmd(deps *Dependencies) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all history and start from the seed conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), deps.Out, "Delete all conversation history? [y/N]: ") {
				_, _ = fmt.Fprintln(deps.Out, "Cancelled.")
				return nil
			}

			store, err := openStore(deps)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset history: %w", err)
			}
			_, _ = fmt.Fprintln(deps.Out, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ History reset"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newHistoryExportCmd(deps *Dependencies) *cobra.Command {
	var (
		format  string
		output  string
		persona bool
	)

	cmd := &cobra.Command{
		Use:   "export <conversation>",
		Short: "Export a conversation as markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := loadConversations(cmd.Context(), deps)
			if err != nil {
				return err
			}
			id, err := history.Resolve(convs, args[0])
			if err != nil {
				return err
			}

			var conv *models.Conversation
			for _, c := range convs {
				if c.ID == id {
					conv = c
					break
				}
			}

			data, err := history.Export(conv, history.ExportOptions{
				Format:         history.ExportFormat(strings.ToLower(format)),
				IncludePersona: persona,
			})
			if err != nil {
				return err
			}

			if output == "" {
				_, err = deps.Out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			_, _ = fmt.Fprintf(deps.Out, "Exported %s to %s\n", conv.Name, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(history.ExportFormatMarkdown), "Export format (markdown, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&persona, "persona", false, "Include the contact persona")
	return cmd
}

// openStore opens the configured backend wrapped in a history store.
func openStore(deps *Dependencies) (*history.Store, error) {
	cfg, err := deps.config()
	if err != nil {
		return nil, err
	}
	backend, err := deps.OpenBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}
	logger := deps.newLogger(cfg, deps.Err, slog.LevelWarn)
	return history.NewStore(backend, config.SeedConversations, history.WithLogger(logger)), nil
}

// loadConversations returns the stored conversations, or the seed when
// nothing usable is stored.
func loadConversations(ctx context.Context, deps *Dependencies) ([]*models.Conversation, error) {
	store, err := openStore(deps)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	convs, _ := store.Load(ctx)
	return convs, nil
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(w, prompt)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
