// Package commands provides CLI commands for pulsechat.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/pulsechat/internal/config"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}

	root := &cobra.Command{
		Use:   "pulsechat",
		Short: "Multi-conversation workplace chat in the terminal",
		Long: `pulsechat keeps a handful of workplace conversations in sync with a
chat server: every message you send is answered in character by the
contact, conversations persist between runs, and external tools can push
messages or typing pulses into a running chat through the relay.

Examples:
  pulsechat chat                         Open the chat TUI
  pulsechat chat sarah                   Open the chat with Sarah selected
  pulsechat send alex "Any luck?"        Send one message and print the reply
  pulsechat inject jordan "Deck is up"   Push a message into running chats
  pulsechat history list                 List conversations
  pulsechat serve                        Run the chat server`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintf(deps.Out, "pulsechat %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVar(&deps.flags.verbose, "verbose", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&deps.flags.storage, "storage", "",
		"Storage driver ("+strings.Join(config.AvailableDrivers(), ", ")+")")
	root.PersistentFlags().StringVar(&deps.flags.apiBase, "api-base", "", "Chat server base URL")
	root.Flags().BoolP("version", "v", false, "Show version and exit")

	root.SetOut(deps.Out)
	root.SetErr(deps.Err)

	root.AddCommand(NewChatCmd(deps))
	root.AddCommand(NewSendCmd(deps))
	root.AddCommand(NewInjectCmd(deps))
	root.AddCommand(NewHistoryCmd(deps))
	root.AddCommand(NewServeCmd(deps))
	root.AddCommand(NewConfigCmd(deps))

	return root
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}
