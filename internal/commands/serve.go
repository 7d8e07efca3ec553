package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/diogo/pulsechat/internal/server"
)

// serveFlags are the serve command's overrides of the server config.
type serveFlags struct {
	port        int
	dir         string
	production  bool
	noWebSocket bool
	envFile     string
}

// NewServeCmd creates the serve command
func NewServeCmd(deps *Dependencies) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat server",
		Long: `Run the collaborator server: the completion endpoint, the event log sink,
the websocket relay and, in production mode, the built web client.

Without OPENAI_API_KEY the completion endpoint answers with canned replies.
Settings are read from the config file, then the environment (a .env file
is loaded first), then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, deps, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to listen on (default from config or PORT)")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "Directory with the built web client")
	cmd.Flags().BoolVar(&flags.production, "production", false, "Serve static files from --dir")
	cmd.Flags().BoolVar(&flags.noWebSocket, "no-websocket", false, "Disable the websocket relay")
	cmd.Flags().StringVar(&flags.envFile, "env-file", ".env", "Environment file to load")
	return cmd
}

func runServe(cmd *cobra.Command, deps *Dependencies, flags serveFlags) error {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", flags.envFile, err)
		}
	}

	cfg, err := deps.config()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Addr = fmt.Sprintf(":%d", flags.port)
	}
	if cmd.Flags().Changed("dir") {
		cfg.Server.ServeDir = flags.dir
	}
	if cmd.Flags().Changed("production") {
		cfg.Server.Production = flags.production
	}
	if flags.noWebSocket {
		cfg.Server.WebSocket = false
	}

	logger := deps.newLogger(cfg, deps.Err, slog.LevelInfo)
	srv, err := server.New(cfg.Server, server.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
