package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/atotto/clipboard"

	"github.com/diogo/pulsechat/internal/api"
	"github.com/diogo/pulsechat/internal/chat"
	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/history"
	"github.com/diogo/pulsechat/internal/tui"
)

// Publisher pushes a message to the broadcast relay. *api.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, message any) (int, error)
}

// TUIRunner runs the interactive chat on an engine.
type TUIRunner func(ctx context.Context, engine *chat.Engine, opts ...tui.Option) error

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Out io.Writer
	Err io.Writer

	// LoadConfig reads the user configuration.
	LoadConfig func() (config.Config, error)
	// OpenBackend opens the storage backend named by the configuration.
	OpenBackend func(cfg config.StorageConfig) (history.Backend, error)
	// NewClient creates the client for the chat server endpoints.
	NewClient func(cfg config.Config, logger *slog.Logger) (*api.Client, error)

	// Completer, when set, answers exchanges instead of the chat server.
	Completer chat.Completer
	// Publisher, when set, is used by inject instead of the chat server.
	Publisher Publisher

	RunTUI    TUIRunner
	Clipboard func(text string) error
	IsTTY     func() bool
	OpenLog   func() (io.WriteCloser, error)

	flags globalFlags
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	verbose bool
	storage string
	apiBase string
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Out:         os.Stdout,
		Err:         os.Stderr,
		LoadConfig:  config.LoadConfig,
		OpenBackend: openBackend,
		NewClient:   newAPIClient,
		RunTUI:      tui.RunChat,
		Clipboard:   clipboard.WriteAll,
		IsTTY:       isStdoutTTY,
		OpenLog:     openLogFile,
	}
}

// config loads the configuration and applies the global flags on top.
func (d *Dependencies) config() (config.Config, error) {
	cfg, err := d.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if d.flags.verbose {
		cfg.Verbose = true
	}
	if d.flags.storage != "" {
		cfg.Storage.Driver = d.flags.storage
	}
	if d.flags.apiBase != "" {
		cfg.APIBase = d.flags.apiBase
	}
	return cfg, nil
}

// newLogger builds a text logger on w. level applies unless verbose
// logging is on, which always means debug.
func (d *Dependencies) newLogger(cfg config.Config, w io.Writer, level slog.Level) *slog.Logger {
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func openBackend(cfg config.StorageConfig) (history.Backend, error) {
	return history.NewBackend(history.Driver(cfg.Driver),
		history.WithDir(cfg.Dir),
		history.WithSQLitePath(cfg.SQLitePath),
		history.WithRedisURL(cfg.RedisURL),
	)
}

func newAPIClient(cfg config.Config, logger *slog.Logger) (*api.Client, error) {
	return api.NewClient(
		api.WithBaseURL(cfg.APIBase),
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(logger),
	)
}

// openLogFile opens the client log, which keeps log lines off the TUI.
func openLogFile() (io.WriteCloser, error) {
	if _, err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	path, err := config.GetLogPath()
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

// session is an engine together with the resources it owns.
type session struct {
	engine *chat.Engine
	store  *history.Store
	client *api.Client
	logger *slog.Logger

	forwardDone chan struct{}
}

// startSession opens storage, creates the client and starts an engine.
// With log_events set, host events are forwarded to the event log.
func (d *Dependencies) startSession(ctx context.Context, cfg config.Config, logger *slog.Logger) (*session, error) {
	backend, err := d.OpenBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}
	store := history.NewStore(backend, config.SeedConversations, history.WithLogger(logger))

	client, err := d.NewClient(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var completer chat.Completer = client
	if d.Completer != nil {
		completer = d.Completer
	}

	engine := chat.New(ctx,
		chat.WithPersister(store),
		chat.WithCompleter(completer),
		chat.WithLogger(logger),
		chat.WithRequestTimeout(cfg.RequestTimeout()),
		chat.WithTypingDuration(cfg.TypingDuration()),
	)

	s := &session{engine: engine, store: store, client: client, logger: logger}
	if cfg.LogEvents {
		events, _ := engine.Subscribe(context.WithoutCancel(ctx))
		s.forwardDone = make(chan struct{})
		go func() {
			defer close(s.forwardDone)
			chat.NewEventForwarder(client, logger).Run(context.WithoutCancel(ctx), events)
		}()
	}
	return s, nil
}

// Close tears the engine down and releases storage and transport.
func (s *session) Close() {
	s.engine.Close()
	if s.forwardDone != nil {
		select {
		case <-s.forwardDone:
		case <-time.After(3 * time.Second):
			s.logger.Warn("event forwarder did not finish")
		}
	}
	s.client.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close storage", "error", err)
	}
}
