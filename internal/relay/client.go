// Package relay subscribes to the broadcast relay and feeds pushed actions
// into a chat engine.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/websocket"

	"github.com/diogo/pulsechat/internal/chat"
)

const defaultReconnectDelay = 2 * time.Second

// Injector receives actions pushed through the relay. *chat.Engine
// satisfies it.
type Injector interface {
	InjectAction(action chat.Action) bool
}

// Client is a reconnecting relay subscriber.
type Client struct {
	url            string
	origin         string
	injector       Injector
	logger         *slog.Logger
	reconnectDelay time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReconnectDelay sets the pause between connection attempts
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.reconnectDelay = d
		}
	}
}

// WithOrigin overrides the Origin header sent on connect
func WithOrigin(origin string) Option {
	return func(c *Client) {
		c.origin = origin
	}
}

// NewClient creates a relay client for a ws:// or wss:// URL.
func NewClient(rawURL string, injector Injector, opts ...Option) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid relay URL %q: scheme must be ws or wss", rawURL)
	}
	if injector == nil {
		return nil, errors.New("relay client requires an injector")
	}

	origin := "http://" + u.Host
	if u.Scheme == "wss" {
		origin = "https://" + u.Host
	}

	c := &Client{
		url:            rawURL,
		origin:         origin,
		injector:       injector,
		logger:         slog.Default(),
		reconnectDelay: defaultReconnectDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "relay", "url", rawURL)
	return c, nil
}

// Run keeps a relay connection open until ctx is cancelled, reconnecting
// after failures. It always returns ctx's error.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("relay connection lost, reconnecting", "error", err, "delay", c.reconnectDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}
	}
}

// session runs one connection until it fails or ctx ends.
func (c *Client) session(ctx context.Context) error {
	cfg, err := websocket.NewConfig(c.url, c.origin)
	if err != nil {
		return fmt.Errorf("failed to configure relay connection: %w", err)
	}
	ws, err := cfg.DialContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	c.logger.Info("connected to relay")

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()
	defer ws.Close()

	for {
		var data []byte
		if err := websocket.Message.Receive(ws, &data); err != nil {
			return err
		}
		c.Handle(data)
	}
}

// Handle decodes one relay frame and injects the action it carries. It
// reports whether the engine applied an action.
func (c *Client) Handle(data []byte) bool {
	if !gjson.ValidBytes(data) {
		c.logger.Debug("ignoring non-JSON relay frame")
		return false
	}
	if t := gjson.GetBytes(data, "type").String(); t != "message" {
		c.logger.Debug("ignoring relay frame", "type", t)
		return false
	}

	message := gjson.GetBytes(data, "message")
	switch chat.ActionType(message.Get("type").String()) {
	case chat.ActionAddMessage, chat.ActionTriggerTyping:
	default:
		c.logger.Info("relay message", "message", message.Raw)
		return false
	}

	action, err := chat.ParseAction([]byte(message.Raw))
	if err != nil {
		c.logger.Warn("invalid relay action", "error", err)
		return false
	}
	applied := c.injector.InjectAction(action)
	c.logger.Debug("relay action",
		"type", action.Type,
		"conversation_id", action.Payload.ConversationID,
		"applied", applied)
	return applied
}
