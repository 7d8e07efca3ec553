// Package chat implements the conversation synchronization engine: the
// registry, the message exchange cycle, the typing indicator and the
// action bridge to host applications.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/history"
	"github.com/diogo/pulsechat/internal/models"
)

// DefaultTypingDuration is how long a trigger-typing pulse lasts when the
// action names no duration.
const DefaultTypingDuration = 2 * time.Second

// Completer turns a conversation history into a reply.
type Completer interface {
	Complete(ctx context.Context, req *models.CompletionRequest) (string, error)
}

// Persister loads and saves the full conversation set.
type Persister interface {
	Load(ctx context.Context) ([]*models.Conversation, history.Origin)
	Save(ctx context.Context, convs []*models.Conversation)
}

// Engine owns the conversation state for one session. All entry points are
// serialized; the completion round trip of each exchange runs in its own
// goroutine and reports back through the same lock.
type Engine struct {
	mu        sync.Mutex
	registry  *Registry
	store     Persister
	completer Completer
	presence  *Presence
	bridge    *Bridge
	logger    *slog.Logger
	now       func() time.Time

	requestTimeout time.Duration
	typingDuration time.Duration

	origin history.Origin
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// Option configures an Engine
type Option func(*Engine)

// WithCompleter sets the completion transport. Without one every exchange
// ends with the fallback reply.
func WithCompleter(c Completer) Option {
	return func(e *Engine) {
		e.completer = c
	}
}

// WithPersister sets the snapshot store
func WithPersister(p Persister) Option {
	return func(e *Engine) {
		e.store = p
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for message timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRequestTimeout bounds each completion call. Zero relies on the transport.
func WithRequestTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.requestTimeout = d
	}
}

// WithTypingDuration sets the default trigger-typing pulse length
func WithTypingDuration(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.typingDuration = d
		}
	}
}

// New creates an engine and loads the conversation set. Without a persister
// the engine keeps the seed conversations in memory only.
func New(ctx context.Context, opts ...Option) *Engine {
	e := &Engine{
		logger:         slog.Default(),
		now:            time.Now,
		typingDuration: DefaultTypingDuration,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")

	if e.store == nil {
		e.store = history.NewStore(history.NewMemoryBackend(), config.SeedConversations, history.WithLogger(e.logger))
	}

	e.bridge = NewBridge(e.logger)
	e.presence = NewPresence(func(state TypingState, typing bool) {
		e.bridge.Publish(Event{
			Kind:           EventTyping,
			ConversationID: state.ConversationID,
			ContactName:    state.Name,
			Typing:         typing,
		})
	})
	e.ctx, e.cancel = context.WithCancel(context.WithoutCancel(ctx))

	convs, origin := e.store.Load(ctx)
	e.registry = NewRegistry(convs)
	e.origin = origin

	e.logger.Debug("engine started",
		"conversations", e.registry.Len(),
		"origin", origin.String())
	return e
}

// Origin tells whether the conversations came from a snapshot or the seed.
func (e *Engine) Origin() history.Origin {
	return e.origin
}

// Subscribe registers for engine events until ctx is cancelled or the
// engine is closed.
func (e *Engine) Subscribe(ctx context.Context) (<-chan Event, string) {
	return e.bridge.Subscribe(ctx)
}

// Unsubscribe removes a subscription created by Subscribe.
func (e *Engine) Unsubscribe(subID string) {
	e.bridge.Unsubscribe(subID)
}

// Conversations returns a deep copy of the conversation set.
func (e *Engine) Conversations() []*models.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Snapshot()
}

// Conversation returns a copy of one conversation.
func (e *Engine) Conversation(id string) (*models.Conversation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.registry.FindByID(id)
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// ActiveID returns the selected conversation id, or "".
func (e *Engine) ActiveID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.ActiveID()
}

// Typing returns the typing indicator state, if shown.
func (e *Engine) Typing() (TypingState, bool) {
	return e.presence.Current()
}

// Select makes id the displayed conversation. The typing indicator belongs
// to the displayed thread, so it is cleared. Unknown ids are ignored.
func (e *Engine) Select(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	if _, ok := e.registry.FindByID(id); !ok {
		e.logger.Debug("ignoring selection of unknown conversation", "conversation_id", id)
		return false
	}
	e.presence.Stop()
	e.registry.SetActive(id)
	e.bridge.Publish(Event{Kind: EventChanged, ConversationID: id, Scroll: true})
	return true
}

// Deselect clears the selection.
func (e *Engine) Deselect() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.presence.Stop()
	e.registry.SetActive("")
	e.bridge.Publish(Event{Kind: EventChanged})
}

// Submit appends text as a self message to the active conversation and
// starts an exchange cycle. Blank text, no selection or a closed engine
// make it a no-op that reports false.
func (e *Engine) Submit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	conv, ok := e.registry.Active()
	if !ok {
		return false
	}

	e.registry.AppendMessage(conv.ID, models.Message{
		Sender: models.SenderSelf,
		Text:   text,
		Time:   e.timestamp(),
	})
	e.persistLocked()
	e.bridge.Publish(Event{Kind: EventChanged, ConversationID: conv.ID, Scroll: true})
	e.bridge.Publish(Event{
		Kind:           EventMessageSent,
		ConversationID: conv.ID,
		ContactName:    conv.Name,
		Sender:         models.RoleUser,
		Text:           text,
	})

	e.presence.Start(conv)

	req := &models.CompletionRequest{Messages: conv.Turns(), Persona: conv.Persona}
	e.wg.Add(1)
	go e.exchange(conv.ID, req)
	return true
}

// InjectAction applies a host action. It reports whether the action had
// any effect; unknown conversations and types are ignored.
func (e *Engine) InjectAction(action Action) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	conv, ok := e.registry.FindByID(action.Payload.ConversationID)
	if !ok {
		e.logger.Debug("ignoring action for unknown conversation",
			"type", action.Type,
			"conversation_id", action.Payload.ConversationID)
		return false
	}

	switch action.Type {
	case ActionAddMessage:
		ts := action.Payload.Time
		if ts == "" {
			ts = e.timestamp()
		}
		e.registry.AppendMessage(conv.ID, models.Message{
			Sender: models.SenderOther,
			Text:   action.Payload.Text,
			Time:   ts,
		})
		e.persistLocked()
		e.bridge.Publish(Event{
			Kind:           EventChanged,
			ConversationID: conv.ID,
			Scroll:         e.registry.IsActive(conv.ID),
		})
		return true

	case ActionTriggerTyping:
		if !e.registry.IsActive(conv.ID) {
			return false
		}
		e.presence.StartFor(conv, action.DurationOr(e.typingDuration))
		return true

	default:
		e.logger.Debug("ignoring unknown action", "type", action.Type)
		return false
	}
}

// Wait blocks until every started exchange has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close tears the engine down: outstanding exchanges are abandoned and every
// subscription is released at once. Pending results are not written.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.cancel()
	e.presence.Stop()
	e.bridge.Close()
	e.logger.Debug("engine closed")
}

func (e *Engine) timestamp() string {
	return e.now().Format(models.TimeLayout)
}

// persistLocked saves the registry's current state. Callers hold e.mu.
func (e *Engine) persistLocked() {
	e.store.Save(e.ctx, e.registry.Snapshot())
}
