package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// EventKind names an outbound engine event.
type EventKind string

const (
	// EventMessageSent follows an optimistic self append.
	EventMessageSent EventKind = "message-sent"
	// EventMessageReceived follows a successful reply append.
	EventMessageReceived EventKind = "message-received"
	// EventChanged means the conversation set or selection changed and
	// views should re-render.
	EventChanged EventKind = "changed"
	// EventTyping means the typing indicator appeared or went away.
	EventTyping EventKind = "typing"
)

// HostName returns the event name used by host applications, e.g.
// "chat:message-sent".
func (k EventKind) HostName() string {
	return "chat:" + string(k)
}

// Event is published to every bridge subscriber.
type Event struct {
	Kind           EventKind
	ConversationID string
	ContactName    string
	// Sender is "user" for sent messages and the contact name for received ones.
	Sender string
	Text   string
	// Scroll asks views showing ConversationID to scroll to the newest message.
	Scroll bool
	// Typing is the indicator state for EventTyping.
	Typing bool
}

// IsHostEvent reports whether the event is meant for host applications.
func (e Event) IsHostEvent() bool {
	return e.Kind == EventMessageSent || e.Kind == EventMessageReceived
}

// Bridge fans engine events out to subscribers. Publishing never blocks:
// events are dropped for subscribers whose channels are full, and having no
// subscribers is not an error.
type Bridge struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	closed      bool
	done        chan struct{}
	logger      *slog.Logger
}

// NewBridge creates a bridge. Pass nil logger for default.
func NewBridge(logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		subscribers: make(map[string]chan Event),
		done:        make(chan struct{}),
		logger:      logger.With("component", "bridge"),
	}
}

// Subscribe registers a subscriber and returns its channel and id. The
// subscription is removed when ctx is cancelled or the bridge is closed,
// whichever comes first. Subscribing to a closed bridge returns an already
// closed channel.
func (b *Bridge) Subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subscribers[subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		select {
		case <-ctx.Done():
			b.Unsubscribe(subID)
		case <-b.done:
		}
	}()

	return ch, subID
}

// Publish sends event to all subscribers.
func (b *Bridge) Publish(event Event) {
	// Sends are non-blocking, so holding the read lock keeps Close from
	// closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropped event for slow subscriber",
				"sub_id", id,
				"kind", event.Kind)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bridge) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// Count returns the number of live subscribers.
func (b *Bridge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel at once. Later publishes are dropped.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}

	b.logger.Debug("bridge closed")
}
