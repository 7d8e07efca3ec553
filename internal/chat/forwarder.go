package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/pulsechat/internal/api"
)

const (
	defaultForwardBatch    = 20
	defaultForwardInterval = time.Second
)

// LogSink accepts event-log entries. *api.Client satisfies it.
type LogSink interface {
	Log(ctx context.Context, entries []api.LogEntry) (int, error)
}

// EventForwarder posts host events (message-sent, message-received) to an
// event-log sink in small batches. Delivery is fire-and-forget: failures are
// logged and the batch is dropped.
type EventForwarder struct {
	sink     LogSink
	logger   *slog.Logger
	now      func() time.Time
	batch    int
	interval time.Duration
}

// NewEventForwarder creates a forwarder. Pass nil logger for default.
func NewEventForwarder(sink LogSink, logger *slog.Logger) *EventForwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventForwarder{
		sink:     sink,
		logger:   logger.With("component", "forwarder"),
		now:      time.Now,
		batch:    defaultForwardBatch,
		interval: defaultForwardInterval,
	}
}

// Run consumes events until the channel closes or ctx ends, flushing what
// is buffered on the way out.
func (f *EventForwarder) Run(ctx context.Context, events <-chan Event) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	var pending []api.LogEntry
	flush := func(ctx context.Context) {
		if len(pending) == 0 {
			return
		}
		n, err := f.sink.Log(ctx, pending)
		if err != nil {
			f.logger.Warn("failed to forward events", "count", len(pending), "error", err)
		} else {
			f.logger.Debug("forwarded events", "count", n)
		}
		pending = nil
	}

	for {
		select {
		case <-ctx.Done():
			// Best effort with a short, detached deadline.
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			flush(flushCtx)
			cancel()
			return

		case ev, ok := <-events:
			if !ok {
				flush(ctx)
				return
			}
			if !ev.IsHostEvent() {
				continue
			}
			pending = append(pending, f.entry(ev))
			if len(pending) >= f.batch {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}

func (f *EventForwarder) entry(ev Event) api.LogEntry {
	return api.LogEntry{
		ID:             uuid.New().String(),
		Event:          ev.Kind.HostName(),
		Timestamp:      f.now().UTC().Format(time.RFC3339),
		ConversationID: ev.ConversationID,
		Name:           ev.ContactName,
		Sender:         ev.Sender,
		Text:           ev.Text,
	}
}
