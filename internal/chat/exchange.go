package chat

import (
	"context"
	"errors"

	apierrors "github.com/diogo/pulsechat/internal/errors"
	"github.com/diogo/pulsechat/internal/models"
)

var errNoCompleter = errors.New("no completion service configured")

// exchange runs one completion round trip for conversation id and records
// the outcome. The reply always lands in the conversation that asked for it;
// only presentation effects depend on what is displayed when it arrives.
func (e *Engine) exchange(id string, req *models.CompletionRequest) {
	defer e.wg.Done()

	reply, err := e.complete(req)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		e.logger.Debug("dropping late reply after close", "conversation_id", id)
		return
	}
	conv, ok := e.registry.FindByID(id)
	if !ok {
		return
	}

	failed := err != nil
	if failed {
		e.logger.Warn("completion failed, using fallback reply",
			"conversation_id", id,
			"status", apierrors.GetHTTPStatus(err),
			"error", err)
		reply = models.FallbackReply
	}

	// The indicator goes before the reply is rendered.
	e.presence.StopFor(id)

	e.registry.AppendMessage(id, models.Message{
		Sender: models.SenderOther,
		Text:   reply,
		Time:   e.timestamp(),
	})
	e.persistLocked()
	e.bridge.Publish(Event{
		Kind:           EventChanged,
		ConversationID: id,
		Scroll:         e.registry.IsActive(id),
	})

	if !failed {
		e.bridge.Publish(Event{
			Kind:           EventMessageReceived,
			ConversationID: id,
			ContactName:    conv.Name,
			Sender:         conv.Name,
			Text:           reply,
		})
	}
}

func (e *Engine) complete(req *models.CompletionRequest) (string, error) {
	if e.completer == nil {
		return "", errNoCompleter
	}

	ctx := e.ctx
	if e.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()
	}

	reply, err := e.completer.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if models.IsBlank(reply) {
		return "", apierrors.NewParseError("empty reply", "response")
	}
	return reply, nil
}
