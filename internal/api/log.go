package api

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/pulsechat/internal/errors"
	"github.com/diogo/pulsechat/internal/models"
)

// LogEntry is one event posted to the event-log sink.
type LogEntry struct {
	ID             string `json:"id"`
	Event          string `json:"event"`
	Timestamp      string `json:"timestamp"`
	ConversationID string `json:"conversationId"`
	Name           string `json:"name,omitempty"`
	Sender         string `json:"sender,omitempty"`
	Text           string `json:"text,omitempty"`
}

type logRequest struct {
	Entries []LogEntry `json:"entries"`
}

// Log posts entries to the event-log sink and returns how many the server
// accepted.
func (c *Client) Log(ctx context.Context, entries []LogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	body, err := c.postJSON(ctx, models.EndpointLog, "log events", logRequest{Entries: entries})
	if err != nil {
		return 0, err
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.Get("ok").Bool() {
		return 0, apierrors.NewParseError(fmt.Sprintf("log sink rejected %d entries", len(entries)), "ok")
	}
	return int(parsed.Get("count").Int()), nil
}
