package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType names an inbound host action.
type ActionType string

const (
	// ActionAddMessage appends an "other" message without a network call.
	ActionAddMessage ActionType = "add-message"
	// ActionTriggerTyping shows the typing indicator for a while.
	ActionTriggerTyping ActionType = "trigger-typing"
)

// ActionPayload carries the action arguments.
type ActionPayload struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text,omitempty"`
	// Time is a display time; empty means now.
	Time string `json:"time,omitempty"`
	// Duration is the typing pulse length in milliseconds; zero means default.
	Duration int `json:"duration,omitempty"`
}

// Action is an externally injected command.
type Action struct {
	Type    ActionType    `json:"type"`
	Payload ActionPayload `json:"payload"`
}

// DurationOr returns the requested typing duration, or def when none was given.
func (a Action) DurationOr(def time.Duration) time.Duration {
	if a.Payload.Duration > 0 {
		return time.Duration(a.Payload.Duration) * time.Millisecond
	}
	return def
}

// AddMessage builds an add-message action.
func AddMessage(conversationID, text string) Action {
	return Action{Type: ActionAddMessage, Payload: ActionPayload{ConversationID: conversationID, Text: text}}
}

// TriggerTyping builds a trigger-typing action.
func TriggerTyping(conversationID string, d time.Duration) Action {
	return Action{Type: ActionTriggerTyping, Payload: ActionPayload{ConversationID: conversationID, Duration: int(d / time.Millisecond)}}
}

// ParseAction decodes an action from JSON. Unknown types are an error.
func ParseAction(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("failed to parse action: %w", err)
	}
	switch a.Type {
	case ActionAddMessage, ActionTriggerTyping:
		return a, nil
	default:
		return Action{}, fmt.Errorf("unknown action type %q", a.Type)
	}
}
