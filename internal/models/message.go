package models

import "strings"

// Sender identifies who authored a message.
type Sender string

const (
	SenderSelf  Sender = "self"
	SenderOther Sender = "other"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderSelf || s == SenderOther
}

// Role maps a sender to the completion API role.
func (s Sender) Role() string {
	if s == SenderSelf {
		return RoleUser
	}
	return RoleAssistant
}

// Completion API roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a conversation. Messages are append-only.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
	Time   string `json:"time"` // formatted once at creation
}

// IsBlank reports whether text has no content after trimming.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Turn is one role-tagged entry of a completion request.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the body sent to the chat endpoint.
type CompletionRequest struct {
	Messages []Turn `json:"messages"`
	Persona  string `json:"persona"`
}

// CompletionResponse is the body returned by the chat endpoint.
type CompletionResponse struct {
	Response string `json:"response"`
}
