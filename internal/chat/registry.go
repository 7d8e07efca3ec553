package chat

import (
	"github.com/diogo/pulsechat/internal/models"
)

// Registry is the in-memory conversation set plus the selection state.
// It is not safe for concurrent use; Engine serializes access.
type Registry struct {
	convs  []*models.Conversation
	index  map[string]*models.Conversation
	active string
}

// NewRegistry takes ownership of convs. Later duplicates of an id are ignored.
func NewRegistry(convs []*models.Conversation) *Registry {
	r := &Registry{index: make(map[string]*models.Conversation, len(convs))}
	for _, c := range convs {
		if c == nil || c.ID == "" {
			continue
		}
		if _, dup := r.index[c.ID]; dup {
			continue
		}
		if c.Messages == nil {
			c.Messages = []models.Message{}
		}
		r.convs = append(r.convs, c)
		r.index[c.ID] = c
	}
	return r
}

// FindByID returns the conversation with the given id.
func (r *Registry) FindByID(id string) (*models.Conversation, bool) {
	c, ok := r.index[id]
	return c, ok
}

// AppendMessage pushes msg onto the conversation's history. Unknown ids are
// a no-op and report false.
func (r *Registry) AppendMessage(id string, msg models.Message) bool {
	c, ok := r.index[id]
	if !ok {
		return false
	}
	c.Messages = append(c.Messages, msg)
	return true
}

// SetActive selects a conversation. An empty id clears the selection; an
// unknown id leaves it unchanged and reports false.
func (r *Registry) SetActive(id string) bool {
	if id == "" {
		r.active = ""
		return true
	}
	if _, ok := r.index[id]; !ok {
		return false
	}
	r.active = id
	return true
}

// ActiveID returns the selected conversation id, or "" when none is selected.
func (r *Registry) ActiveID() string {
	return r.active
}

// Active returns the selected conversation.
func (r *Registry) Active() (*models.Conversation, bool) {
	if r.active == "" {
		return nil, false
	}
	return r.FindByID(r.active)
}

// IsActive reports whether id is the selected conversation.
func (r *Registry) IsActive(id string) bool {
	return id != "" && r.active == id
}

// Len returns the number of conversations.
func (r *Registry) Len() int {
	return len(r.convs)
}

// Snapshot returns a deep copy of every conversation in registry order.
func (r *Registry) Snapshot() []*models.Conversation {
	return models.CloneAll(r.convs)
}

// LastMessage returns the newest message of conv, or the "No messages yet"
// sentinel with an empty time when the history is empty. The sentinel has no
// sender and must not be treated as a real message.
func LastMessage(conv *models.Conversation) models.Message {
	if m, ok := conv.LastMessage(); ok {
		return m
	}
	return models.Message{Text: models.NoMessagesText, Time: ""}
}
