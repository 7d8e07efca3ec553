package models

// Avatar is the short text and style tag shown next to a contact.
type Avatar struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

// Conversation is a named thread with its own history and persona.
type Conversation struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Avatar   Avatar    `json:"avatar"`
	Persona  string    `json:"persona"`
	Messages []Message `json:"messages"`
}

// Clone returns a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}

// LastMessage returns the newest message, or ok=false when there is none.
func (c *Conversation) LastMessage() (Message, bool) {
	if c == nil || len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Turns converts the whole history into completion turns, oldest first.
func (c *Conversation) Turns() []Turn {
	turns := make([]Turn, 0, len(c.Messages))
	for _, m := range c.Messages {
		turns = append(turns, Turn{Role: m.Sender.Role(), Content: m.Text})
	}
	return turns
}

// CloneAll deep-copies a conversation slice.
func CloneAll(convs []*Conversation) []*Conversation {
	out := make([]*Conversation, 0, len(convs))
	for _, c := range convs {
		out = append(out, c.Clone())
	}
	return out
}
