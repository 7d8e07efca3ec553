package render

import (
	"github.com/diogo/pulsechat/internal/chat"
	"github.com/diogo/pulsechat/internal/models"
)

// Fixed labels of the thread view.
const (
	SelfAuthor      = "You"
	SelfAvatar      = "Me"
	SelfPrefix      = "You: "
	NoSelectionName = "Select a conversation"
	NoSelectionHint = "Choose a conversation from the sidebar to start chatting."
)

// ListItem is one row of the conversation list.
type ListItem struct {
	ID          string
	Name        string
	AvatarText  string
	AvatarStyle string
	Preview     string
	Time        string
	Active      bool
}

// ThreadItem is one message of the active thread.
type ThreadItem struct {
	Author      string
	AvatarText  string
	AvatarStyle string
	Text        string
	Time        string
	Self        bool
}

// Thread is the active-thread projection. Selected is false when no
// conversation is displayed; Hint then explains what to do.
type Thread struct {
	Selected bool
	ID       string
	Name     string
	Role     string
	Items    []ThreadItem
	// Typing is the indicator line, or "" when nobody is typing here.
	Typing string
	Hint   string
}

// ConversationList projects every conversation to a list row. The preview is
// the last message, prefixed with "You: " for own messages and cut to
// models.PreviewWidth runes. Empty conversations show the sentinel text.
func ConversationList(convs []*models.Conversation, activeID string) []ListItem {
	items := make([]ListItem, 0, len(convs))
	for _, c := range convs {
		last := chat.LastMessage(c)
		preview := last.Text
		if last.Sender == models.SenderSelf {
			preview = SelfPrefix + preview
		}
		items = append(items, ListItem{
			ID:          c.ID,
			Name:        c.Name,
			AvatarText:  c.Avatar.Text,
			AvatarStyle: c.Avatar.Style,
			Preview:     truncateRunes(preview, models.PreviewWidth),
			Time:        last.Time,
			Active:      c.ID == activeID,
		})
	}
	return items
}

// ActiveThread projects the displayed conversation. typing is the current
// indicator, if any; it is shown only when it belongs to this thread.
func ActiveThread(convs []*models.Conversation, activeID string, typing *chat.TypingState) Thread {
	if activeID == "" {
		return Thread{Name: NoSelectionName, Hint: NoSelectionHint}
	}

	var conv *models.Conversation
	for _, c := range convs {
		if c.ID == activeID {
			conv = c
			break
		}
	}
	if conv == nil {
		return Thread{Name: NoSelectionName, Hint: NoSelectionHint}
	}

	t := Thread{
		Selected: true,
		ID:       conv.ID,
		Name:     conv.Name,
		Role:     conv.Role,
		Items:    make([]ThreadItem, 0, len(conv.Messages)),
	}
	for _, m := range conv.Messages {
		item := ThreadItem{
			Author:      conv.Name,
			AvatarText:  conv.Avatar.Text,
			AvatarStyle: conv.Avatar.Style,
			Text:        m.Text,
			Time:        m.Time,
		}
		if m.Sender == models.SenderSelf {
			item.Author = SelfAuthor
			item.AvatarText = SelfAvatar
			item.AvatarStyle = ""
			item.Self = true
		}
		t.Items = append(t.Items, item)
	}
	if typing != nil && typing.ConversationID == conv.ID {
		t.Typing = typing.Name + " is typing"
	}
	return t
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
