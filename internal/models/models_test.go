package models

import "testing"

func TestSenderRole(t *testing.T) {
	tests := []struct {
		sender Sender
		want   string
	}{
		{SenderSelf, RoleUser},
		{SenderOther, RoleAssistant},
	}
	for _, tt := range tests {
		if got := tt.sender.Role(); got != tt.want {
			t.Errorf("%s.Role() = %s, want %s", tt.sender, got, tt.want)
		}
	}
	if Sender("me").Valid() {
		t.Error("unknown sender should not be valid")
	}
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", " ", "\t\n  "} {
		if !IsBlank(s) {
			t.Errorf("IsBlank(%q) = false, want true", s)
		}
	}
	if IsBlank(" x ") {
		t.Error("IsBlank(\" x \") = true, want false")
	}
}

func TestConversationClone(t *testing.T) {
	orig := &Conversation{
		ID:       "a",
		Messages: []Message{{Sender: SenderSelf, Text: "hi", Time: "9:00 AM"}},
	}
	cp := orig.Clone()
	cp.Messages[0].Text = "changed"
	cp.Messages = append(cp.Messages, Message{Sender: SenderOther, Text: "x"})

	if orig.Messages[0].Text != "hi" {
		t.Errorf("clone shares message storage: %q", orig.Messages[0].Text)
	}
	if len(orig.Messages) != 1 {
		t.Errorf("len(orig.Messages) = %d, want 1", len(orig.Messages))
	}
}

func TestConversationTurns(t *testing.T) {
	conv := &Conversation{Messages: []Message{
		{Sender: SenderOther, Text: "morning"},
		{Sender: SenderSelf, Text: "hey"},
	}}
	turns := conv.Turns()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[0].Role != RoleAssistant || turns[0].Content != "morning" {
		t.Errorf("turns[0] = %+v", turns[0])
	}
	if turns[1].Role != RoleUser || turns[1].Content != "hey" {
		t.Errorf("turns[1] = %+v", turns[1])
	}
}

func TestLastMessage(t *testing.T) {
	var empty Conversation
	if _, ok := empty.LastMessage(); ok {
		t.Error("LastMessage on empty conversation should report !ok")
	}
	conv := &Conversation{Messages: []Message{{Text: "a"}, {Text: "b"}}}
	if m, ok := conv.LastMessage(); !ok || m.Text != "b" {
		t.Errorf("LastMessage() = %+v, %v", m, ok)
	}
}
