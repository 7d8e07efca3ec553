package chat

import (
	"testing"

	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/models"
)

func TestRegistry_FindAndAppend(t *testing.T) {
	r := NewRegistry(config.SeedConversations())

	if _, ok := r.FindByID("nobody"); ok {
		t.Error("FindByID(nobody) should fail")
	}
	if r.AppendMessage("nobody", models.Message{Sender: models.SenderOther, Text: "x"}) {
		t.Error("AppendMessage to an unknown id should report false")
	}

	for i, text := range []string{"one", "two", "three"} {
		if !r.AppendMessage("alex-rivera", models.Message{Sender: models.SenderSelf, Text: text}) {
			t.Fatalf("append %d failed", i)
		}
	}
	conv, _ := r.FindByID("alex-rivera")
	if len(conv.Messages) != 3 {
		t.Fatalf("len = %d, want 3", len(conv.Messages))
	}
	for i, want := range []string{"one", "two", "three"} {
		if conv.Messages[i].Text != want {
			t.Errorf("message %d = %q, want %q", i, conv.Messages[i].Text, want)
		}
	}
}

func TestRegistry_IgnoresDuplicatesAndNil(t *testing.T) {
	r := NewRegistry([]*models.Conversation{
		{ID: "a", Name: "First"},
		nil,
		{ID: ""},
		{ID: "a", Name: "Second"},
	})
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	c, _ := r.FindByID("a")
	if c.Name != "First" || c.Messages == nil {
		t.Errorf("unexpected conversation %+v", c)
	}
}

func TestRegistry_SetActive(t *testing.T) {
	r := NewRegistry(config.SeedConversations())

	if _, ok := r.Active(); ok {
		t.Error("nothing should be active initially")
	}
	if !r.SetActive("jordan-kim") || r.ActiveID() != "jordan-kim" {
		t.Error("SetActive(jordan-kim) failed")
	}
	if r.SetActive("nobody") {
		t.Error("SetActive(unknown) should fail")
	}
	if r.ActiveID() != "jordan-kim" {
		t.Error("unknown id must not change the selection")
	}
	if !r.IsActive("jordan-kim") || r.IsActive("") {
		t.Error("IsActive mismatch")
	}
	r.SetActive("")
	if _, ok := r.Active(); ok {
		t.Error("selection should be cleared")
	}
}

func TestRegistry_SnapshotIsDetached(t *testing.T) {
	r := NewRegistry(config.SeedConversations())
	snap := r.Snapshot()
	snap[0].Messages = append(snap[0].Messages, models.Message{Text: "x"})

	c, _ := r.FindByID(snap[0].ID)
	if len(c.Messages) == len(snap[0].Messages) {
		t.Error("Snapshot must deep copy")
	}
}

func TestLastMessage(t *testing.T) {
	empty := &models.Conversation{ID: "alex-rivera"}
	got := LastMessage(empty)
	if got.Text != "No messages yet" || got.Time != "" || got.Sender != "" {
		t.Errorf("sentinel = %+v", got)
	}

	conv := &models.Conversation{Messages: []models.Message{
		{Sender: models.SenderOther, Text: "first", Time: "9:00 AM"},
		{Sender: models.SenderSelf, Text: "last", Time: "9:05 AM"},
	}}
	if got := LastMessage(conv); got.Text != "last" || got.Sender != models.SenderSelf {
		t.Errorf("LastMessage() = %+v", got)
	}
}
