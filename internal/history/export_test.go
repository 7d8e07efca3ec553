package history

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/diogo/pulsechat/internal/models"
)

func sampleConversation() *models.Conversation {
	return &models.Conversation{
		ID:      "sarah-chen",
		Name:    "Sarah Chen",
		Role:    "Engineering Manager",
		Persona: "You are Sarah.",
		Messages: []models.Message{
			{Sender: models.SenderOther, Text: "Morning!", Time: "8:30 AM"},
			{Sender: models.SenderSelf, Text: "Hi there", Time: "8:35 AM"},
		},
	}
}

func TestExportToMarkdown(t *testing.T) {
	md := ExportToMarkdown(sampleConversation(), DefaultExportOptions())

	for _, want := range []string{
		"# Sarah Chen",
		"**Role:** Engineering Manager",
		"**Messages:** 2",
		"## Sarah Chen (8:30 AM)",
		"## You (8:35 AM)",
		"Hi there",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "You are Sarah.") {
		t.Error("persona should be omitted by default")
	}
}

func TestExportToMarkdown_Persona(t *testing.T) {
	md := ExportToMarkdown(sampleConversation(), ExportOptions{IncludePersona: true})
	if !strings.Contains(md, "You are Sarah.") {
		t.Error("persona should be included when requested")
	}
}

func TestExportToMarkdown_Empty(t *testing.T) {
	conv := &models.Conversation{ID: "alex-rivera", Name: "Alex Rivera"}
	md := ExportToMarkdown(conv, DefaultExportOptions())
	if !strings.Contains(md, models.NoMessagesText) {
		t.Error("empty conversation should mention that there are no messages")
	}
}

func TestExportToJSON(t *testing.T) {
	data, err := ExportToJSON(sampleConversation(), DefaultExportOptions())
	if err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	var out models.Conversation
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.ID != "sarah-chen" || len(out.Messages) != 2 {
		t.Errorf("unexpected export: %+v", out)
	}
	if out.Persona != "" {
		t.Error("persona should be stripped by default")
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	if _, err := Export(sampleConversation(), ExportOptions{Format: "yaml"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
