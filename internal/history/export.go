package history

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diogo/pulsechat/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format         ExportFormat
	IncludePersona bool
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:         ExportFormatMarkdown,
		IncludePersona: false,
	}
}

// Export renders a conversation in the requested format
func Export(conv *models.Conversation, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportToJSON(conv, opts)
	case ExportFormatMarkdown, "":
		return []byte(ExportToMarkdown(conv, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}
}

// ExportToMarkdown exports a conversation to Markdown
func ExportToMarkdown(conv *models.Conversation, opts ExportOptions) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(conv.Name)
	sb.WriteString("\n\n")

	if conv.Role != "" {
		sb.WriteString("**Role:** ")
		sb.WriteString(conv.Role)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n", len(conv.Messages)))
	if opts.IncludePersona && conv.Persona != "" {
		sb.WriteString("\n<details>\n<summary>Persona</summary>\n\n")
		sb.WriteString(strings.TrimSpace(conv.Persona))
		sb.WriteString("\n\n</details>\n")
	}
	sb.WriteString("\n---\n\n")

	if len(conv.Messages) == 0 {
		sb.WriteString("_" + models.NoMessagesText + "_\n")
		return sb.String()
	}

	for i, msg := range conv.Messages {
		author := conv.Name
		if msg.Sender == models.SenderSelf {
			author = "You"
		}

		sb.WriteString("## ")
		sb.WriteString(author)
		if msg.Time != "" {
			sb.WriteString(" (")
			sb.WriteString(msg.Time)
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportToJSON exports a conversation to indented JSON
func ExportToJSON(conv *models.Conversation, opts ExportOptions) ([]byte, error) {
	out := conv.Clone()
	if !opts.IncludePersona {
		out.Persona = ""
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation: %w", err)
	}
	return data, nil
}
