// Package tui provides the terminal user interface for pulsechat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/pulsechat/internal/errors"
	"github.com/diogo/pulsechat/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary lipgloss.Color
	colorSelf    lipgloss.Color
	colorOther   lipgloss.Color
	colorTyping  lipgloss.Color
	colorError   lipgloss.Color

	colorText    lipgloss.Color
	colorTextDim lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	// Sidebar with the conversation list
	sidebarStyle        lipgloss.Style
	sidebarFocusedStyle lipgloss.Style
	sidebarTitleStyle   lipgloss.Style

	// Conversation list rows
	itemNameStyle    lipgloss.Style
	itemPreviewStyle lipgloss.Style
	itemTimeStyle    lipgloss.Style
	itemActiveStyle  lipgloss.Style
	itemCursorStyle  lipgloss.Style
	avatarBadgeStyle lipgloss.Style

	// Thread header
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style

	// Thread messages
	messagesAreaStyle lipgloss.Style
	selfLabelStyle    lipgloss.Style
	selfBubbleStyle   lipgloss.Style
	otherLabelStyle   lipgloss.Style
	otherBubbleStyle  lipgloss.Style
	timeStyle         lipgloss.Style

	// Typing indicator
	typingStyle lipgloss.Style

	// Input area
	inputPanelStyle        lipgloss.Style
	inputPanelFocusedStyle lipgloss.Style
	inputLabelStyle        lipgloss.Style

	// Status bar
	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	feedbackStyle   lipgloss.Style

	errorStyle lipgloss.Style
	hintStyle  lipgloss.Style
)

func init() {
	ApplyTheme(render.TokyoNightTheme)
}

// ApplyTheme refreshes all styles from a TUI theme
func ApplyTheme(theme render.TUITheme) {
	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSelf = theme.SelfBubble
	colorOther = theme.OtherBubble
	colorTyping = theme.Typing
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim

	rebuildStyles()
}

// rebuildStyles creates all lipgloss styles with current color values
func rebuildStyles() {
	sidebarStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	sidebarFocusedStyle = sidebarStyle.
		BorderForeground(colorPrimary)

	sidebarTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginBottom(1)

	itemNameStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	itemPreviewStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	itemTimeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	itemActiveStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	itemCursorStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	avatarBadgeStyle = lipgloss.NewStyle().
		Foreground(colorSurface).
		Background(colorOther).
		Bold(true).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	selfLabelStyle = lipgloss.NewStyle().
		Foreground(colorSelf).
		Bold(true).
		MarginLeft(4)

	selfBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSelf).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(4)

	otherLabelStyle = lipgloss.NewStyle().
		Foreground(colorOther).
		Bold(true)

	otherBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorOther).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	timeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	typingStyle = lipgloss.NewStyle().
		Foreground(colorTyping).
		Italic(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputPanelFocusedStyle = inputPanelStyle.
		BorderForeground(colorPrimary)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	feedbackStyle = lipgloss.NewStyle().
		Foreground(colorSelf).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)
}

// FormatError returns a styled error message with additional context
// extracted from structured errors.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := errors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	} else {
		switch {
		case errors.IsNetworkError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Check that the chat server is running and reachable"))
		case errors.IsTimeoutError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or raise request_timeout_seconds"))
		case errors.IsStorageError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Check the storage settings with 'pulsechat config show'"))
		}
	}

	return sb.String()
}
