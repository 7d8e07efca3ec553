package render

import (
	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the chat TUI.
type TUITheme struct {
	Name        string
	Description string

	Border  lipgloss.Color
	Surface lipgloss.Color

	// Primary marks focus and the active conversation.
	Primary lipgloss.Color
	// SelfBubble and OtherBubble tint the two sides of a thread.
	SelfBubble  lipgloss.Color
	OtherBubble lipgloss.Color
	// Typing colors the typing indicator.
	Typing lipgloss.Color
	Error  lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

var (
	// TokyoNightTheme is the default theme
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",
		Border:      lipgloss.Color("#414868"),
		Surface:     lipgloss.Color("#24283b"),
		Primary:     lipgloss.Color("#7aa2f7"),
		SelfBubble:  lipgloss.Color("#9ece6a"),
		OtherBubble: lipgloss.Color("#bb9af7"),
		Typing:      lipgloss.Color("#e0af68"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
	}

	// CatppuccinMochaTheme is based on the Catppuccin Mocha palette
	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",
		Border:      lipgloss.Color("#45475a"),
		Surface:     lipgloss.Color("#313244"),
		Primary:     lipgloss.Color("#89b4fa"),
		SelfBubble:  lipgloss.Color("#a6e3a1"),
		OtherBubble: lipgloss.Color("#cba6f7"),
		Typing:      lipgloss.Color("#f9e2af"),
		Error:       lipgloss.Color("#f38ba8"),
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
	}

	// NordTheme is based on the Nord palette
	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",
		Border:      lipgloss.Color("#4c566a"),
		Surface:     lipgloss.Color("#3b4252"),
		Primary:     lipgloss.Color("#88c0d0"),
		SelfBubble:  lipgloss.Color("#a3be8c"),
		OtherBubble: lipgloss.Color("#b48ead"),
		Typing:      lipgloss.Color("#ebcb8b"),
		Error:       lipgloss.Color("#bf616a"),
		Text:        lipgloss.Color("#eceff4"),
		TextDim:     lipgloss.Color("#7b88a1"),
	}
)

// TUIThemeByName returns a theme by name.
func TUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// TUIThemeOrDefault returns the named theme, or Tokyo Night when the name is
// unknown or empty.
func TUIThemeOrDefault(name string) TUITheme {
	if t, ok := TUIThemeByName(name); ok {
		return t
	}
	return TokyoNightTheme
}

// AvailableTUIThemes returns every built-in TUI theme.
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{TokyoNightTheme, CatppuccinMochaTheme, NordTheme}
}

// TUIThemeNames returns the theme names for selection.
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
