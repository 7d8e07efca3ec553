package render

// Glamour's built-in markdown styles
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// StyleInfo describes a markdown style for display purposes.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles lists the built-in markdown styles.
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// IsBuiltinStyle reports whether style names a built-in style rather than
// a path to a JSON style file.
func IsBuiltinStyle(style string) bool {
	for _, s := range AvailableStyles() {
		if s.Name == style {
			return true
		}
	}
	return false
}
