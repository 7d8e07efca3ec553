// Package config handles configuration and seed data for pulsechat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	// Driver is one of "file", "memory", "redis" or "sqlite".
	Driver     string `json:"driver"`
	Dir        string `json:"dir,omitempty"`
	RedisURL   string `json:"redis_url,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty"`
}

// ServerConfig configures the `serve` command
type ServerConfig struct {
	Addr          string  `json:"addr"`
	ServeDir      string  `json:"serve_dir"`
	Production    bool    `json:"production"`
	LogDir        string  `json:"log_dir"`
	OpenAIBaseURL string  `json:"openai_base_url"`
	Model         string  `json:"model"`
	MaxTokens     int     `json:"max_tokens"`
	Temperature   float32 `json:"temperature"`
	WebSocket     bool    `json:"websocket"`

	// APIKey is read from OPENAI_API_KEY only and never written to disk.
	APIKey string `json:"-"`
}

// Config represents the user configuration
type Config struct {
	// APIBase is prepended to /api/chat and /api/log.
	APIBase string `json:"api_base"`
	// RequestTimeoutSeconds bounds one completion round trip. 0 leaves the
	// transport's own timeout in charge.
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
	// TypingDurationMs is the default length of an injected typing pulse.
	TypingDurationMs int `json:"typing_duration_ms"`
	// RelayURL is the websocket relay the TUI subscribes to for pushed actions.
	RelayURL string `json:"relay_url,omitempty"`
	// LogEvents forwards message-sent/received events to the event log sink.
	LogEvents       bool           `json:"log_events"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Storage         StorageConfig  `json:"storage"`
	Server          ServerConfig   `json:"server"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// RequestTimeout returns the configured completion timeout.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// TypingDuration returns the default typing pulse length.
func (c Config) TypingDuration() time.Duration {
	if c.TypingDurationMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.TypingDurationMs) * time.Millisecond
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	configDir, _ := GetConfigDir()
	return Config{
		APIBase:          "http://localhost:3000",
		TypingDurationMs: 2000,
		TUITheme:         "tokyonight",
		Storage: StorageConfig{
			Driver:     "file",
			Dir:        filepath.Join(configDir, "data"),
			SQLitePath: filepath.Join(configDir, "pulsechat.db"),
		},
		Server: ServerConfig{
			Addr:          ":3000",
			ServeDir:      "dist",
			LogDir:        "logs",
			OpenAIBaseURL: "https://api.openai.com/v1",
			Model:         "gpt-4o-mini",
			MaxTokens:     200,
			Temperature:   0.8,
			WebSocket:     true,
		},
		Markdown: DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path.
// PULSECHAT_HOME overrides the default ~/.pulsechat.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("PULSECHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".pulsechat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path of the client-side log file
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "pulsechat.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = DefaultConfig()
		applyEnv(&cfg)
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv overlays environment variables onto cfg
func applyEnv(cfg *Config) {
	if v := os.Getenv("PULSECHAT_API_BASE"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("SERVE_DIR"); v != "" {
		cfg.Server.ServeDir = v
	}
	if v := os.Getenv("IS_PRODUCTION"); v != "" {
		cfg.Server.Production = v == "true"
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Server.OpenAIBaseURL = v
	}
	if v := os.Getenv("PULSECHAT_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RequestTimeoutSeconds = n
		}
	}
	cfg.Server.APIKey = os.Getenv("OPENAI_API_KEY")
}

// AvailableDrivers returns the supported storage drivers
func AvailableDrivers() []string {
	return []string{"file", "memory", "redis", "sqlite"}
}
