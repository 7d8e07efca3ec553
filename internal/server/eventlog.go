package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

// EventLog appends JSON lines to a file.
type EventLog struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewEventLog opens (creating if needed) the log file at path
func NewEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &EventLog{path: path, file: f}, nil
}

// Path returns the log file path
func (l *EventLog) Path() string {
	return l.path
}

// Append writes each raw JSON value as one compact line.
func (l *EventLog) Append(entries []json.RawMessage) error {
	var buf bytes.Buffer
	for _, e := range entries {
		if err := json.Compact(&buf, e); err != nil {
			return fmt.Errorf("invalid log entry: %w", err)
		}
		buf.WriteByte('\n')
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.file.Write(buf.Bytes())
	return err
}

// Close closes the log file
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

func (s *Server) handleLog(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || !gjson.ValidBytes(body) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
	}

	entries := gjson.GetBytes(body, "entries")
	if !entries.IsArray() || len(entries.Array()) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "entries array is required"})
	}

	raw := make([]json.RawMessage, 0, len(entries.Array()))
	for _, e := range entries.Array() {
		raw = append(raw, json.RawMessage(e.Raw))
	}

	// The sink is fire-and-forget: write failures are logged, not reported.
	if err := s.eventLog.Append(raw); err != nil {
		s.logger.Error("failed to write log", "error", err)
	}
	s.metrics.logEntries.Add(float64(len(raw)))

	return c.JSON(http.StatusOK, map[string]any{"ok": true, "count": len(raw)})
}
