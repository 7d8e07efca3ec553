package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
	"golang.org/x/net/websocket"
)

// Hub keeps the connected relay clients and fans broadcasts out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
	closed  bool
	logger  *slog.Logger
	metrics *Metrics
}

// NewHub creates an empty hub. Pass nil logger for default.
func NewHub(logger *slog.Logger, metrics *Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		logger:  logger.With("component", "hub"),
		metrics: metrics,
	}
}

// Handle upgrades the request and keeps the client registered until it
// disconnects. Any origin is accepted.
func (h *Hub) Handle(c echo.Context) error {
	srv := websocket.Server{Handler: h.serve}
	srv.ServeHTTP(c.Response(), c.Request())
	return nil
}

func (h *Hub) serve(ws *websocket.Conn) {
	id := uuid.New().String()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = ws.Close()
		return
	}
	h.clients[id] = ws
	h.mu.Unlock()
	h.updateGauge()

	h.logger.Info("websocket client connected", "client_id", id)

	// Clients only listen; drain until the connection ends.
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}

	h.remove(id)
	h.logger.Info("websocket client disconnected", "client_id", id)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	ws, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		_ = ws.Close()
	}
	h.updateGauge()
}

// Broadcast sends payload to every connected client and returns how many
// clients were connected. Clients that fail to receive are dropped.
func (h *Hub) Broadcast(payload []byte) int {
	h.mu.RLock()
	targets := make(map[string]*websocket.Conn, len(h.clients))
	for id, ws := range h.clients {
		targets[id] = ws
	}
	h.mu.RUnlock()

	for id, ws := range targets {
		if err := websocket.Message.Send(ws, string(payload)); err != nil {
			h.logger.Debug("dropping client after send failure", "client_id", id, "error", err)
			h.remove(id)
		}
	}
	if h.metrics != nil {
		h.metrics.relayBroadcasts.Inc()
	}
	return len(targets)
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. New connections are refused afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*websocket.Conn)
	h.mu.Unlock()

	for _, ws := range clients {
		_ = ws.Close()
	}
	h.updateGauge()
}

func (h *Hub) updateGauge() {
	if h.metrics != nil {
		h.metrics.relayClients.Set(float64(h.Count()))
	}
}

// broadcastEnvelope is what relay clients receive.
type broadcastEnvelope struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

func (s *Server) handleMessage(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || !gjson.ValidBytes(body) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
	}

	message := gjson.GetBytes(body, "message")
	if isFalsy(message) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}
	if s.hub == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "WebSocket not available"})
	}

	payload, err := json.Marshal(broadcastEnvelope{Type: "message", Message: json.RawMessage(message.Raw)})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
	}
	count := s.hub.Broadcast(payload)

	return c.JSON(http.StatusOK, map[string]any{"success": true, "clientCount": count})
}

// isFalsy reports whether a JSON value counts as absent: missing, null,
// false, zero or the empty string.
func isFalsy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return true
	case gjson.False:
		return true
	case gjson.Number:
		return r.Num == 0
	case gjson.String:
		return r.Str == ""
	default:
		return false
	}
}
