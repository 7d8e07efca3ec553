package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/models"
)

// NoReplyText is returned when the upstream answers without content.
const NoReplyText = "Sorry, I didn't catch that."

// CannedReplies are served when no upstream is configured or it fails.
var CannedReplies = []string{
	"Sounds good, let me look into that!",
	"Got it, thanks for the update!",
	"Makes sense. Let me know if you need anything else.",
	"Good point! I'll follow up on that.",
	"Sure thing, I'll get back to you shortly.",
	"That works for me. Talk soon!",
	"Interesting, I hadn't thought of it that way.",
	"Appreciate the heads up! I'll take care of it.",
}

// Upstream produces a reply for a persona and a conversation history.
type Upstream interface {
	Reply(ctx context.Context, persona string, turns []models.Turn) (string, error)
}

// UpstreamStatusError marks an upstream answer with a non-success status.
// Such failures degrade to a canned reply; anything else is a server error.
type UpstreamStatusError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamStatusError) Error() string {
	return "upstream returned status " + http.StatusText(e.StatusCode) + ": " + e.Err.Error()
}

func (e *UpstreamStatusError) Unwrap() error {
	return e.Err
}

// OpenAIUpstream calls an OpenAI-compatible chat completions API.
type OpenAIUpstream struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIUpstream creates an upstream from the server configuration
func NewOpenAIUpstream(cfg config.ServerConfig) *OpenAIUpstream {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	return &OpenAIUpstream{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Reply implements Upstream.
func (u *OpenAIUpstream) Reply(ctx context.Context, persona string, turns []models.Turn) (string, error) {
	if persona == "" {
		persona = config.DefaultPersona
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: persona,
	})
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}

	resp, err := u.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       u.model,
		Messages:    messages,
		MaxTokens:   u.maxTokens,
		Temperature: u.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamStatusError{StatusCode: apiErr.HTTPStatusCode, Err: err}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &UpstreamStatusError{StatusCode: reqErr.HTTPStatusCode, Err: err}
		}
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoReplyText, nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *Server) handleChat(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || !gjson.ValidBytes(body) {
		s.metrics.chatRequests.WithLabelValues("error").Inc()
		s.logger.Error("chat endpoint error", "error", "invalid JSON body")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	messages := gjson.GetBytes(body, "messages")
	if !messages.IsArray() {
		s.metrics.chatRequests.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "messages array is required"})
	}

	var turns []models.Turn
	if err := json.Unmarshal([]byte(messages.Raw), &turns); err != nil {
		s.metrics.chatRequests.WithLabelValues("error").Inc()
		s.logger.Error("chat endpoint error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	persona := gjson.GetBytes(body, "persona").String()

	if s.upstream == nil {
		s.metrics.chatRequests.WithLabelValues("canned").Inc()
		return c.JSON(http.StatusOK, models.CompletionResponse{Response: s.cannedReply()})
	}

	reply, err := s.upstream.Reply(c.Request().Context(), persona, turns)
	if err != nil {
		var statusErr *UpstreamStatusError
		if errors.As(err, &statusErr) {
			s.metrics.chatRequests.WithLabelValues("upstream_error").Inc()
			s.logger.Error("upstream API error", "status", statusErr.StatusCode, "error", err)
			return c.JSON(http.StatusOK, models.CompletionResponse{Response: s.cannedReply()})
		}
		s.metrics.chatRequests.WithLabelValues("error").Inc()
		s.logger.Error("chat endpoint error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	s.metrics.chatRequests.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, models.CompletionResponse{Response: reply})
}

func (s *Server) cannedReply() string {
	return CannedReplies[s.pick(len(CannedReplies))]
}
