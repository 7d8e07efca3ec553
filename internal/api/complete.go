package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/pulsechat/internal/errors"
	"github.com/diogo/pulsechat/internal/models"
)

// pathResponse locates the reply text in a chat response body.
const pathResponse = "response"

// Complete sends the conversation history to the chat endpoint and returns
// the reply text. Any non-2xx status, transport failure or body without a
// non-empty string "response" is an error.
func (c *Client) Complete(ctx context.Context, req *models.CompletionRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("completion request cannot be nil")
	}
	if req.Messages == nil {
		req = &models.CompletionRequest{Messages: []models.Turn{}, Persona: req.Persona}
	}

	body, err := c.postJSON(ctx, models.EndpointChat, "complete", req)
	if err != nil {
		return "", err
	}
	return parseCompletion(body)
}

func parseCompletion(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("chat response is not valid JSON", "")
	}
	result := gjson.GetBytes(body, pathResponse)
	if !result.Exists() {
		return "", apierrors.NewParseError("chat response has no reply", pathResponse)
	}
	if result.Type != gjson.String {
		return "", apierrors.NewParseError("chat reply is not a string", pathResponse)
	}
	if strings.TrimSpace(result.Str) == "" {
		return "", apierrors.NewParseError("chat reply is empty", pathResponse)
	}
	return result.Str, nil
}
