package api

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/diogo/pulsechat/internal/models"
)

type publishRequest struct {
	Message any `json:"message"`
}

// Publish asks the server to broadcast message to every connected relay
// client. It returns the number of clients the server reported.
func (c *Client) Publish(ctx context.Context, message any) (int, error) {
	body, err := c.postJSON(ctx, models.EndpointMessage, "publish", publishRequest{Message: message})
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(body, "clientCount").Int()), nil
}
