package api

import (
	"context"
	"sync"

	"github.com/diogo/pulsechat/internal/models"
)

// MockCompleter is a scripted Completer for tests and offline runs.
type MockCompleter struct {
	// Reply is returned when Replies is exhausted.
	Reply string
	Err   error
	// Replies are consumed in order, one per call.
	Replies []string
	// Block, when set, makes Complete wait for a value before answering.
	Block chan struct{}

	mu       sync.Mutex
	requests []*models.CompletionRequest
}

// Complete records the request and returns the scripted answer.
func (m *MockCompleter) Complete(ctx context.Context, req *models.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) > 0 {
		reply := m.Replies[0]
		m.Replies = m.Replies[1:]
		return reply, nil
	}
	return m.Reply, nil
}

// Requests returns the requests seen so far
func (m *MockCompleter) Requests() []*models.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
