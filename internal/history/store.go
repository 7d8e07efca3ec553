package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/diogo/pulsechat/internal/models"
)

// Origin tells where a loaded conversation set came from.
type Origin int

const (
	// OriginSnapshot means a trusted persisted snapshot was used.
	OriginSnapshot Origin = iota
	// OriginSeed means the seed set was used instead.
	OriginSeed
)

func (o Origin) String() string {
	if o == OriginSnapshot {
		return "snapshot"
	}
	return "seed"
}

// SeedFunc returns a fresh, caller-owned copy of the seed conversations.
type SeedFunc func() []*models.Conversation

// Store loads and saves the full conversation set as one versioned snapshot.
type Store struct {
	backend Backend
	seed    SeedFunc
	version int
	logger  *slog.Logger
	mu      sync.Mutex
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion overrides the schema version (tests and migrations)
func WithVersion(version int) StoreOption {
	return func(s *Store) {
		s.version = version
	}
}

// NewStore creates a snapshot store on top of backend
func NewStore(backend Backend, seed SeedFunc, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		seed:    seed,
		version: models.DataVersion,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "history")
	return s
}

// Backend returns the underlying key/value backend
func (s *Store) Backend() Backend {
	return s.backend
}

// Load returns the persisted conversation set when it is present, carries the
// current version tag and parses cleanly. Anything else yields the seed set.
// A snapshot is trusted wholesale or not at all.
func (s *Store) Load(ctx context.Context) ([]*models.Conversation, Origin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, hasData, err := s.backend.Get(ctx, models.DataKey)
	if err != nil {
		s.logger.Error("failed to load conversations", "error", err)
		return s.seedCopy(), OriginSeed
	}
	version, hasVersion, err := s.backend.Get(ctx, models.VersionKey)
	if err != nil {
		s.logger.Error("failed to load conversations", "error", err)
		return s.seedCopy(), OriginSeed
	}

	if hasData && hasVersion && version == strconv.Itoa(s.version) {
		convs, err := decodeSnapshot(data)
		if err != nil {
			s.logger.Error("failed to load conversations", "error", err)
			return s.seedCopy(), OriginSeed
		}
		return convs, OriginSnapshot
	}

	// A rejected snapshot is removed before the current tag is written, so it
	// can never pair with that tag on a later load.
	if hasData {
		if err := s.backend.Delete(ctx, models.DataKey); err != nil {
			s.logger.Error("failed to discard outdated conversations", "error", err)
			return s.seedCopy(), OriginSeed
		}
	}
	if err := s.backend.Set(ctx, models.VersionKey, strconv.Itoa(s.version)); err != nil {
		s.logger.Error("failed to write schema version", "error", err)
	}
	s.logger.Debug("using seed conversations",
		"has_data", hasData,
		"stored_version", version,
		"current_version", s.version)
	return s.seedCopy(), OriginSeed
}

// Save writes the full conversation set. Failures are logged and swallowed.
func (s *Store) Save(ctx context.Context, convs []*models.Conversation) {
	if err := s.save(ctx, convs); err != nil {
		s.logger.Error("failed to save conversations", "error", err)
	}
}

func (s *Store) save(ctx context.Context, convs []*models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if convs == nil {
		convs = []*models.Conversation{}
	}
	data, err := json.Marshal(convs)
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	return s.backend.Set(ctx, models.DataKey, string(data))
}

// Reset removes the snapshot and version marker so the next Load reseeds.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, models.DataKey); err != nil {
		return err
	}
	return s.backend.Delete(ctx, models.VersionKey)
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) seedCopy() []*models.Conversation {
	if s.seed == nil {
		return []*models.Conversation{}
	}
	return models.CloneAll(s.seed())
}

var errBadSnapshot = errors.New("invalid snapshot")

// decodeSnapshot parses and validates a stored snapshot.
func decodeSnapshot(data string) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	if err := json.Unmarshal([]byte(data), &convs); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if convs == nil {
		return nil, fmt.Errorf("%w: not a conversation list", errBadSnapshot)
	}

	seen := make(map[string]bool, len(convs))
	for i, c := range convs {
		if c == nil || c.ID == "" {
			return nil, fmt.Errorf("%w: conversation %d has no id", errBadSnapshot, i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate conversation id %q", errBadSnapshot, c.ID)
		}
		seen[c.ID] = true
		for j, m := range c.Messages {
			if !m.Sender.Valid() {
				return nil, fmt.Errorf("%w: %s message %d has sender %q", errBadSnapshot, c.ID, j, m.Sender)
			}
		}
		if c.Messages == nil {
			c.Messages = []models.Message{}
		}
	}
	return convs, nil
}
