package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"testing"

	"github.com/diogo/pulsechat/internal/models"
)

func testSeed() []*models.Conversation {
	return []*models.Conversation{
		{
			ID:     "sarah-chen",
			Name:   "Sarah Chen",
			Avatar: models.Avatar{Text: "SC", Style: "manager"},
			Messages: []models.Message{
				{Sender: models.SenderOther, Text: "Morning!", Time: "8:30 AM"},
				{Sender: models.SenderSelf, Text: "Hi", Time: "8:35 AM"},
			},
		},
		{ID: "alex-rivera", Name: "Alex Rivera", Messages: []models.Message{}},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(b Backend) *Store {
	return NewStore(b, testSeed, WithLogger(quietLogger()))
}

func TestStore_LoadEmptyUsesSeedAndWritesVersion(t *testing.T) {
	b := NewMemoryBackend()
	s := newTestStore(b)

	convs, origin := s.Load(context.Background())
	if origin != OriginSeed {
		t.Errorf("origin = %v, want seed", origin)
	}
	if !reflect.DeepEqual(convs, testSeed()) {
		t.Errorf("Load() did not return the seed set")
	}

	v, ok, _ := b.Get(context.Background(), models.VersionKey)
	if !ok || v != strconv.Itoa(models.DataVersion) {
		t.Errorf("version marker = %q (present %v), want %d", v, ok, models.DataVersion)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	b := NewMemoryBackend()
	s := newTestStore(b)
	ctx := context.Background()

	convs, _ := s.Load(ctx)
	convs[1].Messages = append(convs[1].Messages, models.Message{Sender: models.SenderSelf, Text: "status?", Time: "9:01 AM"})
	s.Save(ctx, convs)

	reloaded, origin := newTestStore(b).Load(ctx)
	if origin != OriginSnapshot {
		t.Fatalf("origin = %v, want snapshot", origin)
	}
	if !reflect.DeepEqual(reloaded, convs) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", reloaded, convs)
	}
}

func TestStore_RejectedSnapshotStaysRejected(t *testing.T) {
	stale := `[{"id":"stale","name":"Stale","messages":[]}]`
	tests := []struct {
		name    string
		version *string
	}{
		{"previous version", strPtr(strconv.Itoa(models.DataVersion - 1))},
		{"missing version", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewMemoryBackend()
			ctx := context.Background()
			_ = b.Set(ctx, models.DataKey, stale)
			if tt.version != nil {
				_ = b.Set(ctx, models.VersionKey, *tt.version)
			}

			for i := 1; i <= 2; i++ {
				convs, origin := newTestStore(b).Load(ctx)
				if origin != OriginSeed {
					t.Fatalf("load %d: origin = %v, want seed", i, origin)
				}
				if convs[0].ID != "sarah-chen" {
					t.Fatalf("load %d: first conversation = %s, want seed data", i, convs[0].ID)
				}
			}

			if _, ok, _ := b.Get(ctx, models.DataKey); ok {
				t.Error("rejected snapshot is still stored")
			}
			if v, _, _ := b.Get(ctx, models.VersionKey); v != strconv.Itoa(models.DataVersion) {
				t.Errorf("version marker = %q after reseed", v)
			}
		})
	}
}

func TestStore_SaveAfterRejectedSnapshotIsTrusted(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	_ = b.Set(ctx, models.DataKey, `[{"id":"stale","messages":[]}]`)
	_ = b.Set(ctx, models.VersionKey, strconv.Itoa(models.DataVersion-1))

	s := newTestStore(b)
	convs, _ := s.Load(ctx)
	convs[1].Messages = append(convs[1].Messages, models.Message{Sender: models.SenderSelf, Text: "ping", Time: "9:00 AM"})
	s.Save(ctx, convs)

	reloaded, origin := newTestStore(b).Load(ctx)
	if origin != OriginSnapshot {
		t.Fatalf("origin = %v, want snapshot", origin)
	}
	if len(reloaded[1].Messages) != 1 || reloaded[1].Messages[0].Text != "ping" {
		t.Errorf("saved message lost: %+v", reloaded[1].Messages)
	}
}

func TestStore_RejectsUntrustedSnapshots(t *testing.T) {
	current := strconv.Itoa(models.DataVersion)
	tests := []struct {
		name    string
		data    *string
		version *string
	}{
		{"missing version", strPtr(`[{"id":"x","messages":[]}]`), nil},
		{"non numeric version", strPtr(`[{"id":"x","messages":[]}]`), strPtr("two")},
		{"garbage json", strPtr(`{{{`), strPtr(current)},
		{"null payload", strPtr(`null`), strPtr(current)},
		{"object payload", strPtr(`{"id":"x"}`), strPtr(current)},
		{"missing id", strPtr(`[{"name":"x"}]`), strPtr(current)},
		{"duplicate ids", strPtr(`[{"id":"x"},{"id":"x"}]`), strPtr(current)},
		{"bad sender", strPtr(`[{"id":"x","messages":[{"sender":"me","text":"hi"}]}]`), strPtr(current)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewMemoryBackend()
			ctx := context.Background()
			if tt.data != nil {
				_ = b.Set(ctx, models.DataKey, *tt.data)
			}
			if tt.version != nil {
				_ = b.Set(ctx, models.VersionKey, *tt.version)
			}

			convs, origin := newTestStore(b).Load(ctx)
			if origin != OriginSeed {
				t.Errorf("origin = %v, want seed", origin)
			}
			if len(convs) != 2 || convs[0].ID != "sarah-chen" {
				t.Errorf("expected the whole seed set, got %d conversations", len(convs))
			}
		})
	}
}

func TestStore_SeedIsDeepCopy(t *testing.T) {
	shared := testSeed()
	s := NewStore(NewMemoryBackend(), func() []*models.Conversation { return shared }, WithLogger(quietLogger()))

	convs, _ := s.Load(context.Background())
	convs[0].Messages = append(convs[0].Messages, models.Message{Sender: models.SenderSelf, Text: "x"})

	if len(shared[0].Messages) != 2 {
		t.Error("Load must not hand out the seed's own slices")
	}
}

func TestStore_WithVersion(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	s := NewStore(b, testSeed, WithLogger(quietLogger()), WithVersion(7))

	convs, _ := s.Load(ctx)
	s.Save(ctx, convs)

	if _, origin := NewStore(b, testSeed, WithLogger(quietLogger()), WithVersion(7)).Load(ctx); origin != OriginSnapshot {
		t.Error("same version should trust the snapshot")
	}
	if _, origin := NewStore(b, testSeed, WithLogger(quietLogger()), WithVersion(8)).Load(ctx); origin != OriginSeed {
		t.Error("newer version should discard the snapshot")
	}
}

type failingBackend struct {
	*MemoryBackend
	getErr error
	setErr error
}

func (f *failingBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.MemoryBackend.Get(ctx, key)
}

func (f *failingBackend) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func TestStore_SaveFailureIsSwallowed(t *testing.T) {
	b := &failingBackend{MemoryBackend: NewMemoryBackend(), setErr: errors.New("quota exceeded")}
	s := newTestStore(b)

	// Must not panic or propagate.
	s.Save(context.Background(), testSeed())

	if err := s.save(context.Background(), testSeed()); err == nil {
		t.Error("internal save should report the backend error")
	}
}

func TestStore_ReadFailureFallsBackToSeed(t *testing.T) {
	b := &failingBackend{MemoryBackend: NewMemoryBackend(), getErr: errors.New("io error")}
	convs, origin := newTestStore(b).Load(context.Background())
	if origin != OriginSeed || len(convs) != 2 {
		t.Errorf("Load() = %d conversations, origin %v", len(convs), origin)
	}
}

func TestStore_Reset(t *testing.T) {
	b := NewMemoryBackend()
	s := newTestStore(b)
	ctx := context.Background()

	convs, _ := s.Load(ctx)
	convs[0].Messages = convs[0].Messages[:1]
	s.Save(ctx, convs)

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, ok, _ := b.Get(ctx, models.DataKey); ok {
		t.Error("data key should be removed")
	}
	reloaded, origin := s.Load(ctx)
	if origin != OriginSeed || len(reloaded[0].Messages) != 2 {
		t.Error("Load after Reset should reseed")
	}
}

func TestOriginString(t *testing.T) {
	if OriginSnapshot.String() != "snapshot" || OriginSeed.String() != "seed" {
		t.Error("unexpected Origin strings")
	}
}

func strPtr(s string) *string { return &s }
