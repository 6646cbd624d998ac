package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/example/court-reservations/internal/persistence"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, ttl), server
}

func TestSessionStore_SaveLoadClear(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()
	date, tm := "2024-04-20", "08:00"
	updated := time.Date(2024, time.April, 19, 10, 0, 0, 0, time.UTC)

	if _, err := store.LoadSession(ctx, "56911111111"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err := store.SaveSession(ctx, persistence.ConversationSession{
		Phone:     "56911111111",
		Step:      "awaiting_resource",
		Date:      &date,
		Time:      &tm,
		UpdatedAt: updated,
	})
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := store.LoadSession(ctx, "56911111111")
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded.Phone != "56911111111" || loaded.Step != "awaiting_resource" {
		t.Fatalf("unexpected session %+v", loaded)
	}
	if loaded.Date == nil || *loaded.Date != date || loaded.Time == nil || *loaded.Time != tm {
		t.Fatalf("unexpected date/time in %+v", loaded)
	}
	if !loaded.UpdatedAt.Equal(updated) {
		t.Fatalf("expected updated_at %v, got %v", updated, loaded.UpdatedAt)
	}

	if err := store.ClearSession(ctx, "56911111111"); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if _, err := store.LoadSession(ctx, "56911111111"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestSessionStore_KeysExpire(t *testing.T) {
	store, server := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	if err := store.SaveSession(ctx, persistence.ConversationSession{Phone: "56911111111", Step: "awaiting_time"}); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if ttl := server.TTL(sessionKeyPrefix + "56911111111"); ttl != 30*time.Minute {
		t.Fatalf("expected key TTL of 30m, got %v", ttl)
	}

	server.FastForward(31 * time.Minute)
	if _, err := store.LoadSession(ctx, "56911111111"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestSessionStore_Unreachable(t *testing.T) {
	store, server := newTestStore(t, 0)
	server.Close()

	_, err := store.LoadSession(context.Background(), "56911111111")
	if err == nil || errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected a storage error, got %v", err)
	}
}

func TestSessionStore_RejectsIncompleteSessions(t *testing.T) {
	store, _ := newTestStore(t, 0)
	err := store.SaveSession(context.Background(), persistence.ConversationSession{Phone: " ", Step: "idle"})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}
