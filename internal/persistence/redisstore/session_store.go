// Package redisstore keeps conversation sessions in Redis, one key per phone.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/court-reservations/internal/persistence"
)

const sessionKeyPrefix = "courtbot:session:"

// SessionStore implements persistence.ConversationSessionRepository on Redis.
// Every key carries the configured TTL, so abandoned dialogues expire on
// their own; a zero TTL keeps keys until they are cleared.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionStore{client: client, ttl: ttl}
}

type sessionRecord struct {
	Step      string    `json:"step"`
	Date      *string   `json:"date,omitempty"`
	Time      *string   `json:"time,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadSession returns persistence.ErrNotFound when no key exists.
func (s *SessionStore) LoadSession(ctx context.Context, phone string) (persistence.ConversationSession, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return persistence.ConversationSession{}, persistence.ErrNotFound
	}

	data, err := s.client.Get(ctx, sessionKeyPrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return persistence.ConversationSession{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.ConversationSession{}, fmt.Errorf("redis get session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return persistence.ConversationSession{}, fmt.Errorf("decode session: %w", err)
	}
	return persistence.ConversationSession{
		Phone:     phone,
		Step:      record.Step,
		Date:      record.Date,
		Time:      record.Time,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// SaveSession overwrites the key for the session's phone and refreshes its TTL.
func (s *SessionStore) SaveSession(ctx context.Context, session persistence.ConversationSession) error {
	phone := strings.TrimSpace(session.Phone)
	if phone == "" || session.Step == "" {
		return persistence.ErrConstraintViolation
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now()
	}

	data, err := json.Marshal(sessionRecord{
		Step:      session.Step,
		Date:      session.Date,
		Time:      session.Time,
		UpdatedAt: session.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+phone, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// ClearSession deletes the key for phone.
func (s *SessionStore) ClearSession(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+strings.TrimSpace(phone)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
