package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/court-reservations/internal/logging"
	"github.com/example/court-reservations/internal/phone"
)

// SessionStore persists one Session per phone. LoadSession returns
// ErrNotFound when nothing is stored; ClearSession on an absent key succeeds.
type SessionStore interface {
	LoadSession(ctx context.Context, phone string) (Session, error)
	SaveSession(ctx context.Context, session Session) error
	ClearSession(ctx context.Context, phone string) error
}

// SessionManager is the only path to session state. Each call maps to one
// single-key store operation; concurrent writers for a phone resolve as
// last write wins.
type SessionManager struct {
	store  SessionStore
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewSessionManager constructs a session manager. A ttl of zero disables expiry.
func NewSessionManager(store SessionStore, ttl time.Duration, now func() time.Time) *SessionManager {
	return NewSessionManagerWithLogger(store, ttl, now, nil)
}

// NewSessionManagerWithLogger constructs a session manager with a specified logger.
func NewSessionManagerWithLogger(store SessionStore, ttl time.Duration, now func() time.Time, logger *slog.Logger) *SessionManager {
	if now == nil {
		now = time.Now
	}
	if ttl < 0 {
		ttl = 0
	}
	return &SessionManager{store: store, ttl: ttl, now: now, logger: logging.OrDefault(logger)}
}

func (m *SessionManager) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, m.logger, "SessionManager", operation, attrs...)
}

// Load returns the stored session and whether one exists. A session idle for
// longer than the ttl is cleared and reported as absent.
func (m *SessionManager) Load(ctx context.Context, phoneKey string) (Session, bool, error) {
	if m == nil || m.store == nil {
		return Session{}, false, fmt.Errorf("SessionManager is not configured")
	}

	session, err := m.store.LoadSession(ctx, phoneKey)
	if errors.Is(err, ErrNotFound) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, storageError("load session", err)
	}

	if m.expired(session) {
		m.loggerWith(ctx, "Load", "phone", phone.Mask(phoneKey)).
			InfoContext(ctx, "session expired", "updated_at", session.UpdatedAt)
		if err := m.store.ClearSession(ctx, phoneKey); err != nil {
			return Session{}, false, storageError("clear expired session", err)
		}
		return Session{}, false, nil
	}
	return session, true, nil
}

// Save upserts the session and stamps UpdatedAt.
func (m *SessionManager) Save(ctx context.Context, session Session) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("SessionManager is not configured")
	}
	session.UpdatedAt = m.now()
	if err := m.store.SaveSession(ctx, session); err != nil {
		return storageError("save session", err)
	}
	return nil
}

// Clear deletes the session for the phone.
func (m *SessionManager) Clear(ctx context.Context, phoneKey string) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("SessionManager is not configured")
	}
	if err := m.store.ClearSession(ctx, phoneKey); err != nil {
		return storageError("clear session", err)
	}
	return nil
}

func (m *SessionManager) expired(session Session) bool {
	if m.ttl == 0 || session.UpdatedAt.IsZero() {
		return false
	}
	return m.now().Sub(session.UpdatedAt) > m.ttl
}
