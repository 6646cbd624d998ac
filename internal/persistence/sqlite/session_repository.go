package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/court-reservations/internal/persistence"
)

// SessionRepository implements persistence.ConversationSessionRepository using SQLite
type SessionRepository struct {
	db *database
}

func newSessionRepository(db *database) *SessionRepository {
	return &SessionRepository{db: db}
}

// LoadSession retrieves the dialogue state stored for a phone number
func (r *SessionRepository) LoadSession(ctx context.Context, phone string) (persistence.ConversationSession, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return persistence.ConversationSession{}, persistence.ErrNotFound
	}

	var (
		session      persistence.ConversationSession
		date, tm     sql.NullString
		updatedAtStr string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT phone, step, date, time, updated_at
		FROM conversation_sessions
		WHERE phone = ?
	`, phone).Scan(&session.Phone, &session.Step, &date, &tm, &updatedAtStr)
	if err != nil {
		return persistence.ConversationSession{}, mapError(err)
	}

	if date.Valid {
		session.Date = &date.String
	}
	if tm.Valid {
		session.Time = &tm.String
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
		return persistence.ConversationSession{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return session, nil
}

// SaveSession upserts the dialogue state for a phone number. The last write wins.
func (r *SessionRepository) SaveSession(ctx context.Context, session persistence.ConversationSession) error {
	session.Phone = strings.TrimSpace(session.Phone)
	if session.Phone == "" || session.Step == "" {
		return persistence.ErrConstraintViolation
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_sessions (phone, step, date, time, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET
			step = excluded.step,
			date = excluded.date,
			time = excluded.time,
			updated_at = excluded.updated_at
	`,
		session.Phone,
		session.Step,
		nullString(session.Date),
		nullString(session.Time),
		session.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// ClearSession deletes the dialogue state for a phone number. Clearing an
// absent session is not an error.
func (r *SessionRepository) ClearSession(ctx context.Context, phone string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversation_sessions WHERE phone = ?`, strings.TrimSpace(phone)); err != nil {
		return mapError(err)
	}
	return nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
