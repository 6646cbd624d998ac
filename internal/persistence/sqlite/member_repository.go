package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/court-reservations/internal/persistence"
)

// MemberRepository implements persistence.MemberRepository using SQLite
type MemberRepository struct {
	db *database
}

func newMemberRepository(db *database) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetMemberByPhone looks a member up by exact normalized phone number.
func (r *MemberRepository) GetMemberByPhone(ctx context.Context, phone string) (persistence.Member, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return persistence.Member{}, persistence.ErrNotFound
	}

	var (
		member       persistence.Member
		createdAtStr string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, phone, full_name, created_at
		FROM members
		WHERE phone = ?
	`, phone).Scan(&member.ID, &member.Phone, &member.FullName, &createdAtStr)
	if err != nil {
		return persistence.Member{}, mapError(err)
	}

	if member.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Member{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return member, nil
}

// UpsertMember inserts a member or refreshes the name stored for its phone.
func (r *MemberRepository) UpsertMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" || strings.TrimSpace(member.Phone) == "" {
		return persistence.ErrConstraintViolation
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (id, phone, full_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET full_name = excluded.full_name
	`,
		member.ID,
		strings.TrimSpace(member.Phone),
		strings.TrimSpace(member.FullName),
		member.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}
