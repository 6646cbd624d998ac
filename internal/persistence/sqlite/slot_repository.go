package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/court-reservations/internal/persistence"
)

// SlotRepository implements persistence.SlotRepository using SQLite
type SlotRepository struct {
	db *database
}

func newSlotRepository(db *database) *SlotRepository {
	return &SlotRepository{db: db}
}

const slotColumns = `date, start_time, end_time, resource_id, reserved, booked_by, reserved_at`

// CreateSlots inserts a batch of open slots in one transaction. Timetable
// generation happens outside this service; this is the import path.
func (r *SlotRepository) CreateSlots(ctx context.Context, slots []persistence.Slot) error {
	for _, slot := range slots {
		if slot.Date == "" || slot.StartTime == "" || slot.EndTime == "" || slot.ResourceID <= 0 {
			return persistence.ErrConstraintViolation
		}
	}

	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO slots (date, start_time, end_time, resource_id, reserved)
			VALUES (?, ?, ?, ?, 0)
		`)
		if err != nil {
			return mapError(err)
		}
		defer stmt.Close()

		for _, slot := range slots {
			if _, err := stmt.ExecContext(ctx, slot.Date, slot.StartTime, slot.EndTime, slot.ResourceID); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// GetSlot retrieves a single slot by its identity
func (r *SlotRepository) GetSlot(ctx context.Context, key persistence.SlotKey) (persistence.Slot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE date = ? AND start_time = ? AND resource_id = ?
	`, key.Date, key.StartTime, key.ResourceID)

	slot, err := scanSlot(row)
	if err != nil {
		return persistence.Slot{}, mapError(err)
	}
	return slot, nil
}

// ListOpenSlots returns every unreserved slot on a date ordered by start time and court
func (r *SlotRepository) ListOpenSlots(ctx context.Context, date string) ([]persistence.Slot, error) {
	return r.listSlots(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE date = ? AND reserved = 0
		ORDER BY start_time ASC, resource_id ASC
	`, date)
}

// ListOpenSlotsAt returns the unreserved slots starting at an exact time ordered by court
func (r *SlotRepository) ListOpenSlotsAt(ctx context.Context, date, startTime string) ([]persistence.Slot, error) {
	return r.listSlots(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE date = ? AND start_time = ? AND reserved = 0
		ORDER BY resource_id ASC
	`, date, startTime)
}

// ReserveSlot marks a slot as reserved by memberID with a single conditional
// UPDATE. The statement only matches while reserved = 0, so of any number of
// concurrent callers at most one sees a row affected.
//
// When nothing was updated a follow-up probe tells a taken slot
// (persistence.ErrAlreadyReserved) from a missing one (persistence.ErrNotFound).
// The probe never feeds a write.
func (r *SlotRepository) ReserveSlot(ctx context.Context, key persistence.SlotKey, memberID string, reservedAt time.Time) error {
	if memberID == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE slots
		SET reserved = 1, booked_by = ?, reserved_at = ?
		WHERE date = ? AND start_time = ? AND resource_id = ? AND reserved = 0
	`,
		memberID,
		reservedAt.UTC().Format(time.RFC3339),
		key.Date,
		key.StartTime,
		key.ResourceID,
	)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `
		SELECT 1 FROM slots WHERE date = ? AND start_time = ? AND resource_id = ?
	`, key.Date, key.StartTime, key.ResourceID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrNotFound
		}
		return mapError(err)
	}
	return persistence.ErrAlreadyReserved
}

func (r *SlotRepository) listSlots(ctx context.Context, query string, args ...any) ([]persistence.Slot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var slots []persistence.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, mapError(err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return slots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (persistence.Slot, error) {
	var (
		slot       persistence.Slot
		reserved   int
		bookedBy   sql.NullString
		reservedAt sql.NullString
	)
	if err := row.Scan(
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.ResourceID,
		&reserved,
		&bookedBy,
		&reservedAt,
	); err != nil {
		return persistence.Slot{}, err
	}

	slot.Reserved = reserved == 1
	if bookedBy.Valid {
		slot.BookedBy = &bookedBy.String
	}
	if reservedAt.Valid {
		parsed, err := parseTimePtr(reservedAt.String)
		if err != nil {
			return persistence.Slot{}, fmt.Errorf("failed to parse reserved_at: %w", err)
		}
		slot.ReservedAt = parsed
	}
	return slot, nil
}

func parseTimePtr(value string) (*time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
