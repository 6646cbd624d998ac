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

// SlotReserver performs the conditional reservation. It returns ErrConflict
// when the slot is already reserved and ErrNotFound when it does not exist.
type SlotReserver interface {
	ReserveSlot(ctx context.Context, key SlotKey, memberID string, reservedAt time.Time) error
}

// BookingService commits reservations. Every attempt is exactly one call to
// ReserveSlot; there is no prior availability read and no retry.
type BookingService struct {
	slots  SlotReserver
	now    func() time.Time
	logger *slog.Logger
}

// NewBookingService constructs a booking service.
func NewBookingService(slots SlotReserver, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(slots, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(slots SlotReserver, now func() time.Time, logger *slog.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{slots: slots, now: now, logger: logging.OrDefault(logger)}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Book tries to reserve the requested slot for the member. Conflict and
// NotFound are outcomes, not errors; the error is reserved for store failures.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (outcome BookingOutcome, err error) {
	if s == nil || s.slots == nil {
		err = fmt.Errorf("BookingService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Book",
		"date", req.Key.Date.Format(DateLayout),
		"start_time", req.Key.StartTime,
		"resource_id", req.Key.ResourceID,
		"phone", phone.Mask(req.Member.Phone),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to book slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking attempted", "outcome", outcome.String())
	}()

	if req.Member.ID == "" {
		err = fmt.Errorf("booking requires a member id")
		return
	}

	reserveErr := s.slots.ReserveSlot(ctx, req.Key, req.Member.ID, s.now())
	switch {
	case reserveErr == nil:
		outcome = BookingConfirmed
	case errors.Is(reserveErr, ErrConflict):
		outcome = BookingConflict
	case errors.Is(reserveErr, ErrNotFound):
		outcome = BookingNotFound
	default:
		err = storageError("reserve slot", reserveErr)
	}
	return
}
