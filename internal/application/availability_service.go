package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/court-reservations/internal/logging"
)

// OpenSlotReader captures the read side of the slot store.
type OpenSlotReader interface {
	ListOpenSlots(ctx context.Context, date time.Time) ([]Slot, error)
	ListOpenSlotsAt(ctx context.Context, date time.Time, startTime string) ([]Slot, error)
}

// AvailabilityService answers what is still open. Results are point-in-time
// reads and may be stale by the time a booking is attempted.
type AvailabilityService struct {
	slots  OpenSlotReader
	logger *slog.Logger
}

// NewAvailabilityService constructs an availability service.
func NewAvailabilityService(slots OpenSlotReader) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(slots, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(slots OpenSlotReader, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{slots: slots, logger: logging.OrDefault(logger)}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// TimesForDate lists the open time ranges of a date with the courts still
// free in each, ordered by start time.
func (s *AvailabilityService) TimesForDate(ctx context.Context, date time.Time) ([]TimeRange, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("AvailabilityService is not configured")
	}

	logger := s.loggerWith(ctx, "TimesForDate", "date", date.Format(DateLayout))

	slots, err := s.slots.ListOpenSlots(ctx, date)
	if err != nil {
		err = storageError("list open slots", err)
		logger.ErrorContext(ctx, "failed to list open slots", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	ranges := groupTimeRanges(slots)
	logger.DebugContext(ctx, "availability computed", "ranges", len(ranges))
	return ranges, nil
}

// ResourcesForDateTime lists the free court ids for a start time, ascending.
func (s *AvailabilityService) ResourcesForDateTime(ctx context.Context, date time.Time, startTime string) ([]int, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("AvailabilityService is not configured")
	}

	logger := s.loggerWith(ctx, "ResourcesForDateTime",
		"date", date.Format(DateLayout),
		"start_time", startTime,
	)

	slots, err := s.slots.ListOpenSlotsAt(ctx, date, startTime)
	if err != nil {
		err = storageError("list open slots at", err)
		logger.ErrorContext(ctx, "failed to list open slots", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	ids := make([]int, 0, len(slots))
	seen := make(map[int]struct{}, len(slots))
	for _, slot := range slots {
		if slot.Reserved {
			continue
		}
		if _, dup := seen[slot.ResourceID]; dup {
			continue
		}
		seen[slot.ResourceID] = struct{}{}
		ids = append(ids, slot.ResourceID)
	}
	sort.Ints(ids)
	return ids, nil
}

func groupTimeRanges(slots []Slot) []TimeRange {
	type rangeKey struct{ start, end string }

	index := make(map[rangeKey]int)
	var ranges []TimeRange
	for _, slot := range slots {
		if slot.Reserved {
			continue
		}
		key := rangeKey{start: slot.StartTime, end: slot.EndTime}
		i, ok := index[key]
		if !ok {
			i = len(ranges)
			index[key] = i
			ranges = append(ranges, TimeRange{Start: slot.StartTime, End: slot.EndTime})
		}
		ranges[i].ResourceIDs = append(ranges[i].ResourceIDs, slot.ResourceID)
	}

	for i := range ranges {
		sort.Ints(ranges[i].ResourceIDs)
		ranges[i].ResourceCount = len(ranges[i].ResourceIDs)
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].End < ranges[j].End
	})
	return ranges
}
