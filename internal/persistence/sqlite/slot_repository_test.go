package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/court-reservations/internal/persistence"
)

func seedSlots(t *testing.T, storage *Storage, slots ...persistence.Slot) {
	t.Helper()
	if err := storage.CreateSlots(context.Background(), slots); err != nil {
		t.Fatalf("CreateSlots failed: %v", err)
	}
}

func TestSlotRepository_ListOpenSlots(t *testing.T) {
	storage := setupStorageTest(t)
	ctx := context.Background()
	member := seedMember(t, storage, "m1", "56912345678")

	seedSlots(t, storage,
		persistence.Slot{Date: "2024-04-20", StartTime: "10:00", EndTime: "11:00", ResourceID: 1},
		persistence.Slot{Date: "2024-04-20", StartTime: "08:00", EndTime: "09:00", ResourceID: 2},
		persistence.Slot{Date: "2024-04-20", StartTime: "08:00", EndTime: "09:00", ResourceID: 1},
		persistence.Slot{Date: "2024-04-21", StartTime: "08:00", EndTime: "09:00", ResourceID: 1},
	)
	reservedAt := time.Date(2024, time.April, 19, 12, 0, 0, 0, time.UTC)
	if err := storage.ReserveSlot(ctx, persistence.SlotKey{Date: "2024-04-20", StartTime: "10:00", ResourceID: 1}, member.ID, reservedAt); err != nil {
		t.Fatalf("ReserveSlot failed: %v", err)
	}

	open, err := storage.ListOpenSlots(ctx, "2024-04-20")
	if err != nil {
		t.Fatalf("ListOpenSlots failed: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open slots, got %d", len(open))
	}
	if open[0].ResourceID != 1 || open[1].ResourceID != 2 || open[0].StartTime != "08:00" {
		t.Fatalf("unexpected ordering: %+v", open)
	}

	at, err := storage.ListOpenSlotsAt(ctx, "2024-04-20", "10:00")
	if err != nil {
		t.Fatalf("ListOpenSlotsAt failed: %v", err)
	}
	if len(at) != 0 {
		t.Fatalf("expected reserved slot to be hidden, got %+v", at)
	}
}

func TestSlotRepository_ReserveSlot(t *testing.T) {
	storage := setupStorageTest(t)
	ctx := context.Background()
	member := seedMember(t, storage, "m1", "56912345678")
	other := seedMember(t, storage, "m2", "56987654321")
	seedSlots(t, storage, persistence.Slot{Date: "2024-04-20", StartTime: "08:00", EndTime: "09:00", ResourceID: 1})
	key := persistence.SlotKey{Date: "2024-04-20", StartTime: "08:00", ResourceID: 1}
	reservedAt := time.Date(2024, time.April, 19, 12, 0, 0, 0, time.UTC)

	if err := storage.ReserveSlot(ctx, key, member.ID, reservedAt); err != nil {
		t.Fatalf("ReserveSlot failed: %v", err)
	}

	slot, err := storage.GetSlot(ctx, key)
	if err != nil {
		t.Fatalf("GetSlot failed: %v", err)
	}
	if !slot.Reserved || slot.BookedBy == nil || *slot.BookedBy != member.ID {
		t.Fatalf("expected slot booked by %s, got %+v", member.ID, slot)
	}
	if slot.ReservedAt == nil || !slot.ReservedAt.Equal(reservedAt) {
		t.Fatalf("unexpected reserved_at %v", slot.ReservedAt)
	}

	t.Run("second reservation conflicts and keeps the first member", func(t *testing.T) {
		err := storage.ReserveSlot(ctx, key, other.ID, reservedAt)
		if !errors.Is(err, persistence.ErrAlreadyReserved) {
			t.Fatalf("expected ErrAlreadyReserved, got %v", err)
		}
		slot, err := storage.GetSlot(ctx, key)
		if err != nil {
			t.Fatalf("GetSlot failed: %v", err)
		}
		if *slot.BookedBy != member.ID {
			t.Fatalf("booking was overwritten by %s", *slot.BookedBy)
		}
	})

	t.Run("missing slot is not found", func(t *testing.T) {
		err := storage.ReserveSlot(ctx, persistence.SlotKey{Date: "2024-04-20", StartTime: "08:00", ResourceID: 9}, member.ID, reservedAt)
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSlotRepository_ReserveSlotSingleWinner(t *testing.T) {
	storage := setupStorageTest(t)
	ctx := context.Background()
	seedSlots(t, storage, persistence.Slot{Date: "2024-04-20", StartTime: "08:00", EndTime: "09:00", ResourceID: 1})
	key := persistence.SlotKey{Date: "2024-04-20", StartTime: "08:00", ResourceID: 1}

	const callers = 12
	members := make([]persistence.Member, callers)
	for i := range members {
		members[i] = seedMember(t, storage, fmt.Sprintf("m%02d", i), fmt.Sprintf("569000000%02d", i))
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]error, callers)
	reservedAt := time.Date(2024, time.April, 19, 12, 0, 0, 0, time.UTC)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = storage.ReserveSlot(ctx, key, members[i].ID, reservedAt)
		}(i)
	}
	close(start)
	wg.Wait()

	winners, conflicts := 0, 0
	var winner string
	for i, err := range results {
		switch {
		case err == nil:
			winners++
			winner = members[i].ID
		case errors.Is(err, persistence.ErrAlreadyReserved):
			conflicts++
		default:
			t.Fatalf("caller %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 || conflicts != callers-1 {
		t.Fatalf("expected 1 winner and %d conflicts, got %d and %d", callers-1, winners, conflicts)
	}

	slot, err := storage.GetSlot(ctx, key)
	if err != nil {
		t.Fatalf("GetSlot failed: %v", err)
	}
	if slot.BookedBy == nil || *slot.BookedBy != winner {
		t.Fatalf("expected slot booked by winner %s, got %+v", winner, slot.BookedBy)
	}
}

func TestSlotRepository_CreateSlots(t *testing.T) {
	storage := setupStorageTest(t)
	ctx := context.Background()
	slot := persistence.Slot{Date: "2024-04-20", StartTime: "08:00", EndTime: "09:00", ResourceID: 1}
	seedSlots(t, storage, slot)

	if err := storage.CreateSlots(ctx, []persistence.Slot{slot}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	bad := persistence.Slot{Date: "2024-04-20", StartTime: "09:00", EndTime: "08:00", ResourceID: 1}
	if err := storage.CreateSlots(ctx, []persistence.Slot{bad}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	if _, err := storage.GetSlot(ctx, persistence.SlotKey{Date: "2024-04-20", StartTime: "09:00", ResourceID: 1}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected rejected batch to leave no rows, got %v", err)
	}
}
