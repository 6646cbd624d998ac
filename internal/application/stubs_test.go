package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var errStoreDown = errors.New("store unreachable")

type memberDirectoryStub struct {
	members map[string]Member
	err     error
	calls   int
}

func (d *memberDirectoryStub) LookupMember(ctx context.Context, phone string) (Member, error) {
	d.calls++
	if d.err != nil {
		return Member{}, d.err
	}
	member, ok := d.members[phone]
	if !ok {
		return Member{}, ErrNotFound
	}
	return member, nil
}

// slotStoreStub keeps slots in memory. ReserveSlot holds the mutex for the
// whole check-and-set so it behaves like the store's conditional update.
type slotStoreStub struct {
	mu    sync.Mutex
	slots map[SlotKey]*Slot

	listErr    error
	reserveErr error

	reserveCalls int
	bookedBy     map[SlotKey]string
}

func newSlotStoreStub(slots ...Slot) *slotStoreStub {
	store := &slotStoreStub{slots: make(map[SlotKey]*Slot), bookedBy: make(map[SlotKey]string)}
	for _, slot := range slots {
		slot := slot
		store.slots[normalizeKey(slot.SlotKey)] = &slot
	}
	return store
}

func normalizeKey(key SlotKey) SlotKey {
	y, m, d := key.Date.Date()
	key.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return key
}

func (s *slotStoreStub) ListOpenSlots(ctx context.Context, date time.Time) ([]Slot, error) {
	return s.list(date, "")
}

func (s *slotStoreStub) ListOpenSlotsAt(ctx context.Context, date time.Time, startTime string) ([]Slot, error) {
	return s.list(date, startTime)
}

func (s *slotStoreStub) list(date time.Time, startTime string) ([]Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}

	want := date.Format(DateLayout)
	var out []Slot
	for _, slot := range s.slots {
		if slot.Reserved || slot.Date.Format(DateLayout) != want {
			continue
		}
		if startTime != "" && slot.StartTime != startTime {
			continue
		}
		out = append(out, *slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ResourceID < out[j].ResourceID
	})
	return out, nil
}

func (s *slotStoreStub) ReserveSlot(ctx context.Context, key SlotKey, memberID string, reservedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserveCalls++
	if s.reserveErr != nil {
		return s.reserveErr
	}

	key = normalizeKey(key)
	slot, ok := s.slots[key]
	if !ok {
		return ErrNotFound
	}
	if slot.Reserved {
		return ErrConflict
	}
	slot.Reserved = true
	s.bookedBy[key] = memberID
	return nil
}

func (s *slotStoreStub) reserve(key SlotKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[normalizeKey(key)]; ok {
		slot.Reserved = true
	}
}

type sessionStoreStub struct {
	mu       sync.Mutex
	sessions map[string]Session

	loadErr  error
	saveErr  error
	clearErr error

	saves  int
	clears int
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]Session)}
}

func (s *sessionStoreStub) LoadSession(ctx context.Context, phone string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return Session{}, s.loadErr
	}
	session, ok := s.sessions[phone]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) SaveSession(ctx context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.sessions[session.Phone] = session
	return nil
}

func (s *sessionStoreStub) ClearSession(ctx context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.clears++
	delete(s.sessions, phone)
	return nil
}

func (s *sessionStoreStub) get(phone string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[phone]
	return session, ok
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func openSlot(date time.Time, start, end string, resourceID int) Slot {
	return Slot{SlotKey: SlotKey{Date: date, StartTime: start, ResourceID: resourceID}, EndTime: end}
}
