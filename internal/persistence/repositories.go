package persistence

import (
	"context"
	"time"
)

// MemberRepository exposes member directory operations.
type MemberRepository interface {
	GetMemberByPhone(ctx context.Context, phone string) (Member, error)
	UpsertMember(ctx context.Context, member Member) error
}

// SlotRepository exposes the slot table. ReserveSlot is the only mutation
// applied to existing slots.
type SlotRepository interface {
	CreateSlots(ctx context.Context, slots []Slot) error
	GetSlot(ctx context.Context, key SlotKey) (Slot, error)
	ListOpenSlots(ctx context.Context, date string) ([]Slot, error)
	ListOpenSlotsAt(ctx context.Context, date, startTime string) ([]Slot, error)
	ReserveSlot(ctx context.Context, key SlotKey, memberID string, reservedAt time.Time) error
}

// ConversationSessionRepository stores one dialogue record per phone number.
type ConversationSessionRepository interface {
	LoadSession(ctx context.Context, phone string) (ConversationSession, error)
	SaveSession(ctx context.Context, session ConversationSession) error
	ClearSession(ctx context.Context, phone string) error
}
