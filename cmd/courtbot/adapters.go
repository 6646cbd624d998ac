package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/court-reservations/internal/application"
	"github.com/example/court-reservations/internal/persistence"
)

// mapRepositoryError translates persistence sentinels into the application's.
// Everything else passes through and is treated as a storage failure.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrAlreadyReserved):
		return application.ErrConflict
	default:
		return err
	}
}

type memberDirectoryAdapter struct {
	repo persistence.MemberRepository
}

func newMemberDirectoryAdapter(repo persistence.MemberRepository) *memberDirectoryAdapter {
	return &memberDirectoryAdapter{repo: repo}
}

func (a *memberDirectoryAdapter) LookupMember(ctx context.Context, phone string) (application.Member, error) {
	stored, err := a.repo.GetMemberByPhone(ctx, phone)
	if err != nil {
		return application.Member{}, mapRepositoryError(err)
	}
	return application.Member{ID: stored.ID, Phone: stored.Phone, FullName: stored.FullName}, nil
}

type slotStoreAdapter struct {
	repo     persistence.SlotRepository
	location *time.Location
}

func newSlotStoreAdapter(repo persistence.SlotRepository, location *time.Location) *slotStoreAdapter {
	if location == nil {
		location = time.UTC
	}
	return &slotStoreAdapter{repo: repo, location: location}
}

func (a *slotStoreAdapter) ListOpenSlots(ctx context.Context, date time.Time) ([]application.Slot, error) {
	models, err := a.repo.ListOpenSlots(ctx, date.Format(application.DateLayout))
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return a.toApplicationSlots(models)
}

func (a *slotStoreAdapter) ListOpenSlotsAt(ctx context.Context, date time.Time, startTime string) ([]application.Slot, error) {
	models, err := a.repo.ListOpenSlotsAt(ctx, date.Format(application.DateLayout), startTime)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return a.toApplicationSlots(models)
}

func (a *slotStoreAdapter) ReserveSlot(ctx context.Context, key application.SlotKey, memberID string, reservedAt time.Time) error {
	err := a.repo.ReserveSlot(ctx, persistence.SlotKey{
		Date:       key.Date.Format(application.DateLayout),
		StartTime:  key.StartTime,
		ResourceID: key.ResourceID,
	}, memberID, reservedAt)
	return mapRepositoryError(err)
}

func (a *slotStoreAdapter) toApplicationSlots(models []persistence.Slot) ([]application.Slot, error) {
	if len(models) == 0 {
		return nil, nil
	}
	slots := make([]application.Slot, 0, len(models))
	for _, model := range models {
		date, err := time.ParseInLocation(application.DateLayout, model.Date, a.location)
		if err != nil {
			return nil, fmt.Errorf("invalid slot date %q: %w", model.Date, err)
		}
		slots = append(slots, application.Slot{
			SlotKey: application.SlotKey{
				Date:       date,
				StartTime:  model.StartTime,
				ResourceID: model.ResourceID,
			},
			EndTime:  model.EndTime,
			Reserved: model.Reserved,
		})
	}
	return slots, nil
}

type sessionStoreAdapter struct {
	repo     persistence.ConversationSessionRepository
	location *time.Location
}

func newSessionStoreAdapter(repo persistence.ConversationSessionRepository, location *time.Location) *sessionStoreAdapter {
	if location == nil {
		location = time.UTC
	}
	return &sessionStoreAdapter{repo: repo, location: location}
}

func (a *sessionStoreAdapter) LoadSession(ctx context.Context, phone string) (application.Session, error) {
	stored, err := a.repo.LoadSession(ctx, phone)
	if err != nil {
		return application.Session{}, mapRepositoryError(err)
	}

	session := application.Session{
		Phone:     stored.Phone,
		Step:      application.Step(stored.Step),
		UpdatedAt: stored.UpdatedAt,
	}
	if stored.Date != nil {
		date, err := time.ParseInLocation(application.DateLayout, *stored.Date, a.location)
		if err != nil {
			return application.Session{}, fmt.Errorf("invalid session date %q: %w", *stored.Date, err)
		}
		session.Date = date
	}
	if stored.Time != nil {
		session.Time = *stored.Time
	}
	return session, nil
}

func (a *sessionStoreAdapter) SaveSession(ctx context.Context, session application.Session) error {
	model := persistence.ConversationSession{
		Phone:     session.Phone,
		Step:      string(session.Step),
		UpdatedAt: session.UpdatedAt,
	}
	if session.HasDate() {
		date := session.Date.Format(application.DateLayout)
		model.Date = &date
	}
	if session.Time != "" {
		tm := session.Time
		model.Time = &tm
	}
	return mapRepositoryError(a.repo.SaveSession(ctx, model))
}

func (a *sessionStoreAdapter) ClearSession(ctx context.Context, phone string) error {
	return mapRepositoryError(a.repo.ClearSession(ctx, phone))
}
