package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/court-reservations/internal/persistence"
)

// memberSeq numbers generated members so ids and phones never collide.
var memberSeq atomic.Uint64

var referenceTime = time.Date(2024, time.April, 10, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// MemberOption configures the generated member.
type MemberOption func(*persistence.Member)

// NewMember returns a deterministic member with optional overrides.
func NewMember(opts ...MemberOption) persistence.Member {
	idx := memberSeq.Add(1)
	member := persistence.Member{
		ID:        fmt.Sprintf("member-%d", idx),
		Phone:     fmt.Sprintf("569%08d", idx),
		FullName:  fmt.Sprintf("Member %03d", idx),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&member)
	}
	return member
}

// WithMemberID overrides the generated id.
func WithMemberID(id string) MemberOption {
	return func(m *persistence.Member) {
		m.ID = id
	}
}

// WithMemberPhone overrides the generated normalized phone.
func WithMemberPhone(phone string) MemberOption {
	return func(m *persistence.Member) {
		m.Phone = phone
	}
}

// WithMemberName overrides the generated full name.
func WithMemberName(name string) MemberOption {
	return func(m *persistence.Member) {
		m.FullName = name
	}
}

// Timetable returns open one-hour slots on date (YYYY-MM-DD) for every court,
// starting at firstHour and ending at lastHour.
func Timetable(date string, firstHour, lastHour int, courts ...int) []persistence.Slot {
	var slots []persistence.Slot
	for hour := firstHour; hour < lastHour; hour++ {
		for _, court := range courts {
			slots = append(slots, persistence.Slot{
				Date:       date,
				StartTime:  fmt.Sprintf("%02d:00", hour),
				EndTime:    fmt.Sprintf("%02d:00", hour+1),
				ResourceID: court,
			})
		}
	}
	return slots
}
