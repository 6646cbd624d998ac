package application

import "time"

// DateLayout is the canonical date format shared with the slot store.
const DateLayout = "2006-01-02"

// Member is a verified club member.
type Member struct {
	ID       string
	Phone    string
	FullName string
}

// Step names the position of a member in the booking dialogue.
type Step string

const (
	StepIdle             Step = "idle"
	StepAwaitingTime     Step = "awaiting_time"
	StepAwaitingResource Step = "awaiting_resource"
)

// Session is the per-phone dialogue state. Date is set from StepAwaitingTime
// on and Time from StepAwaitingResource on.
type Session struct {
	Phone     string
	Step      Step
	Date      time.Time
	Time      string
	UpdatedAt time.Time
}

// HasDate reports whether a date has been chosen.
func (s Session) HasDate() bool {
	return !s.Date.IsZero()
}

// SlotKey identifies a bookable slot.
type SlotKey struct {
	Date       time.Time
	StartTime  string
	ResourceID int
}

// Slot is an open or reserved slot as read from the store.
type Slot struct {
	SlotKey
	EndTime  string
	Reserved bool
}

// TimeRange groups the open slots sharing a start and end time.
type TimeRange struct {
	Start         string
	End           string
	ResourceIDs   []int
	ResourceCount int
}

// BookingOutcome is the result of a commit attempt.
type BookingOutcome int

const (
	BookingConfirmed BookingOutcome = iota + 1
	BookingConflict
	BookingNotFound
)

func (o BookingOutcome) String() string {
	switch o {
	case BookingConfirmed:
		return "confirmed"
	case BookingConflict:
		return "conflict"
	case BookingNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// BookingRequest names the slot a member wants.
type BookingRequest struct {
	Key    SlotKey
	Member Member
}
