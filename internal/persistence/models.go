package persistence

import "time"

// Member represents a verified club member keyed by normalized phone number.
type Member struct {
	ID        string
	Phone     string
	FullName  string
	CreatedAt time.Time
}

// Slot represents one bookable (date, start time, court) unit.
type Slot struct {
	Date       string
	StartTime  string
	EndTime    string
	ResourceID int
	Reserved   bool
	BookedBy   *string
	ReservedAt *time.Time
}

// SlotKey identifies a slot.
type SlotKey struct {
	Date       string
	StartTime  string
	ResourceID int
}

// ConversationSession stores the dialogue progress of one phone number.
type ConversationSession struct {
	Phone     string
	Step      string
	Date      *string
	Time      *string
	UpdatedAt time.Time
}
