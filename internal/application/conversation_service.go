package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/court-reservations/internal/logging"
	"github.com/example/court-reservations/internal/phone"
)

// MemberDirectory resolves normalized phones to members. LookupMember
// returns ErrNotFound for phones that are not registered.
type MemberDirectory interface {
	LookupMember(ctx context.Context, phone string) (Member, error)
}

// ConversationService drives the booking dialogue: one inbound message in,
// one reply text out. Every failure is turned into a reply.
type ConversationService struct {
	members      MemberDirectory
	sessions     *SessionManager
	availability *AvailabilityService
	booking      *BookingService
	now          func() time.Time
	location     *time.Location
	logger       *slog.Logger
}

// NewConversationService constructs a conversation service.
func NewConversationService(members MemberDirectory, sessions *SessionManager, availability *AvailabilityService, booking *BookingService, now func() time.Time, location *time.Location) *ConversationService {
	return NewConversationServiceWithLogger(members, sessions, availability, booking, now, location, nil)
}

// NewConversationServiceWithLogger constructs a conversation service with a specified logger.
func NewConversationServiceWithLogger(members MemberDirectory, sessions *SessionManager, availability *AvailabilityService, booking *BookingService, now func() time.Time, location *time.Location, logger *slog.Logger) *ConversationService {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &ConversationService{
		members:      members,
		sessions:     sessions,
		availability: availability,
		booking:      booking,
		now:          now,
		location:     location,
		logger:       logging.OrDefault(logger),
	}
}

func (s *ConversationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ConversationService", operation, attrs...)
}

type turn struct {
	phone   string
	member  Member
	session Session
	found   bool
	logger  *slog.Logger
}

// HandleMessage processes one message from a sender and returns the reply.
func (s *ConversationService) HandleMessage(ctx context.Context, from, body string) string {
	if s == nil || s.members == nil || s.sessions == nil || s.availability == nil || s.booking == nil {
		slog.Default().ErrorContext(ctx, "ConversationService is not configured")
		return replyApology()
	}

	phoneKey := phone.Normalize(from)
	logger := s.loggerWith(ctx, "HandleMessage", "phone", phone.Mask(phoneKey))

	if phoneKey == "" {
		logger.WarnContext(ctx, "message without a usable sender")
		return replyNotRegistered()
	}

	member, err := s.members.LookupMember(ctx, phoneKey)
	if errors.Is(err, ErrNotFound) {
		logger.InfoContext(ctx, "message from unregistered phone")
		return replyNotRegistered()
	}
	if err != nil {
		return s.apologize(ctx, logger, storageError("lookup member", err))
	}

	session, found, err := s.sessions.Load(ctx, phoneKey)
	if err != nil {
		return s.apologize(ctx, logger, err)
	}
	if !found {
		session = Session{Phone: phoneKey, Step: StepIdle}
	}

	input := Classify(body, session.Step)
	t := &turn{
		phone:   phoneKey,
		member:  member,
		session: session,
		found:   found,
		logger:  logger.With("member_id", member.ID, "step", string(session.Step), "input", input.Kind()),
	}
	t.logger.DebugContext(ctx, "message classified")

	switch in := input.(type) {
	case DateInput:
		return s.onDate(ctx, t, in)
	case TimeInput:
		return s.onTime(ctx, t, in)
	case ResourceSelection:
		return s.onResource(ctx, t, in)
	case Cancellation:
		return s.onCancel(ctx, t)
	default:
		return s.prompt(t)
	}
}

func (s *ConversationService) onDate(ctx context.Context, t *turn, in DateInput) string {
	date, err := resolveDate(in, s.now().In(s.location))
	if err != nil {
		t.logger.InfoContext(ctx, "date rejected", "error", err, "error_kind", ErrorKind(err))
		return replyInvalidDate()
	}

	ranges, err := s.availability.TimesForDate(ctx, date)
	if err != nil {
		return s.apologize(ctx, t.logger, err)
	}

	if len(ranges) == 0 {
		if t.found {
			if err := s.sessions.Clear(ctx, t.phone); err != nil {
				return s.apologize(ctx, t.logger, err)
			}
		}
		t.logger.InfoContext(ctx, "no availability", "date", date.Format(DateLayout))
		return replyNoAvailability(date)
	}

	next := Session{Phone: t.phone, Step: StepAwaitingTime, Date: date}
	if err := s.sessions.Save(ctx, next); err != nil {
		return s.apologize(ctx, t.logger, err)
	}
	t.logger.InfoContext(ctx, "date selected", "date", date.Format(DateLayout), "ranges", len(ranges))
	return replyTimes(date, ranges)
}

func (s *ConversationService) onTime(ctx context.Context, t *turn, in TimeInput) string {
	if !t.session.HasDate() {
		return s.restart(ctx, t)
	}

	start, err := resolveTime(in)
	if err != nil {
		t.logger.InfoContext(ctx, "time rejected", "error", err, "error_kind", ErrorKind(err))
		return replyInvalidTime()
	}

	ids, err := s.availability.ResourcesForDateTime(ctx, t.session.Date, start)
	if err != nil {
		return s.apologize(ctx, t.logger, err)
	}
	if len(ids) == 0 {
		t.logger.InfoContext(ctx, "no courts at time", "start_time", start)
		return replyNoResourcesAt(t.session.Date, start)
	}

	next := Session{Phone: t.phone, Step: StepAwaitingResource, Date: t.session.Date, Time: start}
	if err := s.sessions.Save(ctx, next); err != nil {
		return s.apologize(ctx, t.logger, err)
	}
	t.logger.InfoContext(ctx, "time selected", "start_time", start, "courts", len(ids))
	return replyResources(t.session.Date, start, ids)
}

func (s *ConversationService) onResource(ctx context.Context, t *turn, in ResourceSelection) string {
	if !t.session.HasDate() || t.session.Time == "" {
		return s.restart(ctx, t)
	}

	key := SlotKey{Date: t.session.Date, StartTime: t.session.Time, ResourceID: in.ResourceID}
	outcome, err := s.booking.Book(ctx, BookingRequest{Key: key, Member: t.member})
	if err != nil {
		return s.apologize(ctx, t.logger, err)
	}

	switch outcome {
	case BookingConfirmed:
		if err := s.sessions.Clear(ctx, t.phone); err != nil {
			t.logger.ErrorContext(ctx, "booking confirmed but session not cleared", "error", err, "error_kind", ErrorKind(err))
		}
		return replyConfirmed(t.member, key)

	case BookingConflict:
		next := Session{Phone: t.phone, Step: StepAwaitingTime, Date: t.session.Date}
		if err := s.sessions.Save(ctx, next); err != nil {
			return s.apologize(ctx, t.logger, err)
		}
		ranges, err := s.availability.TimesForDate(ctx, t.session.Date)
		if err != nil {
			t.logger.WarnContext(ctx, "could not refresh availability after conflict", "error", err)
			ranges = nil
		}
		return replyConflict(key, ranges)

	default:
		if err := s.sessions.Clear(ctx, t.phone); err != nil {
			return s.apologize(ctx, t.logger, err)
		}
		return replySlotMissing()
	}
}

func (s *ConversationService) onCancel(ctx context.Context, t *turn) string {
	if !t.found {
		return replyGreeting(t.member)
	}
	if err := s.sessions.Clear(ctx, t.phone); err != nil {
		return s.apologize(ctx, t.logger, err)
	}
	t.logger.InfoContext(ctx, "dialogue cancelled")
	return replyCancelled()
}

// prompt repeats what the current step expects without touching the session.
func (s *ConversationService) prompt(t *turn) string {
	switch {
	case t.session.Step == StepAwaitingTime && t.session.HasDate():
		return replyTimePrompt(t.session.Date)
	case t.session.Step == StepAwaitingResource && t.session.HasDate() && t.session.Time != "":
		return replyResourcePrompt(t.session.Date, t.session.Time)
	default:
		return replyGreeting(t.member)
	}
}

// restart drops a session that is missing the fields its step requires.
func (s *ConversationService) restart(ctx context.Context, t *turn) string {
	t.logger.WarnContext(ctx, "inconsistent session dropped")
	if err := s.sessions.Clear(ctx, t.phone); err != nil {
		return s.apologize(ctx, t.logger, err)
	}
	return replyGreeting(t.member)
}

func (s *ConversationService) apologize(ctx context.Context, logger *slog.Logger, err error) string {
	logger.ErrorContext(ctx, "failed to handle message", "error", err, "error_kind", ErrorKind(err))
	return replyApology()
}
