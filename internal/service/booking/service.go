package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acme/voice-squad/internal/booking"
	"github.com/acme/voice-squad/internal/calendar"
	"github.com/acme/voice-squad/internal/crm"
	"github.com/acme/voice-squad/internal/domain"
	"github.com/acme/voice-squad/internal/repository"
	apperrors "github.com/acme/voice-squad/pkg/errors"
	"github.com/acme/voice-squad/pkg/logger"
)

// Spoken-back responses. Internal detail stays in the logs.
const (
	msgUnderstoodNothing = "I'm sorry, I couldn't understand that date and time. Could you rephrase it?"
	msgOutsideWindow     = "We book appointments Monday through Friday between 9 AM and 5 PM. What other time works for you?"
	msgSlotFree          = "Yes, that time is available."
	msgSlotUnavailable   = "That time isn't available. How about one of these instead?"
	msgSlotJustTaken     = "I'm sorry, that slot was just taken. Let me check what else is open."
	msgBookingFailed     = "Something went wrong while booking. Could we try that again?"
	msgBooked            = "You're all set, the appointment is booked."
)

// CheckResult is the outcome of an availability query.
type CheckResult struct {
	Available    bool
	Message      string
	Alternatives []time.Time
}

// BookResult is the outcome of a booking attempt.
type BookResult struct {
	Success       bool
	AppointmentID string
	Message       string
	Alternatives  []time.Time
}

// Service coordinates availability checks and appointment booking against the
// external calendar, writing confirmed bookings back to the CRM.
type Service struct {
	cal        calendar.API
	directory  crm.Directory
	log        repository.BookingLog
	logger     *logger.Logger
	calendarTZ string

	nowFn func() time.Time
}

// NewService builds the booking service. calendarTZ is the calendar's
// reference timezone; all slot matching happens there.
func NewService(cal calendar.API, directory crm.Directory, log repository.BookingLog, lg *logger.Logger, calendarTZ string) *Service {
	return &Service{
		cal:        cal,
		directory:  directory,
		log:        log,
		logger:     lg,
		calendarTZ: calendarTZ,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

// CheckAvailability resolves the spoken date/time and reports whether a
// matching free slot exists. Invalid input never reaches the calendar.
func (s *Service) CheckAvailability(ctx context.Context, datePhrase, timePhrase, timezone string) CheckResult {
	candidate, callerLoc, err := s.resolveCandidate(datePhrase, timePhrase, timezone)
	if err != nil {
		return CheckResult{Available: false, Message: msgUnderstoodNothing}
	}

	if !booking.InBookingWindow(candidate) {
		return CheckResult{Available: false, Message: msgOutsideWindow}
	}

	slots, err := s.cal.ListFreeSlots(ctx, candidate, s.calendarTZ)
	if err != nil {
		s.logger.Error("booking: list free slots", zap.Error(err))
		return CheckResult{Available: false, Message: msgBookingFailed}
	}

	if booking.MatchSlot(candidate, slots) {
		return CheckResult{Available: true, Message: msgSlotFree}
	}

	return CheckResult{
		Available:    false,
		Message:      msgSlotUnavailable,
		Alternatives: booking.Alternatives(candidate, slots, callerLoc),
	}
}

// Book runs the full protocol: re-validate availability against a fresh slot
// list, create the appointment, then write booking metadata to the contact.
// Re-fetching guards against the slot being taken during a long conversation.
func (s *Service) Book(ctx context.Context, datePhrase, timePhrase, timezone, contactID, displayName string) BookResult {
	result, record := s.book(ctx, datePhrase, timePhrase, timezone, contactID, displayName)
	if result.Success && s.log != nil {
		if err := s.log.Insert(ctx, record); err != nil {
			s.logger.Error("booking: audit insert", zap.Error(err))
		}
	}
	return result
}

func (s *Service) book(ctx context.Context, datePhrase, timePhrase, timezone, contactID, displayName string) (BookResult, repository.BookingRecord) {
	var none repository.BookingRecord

	candidate, callerLoc, err := s.resolveCandidate(datePhrase, timePhrase, timezone)
	if err != nil {
		return BookResult{Success: false, Message: msgUnderstoodNothing}, none
	}

	if !booking.InBookingWindow(candidate) {
		return BookResult{Success: false, Message: msgOutsideWindow}, none
	}

	slots, err := s.cal.ListFreeSlots(ctx, candidate, s.calendarTZ)
	if err != nil {
		s.logger.Error("booking: re-check free slots", zap.Error(err))
		return BookResult{Success: false, Message: msgBookingFailed}, none
	}

	if !booking.MatchSlot(candidate, slots) {
		return BookResult{
			Success:      false,
			Message:      msgSlotJustTaken,
			Alternatives: booking.Alternatives(candidate, slots, callerLoc),
		}, none
	}

	title := fmt.Sprintf("Consultation with %s", displayName)
	appt, err := s.cal.CreateAppointment(ctx, calendar.CreateAppointmentRequest{
		ContactID: contactID,
		Start:     candidate,
		Title:     title,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrSlotTaken) {
			return BookResult{Success: false, Message: msgSlotJustTaken}, none
		}
		s.logger.Error("booking: create appointment", zap.Error(err))
		return BookResult{Success: false, Message: msgBookingFailed}, none
	}

	if err := s.writeBookingMetadata(ctx, contactID, candidate, timezone); err != nil {
		s.logger.Error("booking: write contact metadata", zap.Error(err), zap.String("appointment_id", appt.ID))
		return BookResult{Success: false, Message: msgBookingFailed}, none
	}

	record := repository.BookingRecord{
		ID:            uuid.New(),
		ContactID:     contactID,
		AppointmentID: appt.ID,
		StartsAt:      candidate,
		Timezone:      timezone,
		Title:         title,
		Status:        string(domain.BookingStatusConfirmed),
		CreatedAt:     s.nowFn(),
	}
	return BookResult{Success: true, AppointmentID: appt.ID, Message: msgBooked}, record
}

// Reschedule cancels the existing appointment, then books the new time. If
// cancellation succeeds and booking fails, no appointment remains; that gap
// is accepted and surfaced to the caller as a failed booking.
func (s *Service) Reschedule(ctx context.Context, appointmentID, datePhrase, timePhrase, timezone, contactID, displayName string) BookResult {
	if appointmentID == "" {
		return BookResult{Success: false, Message: msgUnderstoodNothing}
	}

	if err := s.cal.CancelAppointment(ctx, appointmentID); err != nil {
		s.logger.Error("booking: cancel appointment", zap.Error(err), zap.String("appointment_id", appointmentID))
		return BookResult{Success: false, Message: msgBookingFailed}
	}

	result, record := s.book(ctx, datePhrase, timePhrase, timezone, contactID, displayName)
	if result.Success && s.log != nil {
		if err := s.log.RecordReschedule(ctx, appointmentID, record); err != nil {
			s.logger.Error("booking: audit reschedule", zap.Error(err))
		}
	}
	return result
}

func (s *Service) resolveCandidate(datePhrase, timePhrase, timezone string) (time.Time, *time.Location, error) {
	resolved, err := booking.ResolveDateTime(s.nowFn(), datePhrase, timePhrase, timezone)
	if err != nil {
		return time.Time{}, nil, err
	}
	callerLoc := resolved.Location()

	calLoc, err := time.LoadLocation(s.calendarTZ)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("booking: calendar timezone: %w", err)
	}
	return resolved.In(calLoc), callerLoc, nil
}

func (s *Service) writeBookingMetadata(ctx context.Context, contactID string, start time.Time, timezone string) error {
	callerLoc, err := time.LoadLocation(timezone)
	if err != nil {
		callerLoc = start.Location()
	}
	local := start.In(callerLoc)

	fields := map[string]string{
		crm.FieldAppointmentDate: local.Format("2006-01-02"),
		crm.FieldAppointmentTime: local.Format("3:04 PM"),
		crm.FieldMeetingTimezone: timezone,
		crm.FieldConfirmStatus:   "confirmed",
	}
	return s.directory.UpdateContactFields(ctx, contactID, fields)
}

