package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/acme/voice-squad/internal/calendar"
	"github.com/acme/voice-squad/internal/domain"
	"github.com/acme/voice-squad/internal/repository"
	apperrors "github.com/acme/voice-squad/pkg/errors"
	"github.com/acme/voice-squad/pkg/logger"
)

type fakeCalendar struct {
	slots       []time.Time
	slotsErr    error
	listCalls   int
	createErr   error
	createCalls int
	created     calendar.CreateAppointmentRequest
	cancelErr   error
	cancelled   []string
}

func (f *fakeCalendar) ListFreeSlots(ctx context.Context, date time.Time, timezone string) ([]time.Time, error) {
	f.listCalls++
	return f.slots, f.slotsErr
}

func (f *fakeCalendar) CreateAppointment(ctx context.Context, req calendar.CreateAppointmentRequest) (*domain.Appointment, error) {
	f.createCalls++
	f.created = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Appointment{ID: "appt-1", ContactID: req.ContactID, Start: req.Start, Title: req.Title}, nil
}

func (f *fakeCalendar) CancelAppointment(ctx context.Context, appointmentID string) error {
	f.cancelled = append(f.cancelled, appointmentID)
	return f.cancelErr
}

type fakeDirectory struct {
	updates []map[string]string
	err     error
}

func (f *fakeDirectory) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	return &domain.Contact{ID: id}, nil
}

func (f *fakeDirectory) UpdateContactFields(ctx context.Context, id string, fields map[string]string) error {
	f.updates = append(f.updates, fields)
	return f.err
}

func (f *fakeDirectory) AddTag(ctx context.Context, id, tag string) error { return nil }

func (f *fakeDirectory) SendSMS(ctx context.Context, id, phone, message string) error { return nil }

type fakeBookingLog struct {
	inserted     []repository.BookingRecord
	rescheduled  []string
	rescheduleTo []repository.BookingRecord
}

func (f *fakeBookingLog) Insert(ctx context.Context, record repository.BookingRecord) error {
	f.inserted = append(f.inserted, record)
	return nil
}

func (f *fakeBookingLog) UpdateStatus(ctx context.Context, appointmentID, status string) error {
	return nil
}

func (f *fakeBookingLog) RecordReschedule(ctx context.Context, oldAppointmentID string, record repository.BookingRecord) error {
	f.rescheduled = append(f.rescheduled, oldAppointmentID)
	f.rescheduleTo = append(f.rescheduleTo, record)
	return nil
}

func (f *fakeBookingLog) ListByContact(ctx context.Context, contactID string, limit int) ([]repository.BookingRecord, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func newTestService(cal *fakeCalendar, dir *fakeDirectory, log *fakeBookingLog) *Service {
	svc := NewService(cal, dir, log, testLogger(), "America/New_York")
	// Tuesday morning, well before any candidate slot.
	svc.nowFn = func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func nySlot(t *testing.T, hour int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2026, 3, 10, hour, 0, 0, 0, loc)
}

func TestCheckAvailabilityInvalidInputSkipsCalendar(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(cal, &fakeDirectory{}, &fakeBookingLog{})

	result := svc.CheckAvailability(context.Background(), "", "3 PM", "America/New_York")
	if result.Available {
		t.Fatal("expected unavailable for missing date")
	}
	if result.Message != msgUnderstoodNothing {
		t.Fatalf("expected %q, got %q", msgUnderstoodNothing, result.Message)
	}
	if cal.listCalls != 0 {
		t.Fatalf("calendar consulted %d times for invalid input", cal.listCalls)
	}
}

func TestCheckAvailabilityOutsideWindow(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(cal, &fakeDirectory{}, &fakeBookingLog{})

	// 7 PM is past the booking window.
	result := svc.CheckAvailability(context.Background(), "today", "7 PM", "America/New_York")
	if result.Available || result.Message != msgOutsideWindow {
		t.Fatalf("expected window rejection, got %+v", result)
	}
	if cal.listCalls != 0 {
		t.Fatal("calendar consulted for an out-of-window request")
	}
}

func TestCheckAvailabilityMatch(t *testing.T) {
	cal := &fakeCalendar{slots: []time.Time{nySlot(t, 14), nySlot(t, 15)}}
	svc := newTestService(cal, &fakeDirectory{}, &fakeBookingLog{})

	result := svc.CheckAvailability(context.Background(), "today", "2 PM", "America/New_York")
	if !result.Available {
		t.Fatalf("expected a match, got %+v", result)
	}
	if result.Message != msgSlotFree {
		t.Fatalf("expected %q, got %q", msgSlotFree, result.Message)
	}
}

func TestCheckAvailabilityNoMatchOffersAlternatives(t *testing.T) {
	cal := &fakeCalendar{slots: []time.Time{nySlot(t, 10), nySlot(t, 15), nySlot(t, 16)}}
	svc := newTestService(cal, &fakeDirectory{}, &fakeBookingLog{})

	result := svc.CheckAvailability(context.Background(), "today", "2 PM", "America/New_York")
	if result.Available {
		t.Fatal("expected no match")
	}
	if result.Message != msgSlotUnavailable {
		t.Fatalf("expected %q, got %q", msgSlotUnavailable, result.Message)
	}
	if len(result.Alternatives) == 0 || len(result.Alternatives) > 3 {
		t.Fatalf("expected 1-3 alternatives, got %d", len(result.Alternatives))
	}
}

func TestBookHappyPath(t *testing.T) {
	cal := &fakeCalendar{slots: []time.Time{nySlot(t, 14)}}
	dir := &fakeDirectory{}
	log := &fakeBookingLog{}
	svc := newTestService(cal, dir, log)

	result := svc.Book(context.Background(), "today", "2 PM", "America/New_York", "contact-1", "Jordan Blake")
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.AppointmentID != "appt-1" {
		t.Fatalf("expected appointment id appt-1, got %q", result.AppointmentID)
	}
	if cal.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", cal.createCalls)
	}
	if cal.created.Title != "Consultation with Jordan Blake" {
		t.Fatalf("unexpected title %q", cal.created.Title)
	}
	if len(dir.updates) != 1 {
		t.Fatalf("expected one contact update, got %d", len(dir.updates))
	}
	if len(log.inserted) != 1 {
		t.Fatalf("expected one audit row, got %d", len(log.inserted))
	}
	if log.inserted[0].AppointmentID != "appt-1" {
		t.Fatalf("audit row has wrong appointment id %q", log.inserted[0].AppointmentID)
	}
}

func TestBookSlotGoneOnRecheck(t *testing.T) {
	// The slot list no longer contains the candidate: the slot was taken
	// between the availability check and the booking call.
	cal := &fakeCalendar{slots: []time.Time{nySlot(t, 15)}}
	log := &fakeBookingLog{}
	svc := newTestService(cal, &fakeDirectory{}, log)

	result := svc.Book(context.Background(), "today", "2 PM", "America/New_York", "contact-1", "Jordan Blake")
	if result.Success {
		t.Fatal("expected booking to fail")
	}
	if result.Message != msgSlotJustTaken {
		t.Fatalf("expected %q, got %q", msgSlotJustTaken, result.Message)
	}
	if cal.createCalls != 0 {
		t.Fatal("appointment created despite the slot being gone")
	}
	if len(log.inserted) != 0 {
		t.Fatal("audit row written for a failed booking")
	}
}

func TestBookCreateConflict(t *testing.T) {
	cal := &fakeCalendar{
		slots:     []time.Time{nySlot(t, 14)},
		createErr: fmt.Errorf("calendar: %w", apperrors.ErrSlotTaken),
	}
	svc := newTestService(cal, &fakeDirectory{}, &fakeBookingLog{})

	result := svc.Book(context.Background(), "today", "2 PM", "America/New_York", "contact-1", "Jordan Blake")
	if result.Success {
		t.Fatal("expected booking to fail")
	}
	if result.Message != msgSlotJustTaken {
		t.Fatalf("expected %q, got %q", msgSlotJustTaken, result.Message)
	}
}

func TestRescheduleCancelsThenBooks(t *testing.T) {
	cal := &fakeCalendar{slots: []time.Time{nySlot(t, 14)}}
	log := &fakeBookingLog{}
	svc := newTestService(cal, &fakeDirectory{}, log)

	result := svc.Reschedule(context.Background(), "old-appt", "today", "2 PM", "America/New_York", "contact-1", "Jordan Blake")
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(cal.cancelled) != 1 || cal.cancelled[0] != "old-appt" {
		t.Fatalf("expected old-appt cancelled, got %v", cal.cancelled)
	}
	if len(log.rescheduled) != 1 || log.rescheduled[0] != "old-appt" {
		t.Fatalf("expected reschedule audit against old-appt, got %v", log.rescheduled)
	}
	if len(log.inserted) != 0 {
		t.Fatal("plain insert used instead of the reschedule audit")
	}
}

func TestRescheduleWithoutAppointmentID(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(cal, &fakeDirectory{}, &fakeBookingLog{})

	result := svc.Reschedule(context.Background(), "", "today", "2 PM", "America/New_York", "contact-1", "Jordan Blake")
	if result.Success {
		t.Fatal("expected failure without an appointment id")
	}
	if len(cal.cancelled) != 0 {
		t.Fatal("cancel attempted without an appointment id")
	}
}
