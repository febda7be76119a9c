package retryflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acme/voice-squad/internal/crm"
	"github.com/acme/voice-squad/internal/domain"
	"github.com/acme/voice-squad/internal/outcome"
	"github.com/acme/voice-squad/internal/queue"
	"github.com/acme/voice-squad/internal/repository"
	"github.com/acme/voice-squad/internal/schedule"
	apperrors "github.com/acme/voice-squad/pkg/errors"
	"github.com/acme/voice-squad/pkg/logger"
)

// Delays between attempts to read a non-zero attempt count; the CRM's
// replication can lag behind the increment made at dispatch time.
var attemptReadDelays = []time.Duration{3 * time.Second, 5 * time.Second, 7 * time.Second, 10 * time.Second, 15 * time.Second}

// EventClaimer drops duplicate webhook deliveries.
type EventClaimer interface {
	Claim(ctx context.Context, eventKey string) (bool, error)
	Release(ctx context.Context, eventKey string) error
}

// RedialScheduler records when a contact should be called next.
type RedialScheduler interface {
	Schedule(ctx context.Context, contactID string, at time.Time) error
}

// EventSink receives call-outcome events for downstream analytics.
type EventSink interface {
	PublishEvent(ctx context.Context, msg queue.CallEventMessage) error
}

// Decision summarizes what the retry flow did with a call-ended event.
type Decision struct {
	Duplicate    bool
	Outcome      domain.OutcomeCategory
	Success      bool
	NextCallTime *time.Time
	Directives   domain.Directives
}

// Service handles call-ended events: classify the outcome, schedule the next
// attempt, and fire escalation side effects. All durable state lives in the
// external CRM; every mutation here is idempotent or idempotency-guarded.
type Service struct {
	directory  crm.Directory
	journal    repository.CallJournal
	redial     RedialScheduler
	guard      EventClaimer
	events     EventSink
	logger     *logger.Logger
	smsMessage string

	nowFn      func() time.Time
	readDelays []time.Duration
}

// NewService builds the retry flow service.
func NewService(
	directory crm.Directory,
	journal repository.CallJournal,
	redial RedialScheduler,
	guard EventClaimer,
	events EventSink,
	lg *logger.Logger,
	smsMessage string,
) *Service {
	return &Service{
		directory:  directory,
		journal:    journal,
		redial:     redial,
		guard:      guard,
		events:     events,
		logger:     lg,
		smsMessage: smsMessage,
		nowFn:      func() time.Time { return time.Now().UTC() },
		readDelays: attemptReadDelays,
	}
}

// HandleCallEnded processes one normalized call-ended event.
func (s *Service) HandleCallEnded(ctx context.Context, event domain.CallEndedEvent) (*Decision, error) {
	if event.ContactID == "" || event.PhoneNumber == "" {
		s.logger.Warn("retry flow: event without contact identity, dropping",
			zap.String("call_id", event.CallID))
		return nil, apperrors.ErrMissingContact
	}

	if s.guard != nil && event.CallID != "" {
		first, err := s.guard.Claim(ctx, event.CallID)
		if err != nil {
			// Guard outage must not block handling; idempotency of the
			// writes below still holds.
			s.logger.Warn("retry flow: dedupe claim failed", zap.Error(err))
		} else if !first {
			s.logger.Info("retry flow: duplicate delivery ignored", zap.String("call_id", event.CallID))
			return &Decision{Duplicate: true}, nil
		}
	}

	contact, err := s.readContact(ctx, event.ContactID)
	if err != nil {
		s.releaseClaim(ctx, event.CallID)
		return nil, fmt.Errorf("retry flow: read contact: %w", err)
	}

	category := outcome.Classify(event.EndedReason)
	success := outcome.IsSuccessful(event.EndedReason, event.DurationSeconds)
	now := s.nowFn()

	timezone := s.resolveTimezone(event, contact)
	fields := map[string]string{
		crm.FieldCallResult:   string(category),
		crm.FieldEndedReason:  event.EndedReason,
		crm.FieldLastCallTime: now.Format(time.RFC3339),
	}
	if contact.Timezone == "" {
		// Set once, never overwritten.
		fields[crm.FieldTimezone] = timezone
	}

	decision := &Decision{Outcome: category, Success: success}

	if success {
		fields[crm.FieldCallStatus] = string(domain.CallStatusSuccess)
		fields[crm.FieldCallResult] = string(domain.OutcomeAnswered)
		fields[crm.FieldNextCallScheduled] = ""
		if err := s.directory.UpdateContactFields(ctx, contact.ID, fields); err != nil {
			s.releaseClaim(ctx, event.CallID)
			return nil, fmt.Errorf("retry flow: mark success: %w", err)
		}
		s.record(ctx, event, contact, category, success, nil, domain.Directives{})
		return decision, nil
	}

	next := schedule.NextRetryTime(now, category, timezone)
	decision.NextCallTime = &next

	directives := outcome.Escalate(contact.CallAttempts, category, contact.SMSSent)
	decision.Directives = directives

	status := domain.CallStatusRetryScheduled
	if directives.TagManualFollowUp {
		status = domain.CallStatusManualFollowUp
	}
	fields[crm.FieldCallStatus] = string(status)
	fields[crm.FieldNextCallScheduled] = next.Format(time.RFC3339)

	if err := s.directory.UpdateContactFields(ctx, contact.ID, fields); err != nil {
		s.releaseClaim(ctx, event.CallID)
		return nil, fmt.Errorf("retry flow: persist retry decision: %w", err)
	}

	s.executeDirectives(ctx, contact, event, directives)

	// Contacts escalated to manual follow-up leave the automatic loop; the
	// scheduled instant stays on the record for a human to act on.
	if !directives.TagManualFollowUp && s.redial != nil {
		if err := s.redial.Schedule(ctx, contact.ID, next); err != nil {
			s.logger.Error("retry flow: schedule redial", zap.Error(err), zap.String("contact_id", contact.ID))
		}
	}

	s.record(ctx, event, contact, category, success, &next, directives)
	return decision, nil
}

// PlanRetry computes the next attempt instant and the escalation directives
// without touching any external system. Exposed for callers that only need
// the decision.
func PlanRetry(now time.Time, attemptCount int, endedReason, timezone string, smsAlreadySent bool) (time.Time, domain.Directives) {
	category := outcome.Classify(endedReason)
	next := schedule.NextRetryTime(now, category, timezone)
	return next, outcome.Escalate(attemptCount, category, smsAlreadySent)
}

// readContact fetches the contact, retrying with increasing delays while the
// attempt count still reads zero. After the last delay the possibly-stale
// value is used as-is.
func (s *Service) readContact(ctx context.Context, contactID string) (*domain.Contact, error) {
	contact, err := s.directory.GetContact(ctx, contactID)
	if err == nil && contact.CallAttempts > 0 {
		return contact, nil
	}

	for _, delay := range s.readDelays {
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
		contact, err = s.directory.GetContact(ctx, contactID)
		if err != nil {
			continue
		}
		if contact.CallAttempts > 0 {
			return contact, nil
		}
	}

	if err != nil {
		return nil, err
	}
	s.logger.Warn("retry flow: attempt count still zero after retries, proceeding",
		zap.String("contact_id", contactID))
	return contact, nil
}

func (s *Service) executeDirectives(ctx context.Context, contact *domain.Contact, event domain.CallEndedEvent, directives domain.Directives) {
	if directives.SendSMS {
		if err := s.directory.SendSMS(ctx, contact.ID, contact.PhoneNumber, s.smsMessage); err != nil {
			// SMS failures never abort retry handling.
			s.logger.Error("retry flow: send sms", zap.Error(err), zap.String("contact_id", contact.ID))
		} else {
			sentFields := map[string]string{
				crm.FieldSMSSent:   "true",
				crm.FieldSMSSentAt: s.nowFn().Format(time.RFC3339),
			}
			if err := s.directory.UpdateContactFields(ctx, contact.ID, sentFields); err != nil {
				s.logger.Error("retry flow: record sms sent", zap.Error(err), zap.String("contact_id", contact.ID))
			}
		}
	}

	if directives.TagManualFollowUp && !contact.HasTag(domain.ManualFollowUpTag) {
		if err := s.directory.AddTag(ctx, contact.ID, domain.ManualFollowUpTag); err != nil {
			s.logger.Error("retry flow: add tag", zap.Error(err), zap.String("contact_id", contact.ID))
		}
	}
}

func (s *Service) record(ctx context.Context, event domain.CallEndedEvent, contact *domain.Contact, category domain.OutcomeCategory, success bool, next *time.Time, directives domain.Directives) {
	now := s.nowFn()

	if s.journal != nil {
		entry := repository.CallJournalEntry{
			EventID:      uuid.New(),
			ContactID:    contact.ID,
			CallID:       event.CallID,
			PhoneNumber:  event.PhoneNumber,
			EndedReason:  event.EndedReason,
			Category:     string(category),
			Success:      success,
			DurationMs:   int64(event.DurationSeconds * 1000),
			AttemptCount: contact.CallAttempts,
			NextCallAt:   next,
			CreatedAt:    now,
		}
		if err := s.journal.Append(ctx, entry); err != nil {
			s.logger.Error("retry flow: journal append", zap.Error(err))
		}
	}

	if s.events != nil {
		msg := queue.CallEventMessage{
			EventID:      uuid.NewString(),
			CallID:       event.CallID,
			ContactID:    contact.ID,
			PhoneNumber:  event.PhoneNumber,
			EndedReason:  event.EndedReason,
			Category:     string(category),
			Success:      success,
			DurationMs:   int64(event.DurationSeconds * 1000),
			AttemptCount: contact.CallAttempts,
			NextCallAt:   next,
			SMSSent:      directives.SendSMS,
			Tagged:       directives.TagManualFollowUp,
			OccurredAt:   now,
		}
		if err := s.events.PublishEvent(ctx, msg); err != nil {
			s.logger.Error("retry flow: publish event", zap.Error(err))
		}
	}
}

func (s *Service) resolveTimezone(event domain.CallEndedEvent, contact *domain.Contact) string {
	if contact.Timezone != "" {
		return contact.Timezone
	}
	if event.Timezone != "" {
		return event.Timezone
	}
	return schedule.ResolveTimezone(event.PhoneNumber)
}

func (s *Service) releaseClaim(ctx context.Context, callID string) {
	if s.guard == nil || callID == "" {
		return
	}
	if err := s.guard.Release(ctx, callID); err != nil {
		s.logger.Warn("retry flow: dedupe release failed", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
