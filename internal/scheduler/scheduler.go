package scheduler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/acme/voice-squad/internal/app"
	"github.com/acme/voice-squad/internal/domain"
	"github.com/acme/voice-squad/internal/queue"
	"github.com/acme/voice-squad/internal/schedule"
)

// Scheduler drains the due-retry index and dispatches dial requests,
// re-checking calling hours at dispatch time.
type Scheduler struct {
	container *app.Container
}

// New constructs a scheduler.
func New(container *app.Container) *Scheduler {
	return &Scheduler{container: container}
}

// Run executes the scheduling loop until cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	cfg := s.container.Config
	interval := cfg.Scheduler.TickInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.tick(ctx); err != nil && ctx.Err() == nil {
			s.container.Logger.Error("scheduler tick failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) error {
	logger := s.container.Logger
	index := s.container.Redial()
	directory := s.container.CRM()
	dispatcher := s.container.Dispatchers().Dial

	tracer := otel.Tracer("voicesquad.scheduler")
	sctx, span := tracer.Start(ctx, "scheduler.tick")
	defer span.End()

	now := time.Now().UTC()
	due, err := index.Due(sctx, now, s.container.Config.Scheduler.MaxBatchSize)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("redial.due", len(due)))
	if len(due) == 0 {
		return nil
	}
	logger.Info("scheduler: due contacts", zap.Int("count", len(due)))

	for _, contactID := range due {
		contact, err := directory.GetContact(sctx, contactID)
		if err != nil {
			span.RecordError(err)
			logger.Error("scheduler: fetch contact", zap.Error(err), zap.String("contact_id", contactID))
			continue
		}

		// A human may have taken over since the retry was scheduled.
		if contact.CallStatus != domain.CallStatusRetryScheduled {
			logger.Info("scheduler: contact left retry state, dropping",
				zap.String("contact_id", contactID), zap.String("status", string(contact.CallStatus)))
			if err := index.Remove(sctx, contactID); err != nil {
				logger.Error("scheduler: remove contact", zap.Error(err), zap.String("contact_id", contactID))
			}
			continue
		}

		timezone := contact.Timezone
		if timezone == "" {
			timezone = schedule.ResolveTimezone(contact.PhoneNumber)
		}

		if window := schedule.CheckCallWindow(now, timezone); !window.CanCall {
			// Push the contact back out to the next valid instant.
			logger.Info("scheduler: outside calling hours, deferring",
				zap.String("contact_id", contactID),
				zap.String("reason", string(window.Reason)),
				zap.Time("next", window.NextCallTime))
			if err := index.Schedule(sctx, contactID, window.NextCallTime); err != nil {
				logger.Error("scheduler: defer contact", zap.Error(err), zap.String("contact_id", contactID))
			}
			continue
		}

		msg := queue.DialMessage{
			ContactID:    contact.ID,
			PhoneNumber:  contact.PhoneNumber,
			Timezone:     timezone,
			AttemptCount: contact.CallAttempts,
			ScheduledAt:  now,
			EnqueuedAt:   now,
		}
		if err := dispatcher.DispatchDial(sctx, msg); err != nil {
			span.RecordError(err)
			logger.Error("scheduler: dispatch dial", zap.Error(err), zap.String("contact_id", contactID))
			continue
		}

		if err := index.Remove(sctx, contactID); err != nil {
			logger.Error("scheduler: remove contact", zap.Error(err), zap.String("contact_id", contactID))
		}
		logger.Info("scheduler: dial dispatched", zap.String("contact_id", contactID))
	}

	return nil
}
