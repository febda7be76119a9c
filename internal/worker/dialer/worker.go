package dialer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/acme/voice-squad/internal/app"
	"github.com/acme/voice-squad/internal/crm"
	"github.com/acme/voice-squad/internal/domain"
	"github.com/acme/voice-squad/internal/queue"
	"github.com/acme/voice-squad/internal/voice"
)

// Worker consumes dial requests and places outbound calls through the voice
// platform. The dispatch side owns the attempt-count increment; the
// call-ended flow only ever reads it.
type Worker struct {
	container *app.Container
}

// New creates a dial worker instance.
func New(container *app.Container) *Worker {
	return &Worker{container: container}
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) error {
	cfg := w.container.Config
	reader := w.container.Kafka.NewReader(cfg.Kafka.DialTopic, cfg.Kafka.ConsumerGroupID)
	defer reader.Close()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.container.Logger.Error("dial worker: fetch message", zap.Error(err))
			continue
		}

		if err := w.processMessage(ctx, reader, m); err != nil {
			w.container.Logger.Error("dial worker: process", zap.Error(err))
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, reader *kafka.Reader, m kafka.Message) error {
	var dial queue.DialMessage
	if err := json.Unmarshal(m.Value, &dial); err != nil {
		_ = reader.CommitMessages(ctx, m)
		return fmt.Errorf("unmarshal dial: %w", err)
	}

	tracer := otel.Tracer("voicesquad.dialworker")
	sctx, span := tracer.Start(ctx, "dial.place", trace.WithAttributes(
		attribute.String("contact.id", dial.ContactID),
		attribute.Int("attempt", dial.AttemptCount+1),
	))
	defer span.End()

	if err := w.sleepUntil(sctx, dial.ScheduledAt); err != nil {
		span.RecordError(err)
		_ = reader.CommitMessages(sctx, m)
		return err
	}

	logger := w.container.Logger
	directory := w.container.CRM()

	// Increment before dialing so the call-ended webhook observes the new
	// count even with CRM replication lag.
	fields := map[string]string{
		crm.FieldCallAttempts: strconv.Itoa(dial.AttemptCount + 1),
		crm.FieldCallStatus:   string(domain.CallStatusCallingNow),
	}
	if err := directory.UpdateContactFields(sctx, dial.ContactID, fields); err != nil {
		span.RecordError(err)
		logger.Error("dial worker: increment attempts", zap.Error(err), zap.String("contact_id", dial.ContactID))
		// Leave the message uncommitted so the dial is retried.
		return err
	}

	provider := w.container.Voice()
	call, err := provider.PlaceCall(sctx, voice.OutboundCallRequest{
		ContactID:   dial.ContactID,
		PhoneNumber: dial.PhoneNumber,
		Timezone:    dial.Timezone,
	})
	if err != nil {
		span.RecordError(err)
		logger.Error("dial worker: place call", zap.Error(err), zap.String("contact_id", dial.ContactID))
		return err
	}

	logger.Info("dial worker: call placed",
		zap.String("contact_id", dial.ContactID),
		zap.String("call_id", call.CallID),
		zap.Int("attempt", dial.AttemptCount+1))

	if err := reader.CommitMessages(sctx, m); err != nil {
		span.RecordError(err)
		return fmt.Errorf("commit message: %w", err)
	}
	return nil
}

func (w *Worker) sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
