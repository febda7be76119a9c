package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acme/voice-squad/internal/domain"
	apperrors "github.com/acme/voice-squad/pkg/errors"
)

// callEndedEnvelope mirrors the voice platform's end-of-call report. Only the
// fields this service consumes are declared.
type callEndedEnvelope struct {
	Message struct {
		Type        string  `json:"type"`
		EndedReason string  `json:"endedReason"`
		DurationSec float64 `json:"durationSeconds"`
		EndedAt     string  `json:"endedAt"`
		Call        struct {
			ID       string `json:"id"`
			Customer struct {
				Number string `json:"number"`
			} `json:"customer"`
			Metadata struct {
				ContactID string `json:"contactId"`
				Timezone  string `json:"timezone"`
			} `json:"metadata"`
		} `json:"call"`
	} `json:"message"`
}

const reportType = "end-of-call-report"

// webhookTimeout bounds background processing of one report, including the
// staggered attempt-count reads.
const webhookTimeout = 2 * time.Minute

// callEnded ingests an end-of-call report. The platform treats non-2xx as a
// delivery failure and redelivers, so every decodable payload is acknowledged
// immediately and processed in the background.
func (h *HandlerSet) callEnded(ctx *fiber.Ctx) error {
	var envelope callEndedEnvelope
	if err := ctx.BodyParser(&envelope); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	if envelope.Message.Type != reportType {
		// Transcript updates, speech events and the like are not ours.
		return ctx.Status(http.StatusOK).JSON(fiber.Map{"status": "ignored"})
	}

	event := toCallEndedEvent(envelope)
	logger := h.container.Logger

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()

		decision, err := h.retryFlow.HandleCallEnded(bgCtx, event)
		if err != nil {
			if errors.Is(err, apperrors.ErrMissingContact) {
				return
			}
			logger.Error("webhook: call-ended handling failed",
				zap.Error(err), zap.String("call_id", event.CallID))
			return
		}
		if decision.Duplicate {
			return
		}
		logger.Info("webhook: call-ended handled",
			zap.String("call_id", event.CallID),
			zap.String("outcome", string(decision.Outcome)),
			zap.Bool("success", decision.Success))
	}()

	return ctx.Status(http.StatusOK).JSON(fiber.Map{"status": "accepted"})
}

func toCallEndedEvent(envelope callEndedEnvelope) domain.CallEndedEvent {
	msg := envelope.Message

	endedAt, err := time.Parse(time.RFC3339, msg.EndedAt)
	if err != nil {
		endedAt = time.Now().UTC()
	}

	return domain.CallEndedEvent{
		CallID:          msg.Call.ID,
		ContactID:       msg.Call.Metadata.ContactID,
		PhoneNumber:     msg.Call.Customer.Number,
		Timezone:        msg.Call.Metadata.Timezone,
		EndedReason:     msg.EndedReason,
		DurationSeconds: msg.DurationSec,
		EndedAt:         endedAt,
	}
}
