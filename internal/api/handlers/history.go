package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/acme/voice-squad/internal/repository"
)

const defaultHistoryLimit = 20

type callHistoryItem struct {
	EventID      string     `json:"event_id"`
	CallID       string     `json:"call_id"`
	EndedReason  string     `json:"ended_reason"`
	Category     string     `json:"category"`
	Success      bool       `json:"success"`
	DurationMs   int64      `json:"duration_ms"`
	AttemptCount int        `json:"attempt_count"`
	NextCallAt   *time.Time `json:"next_call_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type bookingHistoryItem struct {
	AppointmentID string    `json:"appointment_id"`
	StartsAt      time.Time `json:"starts_at"`
	Timezone      string    `json:"timezone"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *HandlerSet) contactCalls(ctx *fiber.Ctx) error {
	contactID := ctx.Params("id")
	if contactID == "" {
		return fiber.NewError(http.StatusBadRequest, "contact id is required")
	}

	limit := ctx.QueryInt("limit", defaultHistoryLimit)

	var pagingState []byte
	if cursor := ctx.Query("cursor"); cursor != "" {
		decoded, err := base64.URLEncoding.DecodeString(cursor)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid cursor")
		}
		pagingState = decoded
	}

	entries, nextState, err := h.container.Repositories().Journal.ListByContact(ctx.Context(), contactID, limit, pagingState)
	if err != nil {
		return translateError(err)
	}

	items := make([]callHistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, toCallHistoryItem(e))
	}

	resp := fiber.Map{"calls": items}
	if len(nextState) > 0 {
		resp["cursor"] = base64.URLEncoding.EncodeToString(nextState)
	}
	return ctx.Status(http.StatusOK).JSON(resp)
}

func (h *HandlerSet) contactBookings(ctx *fiber.Ctx) error {
	contactID := ctx.Params("id")
	if contactID == "" {
		return fiber.NewError(http.StatusBadRequest, "contact id is required")
	}

	limit := ctx.QueryInt("limit", defaultHistoryLimit)

	records, err := h.container.Repositories().BookingLog.ListByContact(ctx.Context(), contactID, limit)
	if err != nil {
		return translateError(err)
	}

	items := make([]bookingHistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, bookingHistoryItem{
			AppointmentID: r.AppointmentID,
			StartsAt:      r.StartsAt,
			Timezone:      r.Timezone,
			Title:         r.Title,
			Status:        r.Status,
			CreatedAt:     r.CreatedAt,
		})
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{"bookings": items})
}

func toCallHistoryItem(e repository.CallJournalEntry) callHistoryItem {
	return callHistoryItem{
		EventID:      e.EventID.String(),
		CallID:       e.CallID,
		EndedReason:  e.EndedReason,
		Category:     e.Category,
		Success:      e.Success,
		DurationMs:   e.DurationMs,
		AttemptCount: e.AttemptCount,
		NextCallAt:   e.NextCallAt,
		CreatedAt:    e.CreatedAt,
	}
}
