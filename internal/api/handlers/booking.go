package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

type availabilityRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

type bookRequest struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Timezone    string `json:"timezone"`
	ContactID   string `json:"contact_id"`
	DisplayName string `json:"display_name"`
}

type rescheduleRequest struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Timezone      string `json:"timezone"`
	ContactID     string `json:"contact_id"`
	DisplayName   string `json:"display_name"`
}

func (h *HandlerSet) checkAvailability(ctx *fiber.Ctx) error {
	var req availabilityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	result := h.booking.CheckAvailability(ctx.Context(), req.Date, req.Time, req.Timezone)

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"available":    result.Available,
		"message":      result.Message,
		"alternatives": spokenTimes(result.Alternatives),
	})
}

func (h *HandlerSet) bookAppointment(ctx *fiber.Ctx) error {
	var req bookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.ContactID == "" {
		return fiber.NewError(http.StatusBadRequest, "contact_id is required")
	}

	result := h.booking.Book(ctx.Context(), req.Date, req.Time, req.Timezone, req.ContactID, req.DisplayName)

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"success":        result.Success,
		"appointment_id": result.AppointmentID,
		"message":        result.Message,
		"alternatives":   spokenTimes(result.Alternatives),
	})
}

func (h *HandlerSet) rescheduleAppointment(ctx *fiber.Ctx) error {
	var req rescheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.ContactID == "" {
		return fiber.NewError(http.StatusBadRequest, "contact_id is required")
	}

	result := h.booking.Reschedule(ctx.Context(), req.AppointmentID, req.Date, req.Time, req.Timezone, req.ContactID, req.DisplayName)

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"success":        result.Success,
		"appointment_id": result.AppointmentID,
		"message":        result.Message,
		"alternatives":   spokenTimes(result.Alternatives),
	})
}

// spokenTimes renders slot alternatives the way the assistant should say
// them, in the caller's local time.
func spokenTimes(slots []time.Time) []string {
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.Format("Monday, January 2 at 3:04 PM"))
	}
	return out
}
