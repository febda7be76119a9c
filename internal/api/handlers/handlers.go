package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acme/voice-squad/internal/app"
	bookingsvc "github.com/acme/voice-squad/internal/service/booking"
	retryflowsvc "github.com/acme/voice-squad/internal/service/retryflow"
)

// HandlerSet bundles all HTTP handlers.
type HandlerSet struct {
	container *app.Container
	retryFlow *retryflowsvc.Service
	booking   *bookingsvc.Service
}

// NewHandlerSet creates a new handler bundle.
func NewHandlerSet(container *app.Container) *HandlerSet {
	services := container.Services()
	return &HandlerSet{
		container: container,
		retryFlow: services.RetryFlow,
		booking:   services.Booking,
	}
}

// Register wires all routes onto the fiber app.
func (h *HandlerSet) Register(app *fiber.App) {
	app.Get("/healthz", h.health)

	webhooks := app.Group("/webhooks")
	webhooks.Post("/voice/call-ended", h.callEnded)

	// Tool endpoints invoked by the voice assistant mid-conversation.
	tools := app.Group("/tools")
	tools.Post("/check-availability", h.checkAvailability)
	tools.Post("/book-appointment", h.bookAppointment)
	tools.Post("/reschedule-appointment", h.rescheduleAppointment)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	contacts := v1.Group("/contacts")
	contacts.Get("/:id/calls", h.contactCalls)
	contacts.Get("/:id/bookings", h.contactBookings)
}

// ErrorHandler provides centralized error responses.
func (h *HandlerSet) ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code == fiber.StatusInternalServerError {
		h.container.Logger.Error("request failed", zap.Error(err))
	}

	return ctx.Status(code).JSON(fiber.Map{
		"error":    message,
		"trace_id": ctx.GetRespHeader("Trace-Id"),
	})
}

func (h *HandlerSet) health(ctx *fiber.Ctx) error {
	healthCtx, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
	defer cancel()

	errs := make(map[string]string)

	if err := h.container.Postgres.DB().PingContext(healthCtx); err != nil {
		errs["postgres"] = err.Error()
	}

	if err := h.container.Redis.Inner().Ping(healthCtx).Err(); err != nil {
		errs["redis"] = err.Error()
	}

	if err := h.container.Scylla.Session().Query("SELECT now() FROM system.local").WithContext(healthCtx).Exec(); err != nil {
		errs["scylla"] = err.Error()
	}

	status := fiber.StatusOK
	if len(errs) > 0 {
		status = fiber.StatusServiceUnavailable
	}

	return ctx.Status(status).JSON(fiber.Map{"status": "ok", "errors": errs})
}
