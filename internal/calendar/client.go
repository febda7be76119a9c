package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/acme/voice-squad/internal/config"
	"github.com/acme/voice-squad/internal/domain"
	apperrors "github.com/acme/voice-squad/pkg/errors"
)

// API is the contract this service requires from the external calendar.
type API interface {
	ListFreeSlots(ctx context.Context, date time.Time, timezone string) ([]time.Time, error)
	CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*domain.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID string) error
}

// CreateAppointmentRequest carries everything the calendar needs to confirm
// a booking.
type CreateAppointmentRequest struct {
	ContactID string    `json:"contactId"`
	Start     time.Time `json:"startTime"`
	Title     string    `json:"title"`
}

// Client talks to the external calendar's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	calendarID string
	httpClient *http.Client
}

// NewClient builds a calendar client from configuration.
func NewClient(cfg config.CalendarConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		calendarID: cfg.CalendarID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type freeSlotsResponse struct {
	Slots []string `json:"slots"`
}

// ListFreeSlots fetches the free slot instants for the given date.
func (c *Client) ListFreeSlots(ctx context.Context, date time.Time, timezone string) ([]time.Time, error) {
	query := url.Values{}
	query.Set("calendarId", c.calendarID)
	query.Set("date", date.Format("2006-01-02"))
	query.Set("timezone", timezone)

	var payload freeSlotsResponse
	if err := c.do(ctx, http.MethodGet, "/free-slots?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}

	slots := make([]time.Time, 0, len(payload.Slots))
	for _, raw := range payload.Slots {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("calendar: bad slot %q: %w", raw, err)
		}
		slots = append(slots, t)
	}
	return slots, nil
}

type appointmentResponse struct {
	ID string `json:"id"`
}

// CreateAppointment books the slot and returns the confirmed appointment.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*domain.Appointment, error) {
	body := map[string]any{
		"calendarId": c.calendarID,
		"contactId":  req.ContactID,
		"startTime":  req.Start.Format(time.RFC3339),
		"title":      req.Title,
	}

	var payload appointmentResponse
	if err := c.do(ctx, http.MethodPost, "/appointments", body, &payload); err != nil {
		return nil, err
	}

	return &domain.Appointment{
		ID:        payload.ID,
		ContactID: req.ContactID,
		Start:     req.Start,
		Title:     req.Title,
	}, nil
}

// CancelAppointment removes an existing appointment.
func (c *Client) CancelAppointment(ctx context.Context, appointmentID string) error {
	return c.do(ctx, http.MethodDelete, "/appointments/"+appointmentID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("calendar: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: %s %s: %w", method, path, apperrors.ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("calendar: %s %s: %w", method, path, apperrors.ErrSlotTaken)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("calendar: %s %s: %w", method, path, apperrors.ErrNotFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("calendar: %s %s: status %d: %w", method, path, resp.StatusCode, apperrors.ErrUpstream)
	case resp.StatusCode >= 400:
		return fmt.Errorf("calendar: %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendar: decode response: %w", err)
	}
	return nil
}
