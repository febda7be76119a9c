package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/acme/voice-squad/internal/config"
	"github.com/acme/voice-squad/internal/domain"
	apperrors "github.com/acme/voice-squad/pkg/errors"
)

// Custom-field keys of the contact record owned by this service.
const (
	FieldTimezone          = "timezone"
	FieldCallAttempts      = "call_attempts"
	FieldCallStatus        = "call_status"
	FieldCallResult        = "call_result"
	FieldEndedReason       = "ended_reason"
	FieldLastCallTime      = "last_call_time"
	FieldNextCallScheduled = "next_call_scheduled"
	FieldSMSSent           = "sms_sent"
	FieldSMSSentAt         = "sms_sent_at"
	FieldAppointmentDate   = "appointment_date"
	FieldAppointmentTime   = "appointment_time"
	FieldMeetingTimezone   = "meeting_timezone"
	FieldConfirmStatus     = "confirmation_status"
)

// Directory is the contract this service requires from the external CRM.
type Directory interface {
	GetContact(ctx context.Context, id string) (*domain.Contact, error)
	UpdateContactFields(ctx context.Context, id string, fields map[string]string) error
	AddTag(ctx context.Context, id string, tag string) error
	SendSMS(ctx context.Context, id, phone, message string) error
}

// Client talks to the CRM's REST API. Only the contact fields this service
// owns are ever written; the rest of the record is left untouched.
type Client struct {
	baseURL    string
	apiKey     string
	locationID string
	httpClient *http.Client
}

// NewClient builds a CRM client from configuration.
func NewClient(cfg config.CRMConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		locationID: cfg.LocationID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type contactEnvelope struct {
	Contact contactPayload `json:"contact"`
}

type contactPayload struct {
	ID           string            `json:"id"`
	Phone        string            `json:"phone"`
	Tags         []string          `json:"tags"`
	CustomFields map[string]string `json:"customFields"`
}

// GetContact fetches a contact and maps its custom fields onto the domain
// record.
func (c *Client) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	var envelope contactEnvelope
	if err := c.do(ctx, http.MethodGet, "/contacts/"+id, nil, &envelope); err != nil {
		return nil, err
	}
	return fromPayload(envelope.Contact), nil
}

// UpdateContactFields writes the given custom fields, leaving all other
// contact data untouched.
func (c *Client) UpdateContactFields(ctx context.Context, id string, fields map[string]string) error {
	body := map[string]any{"customFields": fields}
	return c.do(ctx, http.MethodPut, "/contacts/"+id, body, nil)
}

// AddTag appends a tag to the contact. The CRM treats tags as a set, so
// repeated adds are harmless.
func (c *Client) AddTag(ctx context.Context, id string, tag string) error {
	body := map[string]any{"tags": []string{tag}}
	return c.do(ctx, http.MethodPost, "/contacts/"+id+"/tags", body, nil)
}

// SendSMS dispatches an outbound SMS through the CRM's conversation API.
func (c *Client) SendSMS(ctx context.Context, id, phone, message string) error {
	body := map[string]any{
		"type":      "SMS",
		"contactId": id,
		"phone":     phone,
		"message":   message,
	}
	return c.do(ctx, http.MethodPost, "/conversations/messages", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("crm: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.locationID != "" {
		req.Header.Set("Location-Id", c.locationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crm: %s %s: %w", method, path, apperrors.ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("crm: %s %s: %w", method, path, apperrors.ErrNotFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("crm: %s %s: status %d: %w", method, path, resp.StatusCode, apperrors.ErrUpstream)
	case resp.StatusCode >= 400:
		return fmt.Errorf("crm: %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("crm: decode response: %w", err)
	}
	return nil
}

func fromPayload(p contactPayload) *domain.Contact {
	contact := &domain.Contact{
		ID:          p.ID,
		PhoneNumber: p.Phone,
		Tags:        p.Tags,
	}

	fields := p.CustomFields
	contact.Timezone = fields[FieldTimezone]
	contact.CallStatus = domain.CallStatus(fields[FieldCallStatus])
	contact.CallResult = domain.OutcomeCategory(fields[FieldCallResult])

	if raw := fields[FieldCallAttempts]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			contact.CallAttempts = n
		}
	}
	if raw := fields[FieldNextCallScheduled]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			contact.NextCall = &t
		}
	}
	contact.SMSSent = fields[FieldSMSSent] == "true"
	if raw := fields[FieldSMSSentAt]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			contact.SMSSentAt = &t
		}
	}

	return contact
}
