package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/acme/voice-squad/internal/config"
	apperrors "github.com/acme/voice-squad/pkg/errors"
)

// Client places outbound calls through the voice platform's REST API.
type Client struct {
	baseURL       string
	apiKey        string
	assistantID   string
	phoneNumberID string
	httpClient    *http.Client
}

// NewClient builds a voice-platform client from configuration.
func NewClient(cfg config.VoiceConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		assistantID:   cfg.AssistantID,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

type placeCallResponse struct {
	ID string `json:"id"`
}

// PlaceCall requests an outbound call to the contact's number. The contact id
// and timezone ride along as metadata so the call-ended webhook can key back
// to the CRM record.
func (c *Client) PlaceCall(ctx context.Context, req OutboundCallRequest) (*OutboundCall, error) {
	body := map[string]any{
		"assistantId":   c.assistantID,
		"phoneNumberId": c.phoneNumberID,
		"customer": map[string]any{
			"number": req.PhoneNumber,
		},
		"metadata": map[string]any{
			"contactId": req.ContactID,
			"timezone":  req.Timezone,
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("voice: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("voice: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("voice: place call: %w", apperrors.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("voice: place call: status %d: %w", resp.StatusCode, apperrors.ErrUpstream)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("voice: place call: status %d", resp.StatusCode)
	}

	var payload placeCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("voice: decode response: %w", err)
	}
	return &OutboundCall{CallID: payload.ID}, nil
}
