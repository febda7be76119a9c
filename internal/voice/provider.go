package voice

import "context"

// OutboundCallRequest asks the voice platform to place a call to a contact.
type OutboundCallRequest struct {
	ContactID   string
	PhoneNumber string
	Timezone    string
}

// OutboundCall is the platform's acknowledgement of a placed call.
type OutboundCall struct {
	CallID string
}

// Provider abstracts the voice-platform integration.
type Provider interface {
	PlaceCall(ctx context.Context, req OutboundCallRequest) (*OutboundCall, error)
}
