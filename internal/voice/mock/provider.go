package mock

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/acme/voice-squad/internal/voice"
)

// Provider simulates the voice platform for local development.
type Provider struct {
	rng *rand.Rand
}

// NewProvider constructs a mock provider.
func NewProvider() *Provider {
	return &Provider{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// PlaceCall pretends to dial and returns a synthetic call id.
func (p *Provider) PlaceCall(ctx context.Context, req voice.OutboundCallRequest) (*voice.OutboundCall, error) {
	delay := time.Duration(100+p.rng.Intn(400)) * time.Millisecond
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}
	return &voice.OutboundCall{CallID: fmt.Sprintf("mock-%d", p.rng.Int63())}, nil
}
