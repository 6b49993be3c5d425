package payment

import (
	"fmt"

	"github.com/stripe/stripe-go/v76/webhook"
)

// Event is a verified inbound gateway event. Object holds the raw JSON of the
// event's primary object.
type Event struct {
	Type   string
	Object []byte
}

// WebhookVerifier authenticates inbound gateway callbacks. A callback that
// fails verification must cause no state change.
type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (*Event, error)
}

// StripeWebhookVerifier checks the Stripe-Signature header against the
// endpoint's signing secret.
type StripeWebhookVerifier struct {
	secret string
}

func NewStripeWebhookVerifier(secret string) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{secret: secret}
}

func (v *StripeWebhookVerifier) Verify(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, v.secret)
	if err != nil {
		return nil, fmt.Errorf("webhook verification failed: %w", err)
	}
	return &Event{
		Type:   string(event.Type),
		Object: event.Data.Raw,
	}, nil
}
