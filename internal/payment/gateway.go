package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Intent is the gateway-side handle for an in-flight payment.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// Event is a normalized gateway notification.
type Event struct {
	Type       string
	IntentID   string
	ReceiptURL string
	Message    string
}

// Gateway event types the webhook dispatcher understands.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// Gateway abstracts the payment provider so the service and its tests do not
// touch the Stripe SDK directly.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	// ParseEvent verifies and decodes a raw webhook delivery.
	ParseEvent(payload []byte, signature string) (Event, error)
}

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

// StripeGateway implements Gateway on the Stripe API.
type StripeGateway struct {
	intents       stripeIntentAPI
	webhookSecret string
}

// NewStripeGateway builds a gateway from the account's secret key. When
// webhookSecret is empty, webhook signatures are not verified; that mode is
// for local development only.
func NewStripeGateway(apiKey, webhookSecret string) (*StripeGateway, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("stripe: api key is required")
	}
	sc := client.New(apiKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents, webhookSecret: webhookSecret}, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if len(metadata) > 0 {
		params.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			params.Metadata[k] = v
		}
	}

	intent, err := g.intents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.intents.Cancel(intentID, params); err != nil {
		return fmt.Errorf("stripe: cancel payment intent: %w", err)
	}
	return nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (Event, error) {
	var event stripe.Event
	if g.webhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
		if err != nil {
			return Event{}, fmt.Errorf("stripe: verify webhook: %w", err)
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("stripe: decode webhook: %w", err)
	}

	out := Event{Type: string(event.Type)}
	switch out.Type {
	case EventIntentSucceeded, EventIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return Event{}, fmt.Errorf("stripe: decode payment intent: %w", err)
		}
		out.IntentID = intent.ID
		if charge := intent.LatestCharge; charge != nil {
			out.ReceiptURL = charge.ReceiptURL
		}
		if intent.LastPaymentError != nil {
			out.Message = intent.LastPaymentError.Msg
		}
	}
	return out, nil
}
