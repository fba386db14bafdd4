package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v83"

	"github.com/AutoVinReports/VinFox/internal/pkg/env"
)

// ErrSignatureInvalid means the webhook payload could not be authenticated.
// The caller must respond 400 and perform no side effects.
var ErrSignatureInvalid = errors.New("payments: webhook signature invalid")

// EventCheckoutCompleted is the only Stripe event the fulfillment flow acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutIntent carries the purchase metadata. It is attached verbatim to the
// Stripe session and must round-trip unchanged back through the webhook.
type CheckoutIntent struct {
	VIN     string
	Email   string
	Vehicle string
}

// Metadata converts the intent into Stripe session metadata.
func (i CheckoutIntent) Metadata() map[string]string {
	return map[string]string{
		"vin":     i.VIN,
		"email":   i.Email,
		"vehicle": i.Vehicle,
	}
}

// IntentFromMetadata reconstructs the intent echoed back on a completed
// checkout session.
func IntentFromMetadata(metadata map[string]string) CheckoutIntent {
	return CheckoutIntent{
		VIN:     metadata["vin"],
		Email:   metadata["email"],
		Vehicle: metadata["vehicle"],
	}
}

// Adapter wraps the Stripe client for checkout-session creation and webhook
// signature verification.
type Adapter struct {
	client        *stripe.Client
	webhookSecret string

	productName string
	currency    string
	unitAmount  int64
	successURL  string
	cancelURL   string
}

// NewAdapterFromEnv builds the adapter from STRIPE_* environment variables.
func NewAdapterFromEnv() *Adapter {
	unitAmount, err := strconv.ParseInt(env.GetEnv("REPORT_PRICE_CENTS", "3499"), 10, 64)
	if err != nil || unitAmount <= 0 {
		unitAmount = 3499
	}

	return &Adapter{
		client:        stripe.NewClient(env.GetEnv("STRIPE_SECRET_KEY", "")),
		webhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		productName:   env.GetEnv("REPORT_PRODUCT_NAME", "Vehicle History Report"),
		currency:      env.GetEnv("REPORT_PRICE_CURRENCY", "usd"),
		unitAmount:    unitAmount,
		successURL:    env.GetEnv("CHECKOUT_SUCCESS_URL", "https://vinfox.example.com/success"),
		cancelURL:     env.GetEnv("CHECKOUT_CANCEL_URL", "https://vinfox.example.com/cancel"),
	}
}

// CreateCheckoutSession creates a one-time payment session with a fixed price
// and the intent attached as metadata, returning the redirect URL.
func (a *Adapter) CreateCheckoutSession(ctx context.Context, intent CheckoutIntent) (string, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(a.currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s - %s", a.productName, intent.Vehicle)),
					},
					UnitAmount: stripe.Int64(a.unitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(intent.Email),
		SuccessURL:    stripe.String(a.successURL),
		CancelURL:     stripe.String(a.cancelURL),
	}
	params.Metadata = intent.Metadata()

	session, err := a.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}

// VerifyWebhook authenticates a raw webhook payload against the signing
// secret. Verification runs on the exact bytes Stripe signed, so callers must
// pass the unparsed request body.
func (a *Adapter) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	event, err := stripe.ConstructEvent(payload, signatureHeader, a.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return event, nil
}

// CompletedSession is the slice of a checkout.session.completed event the
// fulfillment flow needs.
type CompletedSession struct {
	SessionID string
	Intent    CheckoutIntent
}

// CompletedSessionFromEvent unpacks a checkout.session.completed event.
func CompletedSessionFromEvent(event stripe.Event) (*CompletedSession, error) {
	if string(event.Type) != EventCheckoutCompleted {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	intent := IntentFromMetadata(session.Metadata)
	if intent.VIN == "" || intent.Email == "" {
		return nil, fmt.Errorf("metadata vin/email missing on checkout session %s", session.ID)
	}

	return &CompletedSession{
		SessionID: session.ID,
		Intent:    intent,
	}, nil
}
