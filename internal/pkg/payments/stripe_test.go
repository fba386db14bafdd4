package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the way Stripe does:
// v1 = HMAC-SHA256(secret, "{timestamp}.{payload}").
func signPayload(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()
	signed := fmt.Sprintf("%d.%s", at.Unix(), payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signed))
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func completedSessionPayload(t *testing.T, vin, email, vehicle string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":      "evt_test_1",
		"type":    EventCheckoutCompleted,
		"created": time.Now().Unix(),
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id": "cs_test_1",
				"metadata": map[string]string{
					"vin":     vin,
					"email":   email,
					"vehicle": vehicle,
				},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestVerifyWebhookValidSignature(t *testing.T) {
	adapter := &Adapter{webhookSecret: testWebhookSecret}
	payload := completedSessionPayload(t, "1HGCM82633A004352", "buyer@example.com", "2003 Honda Accord")

	event, err := adapter.VerifyWebhook(payload, signPayload(t, payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, string(event.Type))
}

func TestVerifyWebhookInvalidSignature(t *testing.T) {
	adapter := &Adapter{webhookSecret: testWebhookSecret}
	payload := completedSessionPayload(t, "1HGCM82633A004352", "buyer@example.com", "2003 Honda Accord")

	tests := []struct {
		name   string
		header string
	}{
		{"wrong secret", signPayload(t, payload, "whsec_other", time.Now())},
		{"tampered payload", signPayload(t, append(payload, ' '), testWebhookSecret, time.Now())},
		{"garbage header", "t=0,v1=deadbeef"},
		{"empty header", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.VerifyWebhook(payload, tt.header)
			assert.ErrorIs(t, err, ErrSignatureInvalid)
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	intent := CheckoutIntent{
		VIN:     "1FTFW1ET1EFC12345",
		Email:   "buyer@example.com",
		Vehicle: "2014 Ford F-150",
	}

	assert.Equal(t, intent, IntentFromMetadata(intent.Metadata()))
}

func TestCompletedSessionFromEvent(t *testing.T) {
	payload := completedSessionPayload(t, "1FTFW1ET1EFC12345", "buyer@example.com", "2014 Ford F-150")
	var event stripe.Event
	require.NoError(t, json.Unmarshal(payload, &event))

	completed, err := CompletedSessionFromEvent(event)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", completed.SessionID)
	assert.Equal(t, CheckoutIntent{
		VIN:     "1FTFW1ET1EFC12345",
		Email:   "buyer@example.com",
		Vehicle: "2014 Ford F-150",
	}, completed.Intent)
}

func TestCompletedSessionFromEventMissingMetadata(t *testing.T) {
	payload := completedSessionPayload(t, "", "", "")
	var event stripe.Event
	require.NoError(t, json.Unmarshal(payload, &event))

	_, err := CompletedSessionFromEvent(event)
	assert.Error(t, err)
}

func TestCompletedSessionFromEventWrongType(t *testing.T) {
	event := stripe.Event{Type: "invoice.payment_succeeded"}

	_, err := CompletedSessionFromEvent(event)
	assert.Error(t, err)
}
