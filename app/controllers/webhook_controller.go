package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/AutoVinReports/VinFox/app/models"
	"github.com/AutoVinReports/VinFox/internal/pkg/fulfillment"
	"github.com/AutoVinReports/VinFox/internal/pkg/payments"
)

// HandleStripeWebhook verifies, records and enqueues checkout completions.
//
// The contract with Stripe is deliberately narrow: a bad signature is the
// only 4xx. The purchase row is written before anything else; once it exists
// we answer 200 no matter what happens downstream, because the reconciliation
// sweep recovers from that row alone. Only when not even the purchase row
// could be persisted do we answer 500 and let Stripe redeliver. Fulfillment
// itself runs on the queue.
func (s *Server) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	event, err := s.Payments.VerifyWebhook(payload, c.Get("Stripe-Signature"))
	if err != nil {
		if !errors.Is(err, payments.ErrSignatureInvalid) {
			log.Errorf("[Webhook] Verification error: %v", err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	if string(event.Type) != payments.EventCheckoutCompleted {
		return c.JSON(fiber.Map{"received": true})
	}

	completed, err := payments.CompletedSessionFromEvent(event)
	if err != nil {
		// Malformed metadata never heals on redelivery, so don't ask for one.
		log.Errorf("[Webhook] Dropping event %s: %v", event.ID, err)
		return c.JSON(fiber.Map{"received": true})
	}

	// The purchase row comes first: it is the one durable record the
	// reconciler scans, so nothing may be acked or deduped before it exists.
	purchase, err := s.Purchases.GetBySessionID(completed.SessionID)
	if err != nil {
		log.Errorf("[Webhook] Purchase lookup failed for session %s: %v", completed.SessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "temporary failure",
		})
	}
	if purchase == nil {
		purchase = &models.Purchase{
			SessionID: completed.SessionID,
			VIN:       completed.Intent.VIN,
			Email:     completed.Intent.Email,
			Vehicle:   completed.Intent.Vehicle,
			Status:    models.PurchaseStatusPending,
		}
		if err := s.Purchases.Create(purchase); err != nil {
			log.Errorf("[Webhook] Failed to persist purchase for session %s: %v", completed.SessionID, err)
			// Nothing durable exists yet; a non-2xx asks Stripe to redeliver.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "temporary failure",
			})
		}
	}

	if purchase.Status == models.PurchaseStatusSucceeded {
		return c.JSON(fiber.Map{"received": true})
	}

	created, err := s.Events.Record(&models.PaymentWebhookEvent{
		Provider:        models.WebhookProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
	})
	if err != nil {
		log.Errorf("[Webhook] Failed to record event %s: %v", event.ID, err)
	} else if !created {
		log.Infof("[Webhook] Duplicate delivery of event %s, already handled", event.ID)
		return c.JSON(fiber.Map{"received": true})
	}

	job, err := s.Queue.EnqueueReportJob(fulfillment.ReportJobPayload{
		PurchaseID: purchase.ID,
		VIN:        purchase.VIN,
		Email:      purchase.Email,
		Vehicle:    purchase.Vehicle,
	})
	if err != nil {
		// The purchase row is on disk, the reconciliation sweep will pick it up.
		log.Errorf("[Webhook] Enqueue failed for purchase %d: %v", purchase.ID, err)
		return c.JSON(fiber.Map{"received": true})
	}

	log.Infof("[Webhook] Queued fulfillment job %s for VIN %s", job.ID, purchase.VIN)
	return c.JSON(fiber.Map{"received": true})
}
