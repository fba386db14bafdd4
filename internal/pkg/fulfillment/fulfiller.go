package fulfillment

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/AutoVinReports/VinFox/app/models"
	"github.com/AutoVinReports/VinFox/app/repository"
	"github.com/AutoVinReports/VinFox/internal/pkg/mail"
	"github.com/AutoVinReports/VinFox/internal/pkg/report"
)

// Fulfiller runs the post-payment pipeline for one purchase: materialize the
// report artifact, email it to the buyer, and flip the purchase to succeeded.
// Errors bubble up to the queue, which owns retries; the buyer never sees a
// retry surface.
type Fulfiller struct {
	Provider  report.ArtifactProvider
	Mailer    mail.Mailer
	Purchases repository.PurchaseRepository
}

// Fulfill processes a single report fulfillment payload.
func (f *Fulfiller) Fulfill(ctx context.Context, payload *ReportJobPayload) error {
	purchase, err := f.Purchases.GetByID(payload.PurchaseID)
	if err != nil {
		return fmt.Errorf("purchase %d not found: %w", payload.PurchaseID, err)
	}

	// Redelivered or re-enqueued work for an already-delivered purchase is a
	// no-op, not an error.
	if purchase.Status == models.PurchaseStatusSucceeded {
		log.Infof("[Fulfillment] Purchase %d already fulfilled, skipping", purchase.ID)
		return nil
	}

	if err := f.Purchases.IncrementAttempts(purchase.ID); err != nil {
		log.Warnf("[Fulfillment] Failed to bump attempts for purchase %d: %v", purchase.ID, err)
	}

	artifact, err := f.Provider.Materialize(ctx, purchase.VIN, purchase.Vehicle)
	if err != nil {
		return fmt.Errorf("materialize report for %s: %w", purchase.VIN, err)
	}

	if err := f.Mailer.SendReportEmail(ctx, purchase.Email, purchase.Vehicle, purchase.VIN, artifact); err != nil {
		return fmt.Errorf("send report email to %s: %w", purchase.Email, err)
	}

	if err := f.Purchases.MarkSucceeded(purchase.ID, artifact.URL); err != nil {
		// The buyer has the report; only the ledger write failed. A retry
		// re-delivers the cached artifact without a second conversion.
		return fmt.Errorf("mark purchase %d succeeded: %w", purchase.ID, err)
	}

	log.Infof("[Fulfillment] Purchase %d fulfilled (vin=%s, email=%s)", purchase.ID, purchase.VIN, purchase.Email)
	return nil
}

// Abandon records a terminal fulfillment failure on the purchase ledger.
func (f *Fulfiller) Abandon(payload *ReportJobPayload, reason string) {
	if err := f.Purchases.MarkFailed(payload.PurchaseID, reason); err != nil {
		log.Errorf("[Fulfillment] Failed to mark purchase %d failed: %v", payload.PurchaseID, err)
	}
}
