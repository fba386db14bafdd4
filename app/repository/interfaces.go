package repository

import (
	"time"

	"github.com/AutoVinReports/VinFox/app/models"
)

// PurchaseRepository defines the interface for purchase-related database operations
type PurchaseRepository interface {
	Create(purchase *models.Purchase) error
	GetByID(id uint) (*models.Purchase, error)
	// GetBySessionID returns (nil, nil) when no purchase exists for the session.
	GetBySessionID(sessionID string) (*models.Purchase, error)
	IncrementAttempts(id uint) error
	MarkSucceeded(id uint, artifactURL string) error
	MarkFailed(id uint, note string) error
	ListStalePending(olderThan time.Duration, limit int) ([]models.Purchase, error)
}

// WebhookEventRepository defines the interface for webhook event deduplication
type WebhookEventRepository interface {
	// Record persists a verified webhook event. Returns false when an event
	// with the same provider/event-id was already recorded.
	Record(event *models.PaymentWebhookEvent) (bool, error)
	MarkProcessed(id uint) error
}
