package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AutoVinReports/VinFox/app/models"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Record(event *models.PaymentWebhookEvent) (bool, error) {
	var existing models.PaymentWebhookEvent
	err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := r.db.Create(event).Error; err != nil {
		// The unique index catches the race between check and insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *webhookEventRepository) MarkProcessed(id uint) error {
	now := time.Now()
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).
		Update("processed_at", &now).Error
}
