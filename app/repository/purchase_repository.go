package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AutoVinReports/VinFox/app/models"
)

// purchaseRepository implements the PurchaseRepository interface
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository instance
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(purchase *models.Purchase) error {
	return r.db.Create(purchase).Error
}

func (r *purchaseRepository) GetByID(id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.First(&purchase, id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) GetBySessionID(sessionID string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.Where("session_id = ?", sessionID).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) IncrementAttempts(id uint) error {
	return r.db.Model(&models.Purchase{}).Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *purchaseRepository) MarkSucceeded(id uint, artifactURL string) error {
	now := time.Now()
	return r.db.Model(&models.Purchase{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":           models.PurchaseStatusSucceeded,
		"artifact_url":     artifactURL,
		"notified_at":      &now,
		"fulfillment_note": "",
	}).Error
}

func (r *purchaseRepository) MarkFailed(id uint, note string) error {
	return r.db.Model(&models.Purchase{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":           models.PurchaseStatusFailed,
		"fulfillment_note": note,
	}).Error
}

// ListStalePending returns pending purchases that have not moved for longer
// than olderThan. The reconciliation sweep re-enqueues these.
func (r *purchaseRepository) ListStalePending(olderThan time.Duration, limit int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	cutoff := time.Now().Add(-olderThan)
	err := r.db.Where("status = ? AND updated_at < ?", models.PurchaseStatusPending, cutoff).
		Order("updated_at asc").
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}
