package models

import "time"

// Purchase states. A purchase is created pending when the payment webhook is
// verified and moves to succeeded/failed as fulfillment progresses.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusSucceeded = "succeeded"
	PurchaseStatusFailed    = "failed"
)

// Purchase is the durable "payment received, fulfillment pending" record. It
// is what the reconciliation sweep scans to recover fulfillments that died
// between the webhook 200 and the report email.
type Purchase struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SessionID       string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"session_id"`
	VIN             string     `gorm:"type:varchar(17);not null;index" json:"vin"`
	Email           string     `gorm:"type:varchar(191);not null" json:"email"`
	Vehicle         string     `gorm:"type:varchar(191);not null;default:''" json:"vehicle"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Attempts        int        `gorm:"not null;default:0" json:"attempts"`
	ArtifactURL     string     `gorm:"type:varchar(512);not null;default:''" json:"artifact_url"`
	NotifiedAt      *time.Time `gorm:"type:timestamp;default:null" json:"notified_at,omitempty"`
	FulfillmentNote string     `gorm:"type:text" json:"fulfillment_note"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
