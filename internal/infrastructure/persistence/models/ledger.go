package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modelmart/backend/internal/domain/ledger"
)

// PurchaseRecordModel is the persistence model for PurchaseRecord.
// The composite unique index on (buyer_id, model_id) enforces
// one purchase per buyer per model at the database level.
type PurchaseRecordModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	BuyerID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_buyer_model,priority:1"`
	BuyerEmail     string    `gorm:"type:varchar(320);not null"`
	ModelID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_buyer_model,priority:2"`
	ModelName      string    `gorm:"type:varchar(200);not null"`
	DeveloperID    uuid.UUID `gorm:"type:uuid;not null;index"`
	DeveloperEmail string    `gorm:"type:varchar(320);not null"`
	PurchasedAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PurchaseRecordModel) TableName() string {
	return "purchase_records"
}

// ToDomain converts the persistence model to a domain PurchaseRecord.
func (m *PurchaseRecordModel) ToDomain() *ledger.PurchaseRecord {
	return &ledger.PurchaseRecord{
		ID:             m.ID,
		BuyerID:        m.BuyerID,
		BuyerEmail:     m.BuyerEmail,
		ModelID:        m.ModelID,
		ModelName:      m.ModelName,
		DeveloperID:    m.DeveloperID,
		DeveloperEmail: m.DeveloperEmail,
		PurchasedAt:    m.PurchasedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseRecord.
func (m *PurchaseRecordModel) FromDomain(r *ledger.PurchaseRecord) {
	m.ID = r.ID
	m.BuyerID = r.BuyerID
	m.BuyerEmail = r.BuyerEmail
	m.ModelID = r.ModelID
	m.ModelName = r.ModelName
	m.DeveloperID = r.DeveloperID
	m.DeveloperEmail = r.DeveloperEmail
	m.PurchasedAt = r.PurchasedAt
}

// PurchaseRecordModelFromDomain creates a new persistence model from a domain PurchaseRecord.
func PurchaseRecordModelFromDomain(r *ledger.PurchaseRecord) *PurchaseRecordModel {
	m := &PurchaseRecordModel{}
	m.FromDomain(r)
	return m
}
