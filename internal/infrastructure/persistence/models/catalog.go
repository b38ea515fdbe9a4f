package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modelmart/backend/internal/domain/catalog"
)

// ModelModel is the persistence model for the catalog Model entity.
// The developer email is denormalized for listing views; ownership
// checks always go through DeveloperID.
type ModelModel struct {
	ID             uuid.UUID             `gorm:"type:uuid;primary_key"`
	DeveloperID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	DeveloperEmail string                `gorm:"type:varchar(320);not null"`
	Name           string                `gorm:"type:varchar(200);not null"`
	Category       catalog.ModelCategory `gorm:"type:varchar(50);not null;index"`
	Price          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Description    string                `gorm:"type:text"`
	ImageURL       string                `gorm:"type:varchar(500)"`
	PurchaseCount  int64                 `gorm:"not null"`
	CreatedAt      time.Time             `gorm:"not null"`
	UpdatedAt      time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ModelModel) TableName() string {
	return "models"
}

// ToDomain converts the persistence model to a domain Model entity.
func (m *ModelModel) ToDomain() *catalog.Model {
	return &catalog.Model{
		ID:             m.ID,
		DeveloperID:    m.DeveloperID,
		DeveloperEmail: m.DeveloperEmail,
		Name:           m.Name,
		Category:       m.Category,
		Price:          m.Price,
		Description:    m.Description,
		ImageURL:       m.ImageURL,
		PurchaseCount:  m.PurchaseCount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Model entity.
func (m *ModelModel) FromDomain(d *catalog.Model) {
	m.ID = d.ID
	m.DeveloperID = d.DeveloperID
	m.DeveloperEmail = d.DeveloperEmail
	m.Name = d.Name
	m.Category = d.Category
	m.Price = d.Price
	m.Description = d.Description
	m.ImageURL = d.ImageURL
	m.PurchaseCount = d.PurchaseCount
	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt
}

// ModelModelFromDomain creates a new persistence model from a domain Model entity.
func ModelModelFromDomain(d *catalog.Model) *ModelModel {
	m := &ModelModel{}
	m.FromDomain(d)
	return m
}
