package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modelmart/backend/internal/domain/shared"
)

// ModelCategory represents the category of a published model
type ModelCategory string

const (
	CategoryLLM            ModelCategory = "LLM"
	CategoryVision         ModelCategory = "Computer Vision"
	CategoryAudio          ModelCategory = "Audio"
	CategoryDataAnalysis   ModelCategory = "Data Analysis"
	CategoryRecommendation ModelCategory = "Recommendation"
	CategoryOther          ModelCategory = "Other"
)

// IsValid checks if the category is a known ModelCategory
func (c ModelCategory) IsValid() bool {
	switch c {
	case CategoryLLM, CategoryVision, CategoryAudio, CategoryDataAnalysis, CategoryRecommendation, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of ModelCategory
func (c ModelCategory) String() string {
	return string(c)
}

// Model is a catalog entry: a digital model published by a developer.
// The developer is the owner; ownership comparisons are made on
// DeveloperID, never on the denormalized email.
type Model struct {
	ID             uuid.UUID
	DeveloperID    uuid.UUID
	DeveloperEmail string
	Name           string
	Category       ModelCategory
	Price          decimal.Decimal
	Description    string
	ImageURL       string
	PurchaseCount  int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewModel creates a new catalog model
func NewModel(developerID uuid.UUID, developerEmail, name string, category ModelCategory, price decimal.Decimal, description, imageURL string) (*Model, error) {
	if developerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEVELOPER", "Developer ID cannot be empty")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown model category")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if len(description) > 5000 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 5000 characters")
	}

	now := time.Now()
	return &Model{
		ID:             uuid.New(),
		DeveloperID:    developerID,
		DeveloperEmail: strings.ToLower(strings.TrimSpace(developerEmail)),
		Name:           strings.TrimSpace(name),
		Category:       category,
		Price:          price,
		Description:    description,
		ImageURL:       imageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Update modifies the mutable fields of the model
func (m *Model) Update(name string, category ModelCategory, price decimal.Decimal, description, imageURL string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown model category")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if len(description) > 5000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 5000 characters")
	}

	m.Name = strings.TrimSpace(name)
	m.Category = category
	m.Price = price
	m.Description = description
	m.ImageURL = imageURL
	m.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy reports whether the given user is the model's developer
func (m *Model) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && m.DeveloperID == userID
}

// RecordPurchase increments the purchase counter. This is a display
// counter, not inventory; there is no stock limit.
func (m *Model) RecordPurchase() {
	m.PurchaseCount++
	m.UpdatedAt = time.Now()
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_MODEL_NAME", "Model name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_MODEL_NAME", "Model name cannot exceed 200 characters")
	}
	return nil
}
