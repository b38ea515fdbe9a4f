package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modelmart/backend/internal/domain/catalog"
	"github.com/modelmart/backend/internal/domain/shared"
)

// CreateModelInput contains the input for publishing a model
type CreateModelInput struct {
	DeveloperID uuid.UUID
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

// UpdateModelInput contains the input for updating a published model
type UpdateModelInput struct {
	ModelID     uuid.UUID
	DeveloperID uuid.UUID
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

// ModelResponse is the application-level view of a catalog model
type ModelResponse struct {
	ID             uuid.UUID
	DeveloperID    uuid.UUID
	DeveloperEmail string
	Name           string
	Category       string
	Price          decimal.Decimal
	Description    string
	ImageURL       string
	PurchaseCount  int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListModelsInput contains the input for catalog browsing
type ListModelsInput struct {
	Filter   shared.Filter
	Category string
}

// ImageUploadInput contains the input for requesting an image upload URL
type ImageUploadInput struct {
	DeveloperID uuid.UUID
	FileName    string
	ContentType string
}

// ImageUploadResult contains a presigned upload URL and the public URL
// the image will be served from once uploaded.
type ImageUploadResult struct {
	UploadURL  string
	PublicURL  string
	StorageKey string
	ExpiresAt  time.Time
}

func toModelResponse(m *catalog.Model) *ModelResponse {
	return &ModelResponse{
		ID:             m.ID,
		DeveloperID:    m.DeveloperID,
		DeveloperEmail: m.DeveloperEmail,
		Name:           m.Name,
		Category:       m.Category.String(),
		Price:          m.Price,
		Description:    m.Description,
		ImageURL:       m.ImageURL,
		PurchaseCount:  m.PurchaseCount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
