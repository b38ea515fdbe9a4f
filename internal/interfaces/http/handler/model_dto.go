package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modelmart/backend/internal/application/catalog"
)

// =====================
// Model Request DTOs
// =====================

// CreateModelRequest represents the request body for publishing a model
type CreateModelRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description string          `json:"description" binding:"max=5000"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url,max=500"`
}

// UpdateModelRequest represents the request body for updating a model
type UpdateModelRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description string          `json:"description" binding:"max=5000"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url,max=500"`
}

// ImageUploadRequest represents the request body for an upload URL
type ImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

// ListModelsQuery represents query parameters for catalog browsing
type ListModelsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"omitempty,max=200"`
	Category string `form:"category" binding:"omitempty,max=50"`
}

// =====================
// Model Response DTOs
// =====================

// ModelResponse represents a catalog model in API responses
type ModelResponse struct {
	ID             uuid.UUID       `json:"id"`
	DeveloperID    uuid.UUID       `json:"developer_id"`
	DeveloperEmail string          `json:"developer_email"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	PurchaseCount  int64           `json:"purchase_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ImageUploadResponse represents a presigned upload grant
type ImageUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	PublicURL  string    `json:"public_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toModelAPIResponse(m *catalog.ModelResponse) ModelResponse {
	return ModelResponse{
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
