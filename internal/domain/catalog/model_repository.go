package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/modelmart/backend/internal/domain/shared"
)

// ModelFilter narrows catalog listings
type ModelFilter struct {
	shared.Filter
	Category ModelCategory
}

// ModelRepository defines the interface for catalog persistence
type ModelRepository interface {
	// Create creates a new model
	Create(ctx context.Context, model *Model) error

	// Update updates an existing model
	Update(ctx context.Context, model *Model) error

	// Delete deletes a model by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a model by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Model, error)

	// FindAll returns models matching the filter with the total count
	FindAll(ctx context.Context, filter ModelFilter) ([]Model, int64, error)

	// FindByDeveloper returns all models published by a developer
	FindByDeveloper(ctx context.Context, developerID uuid.UUID, filter shared.Filter) ([]Model, int64, error)

	// IncrementPurchaseCount atomically increments the purchase counter
	IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error
}
