package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modelmart/backend/internal/domain/catalog"
	"github.com/modelmart/backend/internal/domain/shared"
	"github.com/modelmart/backend/internal/infrastructure/persistence/models"
)

// GormModelRepository implements ModelRepository using GORM
type GormModelRepository struct {
	db *gorm.DB
}

// NewGormModelRepository creates a new GormModelRepository
func NewGormModelRepository(db *gorm.DB) *GormModelRepository {
	return &GormModelRepository{db: db}
}

// Create creates a new catalog model
func (r *GormModelRepository) Create(ctx context.Context, model *catalog.Model) error {
	record := models.ModelModelFromDomain(model)
	return r.db.WithContext(ctx).Create(record).Error
}

// Update updates an existing catalog model. A missing row is reported
// as ErrNotFound rather than upserted.
func (r *GormModelRepository) Update(ctx context.Context, model *catalog.Model) error {
	record := models.ModelModelFromDomain(model)
	result := r.db.WithContext(ctx).Model(record).Select("*").Updates(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a catalog model by ID
func (r *GormModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ModelModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a catalog model by ID
func (r *GormModelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Model, error) {
	var record models.ModelModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomain(), nil
}

// FindAll returns catalog models matching the filter with the total count
func (r *GormModelRepository) FindAll(ctx context.Context, filter catalog.ModelFilter) ([]catalog.Model, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ModelModel{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	return r.page(query, filter.Filter)
}

// FindByDeveloper returns all models published by a developer
func (r *GormModelRepository) FindByDeveloper(ctx context.Context, developerID uuid.UUID, filter shared.Filter) ([]catalog.Model, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ModelModel{}).
		Where("developer_id = ?", developerID)

	return r.page(query, filter)
}

// IncrementPurchaseCount atomically increments the purchase counter
func (r *GormModelRepository) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ModelModel{}).
		Where("id = ?", id).
		UpdateColumn("purchase_count", gorm.Expr("purchase_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// page applies validated sorting and pagination and runs the query
func (r *GormModelRepository) page(query *gorm.DB, filter shared.Filter) ([]catalog.Model, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, ModelSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var records []models.ModelModel
	if err := query.
		Order(sortField + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	result := make([]catalog.Model, len(records))
	for i, record := range records {
		result[i] = *record.ToDomain()
	}
	return result, total, nil
}

// Ensure GormModelRepository implements ModelRepository
var _ catalog.ModelRepository = (*GormModelRepository)(nil)
