package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modelmart/backend/internal/domain/ledger"
	"github.com/modelmart/backend/internal/domain/shared"
	"github.com/modelmart/backend/internal/infrastructure/persistence/models"
)

// GormPurchaseRepository implements PurchaseRepository using GORM.
// The ledger is append-only; rows are never updated or deleted.
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Append stores a new purchase record. The unique index on
// (buyer_id, model_id) rejects a second purchase of the same model;
// that violation is surfaced as shared.ErrDuplicatePurchase.
func (r *GormPurchaseRepository) Append(ctx context.Context, record *ledger.PurchaseRecord) error {
	model := models.PurchaseRecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicatePurchase
		}
		return err
	}
	return nil
}

// FindByBuyerAndModel returns the record for a (buyer, model) pair
func (r *GormPurchaseRepository) FindByBuyerAndModel(ctx context.Context, buyerID, modelID uuid.UUID) (*ledger.PurchaseRecord, error) {
	var model models.PurchaseRecordModel
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND model_id = ?", buyerID, modelID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// HistoryByBuyer returns the buyer's purchases, most recent first
func (r *GormPurchaseRepository) HistoryByBuyer(ctx context.Context, buyerID uuid.UUID) ([]ledger.PurchaseRecord, error) {
	var records []models.PurchaseRecordModel
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("purchased_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	result := make([]ledger.PurchaseRecord, len(records))
	for i, record := range records {
		result[i] = *record.ToDomain()
	}
	return result, nil
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ ledger.PurchaseRepository = (*GormPurchaseRepository)(nil)
