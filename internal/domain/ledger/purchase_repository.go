package ledger

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseRepository defines the interface for the purchase ledger.
// Records are append-only; there is no update or delete.
type PurchaseRepository interface {
	// Append stores a new purchase record. Returns
	// shared.ErrDuplicatePurchase when a record for the same
	// (buyer, model) pair already exists.
	Append(ctx context.Context, record *PurchaseRecord) error

	// FindByBuyerAndModel returns the record for a (buyer, model) pair,
	// or shared.ErrNotFound when the buyer has not purchased the model.
	FindByBuyerAndModel(ctx context.Context, buyerID, modelID uuid.UUID) (*PurchaseRecord, error)

	// HistoryByBuyer returns the buyer's purchases, most recent first.
	HistoryByBuyer(ctx context.Context, buyerID uuid.UUID) ([]PurchaseRecord, error)
}
