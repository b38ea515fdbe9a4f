package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/modelmart/backend/internal/domain/ledger"
)

// RecordPurchaseInput contains the input for recording a purchase.
// The buyer is resolved from the access token, never from the payload.
type RecordPurchaseInput struct {
	BuyerID uuid.UUID
	ModelID uuid.UUID
}

// PurchaseResponse is the application-level view of a ledger record
type PurchaseResponse struct {
	ID             uuid.UUID
	BuyerID        uuid.UUID
	BuyerEmail     string
	ModelID        uuid.UUID
	ModelName      string
	DeveloperID    uuid.UUID
	DeveloperEmail string
	PurchasedAt    time.Time
}

// PurchaseStatusResult reports whether a buyer owns a model
type PurchaseStatusResult struct {
	ModelID   uuid.UUID
	Purchased bool
}

func toPurchaseResponse(r *ledger.PurchaseRecord) *PurchaseResponse {
	return &PurchaseResponse{
		ID:             r.ID,
		BuyerID:        r.BuyerID,
		BuyerEmail:     r.BuyerEmail,
		ModelID:        r.ModelID,
		ModelName:      r.ModelName,
		DeveloperID:    r.DeveloperID,
		DeveloperEmail: r.DeveloperEmail,
		PurchasedAt:    r.PurchasedAt,
	}
}
