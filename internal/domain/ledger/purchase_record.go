package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modelmart/backend/internal/domain/shared"
)

// PurchaseRecord is an immutable fact: a buyer purchased a model at a
// point in time. The model name and both emails are denormalized at the
// time of purchase so history stays readable even if the catalog entry
// is later renamed or deleted.
//
// Invariant: at most one record exists per (BuyerID, ModelID) pair. The
// database enforces this with a unique index; PurchaseService surfaces a
// violation as ErrDuplicatePurchase.
type PurchaseRecord struct {
	ID             uuid.UUID
	BuyerID        uuid.UUID
	BuyerEmail     string
	ModelID        uuid.UUID
	ModelName      string
	DeveloperID    uuid.UUID
	DeveloperEmail string
	PurchasedAt    time.Time
}

// NewPurchaseRecord creates a purchase record, validating the structural
// invariants. The self-purchase check compares stable IDs, not emails.
func NewPurchaseRecord(buyerID uuid.UUID, buyerEmail string, modelID uuid.UUID, modelName string, developerID uuid.UUID, developerEmail string) (*PurchaseRecord, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if modelID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MODEL", "Model ID cannot be empty")
	}
	if developerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEVELOPER", "Developer ID cannot be empty")
	}
	if buyerID == developerID {
		return nil, shared.ErrSelfPurchase
	}
	if strings.TrimSpace(modelName) == "" {
		return nil, shared.NewDomainError("INVALID_MODEL_NAME", "Model name cannot be empty")
	}

	return &PurchaseRecord{
		ID:             uuid.New(),
		BuyerID:        buyerID,
		BuyerEmail:     strings.ToLower(strings.TrimSpace(buyerEmail)),
		ModelID:        modelID,
		ModelName:      strings.TrimSpace(modelName),
		DeveloperID:    developerID,
		DeveloperEmail: strings.ToLower(strings.TrimSpace(developerEmail)),
		PurchasedAt:    time.Now(),
	}, nil
}
