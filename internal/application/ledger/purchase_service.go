package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modelmart/backend/internal/domain/catalog"
	"github.com/modelmart/backend/internal/domain/identity"
	"github.com/modelmart/backend/internal/domain/ledger"
	"github.com/modelmart/backend/internal/domain/shared"
	"github.com/modelmart/backend/internal/infrastructure/telemetry"
)

// Entitlement cache TTLs. Ownership is never revoked, so positive
// entries can live long. Negative entries must stay short so a fresh
// purchase becomes visible quickly even if invalidation is missed.
const (
	ownedCacheTTL    = time.Hour
	notOwnedCacheTTL = 30 * time.Second
)

// EntitlementCache caches purchase-status lookups in front of the ledger.
type EntitlementCache interface {
	// Get returns the cached ownership value and whether an entry was found
	Get(ctx context.Context, buyerID, modelID uuid.UUID) (owned bool, found bool, err error)

	// Set stores an ownership value with a TTL
	Set(ctx context.Context, buyerID, modelID uuid.UUID, owned bool, ttl time.Duration) error

	// Invalidate removes a single cached entry
	Invalidate(ctx context.Context, buyerID, modelID uuid.UUID) error
}

// PurchaseService records purchases and answers ownership queries.
// Every rule the client enforces is enforced again here: the server is
// the authority, the client check only improves latency.
type PurchaseService struct {
	purchaseRepo ledger.PurchaseRepository
	modelRepo    catalog.ModelRepository
	userRepo     identity.UserRepository
	cache        EntitlementCache
	metrics      *telemetry.MarketMetrics
	logger       *zap.Logger
}

// SetMarketMetrics sets the metrics collector for purchase outcomes.
func (s *PurchaseService) SetMarketMetrics(mm *telemetry.MarketMetrics) {
	s.metrics = mm
}

// PurchaseServiceOption is a functional option for configuring PurchaseService
type PurchaseServiceOption func(*PurchaseService)

// WithEntitlementCache sets an entitlement cache for purchase-status lookups.
// Cache failures are logged and the ledger is consulted directly.
func WithEntitlementCache(cache EntitlementCache) PurchaseServiceOption {
	return func(s *PurchaseService) {
		s.cache = cache
	}
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	purchaseRepo ledger.PurchaseRepository,
	modelRepo catalog.ModelRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
	opts ...PurchaseServiceOption,
) *PurchaseService {
	s := &PurchaseService{
		purchaseRepo: purchaseRepo,
		modelRepo:    modelRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends a purchase to the ledger. It rejects self purchases
// and duplicates, relying on the unique (buyer, model) index as the
// final arbiter under concurrency.
func (s *PurchaseService) Record(ctx context.Context, input RecordPurchaseInput) (*PurchaseResponse, error) {
	buyer, err := s.userRepo.FindByID(ctx, input.BuyerID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "Buyer account not found")
	}

	model, err := s.modelRepo.FindByID(ctx, input.ModelID)
	if err != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Model not found")
	}

	record, err := ledger.NewPurchaseRecord(
		buyer.ID,
		buyer.Email,
		model.ID,
		model.Name,
		model.DeveloperID,
		model.DeveloperEmail,
	)
	if err != nil {
		s.recordPurchaseOutcome(ctx, model, telemetry.PurchaseResultRejected)
		return nil, err
	}

	if err := s.purchaseRepo.Append(ctx, record); err != nil {
		if errors.Is(err, shared.ErrDuplicatePurchase) {
			s.logger.Info("Duplicate purchase rejected",
				zap.String("buyer_id", buyer.ID.String()),
				zap.String("model_id", model.ID.String()))
			s.recordPurchaseOutcome(ctx, model, telemetry.PurchaseResultDuplicate)
			return nil, shared.ErrDuplicatePurchase
		}
		s.logger.Error("Failed to append purchase record", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to record purchase")
	}

	// Counter drift here is tolerable, the ledger row is what matters
	if err := s.modelRepo.IncrementPurchaseCount(ctx, model.ID); err != nil {
		s.logger.Warn("Failed to increment purchase count",
			zap.String("model_id", model.ID.String()),
			zap.Error(err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, buyer.ID, model.ID, true, ownedCacheTTL); err != nil {
			s.logger.Warn("Failed to update entitlement cache", zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordSettledPurchase(ctx, string(model.Category), model.Price)
	}

	s.logger.Info("Purchase recorded",
		zap.String("record_id", record.ID.String()),
		zap.String("buyer_id", buyer.ID.String()),
		zap.String("model_id", model.ID.String()))

	return toPurchaseResponse(record), nil
}

func (s *PurchaseService) recordPurchaseOutcome(ctx context.Context, model *catalog.Model, result telemetry.PurchaseResult) {
	if s.metrics != nil {
		s.metrics.RecordPurchase(ctx, string(model.Category), result)
	}
}

// HasPurchased reports whether the buyer owns the model
func (s *PurchaseService) HasPurchased(ctx context.Context, buyerID, modelID uuid.UUID) (*PurchaseStatusResult, error) {
	if s.cache != nil {
		owned, found, err := s.cache.Get(ctx, buyerID, modelID)
		if err != nil {
			s.logger.Warn("Entitlement cache lookup failed", zap.Error(err))
		} else if found {
			return &PurchaseStatusResult{ModelID: modelID, Purchased: owned}, nil
		}
	}

	_, err := s.purchaseRepo.FindByBuyerAndModel(ctx, buyerID, modelID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.cacheEntitlement(ctx, buyerID, modelID, false, notOwnedCacheTTL)
			return &PurchaseStatusResult{ModelID: modelID, Purchased: false}, nil
		}
		s.logger.Error("Failed to query purchase status", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to query purchase status")
	}

	s.cacheEntitlement(ctx, buyerID, modelID, true, ownedCacheTTL)
	return &PurchaseStatusResult{ModelID: modelID, Purchased: true}, nil
}

func (s *PurchaseService) cacheEntitlement(ctx context.Context, buyerID, modelID uuid.UUID, owned bool, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, buyerID, modelID, owned, ttl); err != nil {
		s.logger.Warn("Failed to update entitlement cache", zap.Error(err))
	}
}

// History returns the buyer's purchases, most recent first
func (s *PurchaseService) History(ctx context.Context, buyerID uuid.UUID) ([]PurchaseResponse, error) {
	records, err := s.purchaseRepo.HistoryByBuyer(ctx, buyerID)
	if err != nil {
		s.logger.Error("Failed to load purchase history", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load purchase history")
	}

	responses := make([]PurchaseResponse, 0, len(records))
	for i := range records {
		responses = append(responses, *toPurchaseResponse(&records[i]))
	}
	return responses, nil
}
