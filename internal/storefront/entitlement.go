package storefront

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Entitlement is the tri-state answer to "does the buyer own this
// item". Unknown means the ledger could not be consulted; the guard
// fails closed on it.
type Entitlement int

const (
	EntitlementNotOwned Entitlement = iota
	EntitlementOwned
	EntitlementUnknown
)

// String returns a readable name for the entitlement state
func (e Entitlement) String() string {
	switch e {
	case EntitlementNotOwned:
		return "not_owned"
	case EntitlementOwned:
		return "owned"
	case EntitlementUnknown:
		return "unknown"
	}
	return "invalid"
}

// EntitlementSet is the per-session cache of item IDs the current
// principal is known to own. It only ever grows within one session;
// a session switch resets it. Positive membership is trusted, absence
// is not: a miss still requires a ledger lookup.
type EntitlementSet struct {
	mu    sync.RWMutex
	owned map[uuid.UUID]struct{}
}

// NewEntitlementSet creates an empty entitlement cache.
func NewEntitlementSet() *EntitlementSet {
	return &EntitlementSet{owned: make(map[uuid.UUID]struct{})}
}

// Contains reports whether the item is known to be owned.
func (s *EntitlementSet) Contains(itemID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owned[itemID]
	return ok
}

// Grant marks an item as owned.
func (s *EntitlementSet) Grant(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[itemID] = struct{}{}
}

// Reset clears the cache. Called on every session transition.
func (s *EntitlementSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned = make(map[uuid.UUID]struct{})
}

// Len returns the number of known-owned items.
func (s *EntitlementSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.owned)
}

// lookupEntitlement resolves the entitlement state for one (buyer,
// item) pair: the cache answers positives, everything else is a point
// lookup against the ledger. The result of a ledger miss is not
// cached; only successful purchases and confirmed ownership enter the
// set.
func lookupEntitlement(ctx context.Context, ledger LedgerGateway, cache *EntitlementSet, token string, buyerID, itemID uuid.UUID) Entitlement {
	if cache.Contains(itemID) {
		return EntitlementOwned
	}

	owned, err := ledger.HasPurchased(ctx, token, buyerID, itemID)
	if err != nil {
		return EntitlementUnknown
	}
	if owned {
		cache.Grant(itemID)
		return EntitlementOwned
	}
	return EntitlementNotOwned
}
