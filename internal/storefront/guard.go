package storefront

import "github.com/google/uuid"

// DenialReason enumerates why a purchase request was refused before
// any submission.
type DenialReason string

const (
	DenyNotAuthenticated DenialReason = "NOT_AUTHENTICATED"
	DenySelfPurchase     DenialReason = "SELF_PURCHASE"
	DenyAlreadyOwned     DenialReason = "ALREADY_OWNED"
	DenyUnknown          DenialReason = "ENTITLEMENT_UNKNOWN"
)

// Decision is the outcome of the ownership guard.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

// Allow is the positive guard decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative guard decision.
func Deny(reason DenialReason) Decision {
	return Decision{Reason: reason}
}

// EvaluatePurchase is the pure eligibility check run before any
// purchase submission. Checks run cheapest first: authentication,
// then ownership by stable ID, then entitlement. Indeterminate
// entitlement fails closed.
func EvaluatePurchase(principal Principal, item Item, entitlement Entitlement) Decision {
	if !principal.Authenticated() {
		return Deny(DenyNotAuthenticated)
	}
	if item.DeveloperID != uuid.Nil && principal.ID == item.DeveloperID {
		return Deny(DenySelfPurchase)
	}
	switch entitlement {
	case EntitlementOwned:
		return Deny(DenyAlreadyOwned)
	case EntitlementUnknown:
		return Deny(DenyUnknown)
	}
	return Allow
}
