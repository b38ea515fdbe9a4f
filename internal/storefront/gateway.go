package storefront

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Principal is the authenticated identity of the current session. The
// zero value means "no principal".
type Principal struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Verified    bool
	Anonymous   bool
}

// Authenticated reports whether the principal is a real signed-in
// identity. Anonymous placeholder sessions never count.
func (p Principal) Authenticated() bool {
	return p.ID != uuid.Nil && !p.Anonymous
}

// Item is the catalog view the purchase flow needs: identity, ownership
// and the display fields denormalized into the ledger payload.
type Item struct {
	ID             uuid.UUID
	DeveloperID    uuid.UUID
	DeveloperEmail string
	Name           string
	Price          decimal.Decimal
}

// Submission is the payload appended to the ledger on purchase.
type Submission struct {
	ModelID        uuid.UUID `json:"model_id"`
	ModelName      string    `json:"model_name"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	BuyerEmail     string    `json:"buyer_email"`
	DeveloperID    uuid.UUID `json:"developer_id"`
	DeveloperEmail string    `json:"developer_email"`
}

// Receipt is the ledger's confirmation of a recorded purchase.
type Receipt struct {
	RecordID    uuid.UUID `json:"record_id"`
	ModelID     uuid.UUID `json:"model_id"`
	ModelName   string    `json:"model_name"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// IdentityGateway is the boundary to the identity provider.
type IdentityGateway interface {
	// SignIn authenticates with email and password. Fails with
	// ErrInvalidCredential or ErrUserNotFound.
	SignIn(ctx context.Context, email, password string) (Principal, error)

	// SignOut ends the current identity session. Idempotent.
	SignOut(ctx context.Context) error

	// Token returns a fresh bearer token for the current identity.
	// Fails with ErrNotAuthenticated when nobody is signed in.
	Token(ctx context.Context) (string, error)
}

// LedgerGateway is the boundary to the remote purchase ledger.
type LedgerGateway interface {
	// Append records a purchase. The remote side independently enforces
	// the one-record-per-(buyer,model) invariant; a duplicate fails with
	// ErrLedgerConflict. An invalid or expired token fails with
	// ErrLedgerUnauthorized; transport failures with ErrLedgerUnavailable.
	Append(ctx context.Context, token string, sub Submission) (*Receipt, error)

	// HasPurchased answers whether the buyer already owns the model.
	// A missing record is the expected negative case (false, nil).
	// Failure to reach the ledger is ErrLedgerUnavailable: unknown,
	// not false.
	HasPurchased(ctx context.Context, token string, buyerID, modelID uuid.UUID) (bool, error)

	// History returns the buyer's purchases, most recent first.
	History(ctx context.Context, token string, buyerID uuid.UUID) ([]Receipt, error)
}

// CatalogGateway is the read-only boundary to the catalog store.
type CatalogGateway interface {
	Get(ctx context.Context, itemID uuid.UUID) (*Item, error)
}
