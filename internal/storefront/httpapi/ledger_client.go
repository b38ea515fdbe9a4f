package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modelmart/backend/internal/storefront"
)

// LedgerClient implements storefront.LedgerGateway against the
// /api/v1/purchases endpoints.
type LedgerClient struct {
	client *Client
}

// NewLedgerClient creates a ledger gateway backed by client.
func NewLedgerClient(client *Client) *LedgerClient {
	return &LedgerClient{client: client}
}

type purchaseResponse struct {
	ID          uuid.UUID `json:"id"`
	ModelID     uuid.UUID `json:"model_id"`
	ModelName   string    `json:"model_name"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type purchaseStatusResponse struct {
	Purchased bool `json:"purchased"`
}

// Append records a purchase. A 409 from the server means the ledger
// already holds a record for this buyer and model.
func (c *LedgerClient) Append(ctx context.Context, token string, sub storefront.Submission) (*storefront.Receipt, error) {
	var out purchaseResponse
	status, info, err := c.client.doJSON(ctx, http.MethodPost, "/api/v1/purchases", token, sub, &out)
	if err != nil || status < 200 || status >= 300 {
		return nil, mapLedgerError(status, info, err)
	}
	return &storefront.Receipt{
		RecordID:    out.ID,
		ModelID:     out.ModelID,
		ModelName:   out.ModelName,
		PurchasedAt: out.PurchasedAt,
	}, nil
}

// HasPurchased reports whether the buyer already owns the model.
func (c *LedgerClient) HasPurchased(ctx context.Context, token string, buyerID, modelID uuid.UUID) (bool, error) {
	_ = buyerID // the server resolves the buyer from the access token
	path := "/api/v1/purchases/status?" + url.Values{"model_id": {modelID.String()}}.Encode()
	var out purchaseStatusResponse
	status, info, err := c.client.doJSON(ctx, http.MethodGet, path, token, nil, &out)
	if err != nil || status < 200 || status >= 300 {
		return false, mapLedgerError(status, info, err)
	}
	return out.Purchased, nil
}

// History returns the buyer's purchases, most recent first.
func (c *LedgerClient) History(ctx context.Context, token string, buyerID uuid.UUID) ([]storefront.Receipt, error) {
	_ = buyerID
	var out []purchaseResponse
	status, info, err := c.client.doJSON(ctx, http.MethodGet, "/api/v1/purchases/history", token, nil, &out)
	if err != nil || status < 200 || status >= 300 {
		return nil, mapLedgerError(status, info, err)
	}
	receipts := make([]storefront.Receipt, 0, len(out))
	for _, p := range out {
		receipts = append(receipts, storefront.Receipt{
			RecordID:    p.ID,
			ModelID:     p.ModelID,
			ModelName:   p.ModelName,
			PurchasedAt: p.PurchasedAt,
		})
	}
	return receipts, nil
}

// CatalogClient implements storefront.CatalogGateway against the
// /api/v1/models endpoints.
type CatalogClient struct {
	client *Client
}

// NewCatalogClient creates a catalog gateway backed by client.
func NewCatalogClient(client *Client) *CatalogClient {
	return &CatalogClient{client: client}
}

type modelResponse struct {
	ID             uuid.UUID       `json:"id"`
	DeveloperID    uuid.UUID       `json:"developer_id"`
	DeveloperEmail string          `json:"developer_email"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
}

// Get fetches a single catalog item.
func (c *CatalogClient) Get(ctx context.Context, itemID uuid.UUID) (*storefront.Item, error) {
	var out modelResponse
	status, info, err := c.client.doJSON(ctx, http.MethodGet, "/api/v1/models/"+itemID.String(), "", nil, &out)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("model %s not found", itemID)
	}
	if status < 200 || status >= 300 {
		if info != nil {
			return nil, fmt.Errorf("fetch model failed: %s: %s", info.Code, info.Message)
		}
		return nil, fmt.Errorf("fetch model failed: status %d", status)
	}
	return &storefront.Item{
		ID:             out.ID,
		DeveloperID:    out.DeveloperID,
		DeveloperEmail: out.DeveloperEmail,
		Name:           out.Name,
		Price:          out.Price,
	}, nil
}
