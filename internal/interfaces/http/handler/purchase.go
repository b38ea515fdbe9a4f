package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/modelmart/backend/internal/application/ledger"
)

// PurchaseHandler handles purchase ledger endpoints
type PurchaseHandler struct {
	BaseHandler
	purchaseService *ledger.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *ledger.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// RecordPurchaseRequest represents the request body for recording a purchase.
// Clients may echo model and party details for diagnostics, but the ledger
// resolves the buyer from the access token and the rest from the catalog.
type RecordPurchaseRequest struct {
	ModelID        uuid.UUID `json:"model_id" binding:"required"`
	ModelName      string    `json:"model_name"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	BuyerEmail     string    `json:"buyer_email"`
	DeveloperID    uuid.UUID `json:"developer_id"`
	DeveloperEmail string    `json:"developer_email"`
}

// PurchaseRecordResponse represents a ledger record in API responses
type PurchaseRecordResponse struct {
	ID             uuid.UUID `json:"id"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	BuyerEmail     string    `json:"buyer_email"`
	ModelID        uuid.UUID `json:"model_id"`
	ModelName      string    `json:"model_name"`
	DeveloperID    uuid.UUID `json:"developer_id"`
	DeveloperEmail string    `json:"developer_email"`
	PurchasedAt    time.Time `json:"purchased_at"`
}

// PurchaseStatusResponse reports whether the caller owns a model
type PurchaseStatusResponse struct {
	ModelID   uuid.UUID `json:"model_id"`
	Purchased bool      `json:"purchased"`
}

func toPurchaseRecordResponse(p *ledger.PurchaseResponse) PurchaseRecordResponse {
	return PurchaseRecordResponse{
		ID:             p.ID,
		BuyerID:        p.BuyerID,
		BuyerEmail:     p.BuyerEmail,
		ModelID:        p.ModelID,
		ModelName:      p.ModelName,
		DeveloperID:    p.DeveloperID,
		DeveloperEmail: p.DeveloperEmail,
		PurchasedAt:    p.PurchasedAt,
	}
}

// Record godoc
// @Summary Record a purchase
// @Description Appends a purchase record for the authenticated buyer. One record per buyer and model.
// @Tags purchases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordPurchaseRequest true "Purchase details"
// @Success 201 {object} APIResponse[PurchaseRecordResponse]
// @Failure 403 {object} ErrorResponse "SELF_PURCHASE"
// @Failure 409 {object} ErrorResponse "DUPLICATE_PURCHASE"
// @Router /api/v1/purchases [post]
func (h *PurchaseHandler) Record(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.purchaseService.Record(c.Request.Context(), ledger.RecordPurchaseInput{
		BuyerID: buyerID,
		ModelID: req.ModelID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPurchaseRecordResponse(result))
}

// Status godoc
// @Summary Check purchase status
// @Description Reports whether the authenticated buyer already owns the given model
// @Tags purchases
// @Produce json
// @Security BearerAuth
// @Param model_id query string true "Model ID"
// @Success 200 {object} APIResponse[PurchaseStatusResponse]
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/purchases/status [get]
func (h *PurchaseHandler) Status(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	modelID, parseErr := uuid.Parse(c.Query("model_id"))
	if parseErr != nil {
		h.BadRequest(c, "Invalid or missing model_id")
		return
	}

	result, err := h.purchaseService.HasPurchased(c.Request.Context(), buyerID, modelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PurchaseStatusResponse{
		ModelID:   result.ModelID,
		Purchased: result.Purchased,
	})
}

// History godoc
// @Summary List purchase history
// @Description Returns the authenticated buyer's purchases, most recent first
// @Tags purchases
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse[[]PurchaseRecordResponse]
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/purchases/history [get]
func (h *PurchaseHandler) History(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	records, err := h.purchaseService.History(c.Request.Context(), buyerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PurchaseRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, toPurchaseRecordResponse(&records[i]))
	}
	h.Success(c, out)
}
