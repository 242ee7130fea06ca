package handlers

import (
	"context"
	"net/http"
	"strconv"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	settlementservice "github.com/NomadCrew/crewtrip-backend/models/settlement/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// SettlementHandler handles member-to-member repayments.
type SettlementHandler struct {
	settlements settlementservice.SettlementServiceInterface
}

func NewSettlementHandler(settlements settlementservice.SettlementServiceInterface) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

// GetOptionsHandler godoc
// @Summary Payment options for a payee
// @Description Cash is always offered; Venmo and PayPal appear when the payee has a handle on file.
// @Tags settlements
// @Produce json
// @Param id path int true "Trip ID"
// @Param payeeId query int true "Payee user ID"
// @Success 200 {object} types.SettlementOptions "Options"
// @Failure 400 {object} types.ErrorResponse "Bad request - Missing payeeId"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/settlements/options [get]
// @Security BearerAuth
func (h *SettlementHandler) GetOptionsHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	payeeID, err := strconv.ParseInt(c.Query("payeeId"), 10, 64)
	if err != nil || payeeID <= 0 {
		_ = c.Error(apperrors.ValidationFailed("invalid_payee", "payeeId query parameter is required"))
		return
	}
	opts, err := h.settlements.GetOptions(c.Request.Context(), tripID, userID, payeeID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// CreateSettlementHandler godoc
// @Summary Record a payment to another member
// @Description Venmo settlements include a deep link. Amounts may not exceed what the caller owes the payee.
// @Tags settlements
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.CreateSettlementRequest true "Settlement"
// @Success 201 {object} types.Settlement "Pending settlement"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid amount"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Failure 422 {object} types.ErrorResponse "Payee has no handle for this method"
// @Router /trips/{id}/settlements [post]
// @Security BearerAuth
func (h *SettlementHandler) CreateSettlementHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.CreateSettlementRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	settlement, err := h.settlements.CreateSettlement(c.Request.Context(), tripID, userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

// ListSettlementsHandler godoc
// @Summary List settlements
// @Tags settlements
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {array} types.Settlement "Settlements"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/settlements [get]
// @Security BearerAuth
func (h *SettlementHandler) ListSettlementsHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	settlements, err := h.settlements.ListSettlements(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if settlements == nil {
		settlements = []*types.Settlement{}
	}
	c.JSON(http.StatusOK, settlements)
}

// ConfirmSettlementHandler godoc
// @Summary Confirm receipt of a settlement
// @Description Only the payee can confirm. Confirmed settlements count toward balances.
// @Tags settlements
// @Produce json
// @Param id path int true "Trip ID"
// @Param settlementId path int true "Settlement ID"
// @Success 200 {object} types.Settlement "Confirmed settlement"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Payee only"
// @Failure 409 {object} types.ErrorResponse "Conflict - Not pending"
// @Router /trips/{id}/settlements/{settlementId}/confirm [post]
// @Security BearerAuth
func (h *SettlementHandler) ConfirmSettlementHandler(c *gin.Context) {
	h.transition(c, h.settlements.ConfirmSettlement)
}

// CancelSettlementHandler godoc
// @Summary Cancel a pending settlement
// @Tags settlements
// @Produce json
// @Param id path int true "Trip ID"
// @Param settlementId path int true "Settlement ID"
// @Success 200 {object} types.Settlement "Cancelled settlement"
// @Failure 403 {object} types.ErrorResponse "Forbidden"
// @Failure 409 {object} types.ErrorResponse "Conflict - Not pending"
// @Router /trips/{id}/settlements/{settlementId}/cancel [post]
// @Security BearerAuth
func (h *SettlementHandler) CancelSettlementHandler(c *gin.Context) {
	h.transition(c, h.settlements.CancelSettlement)
}

func (h *SettlementHandler) transition(c *gin.Context, apply func(ctx context.Context, tripID, actorID, settlementID int64) (*types.Settlement, error)) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	settlementID, ok := paramID(c, "settlementId")
	if !ok {
		return
	}
	settlement, err := apply(c.Request.Context(), tripID, userID, settlementID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}
