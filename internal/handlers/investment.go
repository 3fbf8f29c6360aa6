// internal/handlers/investment.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/desoy/desoy-backend/internal/ledger"
	"github.com/desoy/desoy-backend/internal/services"
	"github.com/desoy/desoy-backend/internal/utils"
)

type InvestmentHandler struct {
	investmentService *services.InvestmentService
}

func NewInvestmentHandler(investmentService *services.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
	}
}

// POST /investments
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	investorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	settlement, err := h.investmentService.CreateInvestment(c.Request.Context(), investorID, &req)
	if err != nil {
		h.ledgerErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, settlement)
}

// GET /investments
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	investorID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.investmentService.ListInvestments(investorID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /investments/:id
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid investment ID", nil)
		return
	}

	investment, err := h.investmentService.GetInvestment(id, callerID)
	if serviceErrorResponse(c, err, "Investment") {
		return
	}

	utils.SuccessResponse(c, investment)
}

// POST /investments/:id/confirm
func (h *InvestmentHandler) ConfirmInvestment(c *gin.Context) {
	investorID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid investment ID", nil)
		return
	}

	var req services.ConfirmInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	investment, err := h.investmentService.ConfirmInvestment(id, investorID, &req)
	if serviceErrorResponse(c, err, "Investment") {
		return
	}

	utils.SuccessResponse(c, investment)
}

// PATCH /investments/:id
func (h *InvestmentHandler) UpdateInvestment(c *gin.Context) {
	investorID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid investment ID", nil)
		return
	}

	var req services.UpdateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	investment, err := h.investmentService.UpdateInvestment(id, investorID, &req)
	if serviceErrorResponse(c, err, "Investment") {
		return
	}

	utils.SuccessResponse(c, investment)
}

// DELETE /investments/:id
func (h *InvestmentHandler) CancelInvestment(c *gin.Context) {
	investorID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid investment ID", nil)
		return
	}

	settlement, err := h.investmentService.CancelInvestment(c.Request.Context(), id, investorID)
	if err != nil {
		h.ledgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, settlement)
}

// ledgerErrorResponse maps settlement errors to API responses.
func (h *InvestmentHandler) ledgerErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrAssetNotFound):
		utils.NotFoundResponse(c, "Asset")
	case errors.Is(err, ledger.ErrInvestmentNotFound), errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "Investment")
	case errors.Is(err, ledger.ErrAssetNotOpen):
		utils.BadRequestResponse(c, "INVALID_STATE", "Asset is not open for investment", nil)
	case errors.Is(err, ledger.ErrInvestmentNotPending):
		utils.BadRequestResponse(c, "INVALID_STATE", "Investment is no longer pending", nil)
	case errors.Is(err, ledger.ErrAssetFundingLocked):
		utils.BadRequestResponse(c, "INVALID_STATE", "Asset funding can no longer be reversed", nil)
	case errors.Is(err, ledger.ErrInvalidAmount):
		utils.BadRequestResponse(c, "INVALID_AMOUNT", "Amount must be positive and within the asset's remaining funding", nil)
	case errors.Is(err, services.ErrUnauthorized):
		utils.ForbiddenResponse(c, "")
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
