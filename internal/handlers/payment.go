// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/desoy/desoy-backend/internal/services"
	"github.com/desoy/desoy-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/intents
func (h *PaymentHandler) CreateFundingIntent(c *gin.Context) {
	investorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.FundingIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	intent, err := h.paymentService.CreateFundingIntent(investorID, &req)
	if serviceErrorResponse(c, err, "Investment") {
		return
	}

	utils.CreatedResponse(c, intent)
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmFunding(c *gin.Context) {
	investorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ConfirmFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	investment, err := h.paymentService.ConfirmFunding(investorID, &req)
	if serviceErrorResponse(c, err, "Investment") {
		return
	}

	utils.SuccessResponse(c, investment)
}

// GET /payments/history
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.paymentService.GetPaymentHistory(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}
