// internal/handlers/oracle.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/desoy/desoy-backend/internal/services"
	"github.com/desoy/desoy-backend/internal/utils"
)

type OracleHandler struct {
	oracleService *services.OracleService
}

func NewOracleHandler(oracleService *services.OracleService) *OracleHandler {
	return &OracleHandler{
		oracleService: oracleService,
	}
}

// GET /oracle/prices
func (h *OracleHandler) LatestPrices(c *gin.Context) {
	prices, err := h.oracleService.LatestPrices()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, prices)
}

// GET /oracle/prices/:commodity
func (h *OracleHandler) PriceHistory(c *gin.Context) {
	commodity := c.Param("commodity")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	prices, err := h.oracleService.PriceHistory(commodity, limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, prices)
}

// POST /oracle/prices (admin only)
func (h *OracleHandler) PushPrices(c *gin.Context) {
	var quotes []services.PriceQuote
	if err := c.ShouldBindJSON(&quotes); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}
	if len(quotes) == 0 {
		utils.BadRequestResponse(c, "", "At least one price quote is required", nil)
		return
	}

	pushed, err := h.oracleService.PushPrices(c.Request.Context(), quotes)
	if err != nil && len(pushed) == 0 {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"pushed": pushed,
		"failed": len(quotes) - len(pushed),
	})
}
