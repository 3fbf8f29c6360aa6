// internal/handlers/asset.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/desoy/desoy-backend/internal/services"
	"github.com/desoy/desoy-backend/internal/utils"
)

type AssetHandler struct {
	assetService   *services.AssetService
	storageService *services.StorageService
}

func NewAssetHandler(assetService *services.AssetService, storageService *services.StorageService) *AssetHandler {
	return &AssetHandler{
		assetService:   assetService,
		storageService: storageService,
	}
}

// GET /assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filters := services.AssetFilters{
		Status:           params.Status,
		AssetType:        c.Query("asset_type"),
		ProducerID:       c.Query("producer_id"),
		MinFundedPercent: c.Query("min_funded_percentage"),
	}

	result, err := h.assetService.ListAssets(params, filters)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	asset, err := h.assetService.GetAsset(id)
	if serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.SuccessResponse(c, asset)
}

// POST /assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	asset, err := h.assetService.CreateAsset(producerID, &req)
	if serviceErrorResponse(c, err, "Producer") {
		return
	}

	utils.CreatedResponse(c, asset)
}

// PATCH /assets/:id
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	var req services.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	asset, err := h.assetService.UpdateAsset(id, producerID, &req)
	if serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.SuccessResponse(c, asset)
}

// POST /assets/:id/tokenize
func (h *AssetHandler) TokenizeAsset(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	var req services.TokenizeAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	asset, err := h.assetService.TokenizeAsset(c.Request.Context(), id, producerID, &req)
	if serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.SuccessResponse(c, asset)
}

// PATCH /assets/:id/status
func (h *AssetHandler) UpdateAssetStatus(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	var req services.AssetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	asset, err := h.assetService.UpdateAssetStatus(id, producerID, &req)
	if serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.SuccessResponse(c, asset)
}

// GET /assets/:id/updates
func (h *AssetHandler) ListUpdates(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	updates, err := h.assetService.ListUpdates(id)
	if serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.SuccessResponse(c, updates)
}

// POST /assets/:id/updates
func (h *AssetHandler) RecordUpdate(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	var req services.AssetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", "Invalid request body", err.Error())
		return
	}

	update, err := h.assetService.RecordUpdate(id, producerID, &req)
	if serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.CreatedResponse(c, update)
}

// POST /assets/:id/documents
func (h *AssetHandler) UploadDocument(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		utils.BadRequestResponse(c, "", "Document file is required", err.Error())
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("asset_documents")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, "", err.Error(), nil)
		return
	}

	asset, err := h.assetService.AddDocument(id, producerID, result.URL)
	if serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.CreatedResponse(c, gin.H{
		"asset":  asset,
		"upload": result,
	})
}

// DELETE /assets/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "", "Invalid asset ID", nil)
		return
	}

	if err := h.assetService.DeleteAsset(id, producerID); serviceErrorResponse(c, err, "Asset") {
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
