// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/desoy/desoy-backend/internal/services"
	"github.com/desoy/desoy-backend/internal/utils"
)

// currentUserID extracts the authenticated user's ID from the request
// context. It replies 401 itself when the caller is not authenticated.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid user identity")
		return uuid.Nil, false
	}

	return userID, true
}

// serviceErrorResponse maps common service errors to API responses.
// Returns false when err was nil.
func serviceErrorResponse(c *gin.Context, err error, resource string) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrUnauthorized):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrInvalidState):
		utils.BadRequestResponse(c, "INVALID_STATE", "Operation not allowed in current state", nil)
	default:
		utils.BadRequestResponse(c, "", err.Error(), nil)
	}
	return true
}
