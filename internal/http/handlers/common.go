package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridemate/internal/domain/models"
	"ridemate/internal/http/middleware"
)

// BindJSONOrError ensures the body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "bad_request", "empty body")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// ParamID parses a numeric path parameter, responding 400 on garbage.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid "+name)
		return 0, false
	}
	return id, true
}

// Actor builds the ride-owner identity from the authenticated caller.
func Actor(c *gin.Context) models.Owner {
	role := models.OwnerRoleStudent
	if middleware.UserRole(c) == middleware.RoleDriver {
		role = models.OwnerRoleDriver
	}
	return models.Owner{Role: role, ID: middleware.UserID(c)}
}
