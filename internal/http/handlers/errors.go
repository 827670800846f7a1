package handlers

import (
	"net/http"

	"ridemate/internal/domain"
	"ridemate/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Kinds that a
// caller can fix map to 4xx; anything unclassified is a 500 with a generic
// message.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsInvalidState(err):
		respondError(c, http.StatusBadRequest, "invalid_state", err.Error())
	case domain.IsCapacity(err):
		respondError(c, http.StatusBadRequest, "capacity_reached", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusBadRequest, "conflict", err.Error())
	case domain.IsAuthorization(err):
		respondError(c, http.StatusForbidden, "not_authorized", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
