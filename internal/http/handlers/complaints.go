package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridemate/internal/domain/models"
	"ridemate/internal/http/middleware"
	"ridemate/internal/repositories"
)

type complaintRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// POST /api/complaints
func SubmitComplaint(c *gin.Context) {
	role := middleware.UserRole(c)
	if role != middleware.RoleStudent && role != middleware.RoleDriver {
		respondError(c, http.StatusForbidden, "forbidden", "only students and drivers can file complaints")
		return
	}

	var req complaintRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "subject and message are required")
		return
	}

	name := callerName(c)
	complaint := &models.Complaint{
		UserID:   middleware.UserID(c),
		UserRole: role,
		UserName: name,
		Subject:  req.Subject,
		Message:  req.Message,
	}
	if err := (repositories.ComplaintRepository{}).Create(complaint); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to file complaint")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"complaint": complaint})
}

// GET /api/complaints/my
func MyComplaints(c *gin.Context) {
	out, err := repositories.ComplaintRepository{}.ListByUser(middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load complaints")
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": out})
}

func callerName(c *gin.Context) string {
	id := middleware.UserID(c)
	switch middleware.UserRole(c) {
	case middleware.RoleStudent:
		if s, err := (repositories.StudentRepository{}).GetByID(nil, id); err == nil {
			return s.Name
		}
	case middleware.RoleDriver:
		if d, err := (repositories.DriverRepository{}).GetByID(id); err == nil {
			return d.Name
		}
	}
	return ""
}

type suggestionRequest struct {
	Text string `json:"text"`
}

// POST /api/suggestions
func SubmitSuggestion(c *gin.Context) {
	var req suggestionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" || len(req.Text) > 1000 {
		respondError(c, http.StatusBadRequest, "validation_error", "suggestion must be 1 to 1000 characters")
		return
	}
	id, err := repositories.SuggestionRepository{}.Create(req.Text)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to save suggestion")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "thanks for the suggestion"})
}
