package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridemate/internal/domain/models"
	"ridemate/internal/http/middleware"
	"ridemate/internal/repositories"
	"ridemate/internal/services"
)

const maxMessageLength = 500

// canUseChat gates the ride chat: the ride's owner always may, riders only
// while they hold a live or confirmed booking.
func canUseChat(c *gin.Context, rideID int64) bool {
	ride, err := services.RideService{}.GetRide(rideID)
	if err != nil {
		RespondDomainError(c, err)
		return false
	}
	actor := Actor(c)
	if ride.OwnedBy(actor) {
		return true
	}
	if actor.Role == models.OwnerRoleStudent {
		hasBooking, err := services.BookingService{}.HasBookingForRide(actor.ID, rideID)
		if err != nil {
			RespondDomainError(c, err)
			return false
		}
		if hasBooking {
			return true
		}
	}
	respondError(c, http.StatusForbidden, "forbidden", "book a seat to join this ride's chat")
	return false
}

// GET /api/student/ride/:id/messages (and the driver twin)
func ListMessages(c *gin.Context) {
	rideID, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if !canUseChat(c, rideID) {
		return
	}
	messages, err := repositories.MessageRepository{}.ListByRide(rideID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type postMessageRequest struct {
	Text string `json:"text"`
}

// POST /api/student/ride/:id/messages (and the driver twin)
func PostMessage(c *gin.Context) {
	rideID, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req postMessageRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" || len(req.Text) > maxMessageLength {
		respondError(c, http.StatusBadRequest, "validation_error", "message must be 1 to 500 characters")
		return
	}
	if !canUseChat(c, rideID) {
		return
	}

	msg := &models.Message{
		RideID:     rideID,
		SenderID:   middleware.UserID(c),
		SenderRole: middleware.UserRole(c),
		Text:       req.Text,
	}
	if err := (repositories.MessageRepository{}).Insert(msg); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to send message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
