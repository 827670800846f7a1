package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"ridemate/internal/http/middleware"
	"ridemate/internal/repositories"
	"ridemate/internal/services"
	"ridemate/internal/utils"
)

// GET /api/driver/profile
func DriverProfile(c *gin.Context) {
	driver, err := repositories.DriverRepository{}.GetByID(middleware.UserID(c))
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "account not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"driver":      driver,
		"payment_ref": utils.UPIPayString(driver.UPIID, driver.Name),
	})
}

type updateProfileRequest struct {
	UPIID string `json:"upi_id"`
}

// PUT /api/driver/profile
func UpdateDriverProfile(c *gin.Context) {
	var req updateProfileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.UPIID = strings.TrimSpace(req.UPIID)
	if req.UPIID == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "upi_id is required")
		return
	}
	if err := (repositories.DriverRepository{}).UpdateUPI(middleware.UserID(c), req.UPIID); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

// POST /api/driver/rides
func CreateDriverRide(c *gin.Context) {
	var req createRideRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	ride, err := services.RideService{}.CreateDriverRide(middleware.UserID(c),
		req.From, req.To, req.TotalSeats, req.DepartureTime, req.DepartureDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ride": ride})
}

// GET /api/driver/rides
func DriverRides(c *gin.Context) {
	rides, err := services.RideService{}.MyRides(middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// PUT /api/driver/rides/:id/time
func UpdateRideTime(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req updateDepartureRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	ride, err := services.RideService{}.UpdateDeparture(id, Actor(c), req.DepartureTime, req.DepartureDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

// PUT /api/driver/rides/:id/end
func EndRide(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	ride, err := services.RideService{}.EndRide(id, Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride, "message": "ride ended"})
}

// PUT /api/driver/rides/:id/fill-seat
func FillSeat(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	ride, err := services.RideService{}.FillSeat(id, Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

// PUT /api/driver/rides/:id/unfill-seat
func UnfillSeat(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	ride, err := services.RideService{}.UnfillSeat(id, Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

// GET /api/driver/rides/:id/bookings
func RideBookings(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	bookings, err := services.BookingService{}.RideBookings(id, Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GET /api/driver/rides/:id/manifest
func RideManifest(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	data, filename, err := services.ManifestService{}.GenerateManifest(id, Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// PUT /api/driver/bookings/:id/confirm
func ConfirmBooking(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	booking, err := services.BookingService{}.Confirm(id, Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "message": "booking confirmed"})
}

// PUT /api/driver/bookings/:id/noshow
func MarkNoShow(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	result, err := services.BookingService{}.MarkNoShow(id, Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	msg := "no-show recorded"
	if result.Blocked {
		msg = "no-show recorded; the student is now blocked"
	}
	c.JSON(http.StatusOK, gin.H{
		"booking":       result.Booking,
		"no_show_count": result.NoShowCount,
		"blocked":       result.Blocked,
		"message":       msg,
	})
}

type blockStudentRequest struct {
	Reason string `json:"reason"`
}

// POST /api/driver/block/:studentId
func BlockStudent(c *gin.Context) {
	studentID, ok := ParamID(c, "studentId")
	if !ok {
		return
	}
	var req blockStudentRequest
	if c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}

	err := repositories.BlockRepository{}.Insert(middleware.UserID(c), studentID, strings.TrimSpace(req.Reason))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			respondError(c, http.StatusBadRequest, "conflict", "student is already blocked")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to block student")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student blocked"})
}

// DELETE /api/driver/block/:studentId
func UnblockStudent(c *gin.Context) {
	studentID, ok := ParamID(c, "studentId")
	if !ok {
		return
	}
	removed, err := repositories.BlockRepository{}.Delete(middleware.UserID(c), studentID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to unblock student")
		return
	}
	if !removed {
		respondError(c, http.StatusNotFound, "not_found", "student is not blocked")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student unblocked"})
}

// GET /api/driver/blocked
func BlockedStudents(c *gin.Context) {
	blocked, err := repositories.BlockRepository{}.ListByDriver(middleware.UserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load block list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}
