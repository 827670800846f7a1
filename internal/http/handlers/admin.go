package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"

	"ridemate/internal/repositories"
	"ridemate/internal/services"
)

// GET /api/admin/stats
func AdminStats(c *gin.Context) {
	students := repositories.StudentRepository{}
	drivers := repositories.DriverRepository{}
	bookings := repositories.BookingRepository{}
	stats := repositories.StatsRepository{}

	totalStudents, err := students.CountAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load stats")
		return
	}
	blockedStudents, _ := students.CountBlocked()
	totalDrivers, _ := drivers.CountAll()
	activeDrivers, _ := drivers.CountActive()
	totalBookings, _ := bookings.CountAll()
	lifetimeRides, _ := stats.TotalRidesCreated()

	c.JSON(http.StatusOK, gin.H{
		"total_students":      totalStudents,
		"blocked_students":    blockedStudents,
		"total_drivers":       totalDrivers,
		"active_drivers":      activeDrivers,
		"total_bookings":      totalBookings,
		"total_rides_created": lifetimeRides,
	})
}

type addDriverRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	AutoNumber string `json:"auto_number"`
	Password   string `json:"password"`
	UPIID      string `json:"upi_id"`
}

// POST /api/admin/drivers
func AddDriver(c *gin.Context) {
	var req addDriverRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.AutoNumber = strings.TrimSpace(req.AutoNumber)
	if req.Name == "" || req.AutoNumber == "" || len(req.Password) < 6 {
		respondError(c, http.StatusBadRequest, "validation_error",
			"name, auto_number and a password of at least 6 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to hash password")
		return
	}

	id, err := repositories.DriverRepository{}.Create(req.Name, strings.TrimSpace(req.Phone),
		req.AutoNumber, string(hash), strings.TrimSpace(req.UPIID))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			respondError(c, http.StatusBadRequest, "conflict", "auto number already registered")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to create driver")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "driver added"})
}

// GET /api/admin/drivers
func ListDrivers(c *gin.Context) {
	drivers, err := repositories.DriverRepository{}.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load drivers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

type updateDriverRequest struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	AutoNumber *string `json:"auto_number"`
	UPIID      *string `json:"upi_id"`
	Password   *string `json:"password"`
}

// PUT /api/admin/drivers/:id
func UpdateDriver(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req updateDriverRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	update := repositories.DriverUpdate{
		Name:       req.Name,
		Phone:      req.Phone,
		AutoNumber: req.AutoNumber,
		UPIID:      req.UPIID,
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			respondError(c, http.StatusBadRequest, "validation_error", "password must be at least 6 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "internal_error", "failed to hash password")
			return
		}
		h := string(hash)
		update.PasswordHash = &h
	}

	if err := (repositories.DriverRepository{}).Update(id, update); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to update driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver updated"})
}

// PUT /api/admin/drivers/:id/toggle
func ToggleDriver(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	active, err := repositories.DriverRepository{}.ToggleActive(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to toggle driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_active": active})
}

// GET /api/admin/students
func ListStudents(c *gin.Context) {
	students, err := repositories.StudentRepository{}.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load students")
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

// PUT /api/admin/students/:id/unblock
//
// The administrative reversal of the no-show block; the counter restarts
// from zero.
func AdminUnblockStudent(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := (repositories.StudentRepository{}).Unblock(id); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to unblock student")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student unblocked"})
}

// GET /api/admin/rides
func AdminRides(c *gin.Context) {
	rides, err := services.RideService{}.ListAllForAdmin()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// PUT /api/admin/rides/:id/deactivate
func AdminDeactivateRide(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	ride, err := services.RideService{}.DeactivateByAdmin(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride, "message": "ride deactivated"})
}

// DELETE /api/admin/bookings/cancelled
func DeleteCancelledBookings(c *gin.Context) {
	n, err := services.BookingService{}.PurgeCancelled()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// GET /api/admin/fake-ride-reports
func FakeRideReports(c *gin.Context) {
	rides, err := services.RideService{}.ListReported()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// GET /api/admin/complaints
func ListComplaints(c *gin.Context) {
	out, err := repositories.ComplaintRepository{}.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load complaints")
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": out})
}

type resolveComplaintRequest struct {
	Response string `json:"response"`
}

// PUT /api/admin/complaints/:id
func ResolveComplaint(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req resolveComplaintRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	done, err := repositories.ComplaintRepository{}.Resolve(id, strings.TrimSpace(req.Response))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to resolve complaint")
		return
	}
	if !done {
		respondError(c, http.StatusNotFound, "not_found", "complaint not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "complaint resolved"})
}

// GET /api/admin/suggestions
func ListSuggestions(c *gin.Context) {
	out, err := repositories.SuggestionRepository{}.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to load suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": out})
}

// DELETE /api/admin/suggestions/:id
func DeleteSuggestion(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	removed, err := repositories.SuggestionRepository{}.Delete(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to delete suggestion")
		return
	}
	if !removed {
		respondError(c, http.StatusNotFound, "not_found", "suggestion not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "suggestion deleted"})
}

// DELETE /api/admin/complaints/:id
func DeleteComplaint(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	removed, err := repositories.ComplaintRepository{}.Delete(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to delete complaint")
		return
	}
	if !removed {
		respondError(c, http.StatusNotFound, "not_found", "complaint not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "complaint deleted"})
}
