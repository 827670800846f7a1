package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridemate/internal/http/middleware"
	"ridemate/internal/services"
	"ridemate/internal/utils"
)

// GET /api/student/rides?from=&to=
func StudentRides(c *gin.Context) {
	rides, err := services.RideService{}.ListActive(c.Query("from"), c.Query("to"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// GET /api/student/ride/:id
//
// The student view of a ride adds the UPI payment reference and whether the
// caller already holds a booking (which also gates the ride chat).
func StudentRideDetails(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	ride, err := services.RideService{}.GetRide(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	hasBooking, err := services.BookingService{}.HasBookingForRide(middleware.UserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ride":        ride,
		"has_booking": hasBooking,
		"payment_ref": utils.UPIPayString(ride.DriverUPI, ride.OwnerName),
	})
}

// POST /api/student/book/:id
func BookSeat(c *gin.Context) {
	rideID, ok := ParamID(c, "id")
	if !ok {
		return
	}
	booking, err := services.BookingService{}.BookSeat(middleware.UserID(c), rideID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// PUT /api/student/book/:id/pay
func MarkPaid(c *gin.Context) {
	bookingID, ok := ParamID(c, "id")
	if !ok {
		return
	}
	booking, err := services.BookingService{}.MarkPaid(bookingID, middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "message": "payment recorded, waiting for confirmation"})
}

// PUT /api/student/book/:id/cancel
func CancelBooking(c *gin.Context) {
	bookingID, ok := ParamID(c, "id")
	if !ok {
		return
	}
	booking, err := services.BookingService{}.Cancel(bookingID, middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "message": "booking cancelled"})
}

// GET /api/student/bookings
func MyBookings(c *gin.Context) {
	bookings, err := services.BookingService{}.MyBookings(middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type createRideRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	TotalSeats    int    `json:"total_seats"`
	DepartureTime string `json:"departure_time"`
	DepartureDate string `json:"departure_date"`
}

// POST /api/student/ride
func CreateRideShare(c *gin.Context) {
	var req createRideRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	ride, err := services.RideService{}.CreateStudentShare(middleware.UserID(c),
		req.From, req.To, req.TotalSeats, req.DepartureTime, req.DepartureDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ride": ride, "message": "ride share posted"})
}

// POST /api/student/ride/:id/report
func ReportRide(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	result, err := services.ReportService{}.ReportRide(id, middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	msg := "report recorded"
	if result.RideClosed {
		msg = "report recorded; the ride has been taken down"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      msg,
		"report_count": result.ReportCount,
		"ride_closed":  result.RideClosed,
	})
}

// GET /api/student/rides/created
func CreatedRides(c *gin.Context) {
	rides, err := services.RideService{}.CreatedRides(middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

type updateDepartureRequest struct {
	DepartureTime *string `json:"departure_time"`
	DepartureDate *string `json:"departure_date"`
}

// PUT /api/student/ride/:id
func UpdateOwnShare(c *gin.Context) {
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

// PUT /api/student/ride/:id/deactivate
func DeactivateOwnShare(c *gin.Context) {
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
