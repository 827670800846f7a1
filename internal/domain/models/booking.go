package models

import "time"

type BookingStatus string

const (
	BookingStatusPending             BookingStatus = "pending"
	BookingStatusPendingConfirmation BookingStatus = "pending_confirmation"
	BookingStatusConfirmed           BookingStatus = "confirmed"
	BookingStatusCancelled           BookingStatus = "cancelled"
	BookingStatusNoShow              BookingStatus = "no_show"
)

// ActiveBookingStatuses are the states in which a booking blocks the rider
// from booking another ride.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusPendingConfirmation,
}

// SeatHoldingStatuses are the states that count toward a ride's booked-seat
// floor (manual unfill may not drop filled_seats below this count).
var SeatHoldingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusPendingConfirmation,
	BookingStatusConfirmed,
}

// Booking is one student's claim on one seat of one ride.
type Booking struct {
	ID          int64         `json:"id"`
	Reference   string        `json:"reference"`
	RideID      int64         `json:"ride_id"`
	StudentID   int64         `json:"student_id"`
	Status      BookingStatus `json:"status"`
	BookingTime time.Time     `json:"booking_time"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Joined display fields.
	StudentName      string `json:"student_name,omitempty"`
	StudentPhone     string `json:"student_phone,omitempty"`
	StudentNoShows   int    `json:"student_no_shows,omitempty"`
	RideFrom         string `json:"ride_from,omitempty"`
	RideTo           string `json:"ride_to,omitempty"`
	RideStatus       string `json:"ride_status,omitempty"`
	RideOwner        Owner  `json:"-"`
	DriverName       string `json:"driver_name,omitempty"`
	DriverAutoNumber string `json:"driver_auto_number,omitempty"`
	DriverUPI        string `json:"driver_upi,omitempty"`
}
