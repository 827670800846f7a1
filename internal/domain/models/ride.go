package models

import "time"

type RideType string

const (
	RideTypeDriver         RideType = "driver"
	RideTypeStudentSharing RideType = "student_sharing"
)

type RideStatus string

const (
	RideStatusActive    RideStatus = "active"
	RideStatusCompleted RideStatus = "completed"
)

type OwnerRole string

const (
	OwnerRoleDriver  OwnerRole = "driver"
	OwnerRoleStudent OwnerRole = "student"
)

// Owner identifies who posted a ride: exactly one driver or one student.
// Keeping it a tagged value (instead of two nullable ids on Ride) makes
// the mutual exclusivity impossible to get wrong in service code.
type Owner struct {
	Role OwnerRole `json:"role"`
	ID   int64     `json:"id"`
}

func (o Owner) IsDriver() bool { return o.Role == OwnerRoleDriver }

// Ride is a posted transportation offer with seat capacity.
type Ride struct {
	ID            int64      `json:"id"`
	Type          RideType   `json:"type"`
	Owner         Owner      `json:"owner"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	TotalSeats    int        `json:"total_seats"`
	FilledSeats   int        `json:"filled_seats"`
	Status        RideStatus `json:"status"`
	DepartureTime string     `json:"departure_time,omitempty"`
	DepartureDate string     `json:"departure_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Display fields joined from the owner record.
	OwnerName    string `json:"owner_name,omitempty"`
	OwnerPhone   string `json:"owner_phone,omitempty"`
	AutoNumber   string `json:"auto_number,omitempty"`
	DriverUPI    string `json:"driver_upi,omitempty"`
	DriverActive bool   `json:"driver_active,omitempty"`
	ReportCount  int    `json:"report_count,omitempty"`
}

func (r *Ride) IsActive() bool { return r.Status == RideStatusActive }

// OwnedBy reports whether the given actor posted this ride.
func (r *Ride) OwnedBy(actor Owner) bool {
	return r.Owner.Role == actor.Role && r.Owner.ID == actor.ID
}
