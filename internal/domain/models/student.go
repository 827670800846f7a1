package models

import "time"

// Student carries the rider's profile plus the ban/no-show state the
// booking core depends on.
type Student struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	NoShowCount       int    `json:"no_show_count"`
	IsGloballyBlocked bool   `json:"is_globally_blocked"`

	// Ride-share creation gating.
	CreatedRidesCount    int        `json:"created_rides_count"`
	LastRideCreatedAt    *time.Time `json:"last_ride_created_at,omitempty"`
	RideCreationBanUntil *time.Time `json:"ride_creation_ban_until,omitempty"`
	BanCount             int        `json:"ban_count"`

	CreatedAt time.Time `json:"created_at"`
}

// PermanentlyBanned reports whether the student can never create ride
// shares again. Three strikes; no ban-until date is kept past that point.
func (s *Student) PermanentlyBanned() bool { return s.BanCount >= 3 }

// TemporarilyBanned reports whether a time-boxed creation ban is in force.
func (s *Student) TemporarilyBanned(now time.Time) bool {
	return s.RideCreationBanUntil != nil && now.Before(*s.RideCreationBanUntil)
}
