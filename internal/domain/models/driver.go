package models

import "time"

// Driver is an auto-rickshaw operator account.
type Driver struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	AutoNumber string    `json:"auto_number"`
	UPIID      string    `json:"upi_id"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type Admin struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// BlockedStudent is a driver-level block list entry.
type BlockedStudent struct {
	ID        int64     `json:"id"`
	DriverID  int64     `json:"driver_id"`
	StudentID int64     `json:"student_id"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blocked_at"`

	StudentName  string `json:"student_name,omitempty"`
	StudentPhone string `json:"student_phone,omitempty"`
}
