package models

import "time"

type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "pending"
	ComplaintStatusResolved ComplaintStatus = "resolved"
)

type Complaint struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	UserRole      string          `json:"user_role"`
	UserName      string          `json:"user_name"`
	Subject       string          `json:"subject"`
	Message       string          `json:"message"`
	Status        ComplaintStatus `json:"status"`
	AdminResponse string          `json:"admin_response,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Message is a ride chat entry. Messages are short-lived; the cleanup sweep
// purges them three hours after creation.
type Message struct {
	ID         int64     `json:"id"`
	RideID     int64     `json:"ride_id"`
	SenderID   int64     `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	SenderName string    `json:"sender_name,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type Suggestion struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
