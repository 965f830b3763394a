package models

import "time"

const (
	RescheduleStatusPending  = "pending"
	RescheduleStatusApproved = "approved"
	RescheduleStatusRejected = "rejected"
)

// Reschedule is a request to move a booking's travel start date.
// TanggalLama is copied from the booking at request time.
type Reschedule struct {
	ID           int64
	BookingID    int64
	CustomerID   int64
	TanggalLama  time.Time
	TanggalBaru  time.Time
	Alasan       string
	Status       string
	CatatanAdmin string
	CreatedAt    time.Time
}
