package models

import "time"

const (
	EventStatusChanged = "status_changed"
	EventRescheduled   = "rescheduled"
	EventRefunded      = "refunded"
)

// Notification is the persisted record of one dispatched lifecycle event.
type Notification struct {
	ID         string
	CustomerID int64
	EventType  string
	Payload    string // JSON
	CreatedAt  time.Time
}
