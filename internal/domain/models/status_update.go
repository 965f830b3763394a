package models

import "time"

// StatusUpdate is one immutable audit entry for a booking status transition.
// Exactly one of CustomerID/AdminID is set.
type StatusUpdate struct {
	ID         int64
	BookingID  int64
	StatusLama string
	StatusBaru string
	CustomerID int64
	AdminID    int64
	Keterangan string
	CreatedAt  time.Time
}

// Actor identifies who drove a transition.
type Actor struct {
	CustomerID int64
	AdminID    int64
}

// SystemActor marks transitions made by the service itself (expiry sweep).
var SystemActor = Actor{}
