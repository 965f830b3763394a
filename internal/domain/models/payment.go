package models

import "time"

const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusRejected = "rejected"
	PaymentStatusUnknown  = "unknown"
)

// Payment is one settlement attempt against a booking through the gateway.
type Payment struct {
	ID                int64
	BookingID         int64
	CustomerID        int64
	MetodePembayaran  string
	JumlahBayar       int64
	TanggalPembayaran time.Time
	OrderID           string
	GatewayResponse   string // JSON blob; merged, never overwritten wholesale
	Status            string
}
