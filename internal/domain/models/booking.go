package models

import "time"

// Booking statuses. Transitions happen only through BookingService.TransitionStatus.
const (
	BookingStatusDraft           = "draft"
	BookingStatusPendingPayment  = "pending_payment"
	BookingStatusPaymentVerified = "payment_verified"
	BookingStatusConfirmed       = "confirmed"
	BookingStatusExpired         = "expired"
	BookingStatusCancelled       = "cancelled"
)

// ActiveBookingStatuses are the statuses that block a driver/vehicle date range.
var ActiveBookingStatuses = []string{
	BookingStatusPendingPayment,
	BookingStatusPaymentVerified,
	BookingStatusConfirmed,
}

func IsTerminalBookingStatus(status string) bool {
	return status == BookingStatusExpired || status == BookingStatusCancelled
}

// Booking is one reservation against exactly one travel product.
type Booking struct {
	ID              int64
	CustomerID      int64
	PaketWisataID   int64 // 0 = null
	PaketLuarKotaID int64
	FasilitasID     int64
	DriverID        int64
	KendaraanID     int64
	KodeBooking     string
	TanggalBooking  time.Time
	TanggalMulai    time.Time
	TanggalSelesai  time.Time
	JumlahPeserta   int
	EstimasiHarga   int64
	Catatan         string
	Status          string
	ExpiredAt       time.Time
}

// ProductRefCount returns how many product references the booking carries.
// Valid bookings carry exactly one.
func (b Booking) ProductRefCount() int {
	n := 0
	if b.PaketWisataID > 0 {
		n++
	}
	if b.PaketLuarKotaID > 0 {
		n++
	}
	if b.FasilitasID > 0 {
		n++
	}
	return n
}
