package models

import "time"

const (
	RefundStatusPending    = "pending"
	RefundStatusApproved   = "approved"
	RefundStatusProcessing = "processing"
	RefundStatusCompleted  = "completed"
	RefundStatusRejected   = "rejected"
)

// Refund is a secondary financial workflow against one booking/order reference.
type Refund struct {
	ID               int64
	BookingID        int64 // 0 = null; exactly one of the three refs is set
	OrderID          int64
	OrderLuarKotaID  int64
	PaymentID        int64
	CustomerID       int64
	KodeRefund       string
	Alasan           string
	JumlahRefund     int64
	Potongan         int64
	JumlahFinal      int64 // always recomputed as JumlahRefund - Potongan
	Metode           string
	NomorRekening    string
	Status           string
	TanggalPengajuan time.Time
	TanggalDisetujui *time.Time
	TanggalSelesai   *time.Time
	ApprovedBy       int64
	ProcessedBy      int64
	BuktiRefund      string
	CatatanAdmin     string
}

// RefRefCount counts non-null booking/order references; must equal 1.
func (r Refund) RefRefCount() int {
	n := 0
	if r.BookingID > 0 {
		n++
	}
	if r.OrderID > 0 {
		n++
	}
	if r.OrderLuarKotaID > 0 {
		n++
	}
	return n
}
