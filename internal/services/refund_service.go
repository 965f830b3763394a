package services

import (
	"database/sql"
	"strconv"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/notify"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"
)

// RefundService runs the refund workflow:
// pending -> approved -> processing -> completed, rejected terminal from pending.
// All transitions except create are admin-initiated, each one a single linear
// step guarded by a conditional update in the repository.
type RefundService struct {
	RefundRepo repositories.RefundRepository
	NotifRepo  repositories.NotificationRepository
	Notifier   notify.Notifier
	RequestID  string
	DB         *sql.DB
	Now        func() time.Time
}

func (s RefundService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s RefundService) refunds() repositories.RefundRepository {
	if s.RefundRepo.DB != nil {
		return s.RefundRepo
	}
	return repositories.RefundRepository{DB: s.DB}
}

// CreateRefundInput: exactly one of BookingID/OrderID/OrderLuarKotaID must be set.
type CreateRefundInput struct {
	BookingID       int64
	OrderID         int64
	OrderLuarKotaID int64
	PaymentID       int64
	Alasan          string
	JumlahRefund    int64
	Metode          string
	NomorRekening   string
}

func (s RefundService) Create(customerID int64, in CreateRefundInput) (models.Refund, error) {
	if customerID <= 0 {
		return models.Refund{}, domain.ValidationError{Field: "customer_id", Msg: "id tidak valid"}
	}

	rf := models.Refund{
		BookingID:       in.BookingID,
		OrderID:         in.OrderID,
		OrderLuarKotaID: in.OrderLuarKotaID,
		PaymentID:       in.PaymentID,
		CustomerID:      customerID,
		Alasan:          in.Alasan,
		JumlahRefund:    in.JumlahRefund,
		Metode:          in.Metode,
		NomorRekening:   in.NomorRekening,
	}
	if rf.RefRefCount() != 1 {
		return models.Refund{}, domain.ValidationError{Field: "referensi", Msg: "harus tepat satu referensi order/booking"}
	}
	if in.JumlahRefund <= 0 {
		return models.Refund{}, domain.ValidationError{Field: "jumlah_refund", Msg: "jumlah harus positif"}
	}

	now := s.now()
	rf.KodeRefund = utils.GenerateCode("RF", now)
	rf.Potongan = 0
	rf.JumlahFinal = rf.JumlahRefund - rf.Potongan
	rf.Status = models.RefundStatusPending
	rf.TanggalPengajuan = now

	id, err := s.refunds().Create(rf)
	if err != nil {
		return models.Refund{}, err
	}
	rf.ID = id

	utils.LogEvent(s.RequestID, "refund", "create",
		"id="+strconv.FormatInt(id, 10)+" kode="+rf.KodeRefund+" jumlah="+utils.FormatRupiah(rf.JumlahRefund))
	return rf, nil
}

// Approve sets the admin deduction and recomputes the final amount exactly as
// jumlah_refund - potongan. The deduction must lie in [0, jumlah_refund].
func (s RefundService) Approve(id, adminID, potongan int64) (models.Refund, error) {
	if adminID <= 0 {
		return models.Refund{}, domain.ValidationError{Field: "admin_id", Msg: "id tidak valid"}
	}

	rf, err := s.refunds().GetByID(id)
	if err != nil {
		return models.Refund{}, err
	}
	if potongan < 0 || potongan > rf.JumlahRefund {
		return models.Refund{}, domain.ValidationError{Field: "potongan", Msg: "potongan harus antara 0 dan jumlah refund"}
	}

	final := rf.JumlahRefund - potongan
	at := s.now()
	if err := s.refunds().Approve(id, adminID, potongan, final, at); err != nil {
		return models.Refund{}, err
	}

	utils.LogEvent(s.RequestID, "refund", "approve",
		"id="+strconv.FormatInt(id, 10)+" potongan="+utils.FormatRupiah(potongan)+" final="+utils.FormatRupiah(final))
	return s.refunds().GetByID(id)
}

func (s RefundService) Reject(id, adminID int64, note string) (models.Refund, error) {
	if adminID <= 0 {
		return models.Refund{}, domain.ValidationError{Field: "admin_id", Msg: "id tidak valid"}
	}
	if err := s.refunds().Reject(id, adminID, note, s.now()); err != nil {
		return models.Refund{}, err
	}
	utils.LogEvent(s.RequestID, "refund", "reject", "id="+strconv.FormatInt(id, 10))
	return s.refunds().GetByID(id)
}

func (s RefundService) Process(id, adminID int64, buktiRefund string) (models.Refund, error) {
	if adminID <= 0 {
		return models.Refund{}, domain.ValidationError{Field: "admin_id", Msg: "id tidak valid"}
	}
	if buktiRefund == "" {
		return models.Refund{}, domain.ValidationError{Field: "bukti_refund", Msg: "bukti wajib diisi"}
	}
	if err := s.refunds().Process(id, adminID, buktiRefund); err != nil {
		return models.Refund{}, err
	}
	utils.LogEvent(s.RequestID, "refund", "process", "id="+strconv.FormatInt(id, 10))
	return s.refunds().GetByID(id)
}

func (s RefundService) Complete(id int64) (models.Refund, error) {
	if err := s.refunds().Complete(id, s.now()); err != nil {
		return models.Refund{}, err
	}
	rf, err := s.refunds().GetByID(id)
	if err != nil {
		return models.Refund{}, err
	}

	utils.LogEvent(s.RequestID, "refund", "complete", "id="+strconv.FormatInt(id, 10))
	dispatchEvent(s.NotifRepo, s.Notifier, s.RequestID, rf.CustomerID, models.EventRefunded, map[string]any{
		"refund_id":    rf.ID,
		"kode_refund":  rf.KodeRefund,
		"jumlah_final": rf.JumlahFinal,
		"metode":       rf.Metode,
	})
	return rf, nil
}

func (s RefundService) Get(id int64) (models.Refund, error) {
	return s.refunds().GetByID(id)
}

func (s RefundService) ListByCustomer(customerID int64) ([]models.Refund, error) {
	return s.refunds().ListByCustomer(customerID)
}
