package services

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/gateway"
	"tourbooking/internal/notify"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"

	"github.com/google/uuid"
)

// PaymentService converts asynchronous gateway events into safe, idempotent
// booking-state updates, and creates checkout sessions.
type PaymentService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	NotifRepo   repositories.NotificationRepository
	Gateway     gateway.Client
	Notifier    notify.Notifier
	RequestID   string
	DB          *sql.DB
	Now         func() time.Time
}

func (s PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s PaymentService) payments() repositories.PaymentRepository {
	if s.PaymentRepo.DB != nil {
		return s.PaymentRepo
	}
	return repositories.PaymentRepository{DB: s.DB}
}

func (s PaymentService) bookingSvc() BookingService {
	return BookingService{
		BookingRepo: s.BookingRepo,
		NotifRepo:   s.NotifRepo,
		Notifier:    s.Notifier,
		RequestID:   s.RequestID,
		DB:          s.DB,
		Now:         s.Now,
	}
}

// CheckoutSession is what the customer needs to finish payment at the gateway.
type CheckoutSession struct {
	Payment     models.Payment
	Token       string
	RedirectURL string
}

// CreatePayment creates the gateway checkout session first and writes the
// Payment row only after a session token is obtained; a gateway failure leaves
// no partial row behind.
func (s PaymentService) CreatePayment(customerID, bookingID int64, metode string) (CheckoutSession, error) {
	booking, err := s.bookingSvc().GetBooking(bookingID)
	if err != nil {
		return CheckoutSession{}, err
	}
	if booking.CustomerID != customerID {
		return CheckoutSession{}, domain.UnauthorizedError{Msg: "booking bukan milik customer ini"}
	}
	if booking.Status != models.BookingStatusPendingPayment && booking.Status != models.BookingStatusDraft {
		return CheckoutSession{}, domain.InvalidStateError{
			Resource: "booking",
			Current:  booking.Status,
			Wanted:   models.BookingStatusPendingPayment,
		}
	}

	active, err := s.payments().HasActivePayment(bookingID)
	if err != nil {
		return CheckoutSession{}, err
	}
	if active {
		return CheckoutSession{}, domain.ConflictError{Resource: "payment", Msg: "sudah ada pembayaran aktif untuk booking ini"}
	}

	orderID := "PAY-" + uuid.NewString()
	snap, err := s.Gateway.CreateSnapTransaction(gateway.SnapRequest{
		OrderID:     orderID,
		GrossAmount: booking.EstimasiHarga,
		CustomerID:  customerID,
	})
	if err != nil {
		return CheckoutSession{}, domain.UpstreamError{Op: "create checkout session", Err: err}
	}

	payment := models.Payment{
		BookingID:         bookingID,
		CustomerID:        customerID,
		MetodePembayaran:  metode,
		JumlahBayar:       booking.EstimasiHarga,
		TanggalPembayaran: s.now(),
		OrderID:           orderID,
		GatewayResponse:   "{}",
		Status:            models.PaymentStatusPending,
	}
	id, err := s.payments().Create(payment)
	if err != nil {
		return CheckoutSession{}, err
	}
	payment.ID = id

	utils.LogEvent(s.RequestID, "payment", "create",
		"payment_id="+strconv.FormatInt(id, 10)+" order_id="+orderID)
	return CheckoutSession{Payment: payment, Token: snap.Token, RedirectURL: snap.RedirectURL}, nil
}

// WebhookEvent is the gateway's asynchronous notification payload.
type WebhookEvent struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	TransactionTime   string `json:"transaction_time"`
}

// WebhookResult is reported internally; the HTTP endpoint answers 200 to the
// gateway regardless.
type WebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleNotification folds the reconciliation outcome into a WebhookResult;
// the HTTP endpoint answers 200 to the gateway either way.
func (s PaymentService) HandleNotification(ev WebhookEvent) WebhookResult {
	if err := s.reconcile(ev); err != nil {
		utils.LogEvent(s.RequestID, "payment", "webhook",
			"order_id="+ev.OrderID+" "+err.Error())
		switch {
		case domain.IsAuthenticity(err):
			return WebhookResult{Success: false, Message: "signature tidak valid"}
		case domain.IsNotFound(err):
			return WebhookResult{Success: false, Message: "payment tidak ditemukan"}
		default:
			return WebhookResult{Success: false, Message: "gagal memproses notifikasi"}
		}
	}
	return WebhookResult{Success: true, Message: "ok"}
}

// reconcile runs the full sequence: verify signature, locate payment by order
// id, map the gateway status, persist, and drive the booking state machine.
// Serialized per order id; replaying an identical terminal event is a no-op.
func (s PaymentService) reconcile(ev WebhookEvent) error {
	if !s.Gateway.VerifySignature(ev.OrderID, ev.StatusCode, ev.GrossAmount, ev.SignatureKey) {
		return domain.AuthenticityError{OrderID: ev.OrderID}
	}

	orderLocks.Lock(ev.OrderID)
	defer orderLocks.Unlock(ev.OrderID)

	payment, err := s.payments().GetByOrderID(ev.OrderID)
	if err != nil {
		return err
	}
	return s.applyGatewayStatus(payment, ev)
}

// mapGatewayStatus maps a gateway transaction_status to the internal payment
// and booking statuses. An empty booking status means "leave the booking".
func mapGatewayStatus(transactionStatus string) (paymentStatus, bookingStatus string) {
	switch transactionStatus {
	case "capture", "settlement":
		return models.PaymentStatusVerified, models.BookingStatusPaymentVerified
	case "pending":
		return models.PaymentStatusPending, models.BookingStatusPendingPayment
	case "deny", "cancel", "expire", "failure":
		return models.PaymentStatusRejected, models.BookingStatusExpired
	default:
		return models.PaymentStatusUnknown, ""
	}
}

// applyGatewayStatus persists the mapped payment status (merging the raw
// response into the correlation blob) and transitions the booking located by
// the payment's booking_id foreign key. Caller holds the order lock.
func (s PaymentService) applyGatewayStatus(payment models.Payment, ev WebhookEvent) error {
	paymentStatus, bookingStatus := mapGatewayStatus(ev.TransactionStatus)

	// Replay of an event that already landed: same terminal state, no second
	// audit entry.
	if payment.Status == paymentStatus {
		utils.LogEvent(s.RequestID, "payment", "reconcile",
			"order_id="+ev.OrderID+" sudah berstatus "+paymentStatus+", dilewati")
		return nil
	}

	// An amount mismatch is logged but never blocks reconciliation; the
	// order id foreign key alone decides which booking the event belongs to.
	if gross, err := utils.ParseGross(ev.GrossAmount); err == nil && gross != payment.JumlahBayar {
		utils.LogEvent(s.RequestID, "payment", "reconcile",
			"order_id="+ev.OrderID+" gross_amount "+ev.GrossAmount+
				" != jumlah_bayar "+strconv.FormatInt(payment.JumlahBayar, 10))
	}

	raw, _ := json.Marshal(ev)
	if err := s.payments().UpdateStatusAndResponse(payment.ID, paymentStatus, raw); err != nil {
		return err
	}

	if bookingStatus == "" {
		// status gateway di luar pemetaan; booking tidak disentuh
		utils.LogEvent(s.RequestID, "payment", "reconcile",
			"order_id="+ev.OrderID+" status gateway tidak dikenal: "+ev.TransactionStatus)
		return nil
	}

	booking, err := s.bookingSvc().GetBooking(payment.BookingID)
	if err != nil {
		return err
	}
	if booking.Status == bookingStatus {
		return nil
	}

	_, err = s.bookingSvc().TransitionStatus(
		booking.ID,
		bookingStatus,
		models.Actor{CustomerID: payment.CustomerID},
		"Payment "+ev.TransactionStatus+" via gateway",
	)
	return err
}

// GetStatus re-polls the gateway for the freshest status and, when it moved,
// re-runs reconciliation synchronously before returning. Poll failures are
// logged and swallowed; the last persisted state wins.
func (s PaymentService) GetStatus(paymentID, customerID int64) (models.Payment, error) {
	payment, err := s.payments().GetByID(paymentID)
	if err != nil {
		return models.Payment{}, err
	}
	if customerID > 0 && payment.CustomerID != customerID {
		return models.Payment{}, domain.UnauthorizedError{Msg: "payment bukan milik customer ini"}
	}

	status, err := s.Gateway.GetTransactionStatus(payment.OrderID)
	if err != nil {
		utils.LogEvent(s.RequestID, "payment", "poll",
			"order_id="+payment.OrderID+" poll gagal, pakai status tersimpan: "+err.Error())
		return payment, nil
	}

	if status.TransactionStatus != lastTransactionStatus(payment.GatewayResponse) {
		orderLocks.Lock(payment.OrderID)
		err = s.applyGatewayStatus(payment, WebhookEvent{
			OrderID:           status.OrderID,
			StatusCode:        status.StatusCode,
			GrossAmount:       status.GrossAmount,
			TransactionStatus: status.TransactionStatus,
			PaymentType:       status.PaymentType,
			TransactionID:     status.TransactionID,
			TransactionTime:   status.TransactionTime,
		})
		orderLocks.Unlock(payment.OrderID)
		if err != nil {
			return models.Payment{}, err
		}
		return s.payments().GetByID(paymentID)
	}

	return payment, nil
}

// lastTransactionStatus reads transaction_status out of the stored blob.
func lastTransactionStatus(blob string) string {
	if blob == "" {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return ""
	}
	if v, ok := m["transaction_status"].(string); ok {
		return v
	}
	return ""
}
