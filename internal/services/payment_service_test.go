package services

import (
	"strings"
	"testing"
	"time"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/gateway"

	"github.com/DATA-DOG/go-sqlmock"
)

// fakeGateway stubs the payment gateway boundary.
type fakeGateway struct {
	verify bool
	snap   *gateway.SnapResponse
	status *gateway.TransactionStatus
	err    error
}

func (f fakeGateway) CreateSnapTransaction(gateway.SnapRequest) (*gateway.SnapResponse, error) {
	return f.snap, f.err
}

func (f fakeGateway) GetTransactionStatus(string) (*gateway.TransactionStatus, error) {
	return f.status, f.err
}

func (f fakeGateway) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	return f.verify
}

func bookingRows(id, customerID int64, status string, mulai, selesai, created time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "customer_id", "paket_wisata_id", "paket_luar_kota_id", "fasilitas_id",
		"driver_id", "kendaraan_id", "kode_booking", "tanggal_booking",
		"tanggal_mulai_wisata", "tanggal_selesai_wisata", "jumlah_peserta",
		"estimasi_harga", "catatan", "status", "expired_at",
	}).AddRow(id, customerID, 1, 0, 0, 0, 0, "BK240101000000AAAA", created,
		mulai, selesai, 2, 150000, "", status, created.Add(24*time.Hour))
}

func paymentRows(id, bookingID, customerID int64, orderID, blob, status string, at time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_id", "customer_id", "metode_pembayaran", "jumlah_bayar",
		"tanggal_pembayaran", "order_id", "gateway_response", "status",
	}).AddRow(id, bookingID, customerID, "snap", 150000, at, orderID, blob, status)
}

func TestWebhookInvalidSignatureTouchesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	svc := PaymentService{Gateway: fakeGateway{verify: false}, DB: db}
	res := svc.HandleNotification(WebhookEvent{
		OrderID:           "PAY-x",
		StatusCode:        "200",
		GrossAmount:       "150000.00",
		SignatureKey:      "salah",
		TransactionStatus: "settlement",
	})
	if res.Success {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(res.Message, "signature") {
		t.Fatalf("unexpected message: %s", res.Message)
	}

	// zero declared expectations: any DB call would have failed above
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("db was touched: %v", err)
	}
}

func TestWebhookSettlementVerifiesPaymentAndBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db
	mock.MatchExpectationsInOrder(false)

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM payments WHERE order_id=").WithArgs("PAY-abc").
		WillReturnRows(paymentRows(7, 3, 9, "PAY-abc", "{}", "pending", now))

	mock.ExpectQuery("gateway_response,''\\) FROM payments WHERE id=").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"gateway_response"}).AddRow("{}"))
	mock.ExpectExec("UPDATE payments SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// booking read twice: once for the skip check, once inside the transition
	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", now, now.AddDate(0, 0, 2), now))
	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", now, now.AddDate(0, 0, 2), now))

	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs("payment_verified", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO status_updates").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("notifications").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))

	svc := PaymentService{Gateway: fakeGateway{verify: true}, DB: db, Now: func() time.Time { return now }}
	res := svc.HandleNotification(WebhookEvent{
		OrderID:           "PAY-abc",
		StatusCode:        "200",
		GrossAmount:       "150000.00",
		SignatureKey:      "benar",
		TransactionStatus: "settlement",
	})
	if !res.Success {
		t.Fatalf("expected success, got: %s", res.Message)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWebhookAmountMismatchStillReconciles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db
	mock.MatchExpectationsInOrder(false)

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM payments WHERE order_id=").WithArgs("PAY-abc").
		WillReturnRows(paymentRows(7, 3, 9, "PAY-abc", "{}", "pending", now))
	mock.ExpectQuery("gateway_response,''\\) FROM payments WHERE id=").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"gateway_response"}).AddRow("{}"))
	mock.ExpectExec("UPDATE payments SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", now, now.AddDate(0, 0, 2), now))
	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", now, now.AddDate(0, 0, 2), now))
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs("payment_verified", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO status_updates").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("notifications").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))

	// the reported amount disagrees with the stored jumlah_bayar; the order
	// id still decides, the mismatch only gets logged
	svc := PaymentService{Gateway: fakeGateway{verify: true}, DB: db, Now: func() time.Time { return now }}
	res := svc.HandleNotification(WebhookEvent{
		OrderID:           "PAY-abc",
		StatusCode:        "200",
		GrossAmount:       "999999.00",
		SignatureKey:      "benar",
		TransactionStatus: "settlement",
	})
	if !res.Success {
		t.Fatalf("mismatched amount must not block reconciliation: %s", res.Message)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWebhookSettlementReplayIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	// payment already verified: lookup happens, nothing else
	mock.ExpectQuery("FROM payments WHERE order_id=").WithArgs("PAY-abc").
		WillReturnRows(paymentRows(7, 3, 9, "PAY-abc", `{"transaction_status":"settlement"}`, "verified", now))

	svc := PaymentService{Gateway: fakeGateway{verify: true}, DB: db, Now: func() time.Time { return now }}
	res := svc.HandleNotification(WebhookEvent{
		OrderID:           "PAY-abc",
		TransactionStatus: "settlement",
	})
	if !res.Success {
		t.Fatalf("replay should be acknowledged: %s", res.Message)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWebhookUnknownStatusLeavesBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db
	mock.MatchExpectationsInOrder(false)

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM payments WHERE order_id=").WithArgs("PAY-abc").
		WillReturnRows(paymentRows(7, 3, 9, "PAY-abc", "{}", "pending", now))
	mock.ExpectQuery("gateway_response,''\\) FROM payments WHERE id=").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"gateway_response"}).AddRow("{}"))
	mock.ExpectExec("UPDATE payments SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// no booking reads, no booking update, no audit entry

	svc := PaymentService{Gateway: fakeGateway{verify: true}, DB: db, Now: func() time.Time { return now }}
	res := svc.HandleNotification(WebhookEvent{
		OrderID:           "PAY-abc",
		TransactionStatus: "refund_chargeback",
	})
	if !res.Success {
		t.Fatalf("expected acknowledgement: %s", res.Message)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWebhookUnknownOrderIDRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectQuery("FROM payments WHERE order_id=").WithArgs("PAY-hilang").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	svc := PaymentService{Gateway: fakeGateway{verify: true}, DB: db}
	res := svc.HandleNotification(WebhookEvent{OrderID: "PAY-hilang", TransactionStatus: "settlement"})
	if res.Success {
		t.Fatalf("expected rejection for unknown order id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePaymentRejectsSecondActivePayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", now, now.AddDate(0, 0, 2), now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payments").
		WithArgs(int64(3), "rejected").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	svc := PaymentService{Gateway: fakeGateway{verify: true}, DB: db, Now: func() time.Time { return now }}
	_, err = svc.CreatePayment(9, 3, "snap")
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGatewayStatusMapping(t *testing.T) {
	cases := []struct {
		in      string
		payment string
		booking string
	}{
		{"capture", models.PaymentStatusVerified, models.BookingStatusPaymentVerified},
		{"settlement", models.PaymentStatusVerified, models.BookingStatusPaymentVerified},
		{"pending", models.PaymentStatusPending, models.BookingStatusPendingPayment},
		{"deny", models.PaymentStatusRejected, models.BookingStatusExpired},
		{"cancel", models.PaymentStatusRejected, models.BookingStatusExpired},
		{"expire", models.PaymentStatusRejected, models.BookingStatusExpired},
		{"failure", models.PaymentStatusRejected, models.BookingStatusExpired},
		{"chargeback", models.PaymentStatusUnknown, ""},
	}
	for _, tc := range cases {
		p, b := mapGatewayStatus(tc.in)
		if p != tc.payment || b != tc.booking {
			t.Fatalf("%s: got (%s,%s) want (%s,%s)", tc.in, p, b, tc.payment, tc.booking)
		}
	}
}
