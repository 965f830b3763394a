package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const paymentColumns = `id,
	       COALESCE(booking_id,0),
	       COALESCE(customer_id,0),
	       COALESCE(metode_pembayaran,''),
	       COALESCE(jumlah_bayar,0),
	       tanggal_pembayaran,
	       COALESCE(order_id,''),
	       COALESCE(gateway_response,''),
	       COALESCE(status,'')`

func scanPayment(row interface{ Scan(dest ...any) error }) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.CustomerID,
		&p.MetodePembayaran,
		&p.JumlahBayar,
		&p.TanggalPembayaran,
		&p.OrderID,
		&p.GatewayResponse,
		&p.Status,
	)
	return p, err
}

func (r PaymentRepository) Create(p models.Payment) (int64, error) {
	if p.BookingID <= 0 {
		return 0, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	res, err := r.db().Exec(`
		INSERT INTO payments
			(booking_id, customer_id, metode_pembayaran, jumlah_bayar,
			 tanggal_pembayaran, order_id, gateway_response, status)
		VALUES (?,?,?,?,?,?,?,?)`,
		p.BookingID,
		p.CustomerID,
		p.MetodePembayaran,
		p.JumlahBayar,
		p.TanggalPembayaran,
		p.OrderID,
		p.GatewayResponse,
		p.Status,
	)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return res.LastInsertId()
}

func (r PaymentRepository) GetByID(id int64) (models.Payment, error) {
	if id <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	row := r.db().QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE id=? LIMIT 1`, id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.Payment{}, domain.InternalError{Err: err}
	}
	return p, nil
}

// GetByOrderID locates the payment carrying the gateway correlation key.
// Reconciliation keys strictly on this, never on amount matching.
func (r PaymentRepository) GetByOrderID(orderID string) (models.Payment, error) {
	if orderID == "" {
		return models.Payment{}, domain.ValidationError{Field: "order_id", Msg: "order_id kosong"}
	}
	row := r.db().QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE order_id=? LIMIT 1`, orderID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.Payment{}, domain.InternalError{Err: err}
	}
	return p, nil
}

// HasActivePayment reports whether a non-rejected payment already exists for
// the booking; normal operation allows exactly one.
func (r PaymentRepository) HasActivePayment(bookingID int64) (bool, error) {
	if bookingID <= 0 {
		return false, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	var count int
	err := r.db().QueryRow(`
		SELECT COUNT(*) FROM payments WHERE booking_id=? AND status<>?`,
		bookingID, models.PaymentStatusRejected).Scan(&count)
	if err != nil {
		return false, domain.InternalError{Err: err}
	}
	return count > 0, nil
}

// UpdateStatusAndResponse writes the mapped status and merges the raw gateway
// response into the existing correlation blob (prior keys survive).
func (r PaymentRepository) UpdateStatusAndResponse(id int64, status string, rawResponse []byte) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}

	var existing string
	if err := r.db().QueryRow(`SELECT COALESCE(gateway_response,'') FROM payments WHERE id=? LIMIT 1`, id).
		Scan(&existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "payment", Err: err}
		}
		return domain.InternalError{Err: err}
	}

	merged := MergeGatewayResponse(existing, rawResponse)
	_, err := r.db().Exec(`UPDATE payments SET status=?, gateway_response=? WHERE id=?`,
		status, merged, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

// MergeGatewayResponse folds the latest raw gateway payload into the stored
// blob key by key. Unparseable inputs fall back to whichever side parses.
func MergeGatewayResponse(existing string, raw []byte) string {
	base := map[string]any{}
	if existing != "" {
		_ = json.Unmarshal([]byte(existing), &base)
	}
	latest := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &latest); err != nil {
			return existing
		}
	}
	for k, v := range latest {
		base[k] = v
	}
	out, err := json.Marshal(base)
	if err != nil {
		return existing
	}
	return string(out)
}
