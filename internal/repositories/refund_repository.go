package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

type RefundRepository struct {
	DB *sql.DB
}

func (r RefundRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const refundColumns = `id,
	       COALESCE(booking_id,0),
	       COALESCE(order_id,0),
	       COALESCE(order_luar_kota_id,0),
	       COALESCE(payment_id,0),
	       COALESCE(customer_id,0),
	       COALESCE(kode_refund,''),
	       COALESCE(alasan,''),
	       COALESCE(jumlah_refund,0),
	       COALESCE(potongan,0),
	       COALESCE(jumlah_final,0),
	       COALESCE(metode,''),
	       COALESCE(nomor_rekening,''),
	       COALESCE(status,''),
	       tanggal_pengajuan,
	       tanggal_disetujui,
	       tanggal_selesai,
	       COALESCE(approved_by,0),
	       COALESCE(processed_by,0),
	       COALESCE(bukti_refund,''),
	       COALESCE(catatan_admin,'')`

func scanRefund(row interface{ Scan(dest ...any) error }) (models.Refund, error) {
	var rf models.Refund
	var approvedAt, doneAt sql.NullTime
	err := row.Scan(
		&rf.ID,
		&rf.BookingID,
		&rf.OrderID,
		&rf.OrderLuarKotaID,
		&rf.PaymentID,
		&rf.CustomerID,
		&rf.KodeRefund,
		&rf.Alasan,
		&rf.JumlahRefund,
		&rf.Potongan,
		&rf.JumlahFinal,
		&rf.Metode,
		&rf.NomorRekening,
		&rf.Status,
		&rf.TanggalPengajuan,
		&approvedAt,
		&doneAt,
		&rf.ApprovedBy,
		&rf.ProcessedBy,
		&rf.BuktiRefund,
		&rf.CatatanAdmin,
	)
	if approvedAt.Valid {
		t := approvedAt.Time
		rf.TanggalDisetujui = &t
	}
	if doneAt.Valid {
		t := doneAt.Time
		rf.TanggalSelesai = &t
	}
	return rf, err
}

func (r RefundRepository) Create(rf models.Refund) (int64, error) {
	if rf.CustomerID <= 0 {
		return 0, domain.ValidationError{Field: "customer_id", Msg: "id tidak valid"}
	}
	res, err := r.db().Exec(`
		INSERT INTO refunds
			(booking_id, order_id, order_luar_kota_id, payment_id, customer_id,
			 kode_refund, alasan, jumlah_refund, potongan, jumlah_final,
			 metode, nomor_rekening, status, tanggal_pengajuan)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		intdb.NullIfZero(rf.BookingID),
		intdb.NullIfZero(rf.OrderID),
		intdb.NullIfZero(rf.OrderLuarKotaID),
		intdb.NullIfZero(rf.PaymentID),
		rf.CustomerID,
		rf.KodeRefund,
		rf.Alasan,
		rf.JumlahRefund,
		rf.Potongan,
		rf.JumlahFinal,
		rf.Metode,
		intdb.NullIfEmpty(rf.NomorRekening),
		rf.Status,
		rf.TanggalPengajuan,
	)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return res.LastInsertId()
}

func (r RefundRepository) GetByID(id int64) (models.Refund, error) {
	if id <= 0 {
		return models.Refund{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	row := r.db().QueryRow(`SELECT `+refundColumns+` FROM refunds WHERE id=? LIMIT 1`, id)
	rf, err := scanRefund(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Refund{}, domain.NotFoundError{Resource: "refund", Err: err}
		}
		return models.Refund{}, domain.InternalError{Err: err}
	}
	return rf, nil
}

func (r RefundRepository) ListByCustomer(customerID int64) ([]models.Refund, error) {
	if customerID <= 0 {
		return nil, domain.ValidationError{Field: "customer_id", Msg: "id tidak valid"}
	}
	rows, err := r.db().Query(`
		SELECT `+refundColumns+` FROM refunds WHERE customer_id=? ORDER BY tanggal_pengajuan DESC`,
		customerID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.Refund{}
	for rows.Next() {
		rf, err := scanRefund(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, rf)
	}
	return out, rows.Err()
}

// Approve moves pending -> approved under a conditional update so concurrent
// admins cannot double-approve. Returns InvalidStateError when no row moved.
func (r RefundRepository) Approve(id, adminID, potongan, final int64, at time.Time) error {
	res, err := r.db().Exec(`
		UPDATE refunds
		SET status=?, potongan=?, jumlah_final=?, approved_by=?, tanggal_disetujui=?
		WHERE id=? AND status=?`,
		models.RefundStatusApproved, potongan, final, adminID, at,
		id, models.RefundStatusPending)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return refundTransitionResult(r, res, id, models.RefundStatusPending)
}

func (r RefundRepository) Reject(id, adminID int64, note string, at time.Time) error {
	res, err := r.db().Exec(`
		UPDATE refunds
		SET status=?, approved_by=?, catatan_admin=?, tanggal_disetujui=?
		WHERE id=? AND status=?`,
		models.RefundStatusRejected, adminID, note, at,
		id, models.RefundStatusPending)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return refundTransitionResult(r, res, id, models.RefundStatusPending)
}

func (r RefundRepository) Process(id, adminID int64, bukti string) error {
	res, err := r.db().Exec(`
		UPDATE refunds
		SET status=?, processed_by=?, bukti_refund=?
		WHERE id=? AND status=?`,
		models.RefundStatusProcessing, adminID, bukti,
		id, models.RefundStatusApproved)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return refundTransitionResult(r, res, id, models.RefundStatusApproved)
}

func (r RefundRepository) Complete(id int64, at time.Time) error {
	res, err := r.db().Exec(`
		UPDATE refunds
		SET status=?, tanggal_selesai=?
		WHERE id=? AND status=?`,
		models.RefundStatusCompleted, at,
		id, models.RefundStatusProcessing)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return refundTransitionResult(r, res, id, models.RefundStatusProcessing)
}

// refundTransitionResult distinguishes "wrong state" from "no such refund"
// after a conditional update touched zero rows.
func refundTransitionResult(r RefundRepository, res sql.Result, id int64, wanted string) error {
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}
	rf, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return domain.InvalidStateError{Resource: "refund", Current: rf.Status, Wanted: wanted}
}
