package repositories

import (
	"database/sql"
	"errors"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

type RescheduleRepository struct {
	DB *sql.DB
}

func (r RescheduleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const rescheduleColumns = `id,
	       COALESCE(booking_id,0),
	       COALESCE(customer_id,0),
	       tanggal_lama,
	       tanggal_baru,
	       COALESCE(alasan,''),
	       COALESCE(status,''),
	       COALESCE(catatan_admin,''),
	       created_at`

func scanReschedule(row interface{ Scan(dest ...any) error }) (models.Reschedule, error) {
	var rs models.Reschedule
	err := row.Scan(
		&rs.ID,
		&rs.BookingID,
		&rs.CustomerID,
		&rs.TanggalLama,
		&rs.TanggalBaru,
		&rs.Alasan,
		&rs.Status,
		&rs.CatatanAdmin,
		&rs.CreatedAt,
	)
	return rs, err
}

func (r RescheduleRepository) Create(rs models.Reschedule) (int64, error) {
	if rs.BookingID <= 0 {
		return 0, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	res, err := r.db().Exec(`
		INSERT INTO reschedules
			(booking_id, customer_id, tanggal_lama, tanggal_baru, alasan, status, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		rs.BookingID,
		rs.CustomerID,
		rs.TanggalLama,
		rs.TanggalBaru,
		rs.Alasan,
		rs.Status,
		rs.CreatedAt,
	)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return res.LastInsertId()
}

func (r RescheduleRepository) GetByID(id int64) (models.Reschedule, error) {
	if id <= 0 {
		return models.Reschedule{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	row := r.db().QueryRow(`SELECT `+rescheduleColumns+` FROM reschedules WHERE id=? LIMIT 1`, id)
	rs, err := scanReschedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reschedule{}, domain.NotFoundError{Resource: "reschedule", Err: err}
		}
		return models.Reschedule{}, domain.InternalError{Err: err}
	}
	return rs, nil
}

// HasPending reports whether a pending request already exists for the booking.
// At most one pending reschedule per booking is allowed.
func (r RescheduleRepository) HasPending(bookingID int64) (bool, error) {
	if bookingID <= 0 {
		return false, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	var count int
	err := r.db().QueryRow(`
		SELECT COUNT(*) FROM reschedules WHERE booking_id=? AND status=?`,
		bookingID, models.RescheduleStatusPending).Scan(&count)
	if err != nil {
		return false, domain.InternalError{Err: err}
	}
	return count > 0, nil
}

// UpdateStatus moves pending -> approved/rejected conditionally.
func (r RescheduleRepository) UpdateStatus(id int64, status, catatan string) error {
	res, err := r.db().Exec(`
		UPDATE reschedules SET status=?, catatan_admin=? WHERE id=? AND status=?`,
		status, catatan, id, models.RescheduleStatusPending)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}
	rs, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return domain.InvalidStateError{Resource: "reschedule", Current: rs.Status, Wanted: models.RescheduleStatusPending}
}

func (r RescheduleRepository) listBy(where string, args ...any) ([]models.Reschedule, error) {
	rows, err := r.db().Query(`
		SELECT `+rescheduleColumns+` FROM reschedules `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.Reschedule{}
	for rows.Next() {
		rs, err := scanReschedule(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (r RescheduleRepository) ListByCustomer(customerID int64) ([]models.Reschedule, error) {
	if customerID <= 0 {
		return nil, domain.ValidationError{Field: "customer_id", Msg: "id tidak valid"}
	}
	return r.listBy(`WHERE customer_id=?`, customerID)
}

func (r RescheduleRepository) ListByBooking(bookingID int64) ([]models.Reschedule, error) {
	if bookingID <= 0 {
		return nil, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	return r.listBy(`WHERE booking_id=?`, bookingID)
}

func (r RescheduleRepository) ListPending() ([]models.Reschedule, error) {
	return r.listBy(`WHERE status=?`, models.RescheduleStatusPending)
}
