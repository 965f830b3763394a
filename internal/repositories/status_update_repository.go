package repositories

import (
	"database/sql"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

// StatusUpdateRepository is the audit log: append-only, never updated or deleted.
type StatusUpdateRepository struct {
	DB *sql.DB
}

func (r StatusUpdateRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r StatusUpdateRepository) Append(su models.StatusUpdate) error {
	if su.BookingID <= 0 {
		return domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	_, err := r.db().Exec(`
		INSERT INTO status_updates
			(booking_id, status_lama, status_baru, customer_id, admin_id, keterangan, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		su.BookingID,
		su.StatusLama,
		su.StatusBaru,
		intdb.NullIfZero(su.CustomerID),
		intdb.NullIfZero(su.AdminID),
		intdb.NullIfEmpty(su.Keterangan),
		su.CreatedAt,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r StatusUpdateRepository) ListByBooking(bookingID int64) ([]models.StatusUpdate, error) {
	if bookingID <= 0 {
		return nil, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	rows, err := r.db().Query(`
		SELECT id,
		       COALESCE(booking_id,0),
		       COALESCE(status_lama,''),
		       COALESCE(status_baru,''),
		       COALESCE(customer_id,0),
		       COALESCE(admin_id,0),
		       COALESCE(keterangan,''),
		       created_at
		FROM status_updates
		WHERE booking_id=?
		ORDER BY created_at ASC, id ASC`, bookingID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.StatusUpdate{}
	for rows.Next() {
		var su models.StatusUpdate
		if err := rows.Scan(
			&su.ID,
			&su.BookingID,
			&su.StatusLama,
			&su.StatusBaru,
			&su.CustomerID,
			&su.AdminID,
			&su.Keterangan,
			&su.CreatedAt,
		); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, su)
	}
	return out, rows.Err()
}
