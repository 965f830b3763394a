package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id,
	       COALESCE(customer_id,0),
	       COALESCE(paket_wisata_id,0),
	       COALESCE(paket_luar_kota_id,0),
	       COALESCE(fasilitas_id,0),
	       COALESCE(driver_id,0),
	       COALESCE(kendaraan_id,0),
	       COALESCE(kode_booking,''),
	       tanggal_booking,
	       tanggal_mulai_wisata,
	       tanggal_selesai_wisata,
	       COALESCE(jumlah_peserta,0),
	       COALESCE(estimasi_harga,0),
	       COALESCE(catatan,''),
	       COALESCE(status,''),
	       expired_at`

func scanBooking(row interface{ Scan(dest ...any) error }) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.PaketWisataID,
		&b.PaketLuarKotaID,
		&b.FasilitasID,
		&b.DriverID,
		&b.KendaraanID,
		&b.KodeBooking,
		&b.TanggalBooking,
		&b.TanggalMulai,
		&b.TanggalSelesai,
		&b.JumlahPeserta,
		&b.EstimasiHarga,
		&b.Catatan,
		&b.Status,
		&b.ExpiredAt,
	)
	return b, err
}

func (r BookingRepository) Create(b models.Booking) (int64, error) {
	if b.CustomerID <= 0 {
		return 0, domain.ValidationError{Field: "customer_id", Msg: "id tidak valid"}
	}
	res, err := r.db().Exec(`
		INSERT INTO bookings
			(customer_id, paket_wisata_id, paket_luar_kota_id, fasilitas_id,
			 kode_booking, tanggal_booking, tanggal_mulai_wisata, tanggal_selesai_wisata,
			 jumlah_peserta, estimasi_harga, catatan, status, expired_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.CustomerID,
		intdb.NullIfZero(b.PaketWisataID),
		intdb.NullIfZero(b.PaketLuarKotaID),
		intdb.NullIfZero(b.FasilitasID),
		b.KodeBooking,
		b.TanggalBooking,
		b.TanggalMulai,
		b.TanggalSelesai,
		b.JumlahPeserta,
		b.EstimasiHarga,
		intdb.NullIfEmpty(b.Catatan),
		b.Status,
		b.ExpiredAt,
	)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return res.LastInsertId()
}

func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	row := r.db().QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, domain.InternalError{Err: err}
	}
	return b, nil
}

// UpdateStatus writes the new status without any guard; validity belongs to the
// caller (BookingService.TransitionStatus is the only caller).
func (r BookingRepository) UpdateStatus(id int64, status string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	res, err := r.db().Exec(`UPDATE bookings SET status=? WHERE id=?`, strings.TrimSpace(status), id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

// UpdateSchedule overwrites the travel interval; used by reschedule approval.
func (r BookingRepository) UpdateSchedule(id int64, start, end time.Time) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	_, err := r.db().Exec(`
		UPDATE bookings SET tanggal_mulai_wisata=?, tanggal_selesai_wisata=? WHERE id=?`,
		start, end, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

// AssignDriverVehicle overwrites the assignment unconditionally. The
// assignment columns arrived in a later migration; on an old schema the write
// is refused with a readable error instead of a raw MySQL one.
func (r BookingRepository) AssignDriverVehicle(id, driverID, vehicleID int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	if !intdb.HasColumn(r.db(), "bookings", "driver_id") {
		return domain.InternalError{Msg: "skema bookings belum memiliki kolom driver_id"}
	}
	res, err := r.db().Exec(`UPDATE bookings SET driver_id=?, kendaraan_id=? WHERE id=?`,
		intdb.NullIfZero(driverID), intdb.NullIfZero(vehicleID), id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

func (r BookingRepository) ListByCustomer(customerID int64) ([]models.Booking, error) {
	if customerID <= 0 {
		return nil, domain.ValidationError{Field: "customer_id", Msg: "id tidak valid"}
	}
	rows, err := r.db().Query(`
		SELECT `+bookingColumns+` FROM bookings WHERE customer_id=? ORDER BY tanggal_booking DESC`,
		customerID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListExpiredPending returns pending_payment bookings past their expiry deadline.
func (r BookingRepository) ListExpiredPending(now time.Time) ([]models.Booking, error) {
	rows, err := r.db().Query(`
		SELECT `+bookingColumns+` FROM bookings WHERE status=? AND expired_at < ?`,
		models.BookingStatusPendingPayment, now)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ResourceBusy reports whether any active booking overlaps [start,end] for the
// given column (driver_id / kendaraan_id). Bounds are inclusive on both sides:
// existing.start <= requested.end AND existing.end >= requested.start.
func (r BookingRepository) ResourceBusy(column string, resourceID, excludeBookingID int64, start, end time.Time) (bool, error) {
	if column != "driver_id" && column != "kendaraan_id" {
		return false, domain.ValidationError{Field: "column", Msg: "kolom tidak dikenal"}
	}
	if resourceID <= 0 {
		return false, nil
	}
	statuses := "'" + strings.Join(models.ActiveBookingStatuses, "','") + "'"
	var count int
	err := r.db().QueryRow(`
		SELECT COUNT(*) FROM bookings
		WHERE `+column+`=? AND id<>?
		  AND status IN (`+statuses+`)
		  AND tanggal_mulai_wisata <= ? AND tanggal_selesai_wisata >= ?`,
		resourceID, excludeBookingID, end, start).Scan(&count)
	if err != nil {
		return false, domain.InternalError{Err: err}
	}
	return count > 0, nil
}
