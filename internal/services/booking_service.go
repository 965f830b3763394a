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

// BookingService owns the booking state machine. TransitionStatus is the only
// path that mutates booking status, so the audit log stays consistent across
// payment reconciliation, admin updates, reschedule approval, and the sweeper.
type BookingService struct {
	BookingRepo repositories.BookingRepository
	StatusRepo  repositories.StatusUpdateRepository
	NotifRepo   repositories.NotificationRepository
	Notifier    notify.Notifier
	RequestID   string
	DB          *sql.DB
	Now         func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.DB}
}

func (s BookingService) statuses() repositories.StatusUpdateRepository {
	if s.StatusRepo.DB != nil {
		return s.StatusRepo
	}
	return repositories.StatusUpdateRepository{DB: s.DB}
}

// CreateBookingInput carries everything a customer submits for a reservation.
// Exactly one product reference must be set.
type CreateBookingInput struct {
	PaketWisataID   int64
	PaketLuarKotaID int64
	FasilitasID     int64
	TanggalMulai    time.Time
	TanggalSelesai  time.Time
	JumlahPeserta   int
	EstimasiHarga   int64
	Catatan         string
	Draft           bool
}

func (s BookingService) CreateBooking(customerID int64, in CreateBookingInput) (models.Booking, error) {
	if customerID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "customer_id", Msg: "id tidak valid"}
	}

	b := models.Booking{
		CustomerID:      customerID,
		PaketWisataID:   in.PaketWisataID,
		PaketLuarKotaID: in.PaketLuarKotaID,
		FasilitasID:     in.FasilitasID,
		TanggalMulai:    in.TanggalMulai,
		TanggalSelesai:  in.TanggalSelesai,
		JumlahPeserta:   in.JumlahPeserta,
		EstimasiHarga:   in.EstimasiHarga,
		Catatan:         in.Catatan,
	}

	switch b.ProductRefCount() {
	case 0:
		return models.Booking{}, domain.ValidationError{Field: "produk", Msg: "harus memilih satu paket atau fasilitas"}
	case 1:
		// ok
	default:
		return models.Booking{}, domain.ValidationError{Field: "produk", Msg: "hanya boleh satu referensi produk"}
	}
	if in.JumlahPeserta < 1 {
		return models.Booking{}, domain.ValidationError{Field: "jumlah_peserta", Msg: "minimal 1 peserta"}
	}
	if in.TanggalMulai.IsZero() || in.TanggalSelesai.IsZero() || in.TanggalSelesai.Before(in.TanggalMulai) {
		return models.Booking{}, domain.ValidationError{Field: "tanggal", Msg: "rentang tanggal tidak valid"}
	}
	if in.EstimasiHarga < 0 {
		return models.Booking{}, domain.ValidationError{Field: "estimasi_harga", Msg: "harga tidak boleh negatif"}
	}

	now := s.now()
	b.KodeBooking = utils.GenerateCode("BK", now)
	b.TanggalBooking = now
	// expired_at ditulis sekali saat pembuatan dan tidak pernah dihitung ulang
	b.ExpiredAt = now.Add(24 * time.Hour)
	b.Status = models.BookingStatusPendingPayment
	if in.Draft {
		b.Status = models.BookingStatusDraft
	}

	id, err := s.bookings().Create(b)
	if err != nil {
		return models.Booking{}, err
	}
	b.ID = id

	utils.LogEvent(s.RequestID, "booking", "create",
		"id="+strconv.FormatInt(id, 10)+" kode="+b.KodeBooking+" status="+b.Status)
	return b, nil
}

// TransitionStatus writes the new status, appends exactly one audit entry, and
// emits a status_changed event. It does not guard transition validity; callers
// own that. Writers for one booking are serialized on a per-id mutex.
func (s BookingService) TransitionStatus(bookingID int64, newStatus string, actor models.Actor, reason string) (models.Booking, error) {
	if bookingID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	if actor.CustomerID > 0 && actor.AdminID > 0 {
		return models.Booking{}, domain.ValidationError{Field: "actor", Msg: "aktor harus customer atau admin, bukan keduanya"}
	}

	key := strconv.FormatInt(bookingID, 10)
	bookingLocks.Lock(key)
	defer bookingLocks.Unlock(key)

	booking, err := s.bookings().GetByID(bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	oldStatus := booking.Status
	if err := s.bookings().UpdateStatus(bookingID, newStatus); err != nil {
		return models.Booking{}, err
	}
	booking.Status = newStatus

	audit := models.StatusUpdate{
		BookingID:  bookingID,
		StatusLama: oldStatus,
		StatusBaru: newStatus,
		CustomerID: actor.CustomerID,
		AdminID:    actor.AdminID,
		Keterangan: reason,
		CreatedAt:  s.now(),
	}
	if err := s.statuses().Append(audit); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "transition",
		"id="+key+" "+oldStatus+" -> "+newStatus)

	dispatchEvent(s.NotifRepo, s.Notifier, s.RequestID, booking.CustomerID, models.EventStatusChanged, map[string]any{
		"booking_id":   bookingID,
		"kode_booking": booking.KodeBooking,
		"status_lama":  oldStatus,
		"status_baru":  newStatus,
		"keterangan":   reason,
	})

	return booking, nil
}

// AssignDriverAndVehicle overwrites the assignment after checking date-range
// availability against other active bookings.
func (s BookingService) AssignDriverAndVehicle(bookingID, driverID, vehicleID int64) error {
	if driverID <= 0 || vehicleID <= 0 {
		return domain.ValidationError{Field: "assignment", Msg: "driver dan kendaraan wajib diisi"}
	}

	booking, err := s.bookings().GetByID(bookingID)
	if err != nil {
		return err
	}

	busy, err := s.bookings().ResourceBusy("driver_id", driverID, bookingID, booking.TanggalMulai, booking.TanggalSelesai)
	if err != nil {
		return err
	}
	if busy {
		return domain.ConflictError{Resource: "driver", Msg: "sudah terpakai pada rentang tanggal tersebut"}
	}

	busy, err = s.bookings().ResourceBusy("kendaraan_id", vehicleID, bookingID, booking.TanggalMulai, booking.TanggalSelesai)
	if err != nil {
		return err
	}
	if busy {
		return domain.ConflictError{Resource: "kendaraan", Msg: "sudah terpakai pada rentang tanggal tersebut"}
	}

	return s.bookings().AssignDriverVehicle(bookingID, driverID, vehicleID)
}

func (s BookingService) GetBooking(bookingID int64) (models.Booking, error) {
	return s.bookings().GetByID(bookingID)
}

func (s BookingService) History(customerID int64) ([]models.Booking, error) {
	return s.bookings().ListByCustomer(customerID)
}

func (s BookingService) StatusUpdates(bookingID int64) ([]models.StatusUpdate, error) {
	if _, err := s.bookings().GetByID(bookingID); err != nil {
		return nil, err
	}
	return s.statuses().ListByBooking(bookingID)
}
