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

// RescheduleService gates date changes on a confirmed booking. The three
// eligibility rules live in ValidateRules and are shared verbatim by the
// dry-run endpoint and Create, so the two can never drift.
type RescheduleService struct {
	RescheduleRepo repositories.RescheduleRepository
	BookingRepo    repositories.BookingRepository
	StatusRepo     repositories.StatusUpdateRepository
	NotifRepo      repositories.NotificationRepository
	Notifier       notify.Notifier
	RequestID      string
	DB             *sql.DB
	Now            func() time.Time
}

func (s RescheduleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s RescheduleService) reschedules() repositories.RescheduleRepository {
	if s.RescheduleRepo.DB != nil {
		return s.RescheduleRepo
	}
	return repositories.RescheduleRepository{DB: s.DB}
}

func (s RescheduleService) bookingSvc() BookingService {
	return BookingService{
		BookingRepo: s.BookingRepo,
		StatusRepo:  s.StatusRepo,
		NotifRepo:   s.NotifRepo,
		Notifier:    s.Notifier,
		RequestID:   s.RequestID,
		DB:          s.DB,
		Now:         s.Now,
	}
}

// ValidateRules applies the three date rules on date-only UTC values:
//  1. the old travel date must still be at least 4 days away (H-4),
//  2. the new date must not be exactly tomorrow (H+1),
//  3. the new date must be at least the day after tomorrow (H+2).
//
// Each violation raises a distinct validation failure.
func ValidateRules(oldTravelStart, newDate, submittedAt time.Time) error {
	submission := utils.DateOnly(submittedAt)
	oldStart := utils.DateOnly(oldTravelStart)
	requested := utils.DateOnly(newDate)

	if utils.DaysBetween(oldStart, submission) < 4 {
		return domain.ValidationError{Field: "tanggal_lama", Msg: "reschedule hanya bisa diajukan minimal H-4 sebelum tanggal wisata"}
	}
	if requested.Equal(submission.AddDate(0, 0, 1)) {
		return domain.ValidationError{Field: "tanggal_baru", Msg: "tanggal baru tidak boleh H+1 dari tanggal pengajuan"}
	}
	if requested.Before(submission.AddDate(0, 0, 2)) {
		return domain.ValidationError{Field: "tanggal_baru", Msg: "tanggal baru minimal H+2 dari tanggal pengajuan"}
	}
	return nil
}

// Validate is the stand-alone dry run: same rules, nothing persisted.
func (s RescheduleService) Validate(customerID, bookingID int64, newDate time.Time) error {
	booking, err := s.bookingSvc().GetBooking(bookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != customerID {
		return domain.UnauthorizedError{Msg: "booking bukan milik customer ini"}
	}
	if models.IsTerminalBookingStatus(booking.Status) {
		return domain.InvalidStateError{Resource: "booking", Current: booking.Status}
	}
	return ValidateRules(booking.TanggalMulai, newDate, s.now())
}

// Create re-validates all rules against the booking's current date and the
// current instant, then persists. Only one pending request may exist per
// booking.
func (s RescheduleService) Create(customerID, bookingID int64, newDate time.Time, alasan string) (models.Reschedule, error) {
	booking, err := s.bookingSvc().GetBooking(bookingID)
	if err != nil {
		return models.Reschedule{}, err
	}
	if booking.CustomerID != customerID {
		return models.Reschedule{}, domain.UnauthorizedError{Msg: "booking bukan milik customer ini"}
	}
	if models.IsTerminalBookingStatus(booking.Status) {
		return models.Reschedule{}, domain.InvalidStateError{Resource: "booking", Current: booking.Status}
	}

	if err := ValidateRules(booking.TanggalMulai, newDate, s.now()); err != nil {
		return models.Reschedule{}, err
	}

	pending, err := s.reschedules().HasPending(bookingID)
	if err != nil {
		return models.Reschedule{}, err
	}
	if pending {
		return models.Reschedule{}, domain.ConflictError{Resource: "reschedule", Msg: "masih ada pengajuan pending untuk booking ini"}
	}

	rs := models.Reschedule{
		BookingID:   bookingID,
		CustomerID:  customerID,
		TanggalLama: booking.TanggalMulai,
		TanggalBaru: utils.DateOnly(newDate),
		Alasan:      alasan,
		Status:      models.RescheduleStatusPending,
		CreatedAt:   s.now(),
	}
	id, err := s.reschedules().Create(rs)
	if err != nil {
		return models.Reschedule{}, err
	}
	rs.ID = id

	utils.LogEvent(s.RequestID, "reschedule", "create",
		"id="+strconv.FormatInt(id, 10)+" booking_id="+strconv.FormatInt(bookingID, 10))
	return rs, nil
}

// UpdateStatus decides a pending request. Approval rewrites the booking's
// interval preserving the original trip duration; rejection leaves the booking
// untouched.
func (s RescheduleService) UpdateStatus(id, adminID int64, status, catatan string) (models.Reschedule, error) {
	if adminID <= 0 {
		return models.Reschedule{}, domain.ValidationError{Field: "admin_id", Msg: "id tidak valid"}
	}
	if status != models.RescheduleStatusApproved && status != models.RescheduleStatusRejected {
		return models.Reschedule{}, domain.ValidationError{Field: "status", Msg: "status harus approved atau rejected"}
	}

	rs, err := s.reschedules().GetByID(id)
	if err != nil {
		return models.Reschedule{}, err
	}

	if status == models.RescheduleStatusApproved {
		if err := s.applyApproval(rs, adminID, catatan); err != nil {
			return models.Reschedule{}, err
		}
	} else {
		if err := s.reschedules().UpdateStatus(id, status, catatan); err != nil {
			return models.Reschedule{}, err
		}
	}

	utils.LogEvent(s.RequestID, "reschedule", "decide",
		"id="+strconv.FormatInt(id, 10)+" status="+status)
	return s.reschedules().GetByID(id)
}

// applyApproval rewrites the booking schedule (newEnd = newStart + the old
// duration), then flips the request to approved. The request stays pending
// until both writes landed, so a failed schedule write can be retried through
// the same endpoint. Snapshot and both writes happen under the booking lock.
func (s RescheduleService) applyApproval(rs models.Reschedule, adminID int64, catatan string) error {
	key := strconv.FormatInt(rs.BookingID, 10)
	bookingLocks.Lock(key)
	defer bookingLocks.Unlock(key)

	booking, err := s.bookingSvc().GetBooking(rs.BookingID)
	if err != nil {
		return err
	}

	duration := booking.TanggalSelesai.Sub(booking.TanggalMulai)
	newStart := rs.TanggalBaru
	newEnd := newStart.Add(duration)
	if err := s.bookingSvc().bookings().UpdateSchedule(rs.BookingID, newStart, newEnd); err != nil {
		return err
	}

	if err := s.reschedules().UpdateStatus(rs.ID, models.RescheduleStatusApproved, catatan); err != nil {
		return err
	}

	dispatchEvent(s.NotifRepo, s.Notifier, s.RequestID, rs.CustomerID, models.EventRescheduled, map[string]any{
		"booking_id":      rs.BookingID,
		"reschedule_id":   rs.ID,
		"tanggal_mulai":   utils.FormatDate(newStart),
		"tanggal_selesai": utils.FormatDate(newEnd),
	})
	return nil
}

func (s RescheduleService) Get(id int64) (models.Reschedule, error) {
	return s.reschedules().GetByID(id)
}

func (s RescheduleService) ListMine(customerID int64) ([]models.Reschedule, error) {
	return s.reschedules().ListByCustomer(customerID)
}

func (s RescheduleService) ListByBooking(bookingID int64) ([]models.Reschedule, error) {
	return s.reschedules().ListByBooking(bookingID)
}

func (s RescheduleService) ListPending() ([]models.Reschedule, error) {
	return s.reschedules().ListPending()
}
