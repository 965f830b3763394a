package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/notify"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"
)

// ExpiryService periodically moves pending_payment bookings whose 24h payment
// window has closed into expired, through the same transition path as every
// other writer so the audit log and notifications stay consistent.
type ExpiryService struct {
	BookingRepo repositories.BookingRepository
	StatusRepo  repositories.StatusUpdateRepository
	NotifRepo   repositories.NotificationRepository
	Notifier    notify.Notifier
	Interval    time.Duration
	RequestID   string
	DB          *sql.DB
	Now         func() time.Time
}

func (s ExpiryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s ExpiryService) bookingSvc() BookingService {
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

// Run sweeps on a ticker until the context is cancelled.
func (s ExpiryService) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	utils.LogEvent(s.RequestID, "expiry", "start", "interval="+interval.String())
	for {
		select {
		case <-ctx.Done():
			utils.LogEvent(s.RequestID, "expiry", "stop", "sweeper berhenti")
			return
		case <-ticker.C:
			if n, err := s.Sweep(); err != nil {
				utils.LogEvent(s.RequestID, "expiry", "sweep", "gagal: "+err.Error())
			} else if n > 0 {
				utils.LogEvent(s.RequestID, "expiry", "sweep", "expired="+strconv.Itoa(n))
			}
		}
	}
}

// Sweep expires every pending_payment booking past its deadline and returns
// how many moved. One failing booking does not stop the rest.
func (s ExpiryService) Sweep() (int, error) {
	repo := s.BookingRepo
	if repo.DB == nil {
		repo = repositories.BookingRepository{DB: s.DB}
	}

	expired, err := repo.ListExpiredPending(s.now())
	if err != nil {
		return 0, err
	}

	svc := s.bookingSvc()
	moved := 0
	for _, b := range expired {
		_, err := svc.TransitionStatus(b.ID, models.BookingStatusExpired, models.SystemActor,
			"Booking melewati batas waktu pembayaran")
		if err != nil {
			utils.LogEvent(s.RequestID, "expiry", "sweep",
				"booking_id="+strconv.FormatInt(b.ID, 10)+" gagal: "+err.Error())
			continue
		}
		moved++
	}
	return moved, nil
}
