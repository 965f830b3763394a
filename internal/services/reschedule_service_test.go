package services

import (
	"errors"
	"testing"
	"time"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestRescheduleRuleBoundaries(t *testing.T) {
	submission := "2024-01-10"

	cases := []struct {
		name     string
		oldStart string
		newDate  string
		ok       bool
	}{
		{"new date tomorrow rejected", "2024-01-14", "2024-01-11", false},
		{"new date day after tomorrow accepted", "2024-01-14", "2024-01-12", true},
		{"old start three days away rejected", "2024-01-13", "2024-01-20", false},
		{"old start exactly four days away accepted", "2024-01-14", "2024-01-20", true},
		{"new date equals submission rejected", "2024-01-14", "2024-01-10", false},
		{"new date in the past rejected", "2024-01-14", "2024-01-05", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRules(
				mustDate(t, tc.oldStart),
				mustDate(t, tc.newDate),
				mustDate(t, submission))
			if tc.ok && err != nil {
				t.Fatalf("expected eligible, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected rejection")
				}
				if !domain.IsValidation(err) {
					t.Fatalf("expected validation error, got %T", err)
				}
			}
		})
	}
}

func TestRescheduleRulesIgnoreTimeOfDay(t *testing.T) {
	oldStart := mustDate(t, "2024-01-14")
	newDate := mustDate(t, "2024-01-12")
	// 23:59 on submission day must behave like midnight
	submittedAt := time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)

	if err := ValidateRules(oldStart, newDate, submittedAt); err != nil {
		t.Fatalf("time-of-day changed the outcome: %v", err)
	}
}

func TestRescheduleApprovalPreservesDuration(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db
	mock.MatchExpectationsInOrder(false)

	oldStart := mustDate(t, "2024-02-01")
	oldEnd := mustDate(t, "2024-02-03")
	newStart := mustDate(t, "2024-03-01")
	wantEnd := mustDate(t, "2024-03-03")
	created := mustDate(t, "2024-01-20")

	mock.ExpectQuery("FROM reschedules WHERE id=").WithArgs(int64(5)).
		WillReturnRows(rescheduleRows(5, 3, 9, oldStart, newStart, "pending", created))

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", oldStart, oldEnd, created))

	mock.ExpectExec("UPDATE reschedules SET status=").
		WithArgs("approved", "ok", int64(5), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("UPDATE bookings SET tanggal_mulai_wisata=").
		WithArgs(newStart, wantEnd, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// notifications table missing, record write skipped
	mock.ExpectQuery("information_schema\\.tables").WithArgs("notifications").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))

	// final read-back of the decided request
	mock.ExpectQuery("FROM reschedules WHERE id=").WithArgs(int64(5)).
		WillReturnRows(rescheduleRows(5, 3, 9, oldStart, newStart, "approved", created))

	svc := RescheduleService{DB: db, Now: func() time.Time { return created }}
	rs, err := svc.UpdateStatus(5, 2, models.RescheduleStatusApproved, "ok")
	if err != nil {
		t.Fatalf("approve error: %v", err)
	}
	if rs.Status != models.RescheduleStatusApproved {
		t.Fatalf("status = %s", rs.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRescheduleApprovalRetryAfterScheduleWriteFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db
	mock.MatchExpectationsInOrder(false)

	oldStart := mustDate(t, "2024-02-01")
	oldEnd := mustDate(t, "2024-02-03")
	newStart := mustDate(t, "2024-03-01")
	wantEnd := mustDate(t, "2024-03-03")
	created := mustDate(t, "2024-01-20")

	// first attempt: the schedule write fails, the request must stay pending
	mock.ExpectQuery("FROM reschedules WHERE id=").WithArgs(int64(5)).
		WillReturnRows(rescheduleRows(5, 3, 9, oldStart, newStart, "pending", created))
	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", oldStart, oldEnd, created))
	mock.ExpectExec("UPDATE bookings SET tanggal_mulai_wisata=").
		WithArgs(newStart, wantEnd, int64(3)).
		WillReturnError(errors.New("connection reset by peer"))

	// retry: same decision goes through, status flips only now
	mock.ExpectQuery("FROM reschedules WHERE id=").WithArgs(int64(5)).
		WillReturnRows(rescheduleRows(5, 3, 9, oldStart, newStart, "pending", created))
	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "pending_payment", oldStart, oldEnd, created))
	mock.ExpectExec("UPDATE bookings SET tanggal_mulai_wisata=").
		WithArgs(newStart, wantEnd, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE reschedules SET status=").
		WithArgs("approved", "ok", int64(5), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("notifications").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectQuery("FROM reschedules WHERE id=").WithArgs(int64(5)).
		WillReturnRows(rescheduleRows(5, 3, 9, oldStart, newStart, "approved", created))

	svc := RescheduleService{DB: db, Now: func() time.Time { return created }}

	if _, err := svc.UpdateStatus(5, 2, models.RescheduleStatusApproved, "ok"); err == nil {
		t.Fatalf("expected the first approval attempt to fail")
	}

	rs, err := svc.UpdateStatus(5, 2, models.RescheduleStatusApproved, "ok")
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if rs.Status != models.RescheduleStatusApproved {
		t.Fatalf("status after retry = %s", rs.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRescheduleCreateRejectsSecondPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	oldStart := mustDate(t, "2024-01-20")
	oldEnd := mustDate(t, "2024-01-22")
	now := mustDate(t, "2024-01-10")

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "confirmed", oldStart, oldEnd, now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reschedules").
		WithArgs(int64(3), "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	svc := RescheduleService{DB: db, Now: func() time.Time { return now }}
	_, err = svc.Create(9, 3, mustDate(t, "2024-01-15"), "ganti jadwal")
	if err == nil {
		t.Fatalf("expected conflict")
	}
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %T: %v", err, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRescheduleRejectedForTerminalBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	oldStart := mustDate(t, "2024-01-20")
	now := mustDate(t, "2024-01-10")

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(bookingRows(3, 9, "expired", oldStart, oldStart.AddDate(0, 0, 2), now))

	svc := RescheduleService{DB: db, Now: func() time.Time { return now }}
	if err := svc.Validate(9, 3, mustDate(t, "2024-01-15")); !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRescheduleDecisionRequiresKnownStatus(t *testing.T) {
	svc := RescheduleService{}
	if _, err := svc.UpdateStatus(1, 2, "cancelled", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func rescheduleRows(id, bookingID, customerID int64, lama, baru time.Time, status string, created time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_id", "customer_id", "tanggal_lama", "tanggal_baru",
		"alasan", "status", "catatan_admin", "created_at",
	}).AddRow(id, bookingID, customerID, lama, baru, "", status, "", created)
}
