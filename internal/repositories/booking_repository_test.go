package repositories

import (
	"testing"

	"tourbooking/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAssignRefusedWhenColumnMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.columns").WithArgs("bookings", "driver_id").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	r := BookingRepository{DB: db}
	err = r.AssignDriverVehicle(3, 4, 5)
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error on old schema, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignWritesWhenColumnPresent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.columns").WithArgs("bookings", "driver_id").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("driver_id"))
	mock.ExpectExec("UPDATE bookings SET driver_id=").
		WithArgs(int64(4), int64(5), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := BookingRepository{DB: db}
	if err := r.AssignDriverVehicle(3, 4, 5); err != nil {
		t.Fatalf("assign error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
