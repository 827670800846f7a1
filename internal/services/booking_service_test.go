package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ridemate/internal/domain"
	"ridemate/internal/domain/models"
)

var testTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*BookingService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := &BookingService{DB: db}
	return svc, mock, func() { db.Close() }
}

func studentRowColumns() []string {
	return []string{"id", "name", "phone", "email", "no_show_count", "is_globally_blocked",
		"created_rides_count", "last_ride_created_at", "ride_creation_ban_until", "ban_count", "created_at"}
}

func studentRow(id int64, noShows int, blocked bool) *sqlmock.Rows {
	return sqlmock.NewRows(studentRowColumns()).
		AddRow(id, "Aman", "9876500000", "aman@campus.edu", noShows, blocked, 0, nil, nil, 0, testTime)
}

func rideRowColumns() []string {
	return []string{"id", "type", "driver_id", "student_id", "from_location", "to_location",
		"total_seats", "filled_seats", "status", "departure_time", "departure_date",
		"created_at", "updated_at", "owner_name", "owner_phone", "auto_number", "upi_id",
		"is_active", "report_count"}
}

func driverRideRow(id, driverID int64, filled, total int, status string) *sqlmock.Rows {
	return sqlmock.NewRows(rideRowColumns()).
		AddRow(id, "driver", driverID, nil, "College", "City Station", total, filled, status,
			"", "", testTime, testTime, "Raju", "9876511111", "PB08-1234", "raju@upi", 1, 0)
}

func bookingRowColumns() []string {
	return []string{"id", "reference", "ride_id", "student_id", "status", "booking_time", "updated_at",
		"from_location", "to_location", "ride_status", "driver_id", "r_student_id"}
}

func bookingRow(id, rideID, studentID, driverID int64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(bookingRowColumns()).
		AddRow(id, "11111111-2222-3333-4444-555555555555", rideID, studentID, status,
			testTime, testTime, "College", "City Station", "active", driverID, nil)
}

func TestBookSeatGloballyBlockedStudent(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(7)).
		WillReturnRows(studentRow(7, 3, true))
	mock.ExpectRollback()

	_, err := svc.BookSeat(7, 1)
	if !domain.IsForbidden(err) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookSeatRejectsSecondActiveBooking(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(7)).
		WillReturnRows(studentRow(7, 0, false))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 1, 4, "active"))
	mock.ExpectQuery("driver_blocked_students").WithArgs(int64(4), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := svc.BookSeat(7, 1)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookSeatCapacityReached(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(7)).
		WillReturnRows(studentRow(7, 0, false))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 4, 4, "active"))
	mock.ExpectQuery("driver_blocked_students").WithArgs(int64(4), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	// The bounded increment finds no free seat.
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.BookSeat(7, 1)
	if !domain.IsCapacity(err) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookSeatBlockedByDriver(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(7)).
		WillReturnRows(studentRow(7, 0, false))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 1, 4, "active"))
	mock.ExpectQuery("driver_blocked_students").WithArgs(int64(4), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.BookSeat(7, 1)
	if !domain.IsForbidden(err) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookSeatHappyPath(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(7)).
		WillReturnRows(studentRow(7, 0, false))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 1, 4, "active"))
	mock.ExpectQuery("driver_blocked_students").WithArgs(int64(4), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(15, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "pending"))

	booking, err := svc.BookSeat(7, 1)
	if err != nil {
		t.Fatalf("BookSeat error: %v", err)
	}
	if booking.Status != models.BookingStatusPending {
		t.Fatalf("expected pending booking, got %s", booking.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkNoShowThirdStrikeBlocks(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	actor := models.Owner{Role: models.OwnerRoleDriver, ID: 4}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "confirmed"))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE students").WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT no_show_count").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"no_show_count", "is_globally_blocked"}).AddRow(3, true))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "no_show"))

	result, err := svc.MarkNoShow(15, actor)
	if err != nil {
		t.Fatalf("MarkNoShow error: %v", err)
	}
	if result.NoShowCount != 3 || !result.Blocked {
		t.Fatalf("expected third strike to block, got count=%d blocked=%v", result.NoShowCount, result.Blocked)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkNoShowWrongOwner(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "pending"))
	mock.ExpectRollback()

	_, err := svc.MarkNoShow(15, models.Owner{Role: models.OwnerRoleDriver, ID: 99})
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelReleasesSeat(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "pending"))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "cancelled"))

	booking, err := svc.Cancel(15, 7)
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if booking.Status != models.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %s", booking.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelConfirmedRejected(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "confirmed"))
	// Conditional transition finds no row still in a cancellable state.
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Cancel(15, 7)
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmRequiresAwaitingConfirmation(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("FROM bookings b").WithArgs(int64(15)).
		WillReturnRows(bookingRow(15, 1, 7, 4, "pending"))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Confirm(15, models.Owner{Role: models.OwnerRoleDriver, ID: 4})
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
