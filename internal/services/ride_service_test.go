package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ridemate/internal/domain"
	"ridemate/internal/domain/models"
)

func newRideMock(t *testing.T) (*RideService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return &RideService{DB: db}, mock, func() { db.Close() }
}

func TestCreateDriverRideValidation(t *testing.T) {
	svc, _, done := newRideMock(t)
	defer done()

	cases := []struct {
		name  string
		from  string
		to    string
		seats int
	}{
		{"same endpoints", "College", "college", 4},
		{"zero seats", "College", "City Station", 0},
		{"too many seats", "College", "City Station", 11},
		{"missing from", "", "City Station", 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateDriverRide(4, tc.from, tc.to, tc.seats, "", "")
			if !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateDriverRideSecondActiveRejected(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := svc.CreateDriverRide(4, "College", "City Station", 4, "", "")
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateStudentSharePermanentBan(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	banned := sqlmock.NewRows(studentRowColumns()).
		AddRow(9, "Neha", "9876522222", "neha@campus.edu", 0, false, 0, nil, nil, 3, testTime)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(9)).
		WillReturnRows(banned)
	mock.ExpectRollback()

	_, err := svc.CreateStudentShare(9, "College", "City Station", 3, "", "")
	if !domain.IsForbidden(err) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateStudentShareDailyLimit(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	today := time.Now()
	quotaUsed := sqlmock.NewRows(studentRowColumns()).
		AddRow(9, "Neha", "9876522222", "neha@campus.edu", 0, false, 2, today, nil, 0, testTime)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(9)).
		WillReturnRows(quotaUsed)
	mock.ExpectRollback()

	_, err := svc.CreateStudentShare(9, "College", "City Station", 3, "", "")
	if !domain.IsForbidden(err) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateStudentShareQuotaResetsNextDay(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	yesterday := time.Now().Add(-26 * time.Hour)
	row := sqlmock.NewRows(studentRowColumns()).
		AddRow(9, "Neha", "9876522222", "neha@campus.edu", 0, false, 2, yesterday, nil, 0, testTime)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, phone, email").WithArgs(int64(9)).
		WillReturnRows(row)
	mock.ExpectExec("INSERT INTO rides").
		WillReturnResult(sqlmock.NewResult(21, 1))
	// Yesterday's count does not carry over; today restarts at one.
	mock.ExpectExec("UPDATE students").WithArgs(1, sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO system_stats").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(21)).
		WillReturnRows(shareRideRow(21, 9, "active", 0))

	ride, err := svc.CreateStudentShare(9, "College", "City Station", 3, "", "")
	if err != nil {
		t.Fatalf("CreateStudentShare error: %v", err)
	}
	if ride.ID != 21 || ride.Type != models.RideTypeStudentSharing {
		t.Fatalf("unexpected ride: %+v", ride)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEndRideIdempotent(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	actor := models.Owner{Role: models.OwnerRoleDriver, ID: 4}

	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 2, 4, "completed"))
	mock.ExpectBegin()
	// active -> completed guard refuses a second completion
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.EndRide(1, actor)
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEndRideCancelsPendingBookings(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	actor := models.Owner{Role: models.OwnerRoleDriver, ID: 4}

	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 2, 4, "active"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 2, 4, "completed"))

	ride, err := svc.EndRide(1, actor)
	if err != nil {
		t.Fatalf("EndRide error: %v", err)
	}
	if ride.Status != models.RideStatusCompleted {
		t.Fatalf("expected completed ride, got %s", ride.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEndRideWrongOwner(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 2, 4, "active"))

	_, err := svc.EndRide(1, models.Owner{Role: models.OwnerRoleDriver, ID: 99})
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFillSeatCapacityReached(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	actor := models.Owner{Role: models.OwnerRoleDriver, ID: 4}

	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 4, 4, "active"))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.FillSeat(1, actor)
	if !domain.IsCapacity(err) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnfillSeatRespectsBookedFloor(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	actor := models.Owner{Role: models.OwnerRoleDriver, ID: 4}

	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 2, 4, "active"))
	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.UnfillSeat(1, actor)
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnfillSeatNoFilledSeats(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	actor := models.Owner{Role: models.OwnerRoleDriver, ID: 4}

	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 0, 4, "active"))

	_, err := svc.UnfillSeat(1, actor)
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeactivateByAdminSkipsBookingCascade(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 2, 4, "active"))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(driverRideRow(1, 4, 2, 4, "completed"))

	ride, err := svc.DeactivateByAdmin(1)
	if err != nil {
		t.Fatalf("DeactivateByAdmin error: %v", err)
	}
	if ride.Status != models.RideStatusCompleted {
		t.Fatalf("expected completed, got %s", ride.Status)
	}
	// No UPDATE bookings expectation: the admin override leaves bookings be.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpireStaleCompletesOverdueDepartures(t *testing.T) {
	svc, mock, done := newRideMock(t)
	defer done()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE rides").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, departure_date, departure_time").
		WillReturnRows(sqlmock.NewRows([]string{"id", "departure_date", "departure_time"}).
			AddRow(1, "2026-03-10", "09:30").  // 1h30m past departure: overdue
			AddRow(2, "2026-03-10", "11:30").  // within the grace hour
			AddRow(3, "not-a-date", "later")) // unparseable, skipped
	mock.ExpectExec("UPDATE rides").
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc.ExpireStale(now)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
