package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"ridemate/internal/domain"
)

func shareRideRow(id, studentID int64, status string, reports int) *sqlmock.Rows {
	return sqlmock.NewRows(rideRowColumns()).
		AddRow(id, "student_sharing", nil, studentID, "College", "Rama Mandi", 3, 1, status,
			"", "", testTime, testTime, "Neha", "9876522222", "", "", 0, reports)
}

func newReportMock(t *testing.T) (*ReportService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return &ReportService{DB: db}, mock, func() { db.Close() }
}

func TestReportRideBelowThreshold(t *testing.T) {
	svc, mock, done := newReportMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(shareRideRow(1, 9, "active", 1))
	mock.ExpectExec("INSERT INTO ride_reports").WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	result, err := svc.ReportRide(1, 7)
	if err != nil {
		t.Fatalf("ReportRide error: %v", err)
	}
	if result.RideClosed || result.ReportCount != 2 {
		t.Fatalf("expected open ride at 2 reports, got %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRideEscalatesOnThird(t *testing.T) {
	svc, mock, done := newReportMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(shareRideRow(1, 9, "active", 2))
	mock.ExpectExec("INSERT INTO ride_reports").WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE students").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT ban_count").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"ban_count"}).AddRow(1))
	mock.ExpectCommit()

	result, err := svc.ReportRide(1, 7)
	if err != nil {
		t.Fatalf("ReportRide error: %v", err)
	}
	if !result.RideClosed || result.CreatorBans != 1 || result.PermanentBan {
		t.Fatalf("expected first temporary ban, got %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRideThirdBanIsPermanent(t *testing.T) {
	svc, mock, done := newReportMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(shareRideRow(1, 9, "active", 2))
	mock.ExpectExec("INSERT INTO ride_reports").WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec("UPDATE rides").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE students").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT ban_count").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"ban_count"}).AddRow(3))
	mock.ExpectCommit()

	result, err := svc.ReportRide(1, 7)
	if err != nil {
		t.Fatalf("ReportRide error: %v", err)
	}
	if !result.PermanentBan {
		t.Fatalf("expected permanent ban at third strike, got %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRideDuplicateReporter(t *testing.T) {
	svc, mock, done := newReportMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rides r").WithArgs(int64(1)).
		WillReturnRows(shareRideRow(1, 9, "active", 1))
	mock.ExpectExec("INSERT INTO ride_reports").WithArgs(int64(1), int64(7)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := svc.ReportRide(1, 7)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportDriverRideRejected(t *testing.T) {
	svc, mock, done := newReportMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rides r").WithArgs(int64(2)).
		WillReturnRows(driverRideRow(2, 4, 1, 4, "active"))
	mock.ExpectRollback()

	_, err := svc.ReportRide(2, 7)
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
