package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

type stubLocker struct{ held bool }

func (l stubLocker) TryAcquire(context.Context) bool { return l.held }

func TestCleanupRunPurgesExpiredRides(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	svc := CleanupService{DB: db, Locker: stubLocker{held: true}}

	mock.ExpectQuery("SELECT id FROM rides").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(8))

	for _, id := range []int64{7, 8} {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM bookings").WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM ride_reports").WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM ride_messages WHERE ride_id").WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("DELETE FROM rides").WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	mock.ExpectExec("DELETE FROM ride_messages WHERE created_at").
		WillReturnResult(sqlmock.NewResult(0, 5))

	svc.Run(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCleanupRunContinuesPastFailedPurge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	svc := CleanupService{DB: db}

	mock.ExpectQuery("SELECT id FROM rides").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(8))

	// Ride 7's cascade fails mid-transaction; ride 8 must still be purged.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bookings").WithArgs(int64(7)).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bookings").WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM ride_reports").WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM ride_messages WHERE ride_id").WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM rides").WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("DELETE FROM ride_messages WHERE created_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	svc.Run(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCleanupRunSkipsWithoutLease(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	svc := CleanupService{DB: db, Locker: stubLocker{held: false}}

	// No expectations: a replica without the lease must not touch the DB.
	svc.Run(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCleanupStartStopsOnContextCancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	svc := CleanupService{DB: db, Interval: time.Hour}

	mock.ExpectQuery("SELECT id FROM rides").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE FROM ride_messages WHERE created_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
