package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
)

type ReportRepository struct {
	DB *sql.DB
}

func (r ReportRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Insert records one report per student per ride; a repeat insert hits
// the UNIQUE(ride_id, student_id) constraint (MySQL error 1062).
func (r ReportRepository) Insert(q DBTX, rideID, studentID int64) error {
	if q == nil {
		q = r.db()
	}
	_, err := q.Exec(`INSERT INTO ride_reports (ride_id, student_id) VALUES (?, ?)`, rideID, studentID)
	return err
}

func (r ReportRepository) CountByRide(q DBTX, rideID int64) (int64, error) {
	if q == nil {
		q = r.db()
	}
	var n int64
	err := q.QueryRow(`SELECT COUNT(*) FROM ride_reports WHERE ride_id = ?`, rideID).Scan(&n)
	return n, err
}

func (r ReportRepository) DeleteByRide(q DBTX, rideID int64) error {
	if q == nil {
		q = r.db()
	}
	_, err := q.Exec(`DELETE FROM ride_reports WHERE ride_id = ?`, rideID)
	return err
}
