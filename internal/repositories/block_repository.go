package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type BlockRepository struct {
	DB *sql.DB
}

func (r BlockRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Insert records a driver-level block. A duplicate pair surfaces the
// UNIQUE constraint as MySQL error 1062 for the service to map.
func (r BlockRepository) Insert(driverID, studentID int64, reason string) error {
	_, err := r.db().Exec(`INSERT INTO driver_blocked_students (driver_id, student_id, reason)
		VALUES (?, ?, ?)`, driverID, studentID, reason)
	return err
}

func (r BlockRepository) Delete(driverID, studentID int64) (bool, error) {
	res, err := r.db().Exec(`DELETE FROM driver_blocked_students
		WHERE driver_id = ? AND student_id = ?`, driverID, studentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r BlockRepository) Exists(q DBTX, driverID, studentID int64) (bool, error) {
	if q == nil {
		q = r.db()
	}
	var one int
	err := q.QueryRow(`SELECT 1 FROM driver_blocked_students
		WHERE driver_id = ? AND student_id = ?`, driverID, studentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r BlockRepository) ListByDriver(driverID int64) ([]models.BlockedStudent, error) {
	rows, err := r.db().Query(`SELECT b.id, b.driver_id, b.student_id, b.reason, b.blocked_at, s.name, s.phone
		FROM driver_blocked_students b
		JOIN students s ON s.id = b.student_id
		WHERE b.driver_id = ?
		ORDER BY b.blocked_at DESC`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BlockedStudent{}
	for rows.Next() {
		var b models.BlockedStudent
		err := rows.Scan(&b.ID, &b.DriverID, &b.StudentID, &b.Reason, &b.BlockedAt, &b.StudentName, &b.StudentPhone)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
