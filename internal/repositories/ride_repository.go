package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type RideRepository struct {
	DB *sql.DB
}

func (r RideRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const rideColumns = `
	r.id, r.type, r.driver_id, r.student_id, r.from_location, r.to_location,
	r.total_seats, r.filled_seats, r.status, r.departure_time, r.departure_date,
	r.created_at, r.updated_at,
	COALESCE(d.name, s.name, ''), COALESCE(d.phone, s.phone, ''),
	COALESCE(d.auto_number, ''), COALESCE(d.upi_id, ''), COALESCE(d.is_active, 0),
	(SELECT COUNT(*) FROM ride_reports rr WHERE rr.ride_id = r.id)`

const rideJoins = `
	FROM rides r
	LEFT JOIN drivers d ON d.id = r.driver_id
	LEFT JOIN students s ON s.id = r.student_id`

func scanRide(row interface{ Scan(...any) error }) (*models.Ride, error) {
	var (
		ride      models.Ride
		driverID  sql.NullInt64
		studentID sql.NullInt64
		active    int
	)
	err := row.Scan(
		&ride.ID, &ride.Type, &driverID, &studentID, &ride.From, &ride.To,
		&ride.TotalSeats, &ride.FilledSeats, &ride.Status,
		&ride.DepartureTime, &ride.DepartureDate,
		&ride.CreatedAt, &ride.UpdatedAt,
		&ride.OwnerName, &ride.OwnerPhone,
		&ride.AutoNumber, &ride.DriverUPI, &active,
		&ride.ReportCount,
	)
	if err != nil {
		return nil, err
	}
	ride.DriverActive = active == 1
	switch {
	case driverID.Valid:
		ride.Owner = models.Owner{Role: models.OwnerRoleDriver, ID: driverID.Int64}
	case studentID.Valid:
		ride.Owner = models.Owner{Role: models.OwnerRoleStudent, ID: studentID.Int64}
	}
	return &ride, nil
}

// GetByID loads a ride with owner display fields. Pass a tx to read inside
// a transaction, or nil to use the default connection.
func (r RideRepository) GetByID(q DBTX, id int64) (*models.Ride, error) {
	if q == nil {
		q = r.db()
	}
	row := q.QueryRow(`SELECT`+rideColumns+rideJoins+` WHERE r.id = ?`, id)
	ride, err := scanRide(row)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	return ride, err
}

func (r RideRepository) list(query string, args ...any) ([]models.Ride, error) {
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ride{}
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return out, err
		}
		out = append(out, *ride)
	}
	return out, rows.Err()
}

// ListActive keeps student shares and rides whose driver is active.
func (r RideRepository) ListActive() ([]models.Ride, error) {
	return r.list(`SELECT` + rideColumns + rideJoins + `
		WHERE r.status = 'active'
		  AND (r.type = 'student_sharing' OR d.is_active = 1)
		ORDER BY r.created_at DESC`)
}

func (r RideRepository) ListAll() ([]models.Ride, error) {
	return r.list(`SELECT` + rideColumns + rideJoins + ` ORDER BY r.created_at DESC`)
}

func (r RideRepository) ListByDriver(driverID int64) ([]models.Ride, error) {
	return r.list(`SELECT`+rideColumns+rideJoins+`
		WHERE r.driver_id = ? ORDER BY r.created_at DESC`, driverID)
}

// ListByStudent returns the student's most recent share rides.
func (r RideRepository) ListByStudent(studentID int64, limit int) ([]models.Ride, error) {
	return r.list(`SELECT`+rideColumns+rideJoins+`
		WHERE r.student_id = ? AND r.type = 'student_sharing'
		ORDER BY r.created_at DESC LIMIT ?`, studentID, limit)
}

// ListReported returns rides carrying at least one fake-ride report.
func (r RideRepository) ListReported() ([]models.Ride, error) {
	return r.list(`SELECT` + rideColumns + rideJoins + `
		WHERE EXISTS (SELECT 1 FROM ride_reports rr WHERE rr.ride_id = r.id)
		ORDER BY r.created_at DESC`)
}

func (r RideRepository) HasActiveByDriver(q DBTX, driverID int64) (bool, error) {
	if q == nil {
		q = r.db()
	}
	var exists bool
	err := q.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM rides WHERE driver_id = ? AND status = 'active')`, driverID).Scan(&exists)
	return exists, err
}

func (r RideRepository) Create(q DBTX, ride *models.Ride) error {
	var driverID, studentID any
	if ride.Owner.IsDriver() {
		driverID = ride.Owner.ID
	} else {
		studentID = ride.Owner.ID
	}
	res, err := q.Exec(`INSERT INTO rides
		(driver_id, student_id, type, from_location, to_location, total_seats,
		 filled_seats, status, departure_time, departure_date)
		VALUES (?, ?, ?, ?, ?, ?, 0, 'active', ?, ?)`,
		driverID, studentID, ride.Type, ride.From, ride.To, ride.TotalSeats,
		ride.DepartureTime, ride.DepartureDate)
	if err != nil {
		return err
	}
	ride.ID, err = res.LastInsertId()
	if err == nil {
		ride.Status = models.RideStatusActive
		ride.FilledSeats = 0
	}
	return err
}

// IncrementFilledSeats reserves one seat, bounded by capacity. Returns false
// when the ride is missing, inactive or already full; the caller decides
// which of those it is. Never a plain read-then-write.
func (r RideRepository) IncrementFilledSeats(q DBTX, rideID int64) (bool, error) {
	res, err := q.Exec(`UPDATE rides
		SET filled_seats = filled_seats + 1
		WHERE id = ? AND status = 'active' AND filled_seats < total_seats`, rideID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ReleaseSeat frees one seat if any are held. Safe to call for bookings that
// may already have released theirs; a zero-row update is not an error.
func (r RideRepository) ReleaseSeat(q DBTX, rideID int64) error {
	_, err := q.Exec(`UPDATE rides
		SET filled_seats = filled_seats - 1
		WHERE id = ? AND filled_seats > 0`, rideID)
	return err
}

// DecrementAboveFloor removes one manually filled seat, refusing to drop
// below the count of seats backed by live bookings.
func (r RideRepository) DecrementAboveFloor(q DBTX, rideID int64, floor int) (bool, error) {
	res, err := q.Exec(`UPDATE rides
		SET filled_seats = filled_seats - 1
		WHERE id = ? AND filled_seats > ? AND filled_seats > 0`, rideID, floor)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Complete flips an active ride to completed. Completed is terminal, so the
// guard makes repeated calls report false instead of rewriting state.
func (r RideRepository) Complete(q DBTX, rideID int64) (bool, error) {
	if q == nil {
		q = r.db()
	}
	res, err := q.Exec(`UPDATE rides
		SET status = 'completed' WHERE id = ? AND status = 'active'`, rideID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r RideRepository) UpdateDeparture(rideID int64, depTime, depDate *string) error {
	sets := []string{}
	args := []any{}
	if depTime != nil {
		sets = append(sets, "departure_time = ?")
		args = append(args, *depTime)
	}
	if depDate != nil {
		sets = append(sets, "departure_date = ?")
		args = append(args, *depDate)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, rideID)
	_, err := r.db().Exec(`UPDATE rides SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	return err
}

// ExpireStudentShares completes student shares active past their lifetime.
func (r RideRepository) ExpireStudentShares(cutoff time.Time) (int64, error) {
	res, err := r.db().Exec(`UPDATE rides
		SET status = 'completed'
		WHERE type = 'student_sharing' AND status = 'active' AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DepartureInfo is the slice of a ride the lazy expiry check needs.
type DepartureInfo struct {
	ID            int64
	DepartureDate string
	DepartureTime string
}

// ListActiveDepartures returns actives that declared a departure date+time.
func (r RideRepository) ListActiveDepartures() ([]DepartureInfo, error) {
	rows, err := r.db().Query(`SELECT id, departure_date, departure_time
		FROM rides
		WHERE status = 'active' AND departure_date <> '' AND departure_time <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DepartureInfo{}
	for rows.Next() {
		var d DepartureInfo
		if err := rows.Scan(&d.ID, &d.DepartureDate, &d.DepartureTime); err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CompleteByIDs force-completes the given rides, skipping any already done.
func (r RideRepository) CompleteByIDs(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db().Exec(fmt.Sprintf(`UPDATE rides
		SET status = 'completed'
		WHERE status = 'active' AND id IN (%s)`, placeholders), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListCompletedBefore returns completed rides untouched since the cutoff,
// ready for the deletion sweep.
func (r RideRepository) ListCompletedBefore(cutoff time.Time) ([]int64, error) {
	rows, err := r.db().Query(`SELECT id FROM rides
		WHERE status = 'completed' AND updated_at < ?`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a ride row. Bookings, reports and messages are removed
// first by the cleanup sweep's transaction.
func (r RideRepository) Delete(q DBTX, rideID int64) error {
	_, err := q.Exec(`DELETE FROM rides WHERE id = ?`, rideID)
	return err
}
