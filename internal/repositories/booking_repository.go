package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByID loads a booking together with its ride's owner and status, which
// every ledger operation needs for authorization and state checks.
func (r BookingRepository) GetByID(q DBTX, id int64) (*models.Booking, error) {
	if q == nil {
		q = r.db()
	}
	row := q.QueryRow(`SELECT
			b.id, b.reference, b.ride_id, b.student_id, b.status, b.booking_time, b.updated_at,
			r.from_location, r.to_location, r.status, r.driver_id, r.student_id
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		WHERE b.id = ?`, id)

	var (
		b         models.Booking
		driverID  sql.NullInt64
		studentID sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.RideID, &b.StudentID, &b.Status, &b.BookingTime, &b.UpdatedAt,
		&b.RideFrom, &b.RideTo, &b.RideStatus, &driverID, &studentID,
	)
	if err != nil {
		return nil, err
	}
	switch {
	case driverID.Valid:
		b.RideOwner = models.Owner{Role: models.OwnerRoleDriver, ID: driverID.Int64}
	case studentID.Valid:
		b.RideOwner = models.Owner{Role: models.OwnerRoleStudent, ID: studentID.Int64}
	}
	return &b, nil
}

func (r BookingRepository) Create(q DBTX, b *models.Booking) error {
	res, err := q.Exec(`INSERT INTO bookings (reference, ride_id, student_id, status)
		VALUES (?, ?, ?, 'pending')`, b.Reference, b.RideID, b.StudentID)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	if err == nil {
		b.Status = models.BookingStatusPending
	}
	return err
}

// HasActiveByStudent reports whether the student already holds a pending or
// pending_confirmation booking on a still-active ride.
func (r BookingRepository) HasActiveByStudent(q DBTX, studentID int64) (bool, error) {
	if q == nil {
		q = r.db()
	}
	var exists bool
	err := q.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		WHERE b.student_id = ?
		  AND b.status IN ('pending', 'pending_confirmation')
		  AND r.status = 'active')`, studentID).Scan(&exists)
	return exists, err
}

// HasSeatHoldingByStudent checks for any booking that grants ride access
// (chat, details flag): pending, pending_confirmation or confirmed.
func (r BookingRepository) HasSeatHoldingByStudent(studentID, rideID int64) (bool, error) {
	var exists bool
	err := r.db().QueryRow(`SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE student_id = ? AND ride_id = ?
		  AND status IN ('pending', 'pending_confirmation', 'confirmed'))`,
		studentID, rideID).Scan(&exists)
	return exists, err
}

// CountSeatHolding returns the booked-seat floor for manual unfill.
func (r BookingRepository) CountSeatHolding(q DBTX, rideID int64) (int, error) {
	if q == nil {
		q = r.db()
	}
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM bookings
		WHERE ride_id = ?
		  AND status IN ('pending', 'pending_confirmation', 'confirmed')`, rideID).Scan(&n)
	return n, err
}

// UpdateStatusFrom performs the conditional state transition: the write only
// lands if the booking is still in one of the expected source states, so a
// concurrent transition loses cleanly instead of overwriting.
func (r BookingRepository) UpdateStatusFrom(q DBTX, id int64, from []models.BookingStatus, to models.BookingStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	placeholders := ""
	args := []any{string(to), id}
	for i, s := range from {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, string(s))
	}
	res, err := q.Exec(`UPDATE bookings SET status = ?
		WHERE id = ? AND status IN (`+placeholders+`)`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// CancelPendingByRide force-cancels every live unconfirmed booking on a
// ride; used by the end-ride cascade. Seat counts are left alone because
// the ride is closed.
func (r BookingRepository) CancelPendingByRide(q DBTX, rideID int64) (int64, error) {
	res, err := q.Exec(`UPDATE bookings SET status = 'cancelled'
		WHERE ride_id = ? AND status IN ('pending', 'pending_confirmation')`, rideID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByStudent returns a student's bookings newest first, with the ride and
// its driver's payment details joined in.
func (r BookingRepository) ListByStudent(studentID int64) ([]models.Booking, error) {
	rows, err := r.db().Query(`SELECT
			b.id, b.reference, b.ride_id, b.student_id, b.status, b.booking_time, b.updated_at,
			r.from_location, r.to_location, r.status,
			COALESCE(d.name, ''), COALESCE(d.auto_number, ''), COALESCE(d.upi_id, '')
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		LEFT JOIN drivers d ON d.id = r.driver_id
		WHERE b.student_id = ?
		ORDER BY b.booking_time DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(
			&b.ID, &b.Reference, &b.RideID, &b.StudentID, &b.Status, &b.BookingTime, &b.UpdatedAt,
			&b.RideFrom, &b.RideTo, &b.RideStatus,
			&b.DriverName, &b.DriverAutoNumber, &b.DriverUPI,
		)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByRide returns all bookings on a ride with rider contact info, newest
// first. This is the ride owner's passenger list.
func (r BookingRepository) ListByRide(rideID int64) ([]models.Booking, error) {
	rows, err := r.db().Query(`SELECT
			b.id, b.reference, b.ride_id, b.student_id, b.status, b.booking_time, b.updated_at,
			s.name, s.phone, s.no_show_count
		FROM bookings b
		JOIN students s ON s.id = b.student_id
		WHERE b.ride_id = ?
		ORDER BY b.booking_time DESC`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(
			&b.ID, &b.Reference, &b.RideID, &b.StudentID, &b.Status, &b.BookingTime, &b.UpdatedAt,
			&b.StudentName, &b.StudentPhone, &b.StudentNoShows,
		)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteCancelled is the administrative bulk purge of cancelled records.
func (r BookingRepository) DeleteCancelled() (int64, error) {
	res, err := r.db().Exec(`DELETE FROM bookings WHERE status = 'cancelled'`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r BookingRepository) DeleteByRide(q DBTX, rideID int64) error {
	_, err := q.Exec(`DELETE FROM bookings WHERE ride_id = ?`, rideID)
	return err
}

func (r BookingRepository) CountAll() (int64, error) {
	var n int64
	err := r.db().QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&n)
	return n, err
}
