package repositories

import (
	"database/sql"
	"time"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type StudentRepository struct {
	DB *sql.DB
}

func (r StudentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const studentColumns = `id, name, phone, email, no_show_count, is_globally_blocked,
	created_rides_count, last_ride_created_at, ride_creation_ban_until, ban_count, created_at`

func scanStudent(row interface{ Scan(...any) error }) (*models.Student, error) {
	var (
		s        models.Student
		lastRide sql.NullTime
		banUntil sql.NullTime
	)
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.NoShowCount, &s.IsGloballyBlocked,
		&s.CreatedRidesCount, &lastRide, &banUntil, &s.BanCount, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastRide.Valid {
		t := lastRide.Time
		s.LastRideCreatedAt = &t
	}
	if banUntil.Valid {
		t := banUntil.Time
		s.RideCreationBanUntil = &t
	}
	return &s, nil
}

func (r StudentRepository) GetByID(q DBTX, id int64) (*models.Student, error) {
	if q == nil {
		q = r.db()
	}
	return scanStudent(q.QueryRow(`SELECT `+studentColumns+` FROM students WHERE id = ?`, id))
}

func (r StudentRepository) GetByPhone(phone string) (*models.Student, string, error) {
	var hash string
	row := r.db().QueryRow(`SELECT `+studentColumns+`, password_hash
		FROM students WHERE phone = ?`, phone)

	var (
		s        models.Student
		lastRide sql.NullTime
		banUntil sql.NullTime
	)
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.NoShowCount, &s.IsGloballyBlocked,
		&s.CreatedRidesCount, &lastRide, &banUntil, &s.BanCount, &s.CreatedAt, &hash)
	if err != nil {
		return nil, "", err
	}
	if lastRide.Valid {
		t := lastRide.Time
		s.LastRideCreatedAt = &t
	}
	if banUntil.Valid {
		t := banUntil.Time
		s.RideCreationBanUntil = &t
	}
	return &s, hash, nil
}

func (r StudentRepository) Create(name, phone, email, passwordHash string) (int64, error) {
	res, err := r.db().Exec(`INSERT INTO students (name, phone, email, password_hash)
		VALUES (?, ?, ?, ?)`, name, phone, email, passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r StudentRepository) List() ([]models.Student, error) {
	rows, err := r.db().Query(`SELECT ` + studentColumns + ` FROM students ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return out, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ApplyNoShow bumps the counter and flips the global block at the threshold
// in one statement; MySQL evaluates SET clauses left to right, so the block
// test sees the pre-increment counter. Returns the post-update state.
func (r StudentRepository) ApplyNoShow(q DBTX, id int64) (count int, blocked bool, err error) {
	_, err = q.Exec(`UPDATE students
		SET is_globally_blocked = is_globally_blocked OR (no_show_count + 1 >= 3),
		    no_show_count = no_show_count + 1
		WHERE id = ?`, id)
	if err != nil {
		return 0, false, err
	}
	err = q.QueryRow(`SELECT no_show_count, is_globally_blocked
		FROM students WHERE id = ?`, id).Scan(&count, &blocked)
	return count, blocked, err
}

// Unblock is the administrative reversal: clears the global block and zeroes
// the counter so the escalation starts fresh. A zero-row update is fine;
// unblocking an already-clear student is a no-op.
func (r StudentRepository) Unblock(id int64) error {
	_, err := r.db().Exec(`UPDATE students
		SET is_globally_blocked = 0, no_show_count = 0 WHERE id = ?`, id)
	return err
}

// RecordRideCreation persists the daily-count bookkeeping computed by the
// service (count reset on a new day happens there).
func (r StudentRepository) RecordRideCreation(q DBTX, id int64, count int, at time.Time) error {
	_, err := q.Exec(`UPDATE students
		SET created_rides_count = ?, last_ride_created_at = ?
		WHERE id = ?`, count, at, id)
	return err
}

// ApplyReportBan escalates the creator of a thrice-reported ride: the ban
// counter always advances; a 7-day ban-until date is set only while the
// count stays below the permanent threshold. SET order matters: the IF
// must see the pre-increment count.
func (r StudentRepository) ApplyReportBan(q DBTX, id int64, until time.Time) (banCount int, err error) {
	_, err = q.Exec(`UPDATE students
		SET ride_creation_ban_until = IF(ban_count + 1 < 3, ?, ride_creation_ban_until),
		    ban_count = ban_count + 1
		WHERE id = ?`, until, id)
	if err != nil {
		return 0, err
	}
	err = q.QueryRow(`SELECT ban_count FROM students WHERE id = ?`, id).Scan(&banCount)
	return banCount, err
}

func (r StudentRepository) CountAll() (int64, error) {
	var n int64
	err := r.db().QueryRow(`SELECT COUNT(*) FROM students`).Scan(&n)
	return n, err
}

func (r StudentRepository) CountBlocked() (int64, error) {
	var n int64
	err := r.db().QueryRow(`SELECT COUNT(*) FROM students WHERE is_globally_blocked = 1`).Scan(&n)
	return n, err
}
