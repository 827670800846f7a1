package repositories

import (
	"database/sql"
	"time"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type MessageRepository struct {
	DB *sql.DB
}

func (r MessageRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r MessageRepository) Insert(m *models.Message) error {
	res, err := r.db().Exec(`INSERT INTO ride_messages (ride_id, sender_id, sender_role, text)
		VALUES (?, ?, ?, ?)`, m.RideID, m.SenderID, m.SenderRole, m.Text)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r MessageRepository) ListByRide(rideID int64) ([]models.Message, error) {
	rows, err := r.db().Query(`SELECT m.id, m.ride_id, m.sender_id, m.sender_role,
			CASE m.sender_role WHEN 'driver' THEN COALESCE(d.name, '') ELSE COALESCE(s.name, '') END,
			m.text, m.created_at
		FROM ride_messages m
		LEFT JOIN students s ON m.sender_role = 'student' AND s.id = m.sender_id
		LEFT JOIN drivers d ON m.sender_role = 'driver' AND d.id = m.sender_id
		WHERE m.ride_id = ?
		ORDER BY m.created_at ASC, m.id ASC`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		err := rows.Scan(&m.ID, &m.RideID, &m.SenderID, &m.SenderRole, &m.SenderName, &m.Text, &m.CreatedAt)
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r MessageRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db().Exec(`DELETE FROM ride_messages WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r MessageRepository) DeleteByRide(q DBTX, rideID int64) error {
	if q == nil {
		q = r.db()
	}
	_, err := q.Exec(`DELETE FROM ride_messages WHERE ride_id = ?`, rideID)
	return err
}
