package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
)

// StatsRepository maintains the single lifetime-counters row. Completed
// and expired rides are purged, so total_rides_created cannot be derived
// from the rides table.
type StatsRepository struct {
	DB *sql.DB
}

func (r StatsRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r StatsRepository) IncrementRidesCreated() error {
	_, err := r.db().Exec(`INSERT INTO system_stats (id, total_rides_created) VALUES (1, 1)
		ON DUPLICATE KEY UPDATE total_rides_created = total_rides_created + 1`)
	return err
}

func (r StatsRepository) TotalRidesCreated() (int64, error) {
	var n int64
	err := r.db().QueryRow(`SELECT total_rides_created FROM system_stats WHERE id = 1`).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
