package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type AdminRepository struct {
	DB *sql.DB
}

func (r AdminRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AdminRepository) GetByUsername(username string) (*models.Admin, string, error) {
	var (
		a    models.Admin
		hash string
	)
	err := r.db().QueryRow(`SELECT id, username, created_at, password_hash
		FROM admins WHERE username = ?`, username).Scan(&a.ID, &a.Username, &a.CreatedAt, &hash)
	if err != nil {
		return nil, "", err
	}
	return &a, hash, nil
}
