package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type SuggestionRepository struct {
	DB *sql.DB
}

func (r SuggestionRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r SuggestionRepository) Create(text string) (int64, error) {
	res, err := r.db().Exec(`INSERT INTO suggestions (text) VALUES (?)`, text)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r SuggestionRepository) List() ([]models.Suggestion, error) {
	rows, err := r.db().Query(`SELECT id, text, created_at FROM suggestions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Suggestion{}
	for rows.Next() {
		var g models.Suggestion
		if err := rows.Scan(&g.ID, &g.Text, &g.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r SuggestionRepository) Delete(id int64) (bool, error) {
	res, err := r.db().Exec(`DELETE FROM suggestions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
