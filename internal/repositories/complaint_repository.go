package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type ComplaintRepository struct {
	DB *sql.DB
}

func (r ComplaintRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const complaintColumns = `id, user_id, user_role, user_name, subject, message, status, admin_response, created_at`

func (r ComplaintRepository) Create(c *models.Complaint) error {
	res, err := r.db().Exec(`INSERT INTO complaints (user_id, user_role, user_name, subject, message)
		VALUES (?, ?, ?, ?, ?)`, c.UserID, c.UserRole, c.UserName, c.Subject, c.Message)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	c.Status = models.ComplaintStatusPending
	return err
}

func (r ComplaintRepository) scanList(rows *sql.Rows) ([]models.Complaint, error) {
	defer rows.Close()
	out := []models.Complaint{}
	for rows.Next() {
		var c models.Complaint
		err := rows.Scan(&c.ID, &c.UserID, &c.UserRole, &c.UserName,
			&c.Subject, &c.Message, &c.Status, &c.AdminResponse, &c.CreatedAt)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r ComplaintRepository) List() ([]models.Complaint, error) {
	rows, err := r.db().Query(`SELECT ` + complaintColumns + ` FROM complaints ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

func (r ComplaintRepository) ListByUser(userID int64, role string) ([]models.Complaint, error) {
	rows, err := r.db().Query(`SELECT `+complaintColumns+` FROM complaints
		WHERE user_id = ? AND user_role = ?
		ORDER BY created_at DESC`, userID, role)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

func (r ComplaintRepository) Resolve(id int64, response string) (bool, error) {
	res, err := r.db().Exec(`UPDATE complaints SET status = 'resolved', admin_response = ?
		WHERE id = ?`, response, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r ComplaintRepository) Delete(id int64) (bool, error) {
	res, err := r.db().Exec(`DELETE FROM complaints WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
