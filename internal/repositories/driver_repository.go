package repositories

import (
	"database/sql"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain/models"
)

type DriverRepository struct {
	DB *sql.DB
}

func (r DriverRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const driverColumns = `id, name, phone, auto_number, upi_id, is_active, created_at`

func scanDriver(row interface{ Scan(...any) error }) (*models.Driver, error) {
	var d models.Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.AutoNumber, &d.UPIID, &d.IsActive, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r DriverRepository) GetByID(id int64) (*models.Driver, error) {
	return scanDriver(r.db().QueryRow(`SELECT `+driverColumns+` FROM drivers WHERE id = ?`, id))
}

func (r DriverRepository) GetByAutoNumber(autoNumber string) (*models.Driver, string, error) {
	var (
		d    models.Driver
		hash string
	)
	err := r.db().QueryRow(`SELECT `+driverColumns+`, password_hash
		FROM drivers WHERE auto_number = ?`, autoNumber).Scan(
		&d.ID, &d.Name, &d.Phone, &d.AutoNumber, &d.UPIID, &d.IsActive, &d.CreatedAt, &hash)
	if err != nil {
		return nil, "", err
	}
	return &d, hash, nil
}

func (r DriverRepository) Create(name, phone, autoNumber, passwordHash, upiID string) (int64, error) {
	res, err := r.db().Exec(`INSERT INTO drivers (name, phone, auto_number, password_hash, upi_id)
		VALUES (?, ?, ?, ?, ?)`, name, phone, autoNumber, passwordHash, upiID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r DriverRepository) List() ([]models.Driver, error) {
	rows, err := r.db().Query(`SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return out, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DriverUpdate supports partial admin edits; nil fields are left alone.
type DriverUpdate struct {
	Name         *string
	Phone        *string
	AutoNumber   *string
	UPIID        *string
	PasswordHash *string
}

func (r DriverRepository) Update(id int64, u DriverUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name", u.Name)
	add("phone", u.Phone)
	add("auto_number", u.AutoNumber)
	add("upi_id", u.UPIID)
	add("password_hash", u.PasswordHash)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := "UPDATE drivers SET " + sets[0]
	for _, s := range sets[1:] {
		query += ", " + s
	}
	_, err := r.db().Exec(query+" WHERE id = ?", args...)
	return err
}

// ToggleActive flips the driver's active flag and returns the new value.
func (r DriverRepository) ToggleActive(id int64) (bool, error) {
	_, err := r.db().Exec(`UPDATE drivers SET is_active = NOT is_active WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	var active bool
	err = r.db().QueryRow(`SELECT is_active FROM drivers WHERE id = ?`, id).Scan(&active)
	return active, err
}

func (r DriverRepository) UpdateUPI(id int64, upiID string) error {
	_, err := r.db().Exec(`UPDATE drivers SET upi_id = ? WHERE id = ?`, upiID, id)
	return err
}

func (r DriverRepository) CountAll() (int64, error) {
	var n int64
	err := r.db().QueryRow(`SELECT COUNT(*) FROM drivers`).Scan(&n)
	return n, err
}

func (r DriverRepository) CountActive() (int64, error) {
	var n int64
	err := r.db().QueryRow(`SELECT COUNT(*) FROM drivers WHERE is_active = 1`).Scan(&n)
	return n, err
}
