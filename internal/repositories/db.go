package repositories

import "database/sql"

// DBTX is the subset of *sql.DB and *sql.Tx repository methods need, so
// transactional and plain call sites share the same SQL.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
