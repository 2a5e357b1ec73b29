package database

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handle carries whichever connection the process opened. Both fields nil means in-memory repositories.
type Handle struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

// Close releases the open connection, if any.
func (h *Handle) Close() {
	if h == nil {
		return
	}
	if h.Pool != nil {
		h.Pool.Close()
	}
	if h.SQL != nil {
		_ = h.SQL.Close()
	}
}
