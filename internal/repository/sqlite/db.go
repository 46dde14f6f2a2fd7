package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"faturas/internal/config"
)

// NewDB opens the sqlite store, creating the file if absent.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store %s: %w", cfg.Path, err)
	}
	// modernc sqlite does not support concurrent writers.
	db.SetMaxOpenConns(1)
	return db, nil
}
