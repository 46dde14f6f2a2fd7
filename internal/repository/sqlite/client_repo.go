package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"faturas/internal/domain"
	"faturas/internal/port"
)

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a sqlite-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) List(ctx context.Context) ([]domain.ClientRow, error) {
	var rows []domain.ClientRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, nome, uc, distribuidora, ths
		 FROM clientes
		 ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *clientRepo) Append(ctx context.Context, rows []domain.ClientRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO clientes (id, nome, uc, distribuidora, ths)
		 VALUES (:id, :nome, :uc, :distribuidora, :ths)`,
		rows)
	return err
}
