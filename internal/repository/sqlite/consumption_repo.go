package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"faturas/internal/domain"
	"faturas/internal/port"
)

type consumptionRepo struct {
	db *sqlx.DB
}

// NewConsumptionRepo creates a sqlite-backed ConsumptionRepository. Vendor
// tables are created lazily on first append; identifiers are double-quoted
// because table names come from data, not SQL literals.
func NewConsumptionRepo(db *sqlx.DB) port.ConsumptionRepository {
	return &consumptionRepo{db: db}
}

func (r *consumptionRepo) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := r.db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master
		 WHERE type = 'table'
		   AND name NOT IN ('clientes', 'schema_migrations')
		 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *consumptionRepo) ListRows(ctx context.Context, table string) ([]domain.ConsumptionRow, error) {
	if exists, err := r.tableExists(ctx, table); err != nil || !exists {
		return nil, err
	}
	var rows []domain.ConsumptionRow
	err := r.db.SelectContext(ctx, &rows, fmt.Sprintf(
		`SELECT id_datas, consumo_ponta, consumo_fora_de_ponta,
		        demanda_ponta, demanda_fora_de_ponta,
		        medida_consumo, medida_demanda
		 FROM %q
		 ORDER BY id_datas`, table))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *consumptionRepo) Append(ctx context.Context, table string, rows []domain.ConsumptionRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.ensureTable(ctx, table); err != nil {
		return err
	}
	_, err := r.db.NamedExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %q (id_datas, consumo_ponta, consumo_fora_de_ponta,
		                 demanda_ponta, demanda_fora_de_ponta,
		                 medida_consumo, medida_demanda)
		 VALUES (:id_datas, :consumo_ponta, :consumo_fora_de_ponta,
		         :demanda_ponta, :demanda_fora_de_ponta,
		         :medida_consumo, :medida_demanda)`, table),
		rows)
	return err
}

// ClientSeries joins a vendor table to clientes on the client-id prefix of
// the composite key: the key is "<id>-MMYYYY", so the id is everything but
// the final seven characters and the month is the final six. Rows come back
// chronologically per client: the MMYYYY suffix sorts month-first as text,
// so ordering rearranges it to YYYYMM.
func (r *consumptionRepo) ClientSeries(ctx context.Context, table string) ([]domain.ClientSeriesRow, error) {
	var rows []domain.ClientSeriesRow
	err := r.db.SelectContext(ctx, &rows, fmt.Sprintf(
		`SELECT nome, uc,
		        (consumo_ponta + consumo_fora_de_ponta) AS consumo_total,
		        SUBSTR(id_datas, -6) AS data
		 FROM %q
		 INNER JOIN clientes
		   ON clientes.id = SUBSTR(id_datas, 1, LENGTH(id_datas) - 7)
		 ORDER BY nome, SUBSTR(id_datas, -4) || SUBSTR(id_datas, -6, 2)`, table))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *consumptionRepo) tableExists(ctx context.Context, table string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		table)
	return count > 0, err
}

func (r *consumptionRepo) ensureTable(ctx context.Context, table string) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (
			id_datas               TEXT PRIMARY KEY,
			consumo_ponta          REAL NOT NULL,
			consumo_fora_de_ponta  REAL NOT NULL,
			demanda_ponta          REAL NOT NULL,
			demanda_fora_de_ponta  REAL NOT NULL,
			medida_consumo         TEXT NOT NULL,
			medida_demanda         TEXT NOT NULL
		)`, table))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}
