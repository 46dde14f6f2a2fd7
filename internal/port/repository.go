package port

import (
	"context"

	"faturas/internal/domain"
)

// ClientRepository defines the contract for the shared clients table.
// Rows are append-only: a client is written once and never updated.
type ClientRepository interface {
	List(ctx context.Context) ([]domain.ClientRow, error)
	Append(ctx context.Context, rows []domain.ClientRow) error
}

// ConsumptionRepository defines the contract for the per-vendor consumption
// tables. Tables are created on first append and discovered by listing the
// store catalog, excluding the clients table.
type ConsumptionRepository interface {
	ListTables(ctx context.Context) ([]string, error)
	ListRows(ctx context.Context, table string) ([]domain.ConsumptionRow, error)
	Append(ctx context.Context, table string, rows []domain.ConsumptionRow) error

	// ClientSeries reads a vendor table joined to clients, yielding per-month
	// total consumption keyed by client name and meter code.
	ClientSeries(ctx context.Context, table string) ([]domain.ClientSeriesRow, error)
}
