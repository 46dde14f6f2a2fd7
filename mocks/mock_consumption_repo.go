package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"faturas/internal/domain"
)

// MockConsumptionRepo is a mock implementation of port.ConsumptionRepository.
type MockConsumptionRepo struct {
	mock.Mock
}

func (m *MockConsumptionRepo) ListTables(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockConsumptionRepo) ListRows(ctx context.Context, table string) ([]domain.ConsumptionRow, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConsumptionRow), args.Error(1)
}

func (m *MockConsumptionRepo) Append(ctx context.Context, table string, rows []domain.ConsumptionRow) error {
	args := m.Called(ctx, table, rows)
	return args.Error(0)
}

func (m *MockConsumptionRepo) ClientSeries(ctx context.Context, table string) ([]domain.ClientSeriesRow, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClientSeriesRow), args.Error(1)
}
