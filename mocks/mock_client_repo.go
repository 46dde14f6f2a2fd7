package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"faturas/internal/domain"
)

// MockClientRepo is a mock implementation of port.ClientRepository.
type MockClientRepo struct {
	mock.Mock
}

func (m *MockClientRepo) List(ctx context.Context) ([]domain.ClientRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClientRow), args.Error(1)
}

func (m *MockClientRepo) Append(ctx context.Context, rows []domain.ClientRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}
