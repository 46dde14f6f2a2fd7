package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"faturas/internal/domain"
)

// MockPageSource is a mock implementation of port.PageSource.
type MockPageSource struct {
	mock.Mock
}

func (m *MockPageSource) Extract(ctx context.Context, path string) (*domain.Document, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
