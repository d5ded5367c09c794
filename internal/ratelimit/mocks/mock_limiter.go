package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, caller string) error {
	args := m.Called(ctx, caller)
	return args.Error(0)
}
