package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, view string) {
	m.Called(ctx, view)
}
