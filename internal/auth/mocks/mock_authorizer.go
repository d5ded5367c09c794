package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"carapi/internal/model"
)

// MockAuthorizer is a testify mock for auth.Authorizer.
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Admin(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
