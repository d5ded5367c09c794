package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"carapi/internal/storage"
)

// MockImageStore is a testify mock for the image store used by the
// service layer.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, carID string, images []string) ([]storage.StoredImage, error) {
	args := m.Called(ctx, carID, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.StoredImage), args.Error(1)
}

func (m *MockImageStore) DeleteAll(ctx context.Context, carID string, imageURLs []string) {
	m.Called(ctx, carID, imageURLs)
}
