package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"carapi/internal/ai"
	"carapi/internal/model"
	"carapi/internal/repository"
)

// MockCarService is a testify mock for service.CarService.
type MockCarService struct {
	mock.Mock
}

func (m *MockCarService) ExtractCarDetails(ctx context.Context, caller string, image []byte, mimeType string) (ai.RawAttributes, error) {
	args := m.Called(ctx, caller, image, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ai.RawAttributes), args.Error(1)
}

func (m *MockCarService) SearchByImage(ctx context.Context, caller string, image []byte, mimeType string) (ai.RawAttributes, error) {
	args := m.Called(ctx, caller, image, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ai.RawAttributes), args.Error(1)
}

func (m *MockCarService) AddCar(ctx context.Context, token string, input model.CarInput, images []string) (*model.Car, error) {
	args := m.Called(ctx, token, input, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Car), args.Error(1)
}

func (m *MockCarService) GetCars(ctx context.Context, token string, search string) ([]model.Car, error) {
	args := m.Called(ctx, token, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Car), args.Error(1)
}

func (m *MockCarService) GetCar(ctx context.Context, id string) (*model.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Car), args.Error(1)
}

func (m *MockCarService) GetFeaturedCars(ctx context.Context, limit int) ([]model.Car, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Car), args.Error(1)
}

func (m *MockCarService) UpdateCarStatus(ctx context.Context, token, id string, patch repository.StatusPatch) error {
	args := m.Called(ctx, token, id, patch)
	return args.Error(0)
}

func (m *MockCarService) DeleteCar(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}
