package mocks

import (
	"context"

	"carapi/internal/ai"

	"github.com/stretchr/testify/mock"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, image []byte, mimeType string, variant ai.PromptVariant) (ai.RawAttributes, error) {
	args := m.Called(ctx, image, mimeType, variant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ai.RawAttributes), args.Error(1)
}
