package ratelimit

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitError_Is(t *testing.T) {
	err := &RateLimitError{RetryAfter: 30 * time.Second}

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrPolicyBlocked)
	assert.Contains(t, err.Error(), "30s")

	wrapped := fmt.Errorf("admission: %w", err)
	assert.ErrorIs(t, wrapped, ErrRateLimited)

	var rlErr *RateLimitError
	assert.True(t, errors.As(wrapped, &rlErr))
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}
