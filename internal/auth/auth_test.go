package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"carapi/internal/config"
	"carapi/internal/model"
	repoMocks "carapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_Admin(t *testing.T) {
	ctx := context.Background()
	secret := []byte("test-secret")
	cfg := config.AuthConfig{JWTSecret: "test-secret"}

	token, err := GenerateToken(secret, "sub-1", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		setupMocks func(m *repoMocks.MockUserRepository)
		wantErr    bool
	}{
		{
			name:  "admin caller",
			token: "Bearer " + token,
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindBySubject", ctx, "sub-1").
					Return(&model.User{ID: "u1", Subject: "sub-1", Role: model.RoleAdmin}, nil)
			},
		},
		{
			name:       "empty token",
			token:      "",
			setupMocks: func(m *repoMocks.MockUserRepository) {},
			wantErr:    true,
		},
		{
			name:       "garbage token",
			token:      "Bearer not-a-jwt",
			setupMocks: func(m *repoMocks.MockUserRepository) {},
			wantErr:    true,
		},
		{
			name:  "unknown subject",
			token: token,
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindBySubject", ctx, "sub-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: true,
		},
		{
			name:  "known user but not admin",
			token: token,
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindBySubject", ctx, "sub-1").
					Return(&model.User{ID: "u2", Subject: "sub-1", Role: model.RoleUser}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			tt.setupMocks(mUsers)
			v := NewVerifier(cfg, mUsers)

			user, err := v.Admin(ctx, tt.token)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, model.RoleAdmin, user.Role)
			}
			mUsers.AssertExpectations(t)
		})
	}
}

func TestVerifier_Admin_ExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken(secret, "sub-1", -time.Minute)
	require.NoError(t, err)

	v := NewVerifier(config.AuthConfig{JWTSecret: "test-secret"}, new(repoMocks.MockUserRepository))

	user, err := v.Admin(context.Background(), token)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, user)
}
