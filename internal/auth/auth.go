package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"carapi/internal/config"
	"carapi/internal/model"
	"carapi/internal/repository"
)

// ErrUnauthorized means the caller could not be resolved to a known,
// privileged user. It covers missing/invalid tokens, unknown subjects
// and non-admin roles alike; the distinction is not leaked to callers.
var ErrUnauthorized = errors.New("unauthorized")

// Claims are the JWT claims issued by the identity provider.
type Claims struct {
	UserID string `json:"userID"`
	jwt.StandardClaims
}

// Authorizer resolves a caller token to a privileged user.
type Authorizer interface {
	// Admin returns the admin user behind the token, or ErrUnauthorized.
	Admin(ctx context.Context, token string) (*model.User, error)
}

// Verifier is the JWT + user-lookup implementation of Authorizer.
type Verifier struct {
	secret []byte
	users  repository.UserRepository
}

// NewVerifier creates a Verifier from config.
func NewVerifier(cfg config.AuthConfig, users repository.UserRepository) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret), users: users}
}

var _ Authorizer = (*Verifier)(nil)

// Admin validates the bearer token, resolves its subject to a known user
// and requires the ADMIN role.
func (v *Verifier) Admin(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	user, err := v.users.FindBySubject(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: not an admin", ErrUnauthorized)
	}
	return user, nil
}

// GenerateToken signs a short-lived token for the given subject. Used by
// tests and local tooling; real tokens come from the identity provider.
func GenerateToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: subject,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    "carapi",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
