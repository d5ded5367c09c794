package repository

import (
	"context"

	"carapi/internal/model"
)

// UserRepository resolves identity-provider subjects to known accounts.
type UserRepository interface {
	// FindBySubject returns the user whose subject matches
	// (sql.ErrNoRows when the caller is unknown).
	FindBySubject(ctx context.Context, subject string) (*model.User, error)
}
