package postgres

import (
	"context"
	"database/sql"

	"carapi/internal/model"
	"carapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// FindBySubject fetches a user by their identity-provider subject.
func (r *UserPostgres) FindBySubject(ctx context.Context, subject string) (*model.User, error) {
	const q = `
		SELECT id, subject, email, role, created_at
		FROM users
		WHERE subject = $1
	`
	row := r.db.QueryRowContext(ctx, q, subject)
	var u model.User
	var role string
	if err := row.Scan(&u.ID, &u.Subject, &u.Email, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
