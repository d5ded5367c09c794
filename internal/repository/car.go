package repository

import (
	"context"

	"carapi/internal/model"
)

// StatusPatch is a sparse update of a listing's lifecycle fields. Only
// non-nil fields are written; nil means "leave the stored value alone".
type StatusPatch struct {
	Status   *model.CarStatus
	Featured *bool
}

// Empty reports whether the patch changes nothing.
func (p StatusPatch) Empty() bool {
	return p.Status == nil && p.Featured == nil
}

// CarRepository defines data access for catalog listings using SQL
// queries only. No business logic here — strictly persistence operations.
type CarRepository interface {
	// Create inserts a new listing row. The caller provides ID, Images and
	// CreatedAt; the stored record is returned (may include DB defaults).
	Create(ctx context.Context, car *model.Car) (*model.Car, error)

	// FindByID returns a listing by its ID (sql.ErrNoRows when absent).
	FindByID(ctx context.Context, id string) (*model.Car, error)

	// FindAll returns listings newest-first. A non-empty search term
	// filters by case-insensitive substring match across make, model and
	// color (OR-combined); an empty term returns everything.
	FindAll(ctx context.Context, search string) ([]model.Car, error)

	// FindFeatured returns up to limit featured AVAILABLE listings,
	// newest-first.
	FindFeatured(ctx context.Context, limit int) ([]model.Car, error)

	// UpdateStatus applies a sparse patch to status and/or featured.
	// Returns sql.ErrNoRows when the listing does not exist.
	UpdateStatus(ctx context.Context, id string, patch StatusPatch) error

	// Delete removes a listing by ID. It returns nil if the row was
	// deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
