package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"carapi/internal/model"
	"carapi/internal/repository"
)

// CarPostgres is a PostgreSQL implementation of repository.CarRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type CarPostgres struct {
	db *sql.DB
}

// NewCarPostgres creates a new CarPostgres repository.
func NewCarPostgres(db *sql.DB) *CarPostgres {
	return &CarPostgres{db: db}
}

var _ repository.CarRepository = (*CarPostgres)(nil)

const carColumns = `id, make, model, year, price, mileage, color, fuel_type, transmission, body_type, seats, description, status, featured, images, created_at`

// Create inserts a new listing row and returns the stored record.
func (r *CarPostgres) Create(ctx context.Context, car *model.Car) (*model.Car, error) {
	const q = `
		INSERT INTO cars (id, make, model, year, price, mileage, color, fuel_type, transmission, body_type, seats, description, status, featured, images, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + carColumns

	images, err := json.Marshal(car.Images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}

	row := r.db.QueryRowContext(ctx, q,
		car.ID,
		car.Make,
		car.Model,
		car.Year,
		car.Price,
		car.Mileage,
		car.Color,
		car.FuelType,
		car.Transmission,
		car.BodyType,
		nullableInt(car.Seats),
		car.Description,
		string(car.Status),
		car.Featured,
		images,
		car.CreatedAt,
	)
	return scanCar(row)
}

// FindByID fetches a single listing by its ID.
func (r *CarPostgres) FindByID(ctx context.Context, id string) (*model.Car, error) {
	q := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	return scanCar(r.db.QueryRowContext(ctx, q, id))
}

// FindAll returns listings newest-first, optionally filtered by a
// case-insensitive substring across make, model and color.
func (r *CarPostgres) FindAll(ctx context.Context, search string) ([]model.Car, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if search == "" {
		q := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at DESC, id DESC`
		rows, err = r.db.QueryContext(ctx, q)
	} else {
		q := `
			SELECT ` + carColumns + `
			FROM cars
			WHERE make ILIKE $1 OR model ILIKE $1 OR color ILIKE $1
			ORDER BY created_at DESC, id DESC`
		rows, err = r.db.QueryContext(ctx, q, "%"+search+"%")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCars(rows)
}

// FindFeatured returns up to limit featured AVAILABLE listings, newest-first.
func (r *CarPostgres) FindFeatured(ctx context.Context, limit int) ([]model.Car, error) {
	q := `
		SELECT ` + carColumns + `
		FROM cars
		WHERE featured = true AND status = 'AVAILABLE'
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCars(rows)
}

// UpdateStatus applies a sparse patch: the SET list contains only the
// fields the patch carries, so an omitted field keeps its stored value.
func (r *CarPostgres) UpdateStatus(ctx context.Context, id string, patch repository.StatusPatch) error {
	if patch.Empty() {
		return nil
	}

	var (
		sets []string
		args []any
	)
	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.Featured != nil {
		args = append(args, *patch.Featured)
		sets = append(sets, fmt.Sprintf("featured = $%d", len(args)))
	}
	args = append(args, id)

	q := fmt.Sprintf("UPDATE cars SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a listing by ID. It does not return an error if the row
// does not exist.
func (r *CarPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM cars WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (*model.Car, error) {
	var (
		c      model.Car
		seats  sql.NullInt64
		status string
		images []byte
	)
	if err := row.Scan(
		&c.ID,
		&c.Make,
		&c.Model,
		&c.Year,
		&c.Price,
		&c.Mileage,
		&c.Color,
		&c.FuelType,
		&c.Transmission,
		&c.BodyType,
		&seats,
		&c.Description,
		&status,
		&c.Featured,
		&images,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	if seats.Valid {
		v := int(seats.Int64)
		c.Seats = &v
	}
	c.Status = model.CarStatus(status)
	if err := json.Unmarshal(images, &c.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	return &c, nil
}

func collectCars(rows *sql.Rows) ([]model.Car, error) {
	items := make([]model.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
