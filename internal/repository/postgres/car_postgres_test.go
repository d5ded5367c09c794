package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"carapi/internal/model"
	"carapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var carCols = []string{
	"id", "make", "model", "year", "price", "mileage", "color", "fuel_type",
	"transmission", "body_type", "seats", "description", "status", "featured",
	"images", "created_at",
}

func TestCarPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	car := &model.Car{
		ID:           "car-uuid",
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2018,
		Price:        15000,
		Mileage:      42000,
		Color:        "Blue",
		FuelType:     "Petrol",
		Transmission: "Automatic",
		BodyType:     "Sedan",
		Description:  "Clean single-owner sedan",
		Status:       model.StatusAvailable,
		Images:       []string{"https://cdn/car-images/cars/car-uuid/image-1-0.jpeg", "https://cdn/car-images/cars/car-uuid/image-1-1.jpeg"},
		CreatedAt:    now,
	}

	rows := sqlmock.NewRows(carCols).AddRow(
		car.ID, car.Make, car.Model, car.Year, car.Price, car.Mileage, car.Color,
		car.FuelType, car.Transmission, car.BodyType, nil, car.Description,
		string(car.Status), false,
		[]byte(`["https://cdn/car-images/cars/car-uuid/image-1-0.jpeg","https://cdn/car-images/cars/car-uuid/image-1-1.jpeg"]`),
		now,
	)

	mock.ExpectQuery("INSERT INTO cars").WillReturnRows(rows)

	stored, err := repo.Create(ctx, car)

	require.NoError(t, err)
	assert.Equal(t, car.ID, stored.ID)
	assert.Equal(t, model.StatusAvailable, stored.Status)
	// Image order must survive the round-trip.
	assert.Equal(t, car.Images, stored.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(carCols).AddRow(
			"car-1", "Honda", "Civic", 2020, 21000.0, int64(12000), "Red",
			"Petrol", "Manual", "Hatchback", int64(5), "desc", "AVAILABLE", true,
			[]byte(`["https://cdn/car-images/cars/car-1/image-1-0.png"]`), time.Now(),
		)

		mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = ?").
			WithArgs("car-1").
			WillReturnRows(rows)

		car, err := repo.FindByID(ctx, "car-1")

		require.NoError(t, err)
		assert.Equal(t, "car-1", car.ID)
		require.NotNil(t, car.Seats)
		assert.Equal(t, 5, *car.Seats)
		assert.Len(t, car.Images, 1)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		car, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, car)
	})
}

func TestCarPostgres_FindAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarPostgres(db)
	ctx := context.Background()

	t.Run("empty search returns all newest-first", func(t *testing.T) {
		rows := sqlmock.NewRows(carCols).
			AddRow("car-2", "Ford", "Focus", 2021, 18000.0, int64(5000), "White",
				"Petrol", "Manual", "Hatchback", nil, "", "AVAILABLE", false,
				[]byte(`["u1"]`), time.Now()).
			AddRow("car-1", "Honda", "Civic", 2019, 15000.0, int64(30000), "Blue",
				"Petrol", "Manual", "Sedan", nil, "", "SOLD", false,
				[]byte(`["u2"]`), time.Now().Add(-time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM cars ORDER BY created_at DESC").
			WillReturnRows(rows)

		cars, err := repo.FindAll(ctx, "")

		require.NoError(t, err)
		require.Len(t, cars, 2)
		assert.Equal(t, "car-2", cars[0].ID)
	})

	t.Run("search filters across make model color", func(t *testing.T) {
		rows := sqlmock.NewRows(carCols).
			AddRow("car-3", "BMW", "X5", 2022, 60000.0, int64(1000), "Blue",
				"Diesel", "Automatic", "SUV", nil, "", "AVAILABLE", false,
				[]byte(`["u3"]`), time.Now())

		mock.ExpectQuery("WHERE make ILIKE (.+) OR model ILIKE (.+) OR color ILIKE").
			WithArgs("%blue%").
			WillReturnRows(rows)

		cars, err := repo.FindAll(ctx, "blue")

		require.NoError(t, err)
		require.Len(t, cars, 1)
		assert.Equal(t, "Blue", cars[0].Color)
	})
}

func TestCarPostgres_FindFeatured(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarPostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(carCols).
		AddRow("car-4", "Audi", "A4", 2023, 45000.0, int64(100), "Black",
			"Petrol", "Automatic", "Sedan", nil, "", "AVAILABLE", true,
			[]byte(`["u4"]`), time.Now())

	mock.ExpectQuery("WHERE featured = true AND status = 'AVAILABLE'").
		WithArgs(3).
		WillReturnRows(rows)

	cars, err := repo.FindFeatured(ctx, 3)

	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.True(t, cars[0].Featured)
}

func TestCarPostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarPostgres(db)
	ctx := context.Background()

	t.Run("featured only patch leaves status untouched", func(t *testing.T) {
		featured := true
		mock.ExpectExec(`UPDATE cars SET featured = \$1 WHERE id = \$2`).
			WithArgs(true, "car-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, "car-1", repository.StatusPatch{Featured: &featured})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status and featured", func(t *testing.T) {
		status := model.StatusSold
		featured := false
		mock.ExpectExec(`UPDATE cars SET status = \$1, featured = \$2 WHERE id = \$3`).
			WithArgs("SOLD", false, "car-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, "car-1", repository.StatusPatch{Status: &status, Featured: &featured})

		assert.NoError(t, err)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "car-1", repository.StatusPatch{})
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		status := model.StatusUnavailable
		mock.ExpectExec(`UPDATE cars SET status = \$1 WHERE id = \$2`).
			WithArgs("UNAVAILABLE", "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, "missing", repository.StatusPatch{Status: &status})

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCarPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM cars WHERE id = ?").
		WithArgs("car-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "car-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
