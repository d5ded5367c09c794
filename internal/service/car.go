package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"carapi/internal/ai"
	"carapi/internal/auth"
	"carapi/internal/model"
	"carapi/internal/ratelimit"
	"carapi/internal/repository"
	"carapi/internal/storage"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("car not found")
	ErrInvalidInput = errors.New("invalid input")
)

// AdminCarsView names the cached admin listing view invalidated after
// every mutation.
const AdminCarsView = "admin-cars"

// defaultFeaturedLimit caps the featured strip on the landing page.
const defaultFeaturedLimit = 3

// ImageStore is the slice of the image store the service needs.
type ImageStore interface {
	Upload(ctx context.Context, carID string, images []string) ([]storage.StoredImage, error)
	DeleteAll(ctx context.Context, carID string, imageURLs []string)
}

// CarService defines the catalog ingestion use cases.
type CarService interface {
	// ExtractCarDetails runs the full-variant vision extraction on one
	// photo and returns the raw attribute payload for human review.
	// Admission-controlled per caller rather than authorized.
	ExtractCarDetails(ctx context.Context, caller string, image []byte, mimeType string) (ai.RawAttributes, error)

	// SearchByImage runs the search-variant extraction (make, body type,
	// color) for building a visual search query. Admission-controlled.
	SearchByImage(ctx context.Context, caller string, image []byte, mimeType string) (ai.RawAttributes, error)

	// AddCar uploads the images under a fresh listing id and creates the
	// catalog record referencing the stored URLs. Requires an admin token.
	AddCar(ctx context.Context, token string, input model.CarInput, images []string) (*model.Car, error)

	// GetCars lists/searches the catalog. Requires an admin token.
	GetCars(ctx context.Context, token string, search string) ([]model.Car, error)

	// GetCar returns a single listing by id.
	GetCar(ctx context.Context, id string) (*model.Car, error)

	// GetFeaturedCars returns up to limit featured AVAILABLE listings.
	GetFeaturedCars(ctx context.Context, limit int) ([]model.Car, error)

	// UpdateCarStatus applies a sparse status/featured patch. Requires an
	// admin token.
	UpdateCarStatus(ctx context.Context, token, id string, patch repository.StatusPatch) error

	// DeleteCar removes the record and, best-effort, its stored images.
	// Requires an admin token.
	DeleteCar(ctx context.Context, token, id string) error
}

type carService struct {
	authz          auth.Authorizer
	extractor      ai.Extractor
	images         ImageStore
	cars           repository.CarRepository
	limiter        ratelimit.Limiter
	views          viewInvalidator
	extractTimeout time.Duration
}

// viewInvalidator matches viewcache.Invalidator without importing it.
type viewInvalidator interface {
	Invalidate(ctx context.Context, view string)
}

// NewCarService constructs the ingestion orchestrator.
func NewCarService(
	authz auth.Authorizer,
	extractor ai.Extractor,
	images ImageStore,
	cars repository.CarRepository,
	limiter ratelimit.Limiter,
	views viewInvalidator,
	extractTimeout time.Duration,
) CarService {
	if extractTimeout <= 0 {
		extractTimeout = time.Minute
	}
	return &carService{
		authz:          authz,
		extractor:      extractor,
		images:         images,
		cars:           cars,
		limiter:        limiter,
		views:          views,
		extractTimeout: extractTimeout,
	}
}

func (s *carService) ExtractCarDetails(ctx context.Context, caller string, image []byte, mimeType string) (ai.RawAttributes, error) {
	return s.extract(ctx, caller, image, mimeType, ai.PromptListing, ai.ListingRequiredFields)
}

func (s *carService) SearchByImage(ctx context.Context, caller string, image []byte, mimeType string) (ai.RawAttributes, error) {
	return s.extract(ctx, caller, image, mimeType, ai.PromptSearch, ai.SearchRequiredFields)
}

// extract is the shared single-shot pipeline: admit, call the model
// under a caller-side timeout (inference latency is unbounded and
// externally controlled), then check the payload shape.
func (s *carService) extract(ctx context.Context, caller string, image []byte, mimeType string, variant ai.PromptVariant, required []string) (ai.RawAttributes, error) {
	if err := s.limiter.Allow(ctx, caller); err != nil {
		return nil, err
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	attrs, err := s.extractor.Extract(extractCtx, image, mimeType, variant)
	if err != nil {
		return nil, err
	}
	if err := ai.ValidateShape(attrs, required); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (s *carService) AddCar(ctx context.Context, token string, input model.CarInput, images []string) (*model.Car, error) {
	user, err := s.authz.Admin(ctx, token)
	if err != nil {
		return nil, err
	}

	year := int(input.Year)
	if year < 1886 || year > time.Now().Year()+1 {
		return nil, fmt.Errorf("%w: implausible year %d", ErrInvalidInput, year)
	}

	status := model.StatusAvailable
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
		}
		status = *input.Status
	}

	// The fresh id is also the storage prefix, so uploads and the record
	// stay reconcilable even when the create below fails.
	carID := uuid.NewString()

	stored, err := s.images.Upload(ctx, carID, images)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(stored))
	for i, img := range stored {
		urls[i] = img.URL
	}

	car := &model.Car{
		ID:           carID,
		Make:         input.Make,
		Model:        input.Model,
		Year:         year,
		Price:        float64(input.Price),
		Mileage:      int64(input.Mileage),
		Color:        input.Color,
		FuelType:     input.FuelType,
		Transmission: input.Transmission,
		BodyType:     input.BodyType,
		Seats:        seatsFrom(input.Seats),
		Description:  input.Description,
		Status:       status,
		Featured:     input.Featured,
		Images:       urls,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.cars.Create(ctx, car)
	if err != nil {
		// No rollback of the uploaded objects here: the id-prefixed
		// storage paths can be reclaimed by an out-of-band sweep.
		log.Error().Err(err).Str("carId", carID).Int("orphanedImages", len(urls)).Msg("car create failed after image upload")
		return nil, fmt.Errorf("create car: %w", err)
	}

	s.views.Invalidate(ctx, AdminCarsView)

	log.Info().Str("carId", created.ID).Str("userId", user.ID).Int("images", len(created.Images)).Msg("car listing created")
	return created, nil
}

func (s *carService) GetCars(ctx context.Context, token string, search string) ([]model.Car, error) {
	if _, err := s.authz.Admin(ctx, token); err != nil {
		return nil, err
	}
	return s.cars.FindAll(ctx, search)
}

func (s *carService) GetCar(ctx context.Context, id string) (*model.Car, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return car, nil
}

func (s *carService) GetFeaturedCars(ctx context.Context, limit int) ([]model.Car, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	return s.cars.FindFeatured(ctx, limit)
}

func (s *carService) UpdateCarStatus(ctx context.Context, token, id string, patch repository.StatusPatch) error {
	if _, err := s.authz.Admin(ctx, token); err != nil {
		return err
	}
	if id == "" {
		return ErrIDRequired
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}

	if err := s.cars.UpdateStatus(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.views.Invalidate(ctx, AdminCarsView)
	return nil
}

func (s *carService) DeleteCar(ctx context.Context, token, id string) error {
	if _, err := s.authz.Admin(ctx, token); err != nil {
		return err
	}
	if id == "" {
		return ErrIDRequired
	}

	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.cars.Delete(ctx, id); err != nil {
		return err
	}

	// Storage cleanup is best-effort and must never block the record
	// delete; DeleteAll logs failures internally.
	s.images.DeleteAll(ctx, id, car.Images)

	s.views.Invalidate(ctx, AdminCarsView)

	log.Info().Str("carId", id).Int("images", len(car.Images)).Msg("car listing deleted")
	return nil
}

func seatsFrom(v *model.FlexInt) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
