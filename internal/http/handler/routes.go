package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"carapi/internal/ai"
	"carapi/internal/model"
	"carapi/internal/repository"
	"carapi/internal/service"
)

// createCarRequest is the JSON body for POST /cars: the reviewed listing
// fields plus the original data-URI images to upload.
type createCarRequest struct {
	model.CarInput
	Images []string `json:"images"`
}

// statusPatchRequest is the JSON body for PATCH /cars/:id/status. Absent
// fields stay untouched.
type statusPatchRequest struct {
	Status   *model.CarStatus `json:"status,omitempty"`
	Featured *bool            `json:"featured,omitempty"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, carSvc service.CarService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Fixed paths before the :id parameter so they never get captured.
	app.Get("/cars/featured", FeaturedCars(carSvc))
	app.Post("/cars/extract", ExtractCarDetails(carSvc))
	app.Post("/cars/search-by-image", SearchByImage(carSvc))

	app.Post("/cars", CreateCar(carSvc))
	app.Get("/cars", ListCars(carSvc))
	app.Get("/cars/:id", GetCar(carSvc))
	app.Patch("/cars/:id/status", UpdateCarStatus(carSvc))
	app.Delete("/cars/:id", DeleteCar(carSvc))
}

// HealthCheck reports readiness: checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ExtractCarDetails runs the full extraction on a multipart image
// (field name: image) and returns the raw attributes for review.
func ExtractCarDetails(carSvc service.CarService) fiber.Handler {
	return extractHandler(carSvc.ExtractCarDetails)
}

// SearchByImage runs the reduced search extraction on a multipart image.
func SearchByImage(carSvc service.CarService) fiber.Handler {
	return extractHandler(carSvc.SearchByImage)
}

func extractHandler(extract func(ctx context.Context, caller string, image []byte, mimeType string) (ai.RawAttributes, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("image")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "IMAGE_REQUIRED", "image is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "IMAGE_OPEN_ERROR", "cannot open uploaded image")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "IMAGE_READ_ERROR", "cannot read uploaded image")
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "image/jpeg"
		}

		attrs, err := extract(c.UserContext(), c.IP(), data, ct)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(attrs)
	}
}

// CreateCar creates a listing from reviewed fields and data-URI images.
func CreateCar(carSvc service.CarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCarRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if len(req.Images) == 0 {
			return writeError(c, fiber.StatusBadRequest, "IMAGES_REQUIRED", "at least one image is required")
		}

		car, err := carSvc.AddCar(c.UserContext(), c.Get(fiber.HeaderAuthorization), req.CarInput, req.Images)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(car)
	}
}

// ListCars lists the catalog, optionally filtered by ?search=.
func ListCars(carSvc service.CarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cars, err := carSvc.GetCars(c.UserContext(), c.Get(fiber.HeaderAuthorization), c.Query("search"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"items": cars, "total": len(cars)})
	}
}

// GetCar returns a single listing by id.
func GetCar(carSvc service.CarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		car, err := carSvc.GetCar(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(car)
	}
}

// FeaturedCars returns up to ?limit= featured listings.
func FeaturedCars(carSvc service.CarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		cars, err := carSvc.GetFeaturedCars(c.UserContext(), limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"items": cars})
	}
}

// UpdateCarStatus applies a sparse status/featured patch to a listing.
func UpdateCarStatus(carSvc service.CarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req statusPatchRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		patch := repository.StatusPatch{Status: req.Status, Featured: req.Featured}
		if err := carSvc.UpdateCarStatus(c.UserContext(), c.Get(fiber.HeaderAuthorization), id, patch); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// DeleteCar removes a listing and its stored images.
func DeleteCar(carSvc service.CarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := carSvc.DeleteCar(c.UserContext(), c.Get(fiber.HeaderAuthorization), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
