package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"carapi/internal/ai"
	"carapi/internal/auth"
	"carapi/internal/http/middleware"
	"carapi/internal/ratelimit"
	"carapi/internal/service"
	"carapi/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeFieldsError is writeError with the offending field names attached,
// so the review UI can highlight what the extraction failed to produce.
func writeFieldsError(c *fiber.Ctx, status int, code, message string, fields []string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates domain errors from the service layer into
// HTTP responses. Anything unrecognized collapses to a 500 with no detail.
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		rlErr  *ratelimit.RateLimitError
		valErr *ai.ValidationError
		extErr *ai.ExtractionError
	)

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "admin authorization required")

	case errors.As(err, &rlErr):
		seconds := int(rlErr.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
		return writeError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests")

	case errors.Is(err, ratelimit.ErrRateLimited):
		return writeError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests")

	case errors.Is(err, ratelimit.ErrPolicyBlocked):
		return writeError(c, fiber.StatusForbidden, "BLOCKED", "request blocked")

	case errors.As(err, &valErr):
		return writeFieldsError(c, fiber.StatusUnprocessableEntity, "MISSING_FIELDS", "extraction payload incomplete", valErr.MissingFields)

	case errors.As(err, &extErr):
		if extErr.Kind == ai.KindMalformedResponse {
			return writeError(c, fiber.StatusBadGateway, "MALFORMED_RESPONSE", "extraction returned no usable payload")
		}
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "extraction service unavailable")

	case errors.Is(err, storage.ErrNoValidImages):
		return writeError(c, fiber.StatusUnprocessableEntity, "NO_VALID_IMAGES", "no valid images in request")

	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "car not found")

	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrInvalidInput):
		return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid request")

	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
