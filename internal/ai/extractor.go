package ai

import (
	"context"
	"fmt"
	"strings"
)

// RawAttributes is the attribute payload parsed from the vision model's
// JSON output. Values are kept exactly as the model emitted them (numbers,
// numeric strings, ranges); coercion to typed fields is the caller's job
// at the point of persistence.
type RawAttributes map[string]any

// PromptVariant selects which attribute set the vision model is asked for.
type PromptVariant int

const (
	// PromptListing requests every listing field plus description and confidence.
	PromptListing PromptVariant = iota
	// PromptSearch requests only make, body type, color and confidence.
	PromptSearch
)

// ListingRequiredFields are the keys that must be present in a listing
// extraction payload. Values may be empty strings; absence of the key
// itself is a validation failure.
var ListingRequiredFields = []string{
	"make",
	"model",
	"year",
	"color",
	"bodyType",
	"price",
	"mileage",
	"fuelType",
	"transmission",
	"description",
	"confidence",
}

// SearchRequiredFields are the keys that must be present in a visual
// search extraction payload.
var SearchRequiredFields = []string{
	"make",
	"bodyType",
	"color",
	"confidence",
}

// ExtractionErrorKind classifies extraction failures so callers can
// decide between retrying, backing off, or surfacing the error.
type ExtractionErrorKind int

const (
	// KindMalformedResponse means the model responded but its output was
	// not a parseable JSON object.
	KindMalformedResponse ExtractionErrorKind = iota
	// KindUpstream means the inference service call itself failed
	// (transport error, rate limit, timeout). Not retried internally.
	KindUpstream
)

// ExtractionError is a typed failure from the attribute extractor.
type ExtractionError struct {
	Kind ExtractionErrorKind
	Err  error
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case KindMalformedResponse:
		return fmt.Sprintf("malformed model response: %v", e.Err)
	default:
		return fmt.Sprintf("inference service error: %v", e.Err)
	}
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError reports every required key missing from a parsed
// payload, not just the first.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "response missing required fields: " + strings.Join(e.MissingFields, ", ")
}

// Extractor produces structured vehicle attributes from a single image.
type Extractor interface {
	// Extract sends the image to the vision model with the prompt for the
	// given variant and returns the parsed attribute payload.
	Extract(ctx context.Context, image []byte, mimeType string, variant PromptVariant) (RawAttributes, error)
}
