package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CarStatus is the lifecycle status of a catalog record.
type CarStatus string

const (
	StatusAvailable   CarStatus = "AVAILABLE"
	StatusUnavailable CarStatus = "UNAVAILABLE"
	StatusSold        CarStatus = "SOLD"
)

// Valid reports whether s is one of the known statuses.
func (s CarStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusUnavailable, StatusSold:
		return true
	}
	return false
}

// Car represents a vehicle listing in the catalog.
// This is a pure domain model with no database-specific dependencies or tags.
// The ID doubles as the object storage prefix for the listing's images
// (cars/<id>/...), so the two stay coupled for the record's lifetime.
type Car struct {
	ID           string    `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	Mileage      int64     `json:"mileage"`
	Color        string    `json:"color"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission"`
	BodyType     string    `json:"body_type"`
	Seats        *int      `json:"seats,omitempty"`
	Description  string    `json:"description"`
	Status       CarStatus `json:"status"`
	Featured     bool      `json:"featured"`
	Images       []string  `json:"images"`
	CreatedAt    time.Time `json:"created_at"`
}

// CarInput is the creation payload for a listing.
//
// Numeric fields use flexible decoding: the vision extractor may emit a
// number, a numeric string ("2018", "45,000") or a range ("40000-45000"),
// and the UI passes values through as-is after human review. Coercion
// happens here, at the point of persistence, never in the shape validator.
type CarInput struct {
	Make         string     `json:"make"`
	Model        string     `json:"model"`
	Year         FlexInt    `json:"year"`
	Price        FlexFloat  `json:"price"`
	Mileage      FlexInt    `json:"mileage"`
	Color        string     `json:"color"`
	FuelType     string     `json:"fuel_type"`
	Transmission string     `json:"transmission"`
	BodyType     string     `json:"body_type"`
	Seats        *FlexInt   `json:"seats,omitempty"`
	Description  string     `json:"description"`
	Status       *CarStatus `json:"status,omitempty"`
	Featured     bool       `json:"featured"`
}

// FlexInt is an int64 that unmarshals from a JSON number or a numeric string.
type FlexInt int64

// FlexFloat is a float64 that unmarshals from a JSON number or a numeric string.
type FlexFloat float64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	v, err := flexNumber(data)
	if err != nil {
		return err
	}
	*f = FlexInt(v)
	return nil
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	v, err := flexNumber(data)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// flexNumber parses a JSON number or a numeric string. Strings tolerate
// currency symbols, thousands separators and ranges ("40,000 - 45,000"
// resolves to the lower bound).
func flexNumber(data []byte) (float64, error) {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("value is neither number nor string: %s", data)
	}

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if i := strings.IndexAny(s, "-–"); i > 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as number", s)
	}
	return n, nil
}
