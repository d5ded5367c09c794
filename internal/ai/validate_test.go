package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name        string
		attrs       RawAttributes
		required    []string
		wantMissing []string
	}{
		{
			name: "all fields present",
			attrs: RawAttributes{
				"make": "Toyota", "bodyType": "SUV", "color": "Blue", "confidence": 0.9,
			},
			required: SearchRequiredFields,
		},
		{
			name: "empty values still pass",
			attrs: RawAttributes{
				"make": "", "bodyType": "", "color": "", "confidence": "",
			},
			required: SearchRequiredFields,
		},
		{
			name:        "reports every missing field, not just the first",
			attrs:       RawAttributes{"make": "Honda"},
			required:    SearchRequiredFields,
			wantMissing: []string{"bodyType", "color", "confidence"},
		},
		{
			name:        "empty payload misses everything",
			attrs:       RawAttributes{},
			required:    []string{"make", "model"},
			wantMissing: []string{"make", "model"},
		},
		{
			name: "listing set with one missing",
			attrs: RawAttributes{
				"make": "Ford", "model": "Focus", "year": 2018, "color": "Red",
				"bodyType": "Hatchback", "price": "12000", "mileage": 50000,
				"fuelType": "Petrol", "transmission": "Manual", "description": "ok",
			},
			required:    ListingRequiredFields,
			wantMissing: []string{"confidence"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShape(tt.attrs, tt.required)

			if len(tt.wantMissing) == 0 {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantMissing, vErr.MissingFields)
		})
	}
}
