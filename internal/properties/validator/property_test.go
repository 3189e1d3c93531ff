package validator

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybridge/pkg/logger"
	"skybridge/pkg/model"
)

func newValidator() *PropertyValidator {
	return NewPropertyValidator(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
}

func seaside() *model.Property {
	return &model.Property{
		Name:         "Cebu Seaside Resort & Spa",
		PropertyType: model.PropertyTypeResort,
		Address:      "Barangay Day-as, Buyong Road",
		Latitude:     10.2645,
		Longitude:    123.9723,
		ContactEmail: "reservations@cebuseaside.com",
		Amenities:    []string{"Free WiFi", "Swimming Pool"},
		Images:       []string{"https://images.example.com/seaside-1.jpg"},
		CheckInTime:  "2:00 PM",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *model.Property)
		wantField string
	}{
		{"valid", func(*model.Property) {}, ""},
		{"no amenities", func(p *model.Property) { p.Amenities = nil }, ""},
		{"missing name", func(p *model.Property) { p.Name = "" }, "name"},
		{"unknown type", func(p *model.Property) { p.PropertyType = "CASTLE" }, "property_type"},
		{"short address", func(p *model.Property) { p.Address = "Rd" }, "address"},
		{"bad latitude", func(p *model.Property) { p.Latitude = 123.5 }, "latitude"},
		{"bad contact email", func(p *model.Property) { p.ContactEmail = "reservations" }, "contact_email"},
		{"bad image url", func(p *model.Property) { p.Images = []string{"seaside.jpg"} }, "images[0]"},
		{"one letter amenity", func(p *model.Property) { p.Amenities = []string{"Spa", "X"} }, "amenities[1]"},
		{"long description", func(p *model.Property) { p.Description = strings.Repeat("a", 5001) }, "description"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := seaside()
			tt.mutate(p)

			err := v.Validate(p)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
			assert.Contains(t, verrs.Details(), tt.wantField)
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	p := seaside()
	p.PropertyType = "CASTLE"

	var verrs ValidationErrors
	require.True(t, errors.As(newValidator().Validate(p), &verrs))
	assert.Equal(t, "property_type must be one of: HOTEL, RESORT, APARTMENT, GUESTHOUSE", verrs.Details()["property_type"])
}

func TestValidateRejection(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateRejection(&model.PropertyRejection{}))
	assert.NoError(t, v.ValidateRejection(&model.PropertyRejection{RejectionReason: "Photos are blurry"}))
	assert.Error(t, v.ValidateRejection(&model.PropertyRejection{RejectionReason: strings.Repeat("x", 1001)}))
}
