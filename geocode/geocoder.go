// Package geocode resolves free-text locations into coordinates.
package geocode

import (
	"context"

	"kijiji-rentals/models"
)

// Geocoder looks up a location. A nil point with a nil error means the
// service had no answer for query.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.Point, error)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, query string) (*models.Point, error)

func (f GeocoderFunc) Geocode(ctx context.Context, query string) (*models.Point, error) {
	return f(ctx, query)
}
