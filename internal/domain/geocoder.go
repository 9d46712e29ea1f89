package domain

import "context"

// GeocodingResult is a single match returned by a geocoding provider.
type GeocodingResult struct {
	Coords      Coordinates
	DisplayName string
}

// Geocoder resolves free-text addresses to coordinates.
type Geocoder interface {
	// Geocode looks up an address. The bool reports whether the provider
	// returned a match; a false with a nil error is an ordinary "not found".
	Geocode(ctx context.Context, address string) (GeocodingResult, bool, error)
}
