package domain

import "context"

// Place is one place-search match.
type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	// Search returns up to limit matches for query, best first.
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

// KeyValueStore is the string key-value persistence behind the settings
// record and the theme-change signal keys.
type KeyValueStore interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
