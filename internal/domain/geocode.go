package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// ErrPlaceNotFound is returned when a place search has no match.
var ErrPlaceNotFound = errors.New("place not found")

// coordsRe matches "lat, lng" as written by the "use my location" button.
var coordsRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// ParseCoordinates parses "lat, lng". ok is false when s is not in that
// form; an in-form but out-of-range pair returns ErrInvalidCoordinates.
func ParseCoordinates(s string) (loc Location, ok bool, err error) {
	m := coordsRe.FindStringSubmatch(s)
	if m == nil {
		return Location{}, false, nil
	}
	lat, _ := strconv.ParseFloat(m[1], 64)
	lon, _ := strconv.ParseFloat(m[2], 64)
	loc = Location{Lat: lat, Lon: lon}
	if err := loc.Validate(); err != nil {
		return Location{}, true, err
	}
	return loc, true, nil
}

// ResolveDefaultLocation turns the defaultLocation setting into a Location.
// Coordinates are used directly; anything else is looked up with geocoder.
// An empty setting resolves to nil.
func ResolveDefaultLocation(ctx context.Context, value string, geocoder Geocoder, logger *slog.Logger) (*Location, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	loc, ok, err := ParseCoordinates(value)
	if ok {
		if err != nil {
			return nil, err
		}
		loc.Name = value
		return &loc, nil
	}

	if geocoder == nil {
		return nil, fmt.Errorf("%w: place search disabled, cannot resolve %q", ErrGeocoding, value)
	}

	places, err := geocoder.Search(ctx, value, 1)
	if err != nil {
		logger.Warn("default location lookup failed", "query", value, "error", err)
		return nil, err
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrPlaceNotFound, value)
	}

	p := places[0]
	return &Location{Name: p.DisplayName, Lat: p.Lat, Lon: p.Lon}, nil
}
