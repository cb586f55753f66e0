package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptSettings marks a persisted settings record that could not be
	// decoded. The settings store recovers from it by using defaults.
	ErrCorruptSettings = errors.New("corrupt settings record")

	// ErrGeocoding wraps every failure of the place-search service.
	ErrGeocoding = errors.New("geocoding failed")

	// ErrPrecondition is the parent of errors raised when an operation needs
	// a prior user step (select a location, pick a date, run an analysis).
	ErrPrecondition = errors.New("precondition failed")

	ErrNoLocation = fmt.Errorf("%w: select a location first", ErrPrecondition)
	ErrNoDate     = fmt.Errorf("%w: select a date from the calendar first", ErrPrecondition)
	ErrNoData     = fmt.Errorf("%w: analyze the weather data first", ErrPrecondition)

	ErrInvalidSettings    = errors.New("invalid settings")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidMonth       = errors.New("invalid month")
)
