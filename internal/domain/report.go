package domain

import (
	"fmt"
	"math"
	"time"
)

// Location is a selected point, set by a map click, a place search, or
// direct coordinate entry.
type Location struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lon) || l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("%w: lat %v, lon %v", ErrInvalidCoordinates, l.Lat, l.Lon)
	}
	return nil
}

// DisplayName is Name, or the coordinates when no name is known.
func (l Location) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("%.4f, %.4f", l.Lat, l.Lon)
}

// Request is one analysis request. Only the month of Date is used.
type Request struct {
	Location *Location `json:"location"`
	Date     time.Time `json:"date"`
}

// Check enforces the analysis preconditions: a location and a date must
// both have been selected and the coordinates must be in range.
func (r Request) Check() error {
	if r.Location == nil {
		return ErrNoLocation
	}
	if r.Date.IsZero() {
		return ErrNoDate
	}
	return r.Location.Validate()
}

// MonthIndex returns the zero-based month of the request date.
func (r Request) MonthIndex() int {
	return int(r.Date.Month()) - 1
}

// Report is the outcome of one analysis.
type Report struct {
	ID            string        `json:"id"`
	Location      Location      `json:"location"`
	Date          time.Time     `json:"date"`
	Probabilities Probabilities `json:"probabilities"`
	AnalyzedAt    time.Time     `json:"analyzed_at"`
}

// NewReport estimates probabilities for req and stamps the result.
func NewReport(id string, req Request) (Report, error) {
	if err := req.Check(); err != nil {
		return Report{}, err
	}
	month := req.MonthIndex()
	if month < 0 || month > 11 {
		return Report{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return Report{
		ID:            id,
		Location:      *req.Location,
		Date:          req.Date,
		Probabilities: Estimate(req.Location.Lat, month),
		AnalyzedAt:    clock.Now().UTC(),
	}, nil
}

// MonthName returns the English month name of the report date.
func (r Report) MonthName() string {
	return r.Date.Month().String()
}
