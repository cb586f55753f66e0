package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Theme is the dashboard colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// TempThresholds are the five temperature bucket boundaries in °C.
type TempThresholds struct {
	VeryCold float64 `json:"veryCold"`
	Cold     float64 `json:"cold"`
	Mild     float64 `json:"mild"`
	Warm     float64 `json:"warm"`
	Hot      float64 `json:"hot"`
}

// PrecipThresholds are the four precipitation bucket boundaries in mm.
type PrecipThresholds struct {
	Light     float64 `json:"light"`
	Moderate  float64 `json:"moderate"`
	Heavy     float64 `json:"heavy"`
	VeryHeavy float64 `json:"veryHeavy"`
}

// WindThresholds are the four wind bucket boundaries in km/h.
type WindThresholds struct {
	Light      float64 `json:"light"`
	Moderate   float64 `json:"moderate"`
	Strong     float64 `json:"strong"`
	VeryStrong float64 `json:"veryStrong"`
}

// HumidityThresholds are the three relative humidity boundaries in percent.
type HumidityThresholds struct {
	Dry         float64 `json:"dry"`
	Comfortable float64 `json:"comfortable"`
	Humid       float64 `json:"humid"`
}

// Settings is the single per-profile preferences record. Thresholds are
// always held in canonical units (°C, mm, km/h, %).
type Settings struct {
	Theme              Theme              `json:"theme" jsonschema:"enum=light,enum=dark"`
	TemperatureUnit    TemperatureUnit    `json:"temperatureUnit" jsonschema:"enum=celsius,enum=fahrenheit"`
	WindSpeedUnit      WindSpeedUnit      `json:"windSpeedUnit" jsonschema:"enum=kmh,enum=mph,enum=ms"`
	PrecipitationUnit  PrecipitationUnit  `json:"precipitationUnit" jsonschema:"enum=mm,enum=inches"`
	RefreshRate        string             `json:"refreshRate" jsonschema:"description=Auto-refresh interval in minutes; 0 disables"`
	DefaultLocation    string             `json:"defaultLocation" jsonschema:"description=Place name or 'lat, lng'"`
	TempThresholds     TempThresholds     `json:"tempThresholds"`
	PrecipThresholds   PrecipThresholds   `json:"precipThresholds"`
	WindThresholds     WindThresholds     `json:"windThresholds"`
	HumidityThresholds HumidityThresholds `json:"humidityThresholds"`
}

func DefaultTempThresholds() TempThresholds {
	return TempThresholds{VeryCold: 0, Cold: 10, Mild: 20, Warm: 25, Hot: 35}
}

func DefaultPrecipThresholds() PrecipThresholds {
	return PrecipThresholds{Light: 2.5, Moderate: 7.6, Heavy: 25, VeryHeavy: 50}
}

func DefaultWindThresholds() WindThresholds {
	return WindThresholds{Light: 5, Moderate: 13, Strong: 28, VeryStrong: 63}
}

func DefaultHumidityThresholds() HumidityThresholds {
	return HumidityThresholds{Dry: 30, Comfortable: 60, Humid: 80}
}

// DefaultSettings returns the documented first-run record.
func DefaultSettings() Settings {
	return Settings{
		Theme:              ThemeLight,
		TemperatureUnit:    Celsius,
		WindSpeedUnit:      KilometersPerHour,
		PrecipitationUnit:  Millimeters,
		RefreshRate:        "0",
		DefaultLocation:    "",
		TempThresholds:     DefaultTempThresholds(),
		PrecipThresholds:   DefaultPrecipThresholds(),
		WindThresholds:     DefaultWindThresholds(),
		HumidityThresholds: DefaultHumidityThresholds(),
	}
}

// WithDefaultThresholds returns s with all four threshold groups reset.
func (s Settings) WithDefaultThresholds() Settings {
	s.TempThresholds = DefaultTempThresholds()
	s.PrecipThresholds = DefaultPrecipThresholds()
	s.WindThresholds = DefaultWindThresholds()
	s.HumidityThresholds = DefaultHumidityThresholds()
	return s
}

// RefreshMinutes parses RefreshRate. Empty or malformed values mean disabled.
func (s Settings) RefreshMinutes() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.RefreshRate))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Validate checks enum fields, the refresh rate, and that every threshold
// group is strictly ascending. Loaded records are never validated; this
// guards records submitted for saving.
func (s Settings) Validate() error {
	var problems []string
	if !s.Theme.Valid() {
		problems = append(problems, fmt.Sprintf("theme %q", s.Theme))
	}
	if !s.TemperatureUnit.Valid() {
		problems = append(problems, fmt.Sprintf("temperatureUnit %q", s.TemperatureUnit))
	}
	if !s.WindSpeedUnit.Valid() {
		problems = append(problems, fmt.Sprintf("windSpeedUnit %q", s.WindSpeedUnit))
	}
	if !s.PrecipitationUnit.Valid() {
		problems = append(problems, fmt.Sprintf("precipitationUnit %q", s.PrecipitationUnit))
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s.RefreshRate)); err != nil || n < 0 {
		problems = append(problems, fmt.Sprintf("refreshRate %q", s.RefreshRate))
	}

	t, p, w, h := s.TempThresholds, s.PrecipThresholds, s.WindThresholds, s.HumidityThresholds
	if !ascending(t.VeryCold, t.Cold, t.Mild, t.Warm, t.Hot) {
		problems = append(problems, "tempThresholds not ascending")
	}
	if !ascending(p.Light, p.Moderate, p.Heavy, p.VeryHeavy) || p.Light < 0 {
		problems = append(problems, "precipThresholds not ascending from zero")
	}
	if !ascending(w.Light, w.Moderate, w.Strong, w.VeryStrong) || w.Light < 0 {
		problems = append(problems, "windThresholds not ascending from zero")
	}
	if !ascending(h.Dry, h.Comfortable, h.Humid) || h.Dry < 0 || h.Humid > 100 {
		problems = append(problems, "humidityThresholds not ascending within 0-100")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

func ascending(vs ...float64) bool {
	for i := 1; i < len(vs); i++ {
		if vs[i] <= vs[i-1] {
			return false
		}
	}
	return true
}
