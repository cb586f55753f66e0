package domain

import (
	"math"
	"strconv"
)

// TemperatureUnit is the display unit for temperatures.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

// WindSpeedUnit is the display unit for wind speed.
type WindSpeedUnit string

const (
	KilometersPerHour WindSpeedUnit = "kmh"
	MilesPerHour      WindSpeedUnit = "mph"
	MetersPerSecond   WindSpeedUnit = "ms"
)

// PrecipitationUnit is the display unit for precipitation depth.
type PrecipitationUnit string

const (
	Millimeters PrecipitationUnit = "mm"
	Inches      PrecipitationUnit = "inches"
)

const (
	kmhPerMph = 1.60934
	kmhPerMs  = 3.6
	mmPerInch = 25.4
)

func (u TemperatureUnit) Valid() bool { return u == Celsius || u == Fahrenheit }

func (u WindSpeedUnit) Valid() bool {
	return u == KilometersPerHour || u == MilesPerHour || u == MetersPerSecond
}

func (u PrecipitationUnit) Valid() bool { return u == Millimeters || u == Inches }

// Symbol returns the short unit suffix used in labels.
func (u TemperatureUnit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

func (u WindSpeedUnit) Symbol() string {
	switch u {
	case MilesPerHour:
		return "mph"
	case MetersPerSecond:
		return "m/s"
	default:
		return "km/h"
	}
}

func (u PrecipitationUnit) Symbol() string {
	if u == Inches {
		return `"`
	}
	return "mm"
}

// ConvertTemperature converts value between temperature units via Celsius.
// Unknown units are treated as Celsius, so an unknown pair is the identity.
func ConvertTemperature(value float64, from, to TemperatureUnit) float64 {
	if from == to {
		return value
	}
	celsius := value
	if from == Fahrenheit {
		celsius = (value - 32) * 5 / 9
	}
	if to == Fahrenheit {
		return celsius*9/5 + 32
	}
	return celsius
}

// ConvertWindSpeed converts value between wind speed units via km/h.
func ConvertWindSpeed(value float64, from, to WindSpeedUnit) float64 {
	if from == to {
		return value
	}
	kmh := value
	switch from {
	case MilesPerHour:
		kmh = value * kmhPerMph
	case MetersPerSecond:
		kmh = value * kmhPerMs
	}
	switch to {
	case MilesPerHour:
		return kmh / kmhPerMph
	case MetersPerSecond:
		return kmh / kmhPerMs
	default:
		return kmh
	}
}

// ConvertPrecipitation converts value between precipitation units via mm.
func ConvertPrecipitation(value float64, from, to PrecipitationUnit) float64 {
	if from == to {
		return value
	}
	mm := value
	if from == Inches {
		mm = value * mmPerInch
	}
	if to == Inches {
		return mm / mmPerInch
	}
	return mm
}

// roundHalfUp rounds to the nearest integer with ties toward +Inf.
// math.Round sends -2.5 to -3; the dashboard has always shown -2.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// roundTo rounds v half-up to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return roundHalfUp(v*p) / p
}

// formatNumber renders v in its shortest form: 25 not 25.0, 2.5 not 2.50.
func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DisplayTemperature converts a canonical °C value to u the way the
// dashboard shows it: whole degrees in °F, unchanged in °C.
func DisplayTemperature(celsius float64, u TemperatureUnit) float64 {
	if u == Fahrenheit {
		return roundHalfUp(ConvertTemperature(celsius, Celsius, Fahrenheit))
	}
	return celsius
}

// DisplayPrecipitation converts a canonical mm value to u, one decimal in inches.
func DisplayPrecipitation(mm float64, u PrecipitationUnit) float64 {
	if u == Inches {
		return roundTo(ConvertPrecipitation(mm, Millimeters, Inches), 1)
	}
	return mm
}

// DisplayWindSpeed converts a canonical km/h value to u, one decimal in mph or m/s.
func DisplayWindSpeed(kmh float64, u WindSpeedUnit) float64 {
	if u == MilesPerHour || u == MetersPerSecond {
		return roundTo(ConvertWindSpeed(kmh, KilometersPerHour, u), 1)
	}
	return kmh
}
