package settings

import (
	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

// Form is the settings form as the user sees it. Threshold values are in the
// display units the form itself selects, not the canonical ones.
type Form struct {
	Theme             domain.Theme             `json:"theme"`
	TemperatureUnit   domain.TemperatureUnit   `json:"temperatureUnit"`
	WindSpeedUnit     domain.WindSpeedUnit     `json:"windSpeedUnit"`
	PrecipitationUnit domain.PrecipitationUnit `json:"precipitationUnit"`
	RefreshRate       string                   `json:"refreshRate"`
	DefaultLocation   string                   `json:"defaultLocation"`

	Temperature   domain.TempThresholds     `json:"temperature"`
	Precipitation domain.PrecipThresholds   `json:"precipitation"`
	Wind          domain.WindThresholds     `json:"wind"`
	Humidity      domain.HumidityThresholds `json:"humidity"`

	// Symbols shown next to each threshold input.
	Symbols FormSymbols `json:"symbols"`
}

// FormSymbols carries the unit suffix for each threshold group.
type FormSymbols struct {
	Temperature   string `json:"temperature"`
	Precipitation string `json:"precipitation"`
	Wind          string `json:"wind"`
	Humidity      string `json:"humidity"`
}

// FormFromSettings renders s into a form, converting thresholds into the
// display units of s.
func FormFromSettings(s domain.Settings) Form {
	t, p, w := s.TempThresholds, s.PrecipThresholds, s.WindThresholds
	tu, pu, wu := s.TemperatureUnit, s.PrecipitationUnit, s.WindSpeedUnit

	return Form{
		Theme:             s.Theme,
		TemperatureUnit:   tu,
		WindSpeedUnit:     wu,
		PrecipitationUnit: pu,
		RefreshRate:       s.RefreshRate,
		DefaultLocation:   s.DefaultLocation,
		Temperature: domain.TempThresholds{
			VeryCold: domain.DisplayTemperature(t.VeryCold, tu),
			Cold:     domain.DisplayTemperature(t.Cold, tu),
			Mild:     domain.DisplayTemperature(t.Mild, tu),
			Warm:     domain.DisplayTemperature(t.Warm, tu),
			Hot:      domain.DisplayTemperature(t.Hot, tu),
		},
		Precipitation: domain.PrecipThresholds{
			Light:     domain.DisplayPrecipitation(p.Light, pu),
			Moderate:  domain.DisplayPrecipitation(p.Moderate, pu),
			Heavy:     domain.DisplayPrecipitation(p.Heavy, pu),
			VeryHeavy: domain.DisplayPrecipitation(p.VeryHeavy, pu),
		},
		Wind: domain.WindThresholds{
			Light:      domain.DisplayWindSpeed(w.Light, wu),
			Moderate:   domain.DisplayWindSpeed(w.Moderate, wu),
			Strong:     domain.DisplayWindSpeed(w.Strong, wu),
			VeryStrong: domain.DisplayWindSpeed(w.VeryStrong, wu),
		},
		Humidity: s.HumidityThresholds,
		Symbols: FormSymbols{
			Temperature:   tu.Symbol(),
			Precipitation: pu.Symbol(),
			Wind:          wu.Symbol(),
			Humidity:      "%",
		},
	}
}

// Apply returns s updated from the form. Threshold values are converted from
// the form's units back to canonical units. A value the user left as it was
// displayed keeps its exact canonical value, so rounding for display never
// drifts the stored thresholds.
func (f Form) Apply(s domain.Settings) domain.Settings {
	out := s
	out.Theme = f.Theme
	out.TemperatureUnit = f.TemperatureUnit
	out.WindSpeedUnit = f.WindSpeedUnit
	out.PrecipitationUnit = f.PrecipitationUnit
	out.RefreshRate = f.RefreshRate
	out.DefaultLocation = f.DefaultLocation

	temp := func(shown, cur float64) float64 {
		if shown == domain.DisplayTemperature(cur, f.TemperatureUnit) {
			return cur
		}
		return domain.ConvertTemperature(shown, f.TemperatureUnit, domain.Celsius)
	}
	precip := func(shown, cur float64) float64 {
		if shown == domain.DisplayPrecipitation(cur, f.PrecipitationUnit) {
			return cur
		}
		return domain.ConvertPrecipitation(shown, f.PrecipitationUnit, domain.Millimeters)
	}
	wind := func(shown, cur float64) float64 {
		if shown == domain.DisplayWindSpeed(cur, f.WindSpeedUnit) {
			return cur
		}
		return domain.ConvertWindSpeed(shown, f.WindSpeedUnit, domain.KilometersPerHour)
	}

	t, p, w := s.TempThresholds, s.PrecipThresholds, s.WindThresholds
	out.TempThresholds = domain.TempThresholds{
		VeryCold: temp(f.Temperature.VeryCold, t.VeryCold),
		Cold:     temp(f.Temperature.Cold, t.Cold),
		Mild:     temp(f.Temperature.Mild, t.Mild),
		Warm:     temp(f.Temperature.Warm, t.Warm),
		Hot:      temp(f.Temperature.Hot, t.Hot),
	}
	out.PrecipThresholds = domain.PrecipThresholds{
		Light:     precip(f.Precipitation.Light, p.Light),
		Moderate:  precip(f.Precipitation.Moderate, p.Moderate),
		Heavy:     precip(f.Precipitation.Heavy, p.Heavy),
		VeryHeavy: precip(f.Precipitation.VeryHeavy, p.VeryHeavy),
	}
	out.WindThresholds = domain.WindThresholds{
		Light:      wind(f.Wind.Light, w.Light),
		Moderate:   wind(f.Wind.Moderate, w.Moderate),
		Strong:     wind(f.Wind.Strong, w.Strong),
		VeryStrong: wind(f.Wind.VeryStrong, w.VeryStrong),
	}
	out.HumidityThresholds = f.Humidity
	return out
}
