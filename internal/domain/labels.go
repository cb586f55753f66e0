package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Labels holds the display label of every bucket, in bucket order.
type Labels struct {
	Temperature   []string `json:"temperature"`
	Precipitation []string `json:"precipitation"`
	Wind          []string `json:"wind"`
	Humidity      []string `json:"humidity"`
}

// Fixed English condition names, independent of thresholds and units.
var (
	TemperatureConditions   = []string{"Very Cold", "Cold", "Mild", "Warm", "Hot", "Very Hot"}
	PrecipitationConditions = []string{"None", "Light", "Moderate", "Heavy", "Very Heavy"}
	WindConditions          = []string{"Calm", "Light", "Moderate", "Strong", "Very Strong"}
	HumidityConditions      = []string{"Very Dry", "Dry", "Comfortable", "Humid", "Very Humid"}
)

// humidityLabels do not follow HumidityThresholds.
var humidityLabels = []string{
	"Very Dry (<30%)",
	"Dry (30-60%)",
	"Comfortable (60-80%)",
	"Humid (80-90%)",
	"Very Humid (>90%)",
}

var rangeSuffixRe = regexp.MustCompile(`\s*\([^)]*\)`)

// GenerateLabels renders bucket labels from the canonical thresholds in s,
// converted to the display units selected in s. The first bucket of each
// category is open below its lowest boundary and the last is open above its
// highest; interior buckets show "low-high".
func GenerateLabels(s Settings) Labels {
	t, p, w := s.TempThresholds, s.PrecipThresholds, s.WindThresholds

	temp := func(v float64) string { return formatNumber(DisplayTemperature(v, s.TemperatureUnit)) }
	precip := func(v float64) string { return formatNumber(DisplayPrecipitation(v, s.PrecipitationUnit)) }
	wind := func(v float64) string { return formatNumber(DisplayWindSpeed(v, s.WindSpeedUnit)) }

	ts, ps, ws := s.TemperatureUnit.Symbol(), s.PrecipitationUnit.Symbol(), s.WindSpeedUnit.Symbol()

	return Labels{
		Temperature: []string{
			fmt.Sprintf("Very Cold (<%s%s)", temp(t.VeryCold), ts),
			fmt.Sprintf("Cold (%s-%s%s)", temp(t.VeryCold), temp(t.Cold), ts),
			fmt.Sprintf("Mild (%s-%s%s)", temp(t.Cold), temp(t.Mild), ts),
			fmt.Sprintf("Warm (%s-%s%s)", temp(t.Mild), temp(t.Warm), ts),
			fmt.Sprintf("Hot (%s-%s%s)", temp(t.Warm), temp(t.Hot), ts),
			fmt.Sprintf("Very Hot (>%s%s)", temp(t.Hot), ts),
		},
		Precipitation: []string{
			fmt.Sprintf("None (0%s)", ps),
			fmt.Sprintf("Light (0-%s%s)", precip(p.Light), ps),
			fmt.Sprintf("Moderate (%s-%s%s)", precip(p.Light), precip(p.Moderate), ps),
			fmt.Sprintf("Heavy (%s-%s%s)", precip(p.Moderate), precip(p.Heavy), ps),
			fmt.Sprintf("Very Heavy (>%s%s)", precip(p.VeryHeavy), ps),
		},
		Wind: []string{
			fmt.Sprintf("Calm (0-%s%s)", wind(w.Light), ws),
			fmt.Sprintf("Light (%s-%s%s)", wind(w.Light), wind(w.Moderate), ws),
			fmt.Sprintf("Moderate (%s-%s%s)", wind(w.Moderate), wind(w.Strong), ws),
			fmt.Sprintf("Strong (%s-%s%s)", wind(w.Strong), wind(w.VeryStrong), ws),
			fmt.Sprintf("Very Strong (>%s%s)", wind(w.VeryStrong), ws),
		},
		Humidity: append([]string(nil), humidityLabels...),
	}
}

// StripRange drops the parenthesised range from a label:
// "Very Cold (<0°C)" -> "Very Cold".
func StripRange(label string) string {
	return strings.TrimSpace(rangeSuffixRe.ReplaceAllString(label, ""))
}
