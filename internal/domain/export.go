package domain

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// DataSource names the provider of the probabilities in exports.
const DataSource = "NASA POWER API (simulated)"

// isoMillis matches JavaScript's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9]`)

// ExportDocument is the JSON export schema.
type ExportDocument struct {
	Location      string              `json:"location"`
	Coordinates   ExportCoordinates   `json:"coordinates"`
	Month         string              `json:"month"`
	AnalysisDate  string              `json:"analysis_date"`
	DataSource    string              `json:"data_source"`
	Settings      ExportUnits         `json:"settings"`
	Probabilities ExportProbabilities `json:"probabilities"`
}

type ExportCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ExportUnits struct {
	TemperatureUnit   TemperatureUnit   `json:"temperature_unit"`
	WindSpeedUnit     WindSpeedUnit     `json:"wind_speed_unit"`
	PrecipitationUnit PrecipitationUnit `json:"precipitation_unit"`
}

type ExportProbabilities struct {
	Temperature   TemperatureExport   `json:"temperature"`
	Precipitation PrecipitationExport `json:"precipitation"`
	Wind          WindExport          `json:"wind"`
	Humidity      HumidityExport      `json:"humidity"`
}

type TemperatureExport struct {
	VeryCold int `json:"very_cold"`
	Cold     int `json:"cold"`
	Mild     int `json:"mild"`
	Warm     int `json:"warm"`
	Hot      int `json:"hot"`
	VeryHot  int `json:"very_hot"`
}

type PrecipitationExport struct {
	None      int `json:"none"`
	Light     int `json:"light"`
	Moderate  int `json:"moderate"`
	Heavy     int `json:"heavy"`
	VeryHeavy int `json:"very_heavy"`
}

type WindExport struct {
	Calm       int `json:"calm"`
	Light      int `json:"light"`
	Moderate   int `json:"moderate"`
	Strong     int `json:"strong"`
	VeryStrong int `json:"very_strong"`
}

type HumidityExport struct {
	VeryDry     int `json:"very_dry"`
	Dry         int `json:"dry"`
	Comfortable int `json:"comfortable"`
	Humid       int `json:"humid"`
	VeryHumid   int `json:"very_humid"`
}

// ToJSON renders the report as a pretty-printed JSON document. It refuses
// with ErrNoData when no analysis has produced data.
func ToJSON(r *Report, s Settings) ([]byte, error) {
	if r == nil || !r.Probabilities.HasData() {
		return nil, ErrNoData
	}
	p := r.Probabilities
	doc := ExportDocument{
		Location:     r.Location.DisplayName(),
		Coordinates:  ExportCoordinates{Latitude: r.Location.Lat, Longitude: r.Location.Lon},
		Month:        r.MonthName(),
		AnalysisDate: clock.Now().UTC().Format(isoMillis),
		DataSource:   DataSource,
		Settings: ExportUnits{
			TemperatureUnit:   s.TemperatureUnit,
			WindSpeedUnit:     s.WindSpeedUnit,
			PrecipitationUnit: s.PrecipitationUnit,
		},
		Probabilities: ExportProbabilities{
			Temperature: TemperatureExport{
				VeryCold: at(p.Temperature, 0), Cold: at(p.Temperature, 1), Mild: at(p.Temperature, 2),
				Warm: at(p.Temperature, 3), Hot: at(p.Temperature, 4), VeryHot: at(p.Temperature, 5),
			},
			Precipitation: PrecipitationExport{
				None: at(p.Precipitation, 0), Light: at(p.Precipitation, 1), Moderate: at(p.Precipitation, 2),
				Heavy: at(p.Precipitation, 3), VeryHeavy: at(p.Precipitation, 4),
			},
			Wind: WindExport{
				Calm: at(p.Wind, 0), Light: at(p.Wind, 1), Moderate: at(p.Wind, 2),
				Strong: at(p.Wind, 3), VeryStrong: at(p.Wind, 4),
			},
			Humidity: HumidityExport{
				VeryDry: at(p.Humidity, 0), Dry: at(p.Humidity, 1), Comfortable: at(p.Humidity, 2),
				Humid: at(p.Humidity, 3), VeryHumid: at(p.Humidity, 4),
			},
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return data, nil
}

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Weather Parameter", "Condition", "Probability (%)", "Unit"}

// ToCSV renders one row per bucket across all four categories, using the
// fixed English condition names. It refuses with ErrNoData like ToJSON.
func ToCSV(r *Report, s Settings) ([]byte, error) {
	if r == nil || !r.Probabilities.HasData() {
		return nil, ErrNoData
	}
	p := r.Probabilities

	sections := []struct {
		parameter  string
		conditions []string
		values     []int
		unit       string
	}{
		{"Temperature", TemperatureConditions, p.Temperature, string(s.TemperatureUnit)},
		{"Precipitation", PrecipitationConditions, p.Precipitation, string(s.PrecipitationUnit)},
		{"Wind Speed", WindConditions, p.Wind, string(s.WindSpeedUnit)},
		{"Humidity", HumidityConditions, p.Humidity, "%"},
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, sec := range sections {
		for i, cond := range sec.conditions {
			row := []string{sec.parameter, cond, strconv.Itoa(at(sec.values, i)), sec.unit}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename builds "weatherwise_<location>_<month>.<ext>". Every
// character of the location outside [A-Za-z0-9] becomes one underscore per
// UTF-16 code unit, so characters beyond the BMP take two; the result is then
// lowercased.
func ExportFilename(location, month, ext string) string {
	safe := unsafeFilenameRe.ReplaceAllStringFunc(location, func(m string) string {
		r, _ := utf8.DecodeRuneInString(m)
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		return strings.Repeat("_", n)
	})
	safe = strings.ToLower(safe)
	return fmt.Sprintf("weatherwise_%s_%s.%s", safe, strings.ToLower(month), ext)
}

// at returns v[i], or 0 past the end of a short vector.
func at(v []int, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}
