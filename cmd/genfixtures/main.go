// Command genfixtures renders JSON and CSV export fixtures for a set of
// reference locations across every month. It uses the service's own domain
// package so the fixtures match what the dashboard exports.
//
// Usage:
//
//	go run ./cmd/genfixtures -out testdata/fixtures
//	go run ./cmd/genfixtures -out testdata/fixtures -imperial
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

// fixtureYear is the calendar year of every generated request date.
const fixtureYear = 2024

// frozenAt stamps analysis_date in every JSON export.
var frozenAt = time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)

// referenceLocations span both hemispheres, the tropics, and a pole.
var referenceLocations = []domain.Location{
	{Name: "Lisbon, Portugal", Lat: 38.7223, Lon: -9.1393},
	{Name: "Reykjavik, Iceland", Lat: 64.1466, Lon: -21.9426},
	{Name: "Singapore", Lat: 1.3521, Lon: 103.8198},
	{Name: "Cape Town, South Africa", Lat: -33.9249, Lon: 18.4241},
	{Name: "Denver, Colorado", Lat: 39.7392, Lon: -104.9903},
	{Name: "McMurdo Station", Lat: -77.8419, Lon: 166.6863},
}

// IndexEntry describes one generated fixture pair.
type IndexEntry struct {
	Location domain.Location `json:"location"`
	Month    int             `json:"month"`
	JSONFile string          `json:"json_file"`
	CSVFile  string          `json:"csv_file"`
}

// Index lists every fixture and the unit settings they were rendered with.
type Index struct {
	Settings domain.Settings `json:"settings"`
	Entries  []IndexEntry    `json:"entries"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for fixtures")
	imperial := flag.Bool("imperial", false, "render with °F, inches, and mph instead of metric units")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Set a fixed clock for reproducible analysis_date timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(frozenAt))
	defer domain.SetClock(nil)

	settings := domain.DefaultSettings()
	if *imperial {
		settings.TemperatureUnit = domain.Fahrenheit
		settings.PrecipitationUnit = domain.Inches
		settings.WindSpeedUnit = domain.MilesPerHour
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	index := Index{Settings: settings}
	for _, loc := range referenceLocations {
		for month := 0; month < 12; month++ {
			entry, err := writeFixture(*outDir, loc, month, settings)
			if err != nil {
				return fmt.Errorf("%s month %d: %w", loc.Name, month, err)
			}
			index.Entries = append(index.Entries, entry)
		}
		log.Printf("%s: 12 months", loc.Name)
	}

	if err := writeJSON(filepath.Join(*outDir, "index.json"), index); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	log.Printf("wrote %d fixture pairs to %s", len(index.Entries), *outDir)

	printStats(index)
	return nil
}

func writeFixture(dir string, loc domain.Location, month int, settings domain.Settings) (IndexEntry, error) {
	req := domain.Request{
		Location: &loc,
		Date:     time.Date(fixtureYear, time.Month(month+1), 15, 0, 0, 0, 0, time.UTC),
	}
	report, err := domain.NewReport(fmt.Sprintf("fixture-%d", month), req)
	if err != nil {
		return IndexEntry{}, err
	}

	jsonBody, err := domain.ToJSON(&report, settings)
	if err != nil {
		return IndexEntry{}, err
	}
	csvBody, err := domain.ToCSV(&report, settings)
	if err != nil {
		return IndexEntry{}, err
	}

	entry := IndexEntry{
		Location: loc,
		Month:    month,
		JSONFile: domain.ExportFilename(loc.DisplayName(), report.MonthName(), "json"),
		CSVFile:  domain.ExportFilename(loc.DisplayName(), report.MonthName(), "csv"),
	}
	if err := os.WriteFile(filepath.Join(dir, entry.JSONFile), jsonBody, 0o600); err != nil {
		return IndexEntry{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, entry.CSVFile), csvBody, 0o600); err != nil {
		return IndexEntry{}, err
	}
	return entry, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats prints the most likely temperature condition per location and
// month, handy when updating test assertions.
func printStats(index Index) {
	fmt.Println("\n=== Most likely temperature condition ===")
	var current string
	for _, e := range index.Entries {
		if e.Location.Name != current {
			current = e.Location.Name
			fmt.Printf("\n%s (lat %.2f)\n", current, e.Location.Lat)
		}
		p := domain.Estimate(e.Location.Lat, e.Month)
		best := 0
		for i, v := range p.Temperature {
			if v > p.Temperature[best] {
				best = i
			}
		}
		fmt.Printf("  %-10s %-10s %3d%%\n", time.Month(e.Month+1), domain.TemperatureConditions[best], p.Temperature[best])
	}
}
