// Command validate sweeps the probability estimator, label generator, and
// unit converter for invariant violations, and optionally cross-checks a
// directory of export fixtures produced by genfixtures.
//
// Usage:
//
//	go run ./cmd/validate
//	go run ./cmd/validate -fixtures testdata/fixtures
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

// Must match genfixtures for analysis_date reproducibility.
var frozenAt = time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)

const latStep = 0.5

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	checks int
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixtures := flag.String("fixtures", "", "directory of fixtures written by genfixtures (optional)")
	flag.Parse()

	if code := run(*fixtures); code != 0 {
		os.Exit(code)
	}
}

func run(fixtureDir string) int {
	domain.SetClock(clockwork.NewFakeClockAt(frozenAt))
	defer domain.SetClock(nil)

	fmt.Println("=== WeatherWise Invariant Validation ===")
	fmt.Println()

	phases := []*phase{
		validateEstimates(),
		validateLabels(),
		validateConversions(),
	}
	if fixtureDir != "" {
		phases = append(phases, validateFixtures(fixtureDir))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %6d checks  %s\n", p.name, p.checks, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Estimator ──
// Every vector has its fixed length, no negative entry, and sums to 100
// within the rounding slack of half a point per bucket.

func validateEstimates() *phase {
	p := &phase{name: "Phase 1: Probability Estimates"}

	for lat := -90.0; lat <= 90; lat += latStep {
		for month := 0; month < 12; month++ {
			est := domain.Estimate(lat, month)
			checkVector(p, lat, month, "temperature", est.Temperature, domain.TemperatureBuckets)
			checkVector(p, lat, month, "precipitation", est.Precipitation, domain.PrecipitationBuckets)
			checkVector(p, lat, month, "wind", est.Wind, domain.WindBuckets)
			checkVector(p, lat, month, "humidity", est.Humidity, domain.HumidityBuckets)

			if !est.HasData() {
				p.errorf("lat %.1f month %d: temperature vector has no positive entry", lat, month)
			}
			if again := domain.Estimate(lat, month); !equalInts(again.Temperature, est.Temperature) {
				p.errorf("lat %.1f month %d: estimate is not deterministic", lat, month)
			}
		}
	}
	return p
}

func checkVector(p *phase, lat float64, month int, name string, v []int, buckets int) {
	p.checks++
	if len(v) != buckets {
		p.errorf("lat %.1f month %d: %s has %d buckets, want %d", lat, month, name, len(v), buckets)
		return
	}
	sum := 0
	for i, x := range v {
		if x < 0 {
			p.errorf("lat %.1f month %d: %s[%d] = %d is negative", lat, month, name, i, x)
		}
		sum += x
	}
	if diff := sum - 100; diff*2 > buckets || -diff*2 > buckets {
		p.errorf("lat %.1f month %d: %s sums to %d", lat, month, name, sum)
	}
}

// ── Phase 2: Labels ──
// Labels exist for every bucket and strip back to the fixed condition names.

func validateLabels() *phase {
	p := &phase{name: "Phase 2: Threshold Labels"}

	for _, s := range unitVariants() {
		labels := domain.GenerateLabels(s)
		checkLabels(p, s, "temperature", labels.Temperature, domain.TemperatureConditions)
		checkLabels(p, s, "precipitation", labels.Precipitation, domain.PrecipitationConditions)
		checkLabels(p, s, "wind", labels.Wind, domain.WindConditions)
		checkLabels(p, s, "humidity", labels.Humidity, domain.HumidityConditions)
	}
	return p
}

func checkLabels(p *phase, s domain.Settings, name string, labels, conditions []string) {
	p.checks++
	units := fmt.Sprintf("%s/%s/%s", s.TemperatureUnit, s.PrecipitationUnit, s.WindSpeedUnit)
	if len(labels) != len(conditions) {
		p.errorf("%s %s: %d labels, want %d", units, name, len(labels), len(conditions))
		return
	}
	for i, l := range labels {
		if got := domain.StripRange(l); got != conditions[i] {
			p.errorf("%s %s[%d]: label %q strips to %q, want %q", units, name, i, l, got, conditions[i])
		}
	}
}

func unitVariants() []domain.Settings {
	var out []domain.Settings
	for _, tu := range []domain.TemperatureUnit{domain.Celsius, domain.Fahrenheit} {
		for _, pu := range []domain.PrecipitationUnit{domain.Millimeters, domain.Inches} {
			for _, wu := range []domain.WindSpeedUnit{domain.KilometersPerHour, domain.MilesPerHour, domain.MetersPerSecond} {
				s := domain.DefaultSettings()
				s.TemperatureUnit, s.PrecipitationUnit, s.WindSpeedUnit = tu, pu, wu
				out = append(out, s)
			}
		}
	}
	return out
}

// ── Phase 3: Conversions ──
// Converting to any unit and back returns the original value.

func validateConversions() *phase {
	p := &phase{name: "Phase 3: Unit Conversions"}

	for v := -60.0; v <= 60; v += 0.25 {
		p.checks++
		f := domain.ConvertTemperature(v, domain.Celsius, domain.Fahrenheit)
		if back := domain.ConvertTemperature(f, domain.Fahrenheit, domain.Celsius); !floatEq(back, v) {
			p.errorf("temperature %g°C -> %g°F -> %g°C", v, f, back)
		}
	}
	for v := 0.0; v <= 200; v += 0.5 {
		p.checks++
		in := domain.ConvertPrecipitation(v, domain.Millimeters, domain.Inches)
		if back := domain.ConvertPrecipitation(in, domain.Inches, domain.Millimeters); !floatEq(back, v) {
			p.errorf("precipitation %gmm -> %gin -> %gmm", v, in, back)
		}
		for _, u := range []domain.WindSpeedUnit{domain.MilesPerHour, domain.MetersPerSecond} {
			p.checks++
			w := domain.ConvertWindSpeed(v, domain.KilometersPerHour, u)
			if back := domain.ConvertWindSpeed(w, u, domain.KilometersPerHour); !floatEq(back, v) {
				p.errorf("wind %gkm/h -> %g%s -> %gkm/h", v, w, u, back)
			}
		}
	}
	return p
}

// ── Phase 4: Fixtures ──
// Re-renders every fixture listed in index.json and compares byte for byte.

type fixtureIndex struct {
	Settings domain.Settings `json:"settings"`
	Entries  []struct {
		Location domain.Location `json:"location"`
		Month    int             `json:"month"`
		JSONFile string          `json:"json_file"`
		CSVFile  string          `json:"csv_file"`
	} `json:"entries"`
}

func validateFixtures(dir string) *phase {
	p := &phase{name: "Phase 4: Export Fixtures"}

	data, err := os.ReadFile(filepath.Join(dir, "index.json"))
	if err != nil {
		p.errorf("read index: %v", err)
		return p
	}
	var index fixtureIndex
	if err := json.Unmarshal(data, &index); err != nil {
		p.errorf("parse index: %v", err)
		return p
	}

	for _, e := range index.Entries {
		p.checks++
		loc := e.Location
		report, err := domain.NewReport("validate", domain.Request{
			Location: &loc,
			Date:     time.Date(2024, time.Month(e.Month+1), 15, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			p.errorf("%s month %d: %v", loc.Name, e.Month, err)
			continue
		}

		wantJSON, err := domain.ToJSON(&report, index.Settings)
		if err != nil {
			p.errorf("%s: render json: %v", e.JSONFile, err)
			continue
		}
		compareFile(p, filepath.Join(dir, e.JSONFile), wantJSON)

		wantCSV, err := domain.ToCSV(&report, index.Settings)
		if err != nil {
			p.errorf("%s: render csv: %v", e.CSVFile, err)
			continue
		}
		compareFile(p, filepath.Join(dir, e.CSVFile), wantCSV)
		checkCSVShape(p, filepath.Join(dir, e.CSVFile))
	}
	return p
}

func compareFile(p *phase, path string, want []byte) {
	got, err := os.ReadFile(path)
	if err != nil {
		p.errorf("%s: %v", filepath.Base(path), err)
		return
	}
	if !bytes.Equal(got, want) {
		p.errorf("%s: content differs from a fresh export", filepath.Base(path))
	}
}

func checkCSVShape(p *phase, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		p.errorf("%s: parse csv: %v", filepath.Base(path), err)
		return
	}
	want := 1 + domain.TemperatureBuckets + domain.PrecipitationBuckets + domain.WindBuckets + domain.HumidityBuckets
	if len(rows) != want {
		p.errorf("%s: %d rows, want %d", filepath.Base(path), len(rows), want)
	}
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
