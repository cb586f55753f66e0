// Package analysis runs probability analyses for a location and month and
// keeps the most recent result for display and export.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/observability"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for export formats other than json and csv.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// SettingsReader supplies the current settings record.
type SettingsReader interface {
	Current() domain.Settings
}

// Result is a report paired with everything needed to present it.
type Result struct {
	Report  domain.Report `json:"report"`
	Labels  domain.Labels `json:"labels"`
	Charts  domain.Charts `json:"charts"`
	Summary string        `json:"summary"`
}

// Export is a rendered report ready for download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Service computes analyses after a simulated data-fetch delay and holds the
// last completed one. Concurrent analyses are not serialized: whichever
// finishes last becomes the current result.
type Service struct {
	settings SettingsReader
	clock    clockwork.Clock
	latency  time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu      sync.RWMutex
	last    *domain.Report
	lastReq *domain.Request
}

// New creates a Service. latency stands in for the remote weather fetch.
func New(settings SettingsReader, clock clockwork.Clock, latency time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		settings: settings,
		clock:    clock,
		latency:  latency,
		logger:   logger,
		metrics:  metrics,
	}
}

// Analyze validates req, waits out the simulated latency, estimates the
// probabilities, and records the report as the latest result.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (domain.Report, error) {
	start := s.clock.Now()

	if err := req.Check(); err != nil {
		s.metrics.AnalysisRuns.WithLabelValues("precondition").Inc()
		return domain.Report{}, err
	}

	if !sleepWithContext(ctx, s.clock, s.latency) {
		s.metrics.AnalysisRuns.WithLabelValues("canceled").Inc()
		return domain.Report{}, ctx.Err()
	}

	now := s.clock.Now()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	report, err := domain.NewReport(id, req)
	if err != nil {
		return domain.Report{}, err
	}

	reqCopy := req
	s.mu.Lock()
	s.last = &report
	s.lastReq = &reqCopy
	s.mu.Unlock()

	s.metrics.AnalysisRuns.WithLabelValues("success").Inc()
	s.metrics.AnalysisDuration.Observe(now.Sub(start).Seconds())
	s.logger.Info("analysis complete",
		"id", report.ID,
		"location", report.Location.DisplayName(),
		"month", report.MonthName(),
	)
	return report, nil
}

// Present pairs r with labels, chart series, and a summary for the given
// categories under the current settings.
func (s *Service) Present(r domain.Report, c domain.Categories) Result {
	labels := domain.GenerateLabels(s.settings.Current())
	return Result{
		Report:  r,
		Labels:  labels,
		Charts:  domain.BuildCharts(r.Probabilities, labels, c),
		Summary: domain.Summarize(r, labels, c),
	}
}

// Last returns the most recent report, if any.
func (s *Service) Last() (domain.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.Report{}, false
	}
	return *s.last, true
}

// LastRequest returns the request behind the most recent report, if any.
func (s *Service) LastRequest() (domain.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReq == nil {
		return domain.Request{}, false
	}
	return *s.lastReq, true
}

// Export renders the most recent report. It fails with domain.ErrNoData
// before any analysis has completed.
func (s *Service) Export(f Format) (Export, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	settings := s.settings.Current()

	var (
		body []byte
		err  error
	)
	switch f {
	case FormatJSON:
		body, err = domain.ToJSON(last, settings)
	case FormatCSV:
		body, err = domain.ToCSV(last, settings)
	default:
		return Export{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return Export{}, err
	}

	s.metrics.Exports.WithLabelValues(string(f)).Inc()
	return Export{
		Filename:    domain.ExportFilename(last.Location.DisplayName(), last.MonthName(), string(f)),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

// sleepWithContext is retry.SleepWithContext from storm-data-shared driven by
// the injected clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
