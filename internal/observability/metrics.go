package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weatherwise"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Settings persistence.
	SettingsLoads *prometheus.CounterVec // labels: outcome={found,empty,corrupt}
	SettingsSaves prometheus.Counter

	// Theme changes by source={local,remote}.
	ThemeChanges *prometheus.CounterVec

	// Analysis runs.
	AnalysisRuns     *prometheus.CounterVec // labels: outcome={success,precondition,canceled}
	AnalysisDuration prometheus.Histogram
	AutoRefreshRuns  prometheus.Counter
	Exports          *prometheus.CounterVec // labels: format={json,csv}
	ServiceReady     prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={search}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={search}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={search}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so that
// multiple tests can each build their own set.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SettingsLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_loads_total",
			Help:      "Settings record loads by outcome.",
		}, []string{"outcome"}),
		SettingsSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_saves_total",
			Help:      "Total settings records written to storage.",
		}),
		ThemeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_changes_total",
			Help:      "Theme applications by source.",
		}, []string{"source"}),
		AnalysisRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_runs_total",
			Help:      "Probability analyses by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete analysis including simulated latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 1.5, 2.5, 5},
		}),
		AutoRefreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_refresh_runs_total",
			Help:      "Analyses triggered by the refresh schedule.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Report exports by format.",
		}, []string{"format"}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_ready",
			Help:      "1 when settings are loaded and the service accepts work, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when place search is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SettingsLoads,
		m.SettingsSaves,
		m.ThemeChanges,
		m.AnalysisRuns,
		m.AnalysisDuration,
		m.AutoRefreshRuns,
		m.Exports,
		m.ServiceReady,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
