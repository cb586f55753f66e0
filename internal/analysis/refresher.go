package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/observability"
)

// Refresher re-runs the most recent analysis every refreshRate minutes.
type Refresher struct {
	svc     *Service
	logger  *slog.Logger
	metrics *observability.Metrics
	timeout time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	jobID   cron.EntryID
	minutes int
}

// RefreshTimeout bounds one scheduled refresh: the simulated fetch latency
// plus margin.
func RefreshTimeout(latency, margin time.Duration) time.Duration {
	if latency < 0 {
		latency = 0
	}
	return latency + margin
}

// NewRefresher creates a stopped Refresher with no schedule.
func NewRefresher(svc *Service, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
		cron:    cron.New(),
	}
}

// Start begins running scheduled refreshes.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// Reschedule replaces the current schedule with one firing every minutes
// minutes. Zero or less disables auto-refresh.
func (r *Refresher) Reschedule(minutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if minutes == r.minutes && (minutes <= 0 || r.jobID != 0) {
		return nil
	}
	if r.jobID != 0 {
		r.cron.Remove(r.jobID)
		r.jobID = 0
	}
	r.minutes = minutes
	if minutes <= 0 {
		r.logger.Info("auto-refresh disabled")
		return nil
	}

	id, err := r.cron.AddFunc(fmt.Sprintf("@every %dm", minutes), r.Refresh)
	if err != nil {
		return fmt.Errorf("schedule auto-refresh: %w", err)
	}
	r.jobID = id
	r.logger.Info("auto-refresh scheduled", "every_minutes", minutes)
	return nil
}

// OnSettingsChange reschedules from the refreshRate of s.
func (r *Refresher) OnSettingsChange(s domain.Settings) {
	if err := r.Reschedule(s.RefreshMinutes()); err != nil {
		r.logger.Error("reschedule auto-refresh failed", "error", err)
	}
}

// Interval reports the active refresh interval, zero when disabled.
func (r *Refresher) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.jobID == 0 {
		return 0
	}
	return time.Duration(r.minutes) * time.Minute
}

// Refresh re-runs the most recent analysis. It does nothing until a first
// analysis has completed.
func (r *Refresher) Refresh() {
	req, ok := r.svc.LastRequest()
	if !ok {
		r.logger.Debug("auto-refresh skipped, nothing analyzed yet")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.metrics.AutoRefreshRuns.Inc()
	if _, err := r.svc.Analyze(ctx, req); err != nil {
		r.logger.Warn("auto-refresh failed", "error", err)
	}
}
