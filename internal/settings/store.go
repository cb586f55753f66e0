// Package settings persists the per-profile preferences record and exposes
// it to the rest of the service.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/observability"
)

// DefaultKey is the key holding the JSON-serialized record.
const DefaultKey = "weatherwise_settings"

// ChangeFunc is notified with the new record after every successful write.
type ChangeFunc func(domain.Settings)

// Store owns the in-memory settings record and writes it through to a
// key-value store on every change.
type Store struct {
	kv      domain.KeyValueStore
	key     string
	logger  *slog.Logger
	metrics *observability.Metrics

	mu        sync.RWMutex
	current   domain.Settings
	listeners []ChangeFunc
	loaded    atomic.Bool
}

// New creates a Store holding defaults. Call Load to read the persisted record.
func New(kv domain.KeyValueStore, key string, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		kv:      kv,
		key:     key,
		logger:  logger,
		metrics: metrics,
		current: domain.DefaultSettings(),
	}
}

// OnChange registers fn to run after each successful save or reset.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load reads the persisted record and merges it over the defaults: every
// field or threshold group absent from the stored JSON keeps its default.
// A missing record yields the defaults. A corrupt record is logged and
// also yields the defaults; only a storage read failure is returned.
func (s *Store) Load(ctx context.Context) (domain.Settings, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	merged := domain.DefaultSettings()
	outcome := "empty"
	if found {
		outcome = "found"
		if err := decode(raw, &merged); err != nil {
			s.logger.Warn("settings record corrupt, falling back to defaults", "key", s.key, "error", err)
			merged = domain.DefaultSettings()
			outcome = "corrupt"
		}
	}
	s.metrics.SettingsLoads.WithLabelValues(outcome).Inc()

	s.mu.Lock()
	s.current = merged
	s.mu.Unlock()
	s.loaded.Store(true)

	return merged, nil
}

// Current returns a copy of the in-memory record.
func (s *Store) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save replaces the whole record, thresholds included, and persists it.
func (s *Store) Save(ctx context.Context, rec domain.Settings) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return s.write(ctx, func(domain.Settings) domain.Settings { return rec })
}

// Update applies fn to a copy of the current record, validates the result,
// and persists it.
func (s *Store) Update(ctx context.Context, fn func(*domain.Settings)) (domain.Settings, error) {
	next := s.Current()
	fn(&next)
	if err := next.Validate(); err != nil {
		return domain.Settings{}, err
	}
	if err := s.write(ctx, func(domain.Settings) domain.Settings { return next }); err != nil {
		return domain.Settings{}, err
	}
	return next, nil
}

// SetTheme changes only the theme.
func (s *Store) SetTheme(ctx context.Context, theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: theme %q", domain.ErrInvalidSettings, theme)
	}
	return s.write(ctx, func(cur domain.Settings) domain.Settings {
		cur.Theme = theme
		return cur
	})
}

// ResetThresholds restores the four threshold groups to their defaults,
// leaving units and every other field untouched, and persists immediately.
func (s *Store) ResetThresholds(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	err := s.write(ctx, func(cur domain.Settings) domain.Settings {
		out = cur.WithDefaultThresholds()
		return out
	})
	return out, err
}

// ResetAll restores every non-threshold field to its default, keeping the
// current threshold groups, and persists immediately.
func (s *Store) ResetAll(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	err := s.write(ctx, func(cur domain.Settings) domain.Settings {
		out = domain.DefaultSettings()
		out.TempThresholds = cur.TempThresholds
		out.PrecipThresholds = cur.PrecipThresholds
		out.WindThresholds = cur.WindThresholds
		out.HumidityThresholds = cur.HumidityThresholds
		return out
	})
	return out, err
}

// CheckReadiness reports ready once the persisted record has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if !s.loaded.Load() {
		return errors.New("settings have not been loaded yet")
	}
	return nil
}

// write computes the next record under the lock, persists it, and only then
// swaps it in, so a failed write leaves the in-memory record unchanged.
func (s *Store) write(ctx context.Context, next func(domain.Settings) domain.Settings) error {
	s.mu.Lock()
	rec := next(s.current)
	data, err := json.Marshal(rec)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("write settings: %w", err)
	}
	s.current = rec
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	s.metrics.SettingsSaves.Inc()
	for _, fn := range listeners {
		fn(rec)
	}
	return nil
}

// decode unmarshals raw over dst. Fields absent from raw keep the values
// already in dst, which is how defaults fill the gaps of partial records.
func decode(raw string, dst *domain.Settings) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptSettings, err)
	}
	return nil
}
