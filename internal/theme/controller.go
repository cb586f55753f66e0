// Package theme applies the light/dark presentation and keeps it in step
// across every instance sharing a settings profile.
package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/observability"
)

// Keys under which the most recent change is mirrored in the key-value store.
const (
	ChangeKey    = "weatherwise_theme_change"
	TimestampKey = "weatherwise_theme_timestamp"
)

const (
	darkRootClass  = "dark-theme"
	darkForeground = "#f0f0f0"

	broadcastTimeout = 10 * time.Second
)

// Presentation is what a client needs to render the active theme.
type Presentation struct {
	Theme     domain.Theme `json:"theme"`
	RootClass string       `json:"rootClass"`
	// DefaultForeground applies to text elements without an explicit colour.
	DefaultForeground string `json:"defaultForeground,omitempty"`
}

// SettingsStore is the part of the settings store the controller writes to.
type SettingsStore interface {
	SetTheme(ctx context.Context, theme domain.Theme) error
}

// Controller owns the applied theme of this instance.
type Controller struct {
	store   SettingsStore
	kv      domain.KeyValueStore
	pub     domain.ThemePublisher
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	origin  string

	mu          sync.Mutex
	current     Presentation
	lastApplied time.Time
}

// New creates a Controller showing the light theme. kv and pub may be nil.
func New(store SettingsStore, kv domain.KeyValueStore, pub domain.ThemePublisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		store:   store,
		kv:      kv,
		pub:     pub,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		origin:  ulid.Make().String(),
		current: present(domain.ThemeLight),
	}
}

// Origin identifies this instance in published signals.
func (c *Controller) Origin() string { return c.origin }

// Current returns the applied presentation.
func (c *Controller) Current() Presentation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Apply switches the presentation to theme without persisting or broadcasting.
// Unknown themes render as light.
func (c *Controller) Apply(theme domain.Theme) Presentation {
	p := present(theme)
	c.mu.Lock()
	c.current = p
	c.mu.Unlock()
	return p
}

// Set persists theme in the settings record, applies it, and broadcasts it
// to other instances. Broadcast failures are logged; the change still stands.
// Set broadcasts even when theme is already applied.
func (c *Controller) Set(ctx context.Context, theme domain.Theme) (Presentation, error) {
	if !theme.Valid() {
		return Presentation{}, fmt.Errorf("%w: theme %q", domain.ErrInvalidSettings, theme)
	}

	// Applied ahead of the write so OnSettingsChange sees nothing to do.
	p := present(theme)
	c.mu.Lock()
	prev := c.current
	c.current = p
	c.mu.Unlock()

	if err := c.store.SetTheme(ctx, theme); err != nil {
		c.mu.Lock()
		if c.current == p {
			c.current = prev
		}
		c.mu.Unlock()
		return Presentation{}, err
	}

	now := c.clock.Now().UTC()
	c.mu.Lock()
	c.lastApplied = now
	c.mu.Unlock()
	c.metrics.ThemeChanges.WithLabelValues("local").Inc()

	if err := c.broadcast(ctx, domain.ThemeSignal{Theme: theme, Timestamp: now, Origin: c.origin}); err != nil {
		c.logger.Warn("theme broadcast failed", "theme", theme, "error", err)
	}
	return p, nil
}

// OnSettingsChange keeps the presentation on the theme stored in rec. It is
// registered with the settings store so saves and resets that touch the
// theme are applied and broadcast like Set.
func (c *Controller) OnSettingsChange(rec domain.Settings) {
	if !rec.Theme.Valid() {
		return
	}
	now := c.clock.Now().UTC()
	c.mu.Lock()
	if c.current.Theme == rec.Theme {
		c.mu.Unlock()
		return
	}
	c.current = present(rec.Theme)
	c.lastApplied = now
	c.mu.Unlock()
	c.metrics.ThemeChanges.WithLabelValues("local").Inc()

	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()
	if err := c.broadcast(ctx, domain.ThemeSignal{Theme: rec.Theme, Timestamp: now, Origin: c.origin}); err != nil {
		c.logger.Warn("theme broadcast failed", "theme", rec.Theme, "error", err)
	}
}

func (c *Controller) broadcast(ctx context.Context, sig domain.ThemeSignal) error {
	var errs []error
	if c.kv != nil {
		if err := c.kv.Set(ctx, ChangeKey, string(sig.Theme)); err != nil {
			errs = append(errs, err)
		}
		if err := c.kv.Set(ctx, TimestampKey, strconv.FormatInt(sig.Timestamp.UnixMilli(), 10)); err != nil {
			errs = append(errs, err)
		}
	}
	if c.pub != nil {
		if err := c.pub.PublishTheme(ctx, sig); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Listen applies signals from other instances until ctx is done. Signals from
// this instance, with an unknown theme, or older than the last applied change
// are ignored. Settings are not consulted or written.
func (c *Controller) Listen(ctx context.Context, sub domain.ThemeSubscriber) error {
	c.logger.Info("theme listener started", "origin", c.origin)
	for {
		sig, err := sub.NextTheme(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("theme listener stopped")
				return nil
			}
			return fmt.Errorf("receive theme signal: %w", err)
		}
		c.handle(sig)
	}
}

func (c *Controller) handle(sig domain.ThemeSignal) bool {
	if sig.Origin == c.origin || !sig.Theme.Valid() {
		return false
	}

	c.mu.Lock()
	if sig.Timestamp.Before(c.lastApplied) {
		c.mu.Unlock()
		c.logger.Debug("stale theme signal ignored", "theme", sig.Theme, "origin", sig.Origin)
		return false
	}
	c.current = present(sig.Theme)
	c.lastApplied = sig.Timestamp
	c.mu.Unlock()

	c.metrics.ThemeChanges.WithLabelValues("remote").Inc()
	c.logger.Info("theme changed by another instance", "theme", sig.Theme, "origin", sig.Origin)
	return true
}

func present(theme domain.Theme) Presentation {
	if theme == domain.ThemeDark {
		return Presentation{Theme: domain.ThemeDark, RootClass: darkRootClass, DefaultForeground: darkForeground}
	}
	return Presentation{Theme: domain.ThemeLight}
}
