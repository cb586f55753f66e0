package domain

import (
	"context"
	"time"
)

// ThemeSignal announces a theme change to other instances sharing a profile.
type ThemeSignal struct {
	Theme     Theme     `json:"theme"`
	Timestamp time.Time `json:"timestamp"`
	// Origin identifies the instance that made the change.
	Origin string `json:"origin"`
}

// ThemePublisher broadcasts theme signals.
type ThemePublisher interface {
	PublishTheme(ctx context.Context, sig ThemeSignal) error
}

// ThemeSubscriber delivers theme signals published by any instance,
// including the subscriber's own.
type ThemeSubscriber interface {
	// NextTheme blocks until a signal arrives or ctx is done.
	NextTheme(ctx context.Context) (ThemeSignal, error)
}
