package dispatcher

import "github.com/dshills/lavapanel/internal/logging"

// Config holds dispatcher configuration options.
type Config struct {
	// Logger receives interaction and failure messages. Nil discards them.
	Logger *logging.Logger

	// Observer, if set, is called for every interaction after resolution.
	Observer Observer

	// EnableMetrics enables dispatch timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic wraps collaborator calls in panic recovery.
	RecoverFromPanic bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:    false,
		RecoverFromPanic: true,
	}
}

// WithLogger returns a copy of the config with the logger set.
func (c Config) WithLogger(l *logging.Logger) Config {
	c.Logger = l
	return c
}

// WithObserver returns a copy of the config with the observer set.
func (c Config) WithObserver(o Observer) Config {
	c.Observer = o
	return c
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}
