package app

import (
	"errors"
)

// Engine errors.
var (
	// ErrAlreadyRunning indicates Run was called on a running engine.
	ErrAlreadyRunning = errors.New("engine already running")

	// ErrNoConfig indicates an engine built without a configuration.
	ErrNoConfig = errors.New("no configuration")

	// ErrClosed indicates use of a closed engine.
	ErrClosed = errors.New("engine closed")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
