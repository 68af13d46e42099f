package loader

import (
	"os"
	"strings"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "LAVAPANEL_"

// Environment variables read by EnvLoader.
const (
	EnvLogLevel = EnvPrefix + "LOG_LEVEL"
	EnvConfig   = EnvPrefix + "CONFIG"
)

// Env holds the environment overrides. Empty fields are unset.
type Env struct {
	// LogLevel overrides the verbosity flag.
	LogLevel string
	// Config names the configuration file when no flag is given.
	Config string
}

// EnvLoader loads overrides from environment variables.
type EnvLoader struct {
	lookup func(string) (string, bool)
}

// NewEnvLoader creates a loader reading the process environment.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{lookup: os.LookupEnv}
}

// NewEnvLoaderWithLookup creates a loader with a custom lookup function.
func NewEnvLoaderWithLookup(lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{lookup: lookup}
}

// Load reads the overrides. Values are trimmed; a blank value is unset.
func (l *EnvLoader) Load() Env {
	return Env{
		LogLevel: l.get(EnvLogLevel),
		Config:   l.get(EnvConfig),
	}
}

func (l *EnvLoader) get(name string) string {
	v, ok := l.lookup(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
