// Package config turns a panel configuration file into items, bindings
// and the capability requirements the seats bind against.
//
// A configuration is accepted whole or not at all: the first error aborts
// the load and nothing from a partially valid file is used.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/lavapanel/internal/bar"
	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/config/loader"
	"github.com/dshills/lavapanel/internal/item"
)

// Errors returned by configuration operations.
var (
	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = loader.ErrFileNotFound

	// ErrNoItems indicates a configuration without any item.
	ErrNoItems = errors.New("configuration defines no items")

	// ErrMissingType indicates an item without a type.
	ErrMissingType = errors.New("item has no type")

	// ErrInvalidValue indicates a value outside its allowed range.
	ErrInvalidValue = errors.New("invalid value")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// DefaultFileNames are tried in order inside the config directory.
var DefaultFileNames = []string{"lavapanel.yaml", "lavapanel.yml", "lavapanel.toml"}

// Config is a loaded panel configuration.
type Config struct {
	// Path is the file the configuration was read from.
	Path string
	// Items are the panel entries in file order.
	Items []*item.Item
	// Needs records which input channels and protocols the items use.
	Needs bind.Requirements
	// Layout places items on each bar.
	Layout bar.Layout
}

// Buttons returns the number of button items.
func (c *Config) Buttons() int {
	n := 0
	for _, it := range c.Items {
		if it.IsButton() {
			n++
		}
	}
	return n
}

// Load reads and builds the configuration at path.
func Load(path string) (*Config, error) {
	return LoadFS(loader.DefaultFS(), path)
}

// LoadFS reads the configuration at path from fsys.
func LoadFS(fsys loader.FileSystem, path string) (*Config, error) {
	l, err := loader.New(fsys, path)
	if err != nil {
		return nil, err
	}
	doc, err := l.Load()
	if err != nil {
		return nil, err
	}
	return Build(path, doc)
}

// Parse builds a configuration from data, picking the syntax from path.
func Parse(path string, data []byte) (*Config, error) {
	format, err := loader.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	doc, err := loader.Parse(path, format, data)
	if err != nil {
		return nil, err
	}
	return Build(path, doc)
}

// Build validates doc and creates its items.
func Build(path string, doc *loader.Document) (*Config, error) {
	cfg := &Config{Path: path, Layout: bar.DefaultLayout()}

	if err := buildLayout(path, doc.Bar, &cfg.Layout); err != nil {
		return nil, err
	}

	for i, raw := range doc.Items {
		it, needs, err := buildItem(item.ID(i), raw)
		if err != nil {
			return nil, &ParseError{
				Path:    path,
				Line:    errorLine(err, raw.Line),
				Message: fmt.Sprintf("item %d: %v", i, err),
				Err:     err,
			}
		}
		cfg.Items = append(cfg.Items, it)
		cfg.Needs.Merge(needs)
	}

	if len(cfg.Items) == 0 {
		return nil, &ParseError{Path: path, Message: ErrNoItems.Error(), Err: ErrNoItems}
	}
	return cfg, nil
}

func buildLayout(path string, sec loader.BarSection, layout *bar.Layout) error {
	fail := func(format string, args ...any) error {
		msg := fmt.Sprintf(format, args...)
		return &ParseError{Path: path, Line: sec.Line, Message: msg, Err: fmt.Errorf("%w: %s", ErrInvalidValue, msg)}
	}

	if sec.IconSize != nil {
		if *sec.IconSize <= 0 {
			return fail("icon-size must be positive, got %d", *sec.IconSize)
		}
		layout.IconSize = uint32(*sec.IconSize)
	}

	switch strings.ToLower(sec.Orientation) {
	case "", "horizontal":
		layout.Vertical = false
	case "vertical":
		layout.Vertical = true
	default:
		return fail("orientation must be horizontal or vertical, got %q", sec.Orientation)
	}
	return nil
}

// lineError carries the line of the command that failed.
type lineError struct {
	line int
	err  error
}

func (e *lineError) Error() string { return e.err.Error() }
func (e *lineError) Unwrap() error { return e.err }

func errorLine(err error, fallback int) int {
	var le *lineError
	if errors.As(err, &le) && le.line > 0 {
		return le.line
	}
	return fallback
}

func buildItem(id item.ID, raw loader.RawItem) (*item.Item, bind.Requirements, error) {
	var needs bind.Requirements

	if raw.Type == "" {
		return nil, needs, ErrMissingType
	}
	kind, err := item.ParseKind(raw.Type)
	if err != nil {
		return nil, needs, err
	}

	var it *item.Item
	switch kind {
	case item.KindSpacer:
		if raw.Length == nil {
			return nil, needs, fmt.Errorf("%w: spacer needs a length", ErrInvalidValue)
		}
		if *raw.Length <= 0 {
			return nil, needs, fmt.Errorf("%w: length must be positive, got %d", ErrInvalidValue, *raw.Length)
		}
		it, err = item.NewSpacer(id, uint32(*raw.Length))
		if err != nil {
			return nil, needs, err
		}
		if raw.ImagePath != "" {
			return nil, needs, fmt.Errorf("%w: image-path", item.ErrNotApplicable)
		}
	default:
		if raw.Length != nil {
			return nil, needs, fmt.Errorf("%w: length", item.ErrNotApplicable)
		}
		it = item.NewButton(id)
		it.ImagePath = raw.ImagePath
	}

	if raw.AppID != nil {
		req, err := it.SetAppID(*raw.AppID)
		if err != nil {
			return nil, needs, err
		}
		needs.Merge(req)
	}

	for _, c := range raw.Commands {
		if strings.TrimSpace(c.Run) == "" {
			return nil, needs, &lineError{line: c.Line, err: fmt.Errorf("%w: empty command", ErrInvalidValue)}
		}
		req, err := it.AddCommand(c.Bind, c.Run)
		if err != nil {
			return nil, needs, &lineError{line: c.Line, err: err}
		}
		needs.Merge(req)
	}

	return it, needs, nil
}

// ResolvePath picks the configuration file: the flag value, then the
// LAVAPANEL_CONFIG override, then the first DefaultFileNames entry that
// exists under configDir/lavapanel.
func ResolvePath(fsys loader.FileSystem, flag string, env loader.Env, configDir string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env.Config != "" {
		return env.Config, nil
	}
	if configDir == "" {
		return "", fmt.Errorf("%w: no config directory", ErrFileNotFound)
	}

	dir := filepath.Join(configDir, "lavapanel")
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if _, err := fsys.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s in %s", ErrFileNotFound, strings.Join(DefaultFileNames, ", "), dir)
}
