package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader loads configuration from TOML files.
//
//	[bar]
//	icon-size = 64
//
//	[[items]]
//	type = "button"
//	toplevel-app-id = "firefox"
//
//	[[items.commands]]
//	run = "@toplevel-activate firefox"
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a new TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{
		fs:   DefaultFS(),
		path: path,
	}
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fs FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{
		fs:   fs,
		path: path,
	}
}

// Load reads configuration from the configured path.
func (l *TOMLLoader) Load() (*Document, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path.
func (l *TOMLLoader) LoadFrom(path string) (*Document, error) {
	data, err := readFile(l.fs, path)
	if err != nil {
		return nil, err
	}
	return parseTOML(path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseTOML("<reader>", data)
}

type tomlDocument struct {
	Bar   *tomlBar   `toml:"bar"`
	Items []tomlItem `toml:"items"`
}

type tomlBar struct {
	IconSize    *int   `toml:"icon-size"`
	Orientation string `toml:"orientation"`
}

type tomlItem struct {
	Type      string        `toml:"type"`
	Length    *int          `toml:"length"`
	ImagePath string        `toml:"image-path"`
	AppID     *string       `toml:"toplevel-app-id"`
	Commands  []tomlCommand `toml:"commands"`
}

type tomlCommand struct {
	Bind string `toml:"bind"`
	Run  string `toml:"run"`
}

// parseTOML decodes strictly: keys outside the schema are errors.
// TOML tables carry no positions once decoded, so only decoder errors
// have line numbers.
func parseTOML(source string, data []byte) (*Document, error) {
	var raw tomlDocument
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, tomlError(source, err)
	}

	doc := &Document{}
	if raw.Bar != nil {
		doc.Bar = BarSection{IconSize: raw.Bar.IconSize, Orientation: raw.Bar.Orientation}
	}
	for _, ti := range raw.Items {
		it := RawItem{
			Type:      ti.Type,
			Length:    ti.Length,
			ImagePath: ti.ImagePath,
			AppID:     ti.AppID,
		}
		for _, tc := range ti.Commands {
			it.Commands = append(it.Commands, RawCommand{Bind: tc.Bind, Run: tc.Run})
		}
		doc.Items = append(doc.Items, it)
	}
	return doc, nil
}

func tomlError(source string, err error) error {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) && len(strict.Errors) > 0 {
		first := strict.Errors[0]
		row, col := first.Position()
		return &ParseError{
			Path:    source,
			Line:    row,
			Column:  col,
			Message: fmt.Sprintf("unknown key %q", strings.Join(first.Key(), ".")),
			Err:     ErrUnknownKey,
		}
	}

	var decErr *toml.DecodeError
	if errors.As(err, &decErr) {
		row, col := decErr.Position()
		return &ParseError{
			Path:    source,
			Line:    row,
			Column:  col,
			Message: decErr.Error(),
			Err:     fmt.Errorf("%w: %w", ErrSyntax, err),
		}
	}

	return &ParseError{
		Path:    source,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", ErrWrongType, err),
	}
}
