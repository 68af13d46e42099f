// Package loader reads panel configuration files into a Document.
//
// YAML and TOML files share one schema:
//
//	bar:
//	  icon-size: 80
//	  orientation: horizontal
//	items:
//	  - type: button
//	    image-path: /usr/share/icons/firefox.svg
//	    toplevel-app-id: firefox
//	    commands:
//	      - "@toplevel-activate firefox"      # no bind: universal
//	      - bind: "[shift+mouse-right]"
//	        run: "@toplevel-close"
//	  - type: spacer
//	    length: 20
//
// The loader checks structure and key names only. Turning a Document into
// items and bindings is the config package's job.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Errors returned by the loaders.
var (
	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrUnsupportedFormat indicates a file extension no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrSyntax indicates the file is not valid YAML or TOML.
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownKey indicates a key outside the schema.
	ErrUnknownKey = errors.New("unknown key")

	// ErrWrongType indicates a value of the wrong shape.
	ErrWrongType = errors.New("wrong type")
)

// Format is a configuration file syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Document is the parsed, unvalidated content of a configuration file.
type Document struct {
	Bar   BarSection
	Items []RawItem
}

// BarSection holds bar-wide settings. Zero values mean unset.
type BarSection struct {
	IconSize    *int
	Orientation string
	Line        int
}

// RawItem is one entry of the items list.
type RawItem struct {
	Type      string
	Length    *int
	ImagePath string
	AppID     *string
	Commands  []RawCommand
	Line      int
}

// RawCommand is one command of an item. An empty Bind means the command
// answers any interaction.
type RawCommand struct {
	Bind string
	Run  string
	Line int
}

// Loader reads a Document.
type Loader interface {
	// Load reads the configured file.
	Load() (*Document, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	// LoadFromReader reads configuration from a reader.
	LoadFromReader(r io.Reader) (*Document, error)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// New returns the loader for path's format.
func New(fsys FileSystem, path string) (Loader, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatTOML:
		return NewTOMLLoaderWithFS(fsys, path), nil
	default:
		return NewYAMLLoaderWithFS(fsys, path), nil
	}
}

// Parse decodes data in the given format. source names the data in errors.
func Parse(source string, format Format, data []byte) (*Document, error) {
	switch format {
	case FormatTOML:
		return parseTOML(source, data)
	case FormatYAML:
		return parseYAML(source, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func readFile(fsys FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
