package loader

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLLoader loads configuration from YAML files.
//
// It walks the yaml.v3 node tree rather than decoding into structs so
// item and command order is kept and every error carries a line number.
type YAMLLoader struct {
	fs   FileSystem
	path string
}

// NewYAMLLoader creates a new YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{
		fs:   DefaultFS(),
		path: path,
	}
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fs FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{
		fs:   fs,
		path: path,
	}
}

// Load reads configuration from the configured path.
func (l *YAMLLoader) Load() (*Document, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path.
func (l *YAMLLoader) LoadFrom(path string) (*Document, error) {
	data, err := readFile(l.fs, path)
	if err != nil {
		return nil, err
	}
	return parseYAML(path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *YAMLLoader) LoadFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseYAML("<reader>", data)
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func parseYAML(source string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		line := 0
		if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
		}
		return nil, &ParseError{
			Path:    source,
			Line:    line,
			Message: err.Error(),
			Err:     fmt.Errorf("%w: %w", ErrSyntax, err),
		}
	}

	doc := &Document{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}

	w := &yamlWalker{source: source}
	top := root.Content[0]
	if err := w.mapping(top, "document", func(key string, k, v *yaml.Node) error {
		switch key {
		case "bar":
			return w.bar(v, &doc.Bar)
		case "items":
			return w.items(v, &doc.Items)
		default:
			return w.unknown(k, "document")
		}
	}); err != nil {
		return nil, err
	}
	return doc, nil
}

type yamlWalker struct {
	source string
}

func (w *yamlWalker) errorf(n *yaml.Node, err error, format string, args ...any) error {
	return &ParseError{
		Path:    w.source,
		Line:    n.Line,
		Column:  n.Column,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func (w *yamlWalker) unknown(k *yaml.Node, where string) error {
	return w.errorf(k, ErrUnknownKey, "unknown key %q in %s", k.Value, where)
}

// mapping calls fn for each key of a mapping node in document order.
func (w *yamlWalker) mapping(n *yaml.Node, what string, fn func(key string, k, v *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return w.errorf(n, ErrWrongType, "%s must be a mapping", what)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if err := fn(k.Value, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *yamlWalker) str(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", w.errorf(n, ErrWrongType, "%s must be a string", what)
	}
	return n.Value, nil
}

func (w *yamlWalker) integer(n *yaml.Node, what string) (int, error) {
	var v int
	if n.Kind != yaml.ScalarNode || n.Decode(&v) != nil {
		return 0, w.errorf(n, ErrWrongType, "%s must be an integer", what)
	}
	return v, nil
}

func (w *yamlWalker) bar(n *yaml.Node, bar *BarSection) error {
	bar.Line = n.Line
	return w.mapping(n, "bar", func(key string, k, v *yaml.Node) error {
		switch key {
		case "icon-size":
			size, err := w.integer(v, key)
			if err != nil {
				return err
			}
			bar.IconSize = &size
		case "orientation":
			s, err := w.str(v, key)
			if err != nil {
				return err
			}
			bar.Orientation = s
		default:
			return w.unknown(k, "bar")
		}
		return nil
	})
}

func (w *yamlWalker) items(n *yaml.Node, out *[]RawItem) error {
	if n.Kind != yaml.SequenceNode {
		return w.errorf(n, ErrWrongType, "items must be a list")
	}
	for _, entry := range n.Content {
		it := RawItem{Line: entry.Line}
		err := w.mapping(entry, "item", func(key string, k, v *yaml.Node) error {
			var err error
			switch key {
			case "type":
				it.Type, err = w.str(v, key)
			case "length":
				var length int
				length, err = w.integer(v, key)
				it.Length = &length
			case "image-path":
				it.ImagePath, err = w.str(v, key)
			case "toplevel-app-id":
				var s string
				s, err = w.str(v, key)
				it.AppID = &s
			case "commands":
				err = w.commands(v, &it.Commands)
			default:
				err = w.unknown(k, "item")
			}
			return err
		})
		if err != nil {
			return err
		}
		*out = append(*out, it)
	}
	return nil
}

func (w *yamlWalker) commands(n *yaml.Node, out *[]RawCommand) error {
	if n.Kind != yaml.SequenceNode {
		return w.errorf(n, ErrWrongType, "commands must be a list")
	}
	for _, entry := range n.Content {
		cmd := RawCommand{Line: entry.Line}
		if entry.Kind == yaml.ScalarNode {
			cmd.Run = entry.Value
			*out = append(*out, cmd)
			continue
		}
		err := w.mapping(entry, "command", func(key string, k, v *yaml.Node) error {
			var err error
			switch key {
			case "bind":
				cmd.Bind, err = w.str(v, key)
			case "run":
				cmd.Run, err = w.str(v, key)
			default:
				err = w.unknown(k, "command")
			}
			return err
		})
		if err != nil {
			return err
		}
		*out = append(*out, cmd)
	}
	return nil
}
