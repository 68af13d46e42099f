package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/config/loader"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/item"
)

const sampleYAML = `items:
  - type: button
    toplevel-app-id: firefox
    commands:
      - "@toplevel-activate firefox"
      - bind: "[shift+mouse-right]"
        run: "@toplevel-close"
  - type: spacer
    length: 20
  - type: button
    commands:
      - bind: "[scroll-up]"
        run: pamixer -i 5
      - bind: "[scroll-up]"
        run: pamixer -i 10
`

func TestParseYAML(t *testing.T) {
	cfg, err := Parse("panel.yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(cfg.Items) != 3 || cfg.Buttons() != 2 {
		t.Fatalf("items = %d buttons = %d, want 3 and 2", len(cfg.Items), cfg.Buttons())
	}
	for i, it := range cfg.Items {
		if it.ID != item.ID(i) {
			t.Errorf("item %d has ID %d", i, it.ID)
		}
	}

	ff := cfg.Items[0]
	if ff.AppID != "firefox" {
		t.Errorf("AppID = %q", ff.AppID)
	}
	b, ok := ff.Bindings.Resolve(bind.MouseButton, key.ModShift, bind.BtnRight, false)
	if !ok || b.Action != bind.ActionToplevelClose {
		t.Errorf("shift+right = %v, %v", b, ok)
	}
	b, ok = ff.Bindings.Resolve(bind.Touch, 0, 0, true)
	if !ok || b.Action != bind.ActionToplevelActivate || b.Command != "firefox" {
		t.Errorf("universal = %v, %v", b, ok)
	}

	sp := cfg.Items[1]
	if sp.Kind != item.KindSpacer || sp.SpacerLength != 20 {
		t.Errorf("spacer = %+v", sp)
	}

	vol := cfg.Items[2]
	if vol.Bindings.Len() != 1 {
		t.Errorf("duplicate bind not overwritten: %d bindings", vol.Bindings.Len())
	}
	if b, _ := vol.Bindings.Resolve(bind.MouseScroll, 0, bind.ScrollUp, false); b.Command != "pamixer -i 10" {
		t.Errorf("scroll-up command = %q, want the later one", b.Command)
	}

	want := bind.Requirements{Keyboard: true, Pointer: true, Touch: true, Toplevel: true}
	if cfg.Needs != want {
		t.Errorf("Needs = %+v, want %+v", cfg.Needs, want)
	}
	if cfg.Layout.IconSize != 80 || cfg.Layout.Vertical {
		t.Errorf("Layout = %+v, want default", cfg.Layout)
	}
}

func TestParseNeedsOnlyWhatIsUsed(t *testing.T) {
	cfg, err := Parse("panel.yaml", []byte("items:\n  - type: button\n    commands:\n      - bind: \"[mouse-left]\"\n        run: foot\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := bind.Requirements{Pointer: true}
	if cfg.Needs != want {
		t.Errorf("Needs = %+v, want %+v", cfg.Needs, want)
	}
}

func TestParseTOMLLayout(t *testing.T) {
	src := `
[bar]
icon-size = 48
orientation = "vertical"

[[items]]
type = "button"

[[items.commands]]
bind = "[touch]"
run = "@exit"
`
	cfg, err := Parse("panel.toml", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Layout.IconSize != 48 || !cfg.Layout.Vertical {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Needs != (bind.Requirements{Touch: true}) {
		t.Errorf("Needs = %+v", cfg.Needs)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantErr  error
		wantLine int
	}{
		{"no items", "items: []\n", ErrNoItems, 0},
		{"empty file", "", ErrNoItems, 0},
		{"missing type", "items:\n  - image-path: x\n", ErrMissingType, 2},
		{"unknown type", "items:\n  - type: slider\n", item.ErrUnknownKind, 2},
		{"spacer without length", "items:\n  - type: spacer\n", ErrInvalidValue, 2},
		{"spacer zero length", "items:\n  - type: spacer\n    length: 0\n", ErrInvalidValue, 2},
		{"spacer with command", "items:\n  - type: spacer\n    length: 4\n    commands:\n      - foot\n", item.ErrSpacerCommand, 5},
		{"spacer with app id", "items:\n  - type: spacer\n    length: 4\n    toplevel-app-id: x\n", item.ErrNotApplicable, 2},
		{"button with length", "items:\n  - type: button\n    length: 4\n", item.ErrNotApplicable, 2},
		{"bad bind", "items:\n  - type: button\n    commands:\n      - bind: \"[mouse-left+touch]\"\n        run: foot\n", bind.ErrMultipleTypes, 4},
		{"empty run", "items:\n  - type: button\n    commands:\n      - bind: \"[touch]\"\n        run: \"\"\n", ErrInvalidValue, 4},
		{"bad icon size", "bar:\n  icon-size: 0\nitems:\n  - type: button\n", ErrInvalidValue, 2},
		{"bad orientation", "bar:\n  orientation: diagonal\nitems:\n  - type: button\n", ErrInvalidValue, 2},
		{"unknown key", "items:\n  - type: button\n    colour: red\n", loader.ErrUnknownKey, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse("panel.yaml", []byte(tt.src))
			if cfg != nil {
				t.Error("partial configuration returned")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err %T is not *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d (%v)", pe.Line, tt.wantLine, err)
			}
		})
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	if _, err := Parse("panel.ini", []byte("")); !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path || len(cfg.Items) != 3 {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
}

type statFS map[string]bool

func (s statFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (s statFS) ReadFile(path string) ([]byte, error) {
	return nil, fs.ErrNotExist
}

func (s statFS) Stat(path string) (fs.FileInfo, error) {
	if s[path] {
		return nil, nil
	}
	return nil, fs.ErrNotExist
}

func TestResolvePath(t *testing.T) {
	dir := filepath.Join("/home/u/.config", "lavapanel")
	fsys := statFS{filepath.Join(dir, "lavapanel.toml"): true}

	tests := []struct {
		name    string
		flag    string
		env     loader.Env
		want    string
		wantErr bool
	}{
		{"flag wins", "/a.yaml", loader.Env{Config: "/b.yaml"}, "/a.yaml", false},
		{"env next", "", loader.Env{Config: "/b.yaml"}, "/b.yaml", false},
		{"search", "", loader.Env{}, filepath.Join(dir, "lavapanel.toml"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(fsys, tt.flag, tt.env, "/home/u/.config")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("path = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := ResolvePath(statFS{}, "", loader.Env{}, "/nowhere"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("nothing found: %v", err)
	}
	if _, err := ResolvePath(statFS{}, "", loader.Env{}, ""); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("no dir: %v", err)
	}
}
