//go:build unix

package key

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func openKeymap(t *testing.T, text string) int {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keymap.xkb")
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write keymap: %v", err)
	}
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("open keymap: %v", err)
	}
	return fd
}

func TestLoadKeymap(t *testing.T) {
	fd := openKeymap(t, sampleKeymap)
	l, err := LoadKeymap(KeymapFormatXKBV1, fd, uint32(len(sampleKeymap)))
	if err != nil {
		t.Fatalf("LoadKeymap() error = %v", err)
	}
	if l.Alt != 1<<5 {
		t.Errorf("Alt = %#x, want %#x", l.Alt, 1<<5)
	}
}

func TestLoadKeymapRejectsFormat(t *testing.T) {
	fd := openKeymap(t, sampleKeymap)
	if _, err := LoadKeymap(0, fd, uint32(len(sampleKeymap))); !errors.Is(err, ErrKeymapFormat) {
		t.Errorf("expected ErrKeymapFormat, got %v", err)
	}
}

func TestLoadKeymapRejectsEmpty(t *testing.T) {
	fd := openKeymap(t, sampleKeymap)
	if _, err := LoadKeymap(KeymapFormatXKBV1, fd, 0); !errors.Is(err, ErrInvalidKeymap) {
		t.Errorf("expected ErrInvalidKeymap, got %v", err)
	}
}
