//go:build unix

package key

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LoadKeymap maps the keymap file descriptor sent by the compositor and
// parses it. The descriptor is always closed.
func LoadKeymap(format uint32, fd int, size uint32) (Layout, error) {
	defer unix.Close(fd)

	if format != KeymapFormatXKBV1 {
		return Layout{}, fmt.Errorf("%w: %d", ErrKeymapFormat, format)
	}
	if size == 0 {
		return Layout{}, fmt.Errorf("%w: empty keymap", ErrInvalidKeymap)
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return Layout{}, fmt.Errorf("mmap keymap: %w", err)
	}
	defer func() { _ = unix.Munmap(data) }()

	return ParseKeymap(string(data))
}
