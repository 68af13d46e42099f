//go:build !unix

package key

import "fmt"

// LoadKeymap is unavailable without mmap support.
func LoadKeymap(format uint32, fd int, size uint32) (Layout, error) {
	return Layout{}, fmt.Errorf("%w: keymap descriptors need a unix platform", ErrKeymapFormat)
}
