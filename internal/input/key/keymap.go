package key

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// KeymapFormatXKBV1 is the compositor's keymap format code for xkb text.
const KeymapFormatXKBV1 = 1

// Keymap errors.
var (
	ErrKeymapFormat  = errors.New("unsupported keymap format")
	ErrInvalidKeymap = errors.New("invalid xkb keymap")
)

// Layout maps each bindable modifier to the real xkb modifier bits that
// activate it. Compositors report modifier state as real-modifier masks.
type Layout struct {
	Alt      uint32
	CapsLock uint32
	Control  uint32
	Logo     uint32
	NumLock  uint32
	Shift    uint32
}

// Real modifier indices are fixed by the xkb protocol.
var realModifiers = map[string]uint{
	"Shift":   0,
	"Lock":    1,
	"Control": 2,
	"Mod1":    3,
	"Mod2":    4,
	"Mod3":    5,
	"Mod4":    6,
	"Mod5":    7,
}

// DefaultLayout returns the layout of the stock evdev/pc keymap.
func DefaultLayout() Layout {
	return Layout{
		Shift:    1 << 0,
		CapsLock: 1 << 1,
		Control:  1 << 2,
		Alt:      1 << 3,
		NumLock:  1 << 4,
		Logo:     1 << 6,
	}
}

// Translate converts a real-modifier mask to a Modifier.
func (l Layout) Translate(mask uint32) Modifier {
	var m Modifier
	check := func(bits uint32, mod Modifier) {
		if bits != 0 && mask&bits != 0 {
			m |= mod
		}
	}
	check(l.Alt, ModAlt)
	check(l.CapsLock, ModCapsLock)
	check(l.Control, ModControl)
	check(l.Logo, ModLogo)
	check(l.NumLock, ModNumLock)
	check(l.Shift, ModShift)
	return m
}

var (
	keyBlockRe  = regexp.MustCompile(`key\s+<([^>]+)>\s*\{([^}]*)\}`)
	firstSymRe  = regexp.MustCompile(`\[\s*([A-Za-z_][A-Za-z0-9_]*)`)
	modifierMap = regexp.MustCompile(`modifier_map\s+(\w+)\s*\{([^}]*)\}`)
)

// ParseKeymap derives a Layout from xkb_v1 keymap text.
//
// Shift, Lock and Control are fixed real modifiers. Alt, Logo and NumLock
// are virtual and located through the modifier_map entries of the
// xkb_symbols section; a modifier the keymap does not map keeps its
// default bit.
func ParseKeymap(text string) (Layout, error) {
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	if !strings.Contains(text, "xkb_keymap") {
		return Layout{}, fmt.Errorf("%w: missing xkb_keymap block", ErrInvalidKeymap)
	}

	symbols := make(map[string]string)
	for _, m := range keyBlockRe.FindAllStringSubmatch(text, -1) {
		if sym := firstSymRe.FindStringSubmatch(m[2]); sym != nil {
			symbols[m[1]] = sym[1]
		}
	}

	layout := DefaultLayout()
	var alt, logo, num uint32
	for _, m := range modifierMap.FindAllStringSubmatch(text, -1) {
		idx, ok := realModifiers[m[1]]
		if !ok {
			return Layout{}, fmt.Errorf("%w: unknown real modifier %q", ErrInvalidKeymap, m[1])
		}
		bit := uint32(1) << idx
		for _, entry := range strings.Split(m[2], ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			sym := entry
			if strings.HasPrefix(entry, "<") && strings.HasSuffix(entry, ">") {
				sym = symbols[entry[1:len(entry)-1]]
			}
			switch sym {
			case "Alt_L", "Alt_R":
				alt |= bit
			case "Super_L", "Super_R":
				logo |= bit
			case "Num_Lock":
				num |= bit
			}
		}
	}

	if alt != 0 {
		layout.Alt = alt
	}
	if logo != 0 {
		layout.Logo = logo
	}
	if num != 0 {
		layout.NumLock = num
	}
	return layout, nil
}
