package key

import "strings"

// Modifier is a bitmask of the keyboard modifiers a binding can require.
type Modifier uint8

const (
	// ModAlt indicates the Alt key.
	ModAlt Modifier = 1 << iota
	// ModCapsLock indicates an active Caps Lock.
	ModCapsLock
	// ModControl indicates the Control key.
	ModControl
	// ModLogo indicates the Logo (Super) key.
	ModLogo
	// ModNumLock indicates an active Num Lock.
	ModNumLock
	// ModShift indicates the Shift key.
	ModShift
)

// ModNone indicates no modifiers.
const ModNone Modifier = 0

// modifierNames is ordered as the bind grammar lists the tokens.
var modifierNames = []struct {
	name string
	mod  Modifier
}{
	{"alt", ModAlt},
	{"capslock", ModCapsLock},
	{"control", ModControl},
	{"logo", ModLogo},
	{"numlock", ModNumLock},
	{"shift", ModShift},
}

// ModifierFromName returns the Modifier for a bind token.
// Names are matched exactly; the bind grammar is case-sensitive.
func ModifierFromName(name string) (Modifier, bool) {
	for _, m := range modifierNames {
		if m.name == name {
			return m.mod, true
		}
	}
	return ModNone, false
}

// Has returns true if m contains all bits of mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod == mod && mod != ModNone
}

// With returns a new Modifier with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with mod removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// String returns the bind-token form, e.g. "control+shift".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}
	parts := make([]string, 0, len(modifierNames))
	for _, n := range modifierNames {
		if m&n.mod != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}
