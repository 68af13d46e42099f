// Package key tracks keyboard modifier state for a seat.
//
// Bindings may require any combination of the Alt, CapsLock, Control, Logo,
// NumLock and Shift modifiers. The compositor reports modifier state as
// real xkb modifier masks; a Layout, derived from the keymap the compositor
// sends, translates those masks into the Modifier bitmask that binding
// resolution compares against.
package key
