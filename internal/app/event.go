package app

import (
	"fmt"

	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/seat"
)

// EventKind identifies what happened on the compositor side.
type EventKind int

const (
	EventSeatAdded EventKind = iota
	EventSeatRemoved
	EventSeatCapabilities
	EventPointer
	EventTouch
	EventKeyboardModifiers
	EventKeymap
	EventOutputAdded
	EventOutputRemoved
	EventToplevelAdded
	EventToplevelRemoved
	EventConfigChanged
)

var eventKindNames = [...]string{
	EventSeatAdded:         "seat.add",
	EventSeatRemoved:       "seat.remove",
	EventSeatCapabilities:  "seat.capabilities",
	EventPointer:           "pointer",
	EventTouch:             "touch",
	EventKeyboardModifiers: "keyboard.modifiers",
	EventKeymap:            "keyboard.keymap",
	EventOutputAdded:       "output.add",
	EventOutputRemoved:     "output.remove",
	EventToplevelAdded:     "toplevel.add",
	EventToplevelRemoved:   "toplevel.remove",
	EventConfigChanged:     "config.changed",
}

// String returns the event kind name.
func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Modifiers is a raw keyboard modifiers update.
type Modifiers struct {
	Serial    uint32
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

// Event is one input to the engine. Only the fields for Kind are used.
type Event struct {
	Kind EventKind

	// Seat names the seat for seat, pointer, touch and keyboard events.
	Seat uint32

	Capabilities seat.Capability
	Pointer      seat.PointerEvent
	Touch        seat.TouchEvent
	Modifiers    Modifiers
	// Keymap is xkb keymap text.
	Keymap string

	// Surface and Output describe a bar for output events.
	Surface item.SurfaceID
	Output  item.Output

	// Toplevel, AppID and Title describe a window for toplevel events.
	Toplevel uint32
	AppID    string
	Title    string
}
