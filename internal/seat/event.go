package seat

import (
	"fmt"
	"strings"

	"github.com/dshills/lavapanel/internal/input/scroll"
	"github.com/dshills/lavapanel/internal/item"
)

// Capability is the compositor's seat capability bitmask.
type Capability uint32

const (
	CapPointer  Capability = 1 << 0
	CapKeyboard Capability = 1 << 1
	CapTouch    Capability = 1 << 2
)

// Has reports whether all of o is set in c.
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

// String lists the capabilities, e.g. "pointer+touch".
func (c Capability) String() string {
	var parts []string
	if c.Has(CapPointer) {
		parts = append(parts, "pointer")
	}
	if c.Has(CapKeyboard) {
		parts = append(parts, "keyboard")
	}
	if c.Has(CapTouch) {
		parts = append(parts, "touch")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// PointerEventKind identifies a pointer event.
type PointerEventKind uint8

const (
	PointerEnter PointerEventKind = iota
	PointerLeave
	PointerMotion
	PointerButton
	PointerAxis
	PointerAxisDiscrete
	PointerFrame
)

var pointerKindNames = [...]string{
	PointerEnter:        "enter",
	PointerLeave:        "leave",
	PointerMotion:       "motion",
	PointerButton:       "button",
	PointerAxis:         "axis",
	PointerAxisDiscrete: "axis-discrete",
	PointerFrame:        "frame",
}

// String returns the event name.
func (k PointerEventKind) String() string {
	if int(k) < len(pointerKindNames) {
		return pointerKindNames[k]
	}
	return fmt.Sprintf("pointer(%d)", uint8(k))
}

// PointerEvent is one wl_pointer event. Fields not used by Kind are zero.
type PointerEvent struct {
	Kind    PointerEventKind
	Serial  uint32
	Time    uint32
	Surface item.SurfaceID
	X, Y    float64

	Button  uint32
	Pressed bool

	Axis  uint32
	Value scroll.Fixed
	Steps int32
}

// TouchEventKind identifies a touch event.
type TouchEventKind uint8

const (
	TouchDown TouchEventKind = iota
	TouchUp
	TouchMotion
	TouchCancel
)

var touchKindNames = [...]string{
	TouchDown:   "down",
	TouchUp:     "up",
	TouchMotion: "motion",
	TouchCancel: "cancel",
}

// String returns the event name.
func (k TouchEventKind) String() string {
	if int(k) < len(touchKindNames) {
		return touchKindNames[k]
	}
	return fmt.Sprintf("touch(%d)", uint8(k))
}

// TouchEvent is one wl_touch event. Fields not used by Kind are zero.
type TouchEvent struct {
	Kind    TouchEventKind
	Serial  uint32
	Time    uint32
	Surface item.SurfaceID
	ID      int32
	X, Y    float64
}
