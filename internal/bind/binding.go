package bind

import (
	"fmt"

	"github.com/dshills/lavapanel/internal/input/key"
)

// InteractionType is the kind of user interaction a binding answers to.
type InteractionType uint8

const (
	// MouseButton is a pointer button released over an item.
	MouseButton InteractionType = iota
	// MouseScroll is one logical scroll tick over an item.
	MouseScroll
	// Touch is a touch contact lifted over the item it started on.
	Touch
	// Universal matches button and touch interactions, never scroll.
	Universal
)

// String returns the interaction type name.
func (t InteractionType) String() string {
	switch t {
	case MouseButton:
		return "mouse-button"
	case MouseScroll:
		return "mouse-scroll"
	case Touch:
		return "touch"
	case Universal:
		return "universal"
	default:
		return fmt.Sprintf("interaction(%d)", uint8(t))
	}
}

// Action is a built-in behavior attached to a binding.
type Action uint8

const (
	// ActionNone runs the binding's command.
	ActionNone Action = iota
	// ActionToplevelActivate focuses the item's associated window.
	ActionToplevelActivate
	// ActionToplevelClose closes the item's associated window.
	ActionToplevelClose
	// ActionReload restarts the panel with a fresh configuration.
	ActionReload
	// ActionExit stops the panel.
	ActionExit
)

// String returns the meta-action name, or "none".
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionToplevelActivate:
		return "toplevel-activate"
	case ActionToplevelClose:
		return "toplevel-close"
	case ActionReload:
		return "reload"
	case ActionExit:
		return "exit"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Scroll directions, stored in Key.Special for MouseScroll bindings.
const (
	ScrollDown uint32 = 0
	ScrollUp   uint32 = 1
)

// Linux input event codes for the buttons a pointer can emit.
const (
	BtnMisc    uint32 = 0x100
	Btn1       uint32 = 0x101
	Btn2       uint32 = 0x102
	Btn3       uint32 = 0x103
	Btn4       uint32 = 0x104
	Btn5       uint32 = 0x105
	Btn6       uint32 = 0x106
	Btn7       uint32 = 0x107
	Btn8       uint32 = 0x108
	Btn9       uint32 = 0x109
	BtnMouse   uint32 = 0x110
	BtnLeft    uint32 = 0x110
	BtnRight   uint32 = 0x111
	BtnMiddle  uint32 = 0x112
	BtnSide    uint32 = 0x113
	BtnExtra   uint32 = 0x114
	BtnForward uint32 = 0x115
	BtnBack    uint32 = 0x116
	BtnTask    uint32 = 0x117
)

// Key identifies the trigger of a binding. An item holds at most one
// binding per Key.
type Key struct {
	Type      InteractionType
	Modifiers key.Modifier
	// Special is the button code for MouseButton, the direction for
	// MouseScroll and zero otherwise.
	Special uint32
}

// Binding maps an interaction signature to an action.
type Binding struct {
	Key
	Action Action
	// Command is the shell command to run. For meta-actions it is the
	// fallback; empty means there is none.
	Command string
}

// HasCommand reports whether the binding carries a command to run.
func (b Binding) HasCommand() bool {
	return b.Command != ""
}

// String formats the binding for logs.
func (b Binding) String() string {
	return fmt.Sprintf("type=%s mod=%q spec=%d action=%s cmd=%q",
		b.Type, b.Modifiers.String(), b.Special, b.Action, b.Command)
}

// Requirements records which input channels and protocols a configuration
// needs. Seats only bind devices the configuration can use.
type Requirements struct {
	Keyboard bool
	Pointer  bool
	Touch    bool
	Toplevel bool
}

// Merge adds o's requirements to r.
func (r *Requirements) Merge(o Requirements) {
	r.Keyboard = r.Keyboard || o.Keyboard
	r.Pointer = r.Pointer || o.Pointer
	r.Touch = r.Touch || o.Touch
	r.Toplevel = r.Toplevel || o.Toplevel
}
