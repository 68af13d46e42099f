package sim

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/lavapanel/internal/app"
	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/input/pointer"
	"github.com/dshills/lavapanel/internal/input/scroll"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/seat"
)

// WheelValue is the continuous axis value sent with each wheel notch.
const WheelValue = 10

// mouseButtons maps tcell buttons to input event codes.
var mouseButtons = []struct {
	mask tcell.ButtonMask
	code uint32
}{
	{tcell.Button1, bind.BtnLeft},
	{tcell.Button2, bind.BtnMiddle},
	{tcell.Button3, bind.BtnRight},
	{tcell.Button4, bind.BtnSide},
	{tcell.Button5, bind.BtnExtra},
}

// Translator turns terminal mouse events into seat events for one seat
// on one bar surface. Cell (col, row) maps to the pixel at the center of
// the cell.
type Translator struct {
	Seat    uint32
	Surface item.SurfaceID

	// CellWidth and CellHeight are the pixel size of a terminal cell.
	CellWidth  float64
	CellHeight float64

	// Inside reports whether a cell lies on the bar.
	Inside func(col, row int) bool

	// Layout maps terminal modifiers to real modifier bits.
	Layout key.Layout

	touch   bool
	entered bool
	held    tcell.ButtonMask
	mods    uint32
	touchID int32
	touched bool
}

// SetTouch switches between pointer and touch emulation. Any pointer or
// touch state in flight is released first.
func (t *Translator) SetTouch(on bool) []app.Event {
	if on == t.touch {
		return nil
	}
	evs := t.Reset()
	t.touch = on
	return evs
}

// Touch reports whether clicks are sent as touch contacts.
func (t *Translator) Touch() bool { return t.touch }

// Reset leaves the surface and cancels any touch in progress.
func (t *Translator) Reset() []app.Event {
	var evs []app.Event
	if t.entered {
		evs = append(evs, t.pointer(seat.PointerEvent{Kind: seat.PointerLeave}), t.frame())
		t.entered = false
	}
	if t.touched {
		evs = append(evs, t.touchEvent(seat.TouchEvent{Kind: seat.TouchCancel}))
		t.touched = false
	}
	t.held = 0
	return evs
}

// Mouse translates one terminal mouse event.
func (t *Translator) Mouse(ev *tcell.EventMouse) []app.Event {
	col, row := ev.Position()
	x := (float64(col) + 0.5) * t.CellWidth
	y := (float64(row) + 0.5) * t.CellHeight
	inside := t.Inside == nil || t.Inside(col, row)

	var evs []app.Event
	if mods := t.modMask(ev.Modifiers()); mods != t.mods {
		t.mods = mods
		evs = append(evs, app.Event{
			Kind:      app.EventKeyboardModifiers,
			Seat:      t.Seat,
			Modifiers: app.Modifiers{Depressed: mods},
		})
	}

	if t.touch {
		return append(evs, t.touchEvents(ev.Buttons(), inside, x, y)...)
	}
	return append(evs, t.pointerEvents(ev.Buttons(), inside, x, y)...)
}

func (t *Translator) pointerEvents(buttons tcell.ButtonMask, inside bool, x, y float64) []app.Event {
	var evs []app.Event
	switch {
	case inside && !t.entered:
		evs = append(evs, t.pointer(seat.PointerEvent{Kind: seat.PointerEnter, Surface: t.Surface, X: x, Y: y}))
		t.entered = true
	case !inside && t.entered:
		evs = append(evs, t.pointer(seat.PointerEvent{Kind: seat.PointerLeave}), t.frame())
		t.entered = false
		t.held = 0
		return evs
	case inside:
		evs = append(evs, t.pointer(seat.PointerEvent{Kind: seat.PointerMotion, X: x, Y: y}))
	}
	if !t.entered {
		return evs
	}

	for _, b := range mouseButtons {
		was, is := t.held&b.mask != 0, buttons&b.mask != 0
		if was != is {
			evs = append(evs, t.pointer(seat.PointerEvent{Kind: seat.PointerButton, Button: b.code, Pressed: is}))
		}
	}
	t.held = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3 | tcell.Button4 | tcell.Button5)

	switch {
	case buttons&tcell.WheelUp != 0:
		evs = append(evs, t.wheel(-1)...)
	case buttons&tcell.WheelDown != 0:
		evs = append(evs, t.wheel(1)...)
	}
	return append(evs, t.frame())
}

func (t *Translator) wheel(steps int32) []app.Event {
	return []app.Event{
		t.pointer(seat.PointerEvent{Kind: seat.PointerAxisDiscrete, Axis: pointer.AxisVertical, Steps: steps}),
		t.pointer(seat.PointerEvent{Kind: seat.PointerAxis, Axis: pointer.AxisVertical, Value: scroll.FixedFromInt(steps * WheelValue)}),
	}
}

func (t *Translator) touchEvents(buttons tcell.ButtonMask, inside bool, x, y float64) []app.Event {
	down := buttons&tcell.Button1 != 0
	switch {
	case down && !t.touched:
		if !inside {
			return nil
		}
		t.touched = true
		t.touchID++
		return []app.Event{t.touchEvent(seat.TouchEvent{Kind: seat.TouchDown, Surface: t.Surface, X: x, Y: y})}
	case down:
		return []app.Event{t.touchEvent(seat.TouchEvent{Kind: seat.TouchMotion, X: x, Y: y})}
	case t.touched:
		t.touched = false
		return []app.Event{t.touchEvent(seat.TouchEvent{Kind: seat.TouchUp})}
	}
	return nil
}

func (t *Translator) modMask(m tcell.ModMask) uint32 {
	var mask uint32
	if m&tcell.ModShift != 0 {
		mask |= t.Layout.Shift
	}
	if m&tcell.ModCtrl != 0 {
		mask |= t.Layout.Control
	}
	if m&tcell.ModAlt != 0 {
		mask |= t.Layout.Alt
	}
	if m&tcell.ModMeta != 0 {
		mask |= t.Layout.Logo
	}
	return mask
}

func (t *Translator) pointer(pe seat.PointerEvent) app.Event {
	return app.Event{Kind: app.EventPointer, Seat: t.Seat, Pointer: pe}
}

func (t *Translator) frame() app.Event {
	return t.pointer(seat.PointerEvent{Kind: seat.PointerFrame})
}

func (t *Translator) touchEvent(te seat.TouchEvent) app.Event {
	te.ID = t.touchID
	return app.Event{Kind: app.EventTouch, Seat: t.Seat, Touch: te}
}
