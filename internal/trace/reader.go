// Package trace replays recorded compositor events through the engine
// and reports the interactions they produce.
//
// A trace is JSON lines, one event per line. Blank lines and lines
// starting with '#' are skipped:
//
//	{"ev":"output.add","name":"DP-1","scale":2}
//	{"ev":"seat.add","seat":1}
//	{"ev":"seat.capabilities","seat":1,"caps":["pointer","keyboard"]}
//	{"ev":"pointer.enter","seat":1,"surface":"DP-1","x":10,"y":5}
//	{"ev":"pointer.button","seat":1,"button":"mouse-left","pressed":true}
//	{"ev":"pointer.button","seat":1,"button":"mouse-left","pressed":false}
//
// Surfaces may be given by number or by output name.
package trace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/lavapanel/internal/app"
	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/input/pointer"
	"github.com/dshills/lavapanel/internal/input/scroll"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/seat"
)

// Errors returned while reading a trace.
var (
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrMissingField   = errors.New("missing field")
	ErrUnknownSurface = errors.New("unknown surface")
	ErrBadValue       = errors.New("bad value")
)

// LineError reports a trace line that could not be read.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("trace line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// MaxLineSize bounds a single trace line.
const MaxLineSize = 1 << 20

// Reader decodes trace events.
type Reader struct {
	sc   *bufio.Scanner
	line int

	outputs     map[string]item.SurfaceID
	nextSurface item.SurfaceID
}

// NewReader reads a trace from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{
		sc:      sc,
		outputs: make(map[string]item.SurfaceID),
	}
}

// Line returns the number of the last line read.
func (r *Reader) Line() int { return r.line }

// Next returns the next event, or io.EOF at the end of the trace.
func (r *Reader) Next() (app.Event, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, err := r.Parse(text)
		if err != nil {
			return app.Event{}, &LineError{Line: r.line, Err: err}
		}
		return ev, nil
	}
	if err := r.sc.Err(); err != nil {
		return app.Event{}, &LineError{Line: r.line + 1, Err: err}
	}
	return app.Event{}, io.EOF
}

// Feed sends every event to out until the trace ends, a line fails or
// ctx is cancelled. It does not close out.
func (r *Reader) Feed(ctx context.Context, out chan<- app.Event) error {
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Parse decodes one JSON event.
func (r *Reader) Parse(line string) (app.Event, error) {
	if !gjson.Valid(line) {
		return app.Event{}, ErrInvalidJSON
	}
	res := gjson.Parse(line)
	if !res.IsObject() {
		return app.Event{}, fmt.Errorf("%w: not an object", ErrInvalidJSON)
	}

	name := res.Get("ev").String()
	if name == "" {
		return app.Event{}, fmt.Errorf("%w: ev", ErrMissingField)
	}
	ev := app.Event{Seat: uint32(res.Get("seat").Uint())}

	var err error
	switch {
	case strings.HasPrefix(name, "pointer."):
		ev.Kind = app.EventPointer
		ev.Pointer, err = r.pointerEvent(strings.TrimPrefix(name, "pointer."), res)
	case strings.HasPrefix(name, "touch."):
		ev.Kind = app.EventTouch
		ev.Touch, err = r.touchEvent(strings.TrimPrefix(name, "touch."), res)
	default:
		err = r.engineEvent(name, res, &ev)
	}
	if err != nil {
		return app.Event{}, err
	}
	return ev, nil
}

func (r *Reader) engineEvent(name string, res gjson.Result, ev *app.Event) error {
	switch name {
	case "seat.add":
		ev.Kind = app.EventSeatAdded
	case "seat.remove":
		ev.Kind = app.EventSeatRemoved
	case "seat.capabilities":
		ev.Kind = app.EventSeatCapabilities
		caps, err := capabilities(res.Get("caps"))
		if err != nil {
			return err
		}
		ev.Capabilities = caps
	case "keyboard.modifiers":
		ev.Kind = app.EventKeyboardModifiers
		ev.Modifiers = app.Modifiers{
			Serial:    uint32(res.Get("serial").Uint()),
			Depressed: uint32(res.Get("depressed").Uint()),
			Latched:   uint32(res.Get("latched").Uint()),
			Locked:    uint32(res.Get("locked").Uint()),
			Group:     uint32(res.Get("group").Uint()),
		}
	case "keyboard.keymap":
		ev.Kind = app.EventKeymap
		km := res.Get("keymap")
		if !km.Exists() {
			return fmt.Errorf("%w: keymap", ErrMissingField)
		}
		ev.Keymap = km.String()
	case "output.add":
		ev.Kind = app.EventOutputAdded
		name := res.Get("name").String()
		if name == "" {
			return fmt.Errorf("%w: name", ErrMissingField)
		}
		id := item.SurfaceID(res.Get("surface").Uint())
		if id == 0 {
			r.nextSurface++
			id = r.nextSurface
		} else if id > r.nextSurface {
			r.nextSurface = id
		}
		r.outputs[name] = id
		scale := int32(1)
		if s := res.Get("scale"); s.Exists() {
			scale = int32(s.Int())
		}
		ev.Surface = id
		ev.Output = item.Output{Name: name, Scale: scale}
	case "output.remove":
		ev.Kind = app.EventOutputRemoved
		id, err := r.surface(res.Get("surface"))
		if err != nil {
			return err
		}
		ev.Surface = id
	case "toplevel.add":
		ev.Kind = app.EventToplevelAdded
		ev.AppID = res.Get("app_id").String()
		ev.Title = res.Get("title").String()
		if ev.AppID == "" {
			return fmt.Errorf("%w: app_id", ErrMissingField)
		}
	case "toplevel.remove":
		ev.Kind = app.EventToplevelRemoved
		ev.AppID = res.Get("app_id").String()
		ev.Toplevel = uint32(res.Get("handle").Uint())
		if ev.AppID == "" && ev.Toplevel == 0 {
			return fmt.Errorf("%w: app_id or handle", ErrMissingField)
		}
	case "config.changed":
		ev.Kind = app.EventConfigChanged
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return nil
}

func (r *Reader) pointerEvent(kind string, res gjson.Result) (seat.PointerEvent, error) {
	pe := seat.PointerEvent{
		Serial: uint32(res.Get("serial").Uint()),
		Time:   uint32(res.Get("time").Uint()),
		X:      res.Get("x").Float(),
		Y:      res.Get("y").Float(),
	}

	switch kind {
	case "enter":
		pe.Kind = seat.PointerEnter
		id, err := r.surface(res.Get("surface"))
		if err != nil {
			return pe, err
		}
		pe.Surface = id
	case "leave":
		pe.Kind = seat.PointerLeave
	case "motion":
		pe.Kind = seat.PointerMotion
	case "button":
		pe.Kind = seat.PointerButton
		code, err := buttonCode(res.Get("button"))
		if err != nil {
			return pe, err
		}
		pe.Button = code
		pe.Pressed = res.Get("pressed").Bool()
	case "axis":
		pe.Kind = seat.PointerAxis
		axis, err := axisOf(res.Get("axis"))
		if err != nil {
			return pe, err
		}
		pe.Axis = axis
		pe.Value = scroll.FixedFromFloat(res.Get("value").Float())
	case "axis_discrete", "axis-discrete":
		pe.Kind = seat.PointerAxisDiscrete
		axis, err := axisOf(res.Get("axis"))
		if err != nil {
			return pe, err
		}
		pe.Axis = axis
		pe.Steps = int32(res.Get("steps").Int())
	case "frame":
		pe.Kind = seat.PointerFrame
	default:
		return pe, fmt.Errorf("%w: pointer.%s", ErrUnknownEvent, kind)
	}
	return pe, nil
}

func (r *Reader) touchEvent(kind string, res gjson.Result) (seat.TouchEvent, error) {
	te := seat.TouchEvent{
		Serial: uint32(res.Get("serial").Uint()),
		Time:   uint32(res.Get("time").Uint()),
		ID:     int32(res.Get("id").Int()),
		X:      res.Get("x").Float(),
		Y:      res.Get("y").Float(),
	}

	switch kind {
	case "down":
		te.Kind = seat.TouchDown
		id, err := r.surface(res.Get("surface"))
		if err != nil {
			return te, err
		}
		te.Surface = id
	case "up":
		te.Kind = seat.TouchUp
	case "motion":
		te.Kind = seat.TouchMotion
	case "cancel":
		te.Kind = seat.TouchCancel
	default:
		return te, fmt.Errorf("%w: touch.%s", ErrUnknownEvent, kind)
	}
	return te, nil
}

// surface resolves a surface given as a number or an output name.
func (r *Reader) surface(v gjson.Result) (item.SurfaceID, error) {
	switch v.Type {
	case gjson.Number:
		return item.SurfaceID(v.Uint()), nil
	case gjson.String:
		id, ok := r.outputs[v.String()]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownSurface, v.String())
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%w: surface", ErrMissingField)
	}
}

func capabilities(v gjson.Result) (seat.Capability, error) {
	var names []string
	switch {
	case v.IsArray():
		for _, n := range v.Array() {
			names = append(names, n.String())
		}
	case v.Type == gjson.String:
		if s := v.String(); s != "" && s != "none" {
			names = strings.Split(s, "+")
		}
	case v.Type == gjson.Number:
		return seat.Capability(v.Uint()), nil
	case !v.Exists():
		return 0, fmt.Errorf("%w: caps", ErrMissingField)
	}

	var caps seat.Capability
	for _, n := range names {
		switch strings.TrimSpace(n) {
		case "pointer":
			caps |= seat.CapPointer
		case "keyboard":
			caps |= seat.CapKeyboard
		case "touch":
			caps |= seat.CapTouch
		default:
			return 0, fmt.Errorf("%w: capability %q", ErrBadValue, n)
		}
	}
	return caps, nil
}

func buttonCode(v gjson.Result) (uint32, error) {
	switch v.Type {
	case gjson.Number:
		return uint32(v.Uint()), nil
	case gjson.String:
		code, ok := bind.ButtonFromName(v.String())
		if !ok {
			return 0, fmt.Errorf("%w: button %q", ErrBadValue, v.String())
		}
		return code, nil
	default:
		return 0, fmt.Errorf("%w: button", ErrMissingField)
	}
}

func axisOf(v gjson.Result) (uint32, error) {
	switch v.String() {
	case "", "vertical":
		return pointer.AxisVertical, nil
	case "horizontal":
		return pointer.AxisHorizontal, nil
	default:
		if v.Type == gjson.Number {
			return uint32(v.Uint()), nil
		}
		return 0, fmt.Errorf("%w: axis %q", ErrBadValue, v.String())
	}
}
