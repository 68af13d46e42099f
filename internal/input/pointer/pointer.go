// Package pointer tracks what one seat's pointer is over and turns button
// releases and scroll frames into item interactions.
package pointer

import (
	"fmt"

	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/input/scroll"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/logging"
)

// Cursor is the presentation requested for the pointer.
type Cursor uint8

const (
	// CursorNone means no cursor image is set.
	CursorNone Cursor = iota
	// CursorDefault is the arrow shown over empty bar space and spacers.
	CursorDefault
	// CursorPointer is the hand shown over buttons.
	CursorPointer
)

// String returns the cursor theme name.
func (c Cursor) String() string {
	switch c {
	case CursorNone:
		return "none"
	case CursorDefault:
		return "default"
	case CursorPointer:
		return "pointer"
	default:
		return fmt.Sprintf("cursor(%d)", uint8(c))
	}
}

// CursorSetter applies cursor changes to the compositor.
type CursorSetter interface {
	SetCursor(serial uint32, c Cursor)
}

// Axis identifiers. Only vertical scrolling is handled.
const (
	AxisVertical   uint32 = 0
	AxisHorizontal uint32 = 1
)

// Config wires a pointer State to its collaborators.
type Config struct {
	Seat      uint32
	Store     *item.Store
	Surfaces  item.SurfaceResolver
	Modifiers *key.Tracker
	Sink      dispatcher.Interactor
	// Cursor may be nil.
	Cursor CursorSetter
	Logger *logging.Logger
}

// State is the pointer state of one seat.
//
// It moves between three states: off every bar surface, over a surface
// but no item, and over an item. The hovered item is held by id and
// looked up again before each use.
type State struct {
	seat      uint32
	store     *item.Store
	surfaces  item.SurfaceResolver
	mods      *key.Tracker
	sink      dispatcher.Interactor
	cursorSet CursorSetter
	logger    *logging.Logger

	surface item.Surface
	x, y    int32
	serial  uint32
	hovered item.InstanceID
	clicks  uint32
	cursor  Cursor
	scroll  scroll.Accumulator
}

// New creates the pointer state for a seat.
func New(cfg Config) *State {
	return &State{
		seat:      cfg.Seat,
		store:     cfg.Store,
		surfaces:  cfg.Surfaces,
		mods:      cfg.Modifiers,
		sink:      cfg.Sink,
		cursorSet: cfg.Cursor,
		logger:    logging.OrNull(cfg.Logger).WithComponent("pointer"),
	}
}

// Enter binds the pointer to a surface at surface-local (x, y).
func (s *State) Enter(serial uint32, surface item.SurfaceID, x, y float64) {
	s.serial = serial

	surf, ok := s.surfaces.Surface(surface)
	if !ok {
		s.logger.Error("pointer entered unexpected surface %d", surface)
		return
	}
	s.surface = surf
	s.x, s.y = int32(x), int32(y)
	s.logger.Info("pointer entered surface: x=%d y=%d", s.x, s.y)
	s.update()
}

// Motion moves the pointer within the current surface.
func (s *State) Motion(time uint32, x, y float64) {
	if s.surface == nil {
		return
	}
	s.x, s.y = int32(x), int32(y)
	s.update()
}

// update re-evaluates the item under the pointer and moves the hover and
// press contributions of this seat from the old item to the new one.
func (s *State) update() {
	old := s.hovered
	next, ok := s.surface.InstanceAt(s.x, s.y)
	if !ok {
		next = 0
	}
	s.hovered = next

	if old != 0 {
		if next == old {
			return
		}
		if in, ok := s.store.Instance(old); ok {
			in.Hover.Sub(1)
			in.Press.Sub(s.clicks)
		}
	}

	in, ok := s.store.Instance(next)
	if !ok {
		s.hovered = 0
		s.setCursor(CursorDefault)
		return
	}

	if in.Item.IsButton() {
		s.setCursor(CursorPointer)
	} else {
		s.setCursor(CursorDefault)
	}
	in.Hover.Inc()
	in.Press.Add(s.clicks)
}

// Button handles a button press or release. Releases over an item are
// dispatched as MouseButton interactions with the released button code.
func (s *State) Button(serial, time, button uint32, pressed bool) dispatcher.Outcome {
	if s.surface == nil {
		s.logger.Error("button event on unexpected surface")
		return dispatcher.Continue
	}

	if pressed {
		s.clicks++
		s.logger.Info("button pressed: x=%d y=%d click=%d", s.x, s.y, s.clicks)
		if in := s.hoveredInstance(); in != nil {
			in.Press.Inc()
		}
		return dispatcher.Continue
	}

	if s.clicks > 0 {
		s.clicks--
	}
	s.logger.Info("button released: x=%d y=%d click=%d", s.x, s.y, s.clicks)

	in := s.hoveredInstance()
	if in == nil {
		return dispatcher.Continue
	}
	in.Press.Sub(1)
	return s.interact(in, bind.MouseButton, button)
}

// Axis records a continuous scroll sample.
func (s *State) Axis(time, axis uint32, value scroll.Fixed) {
	if axis != AxisVertical {
		return
	}
	if s.surface == nil {
		s.logger.Error("scrolling on unexpected surface")
		return
	}
	s.scroll.Axis(time, value)
}

// AxisDiscrete records a discrete scroll sample.
func (s *State) AxisDiscrete(axis uint32, steps int32) {
	if axis != AxisVertical {
		return
	}
	if s.surface == nil {
		s.logger.Error("scrolling on unexpected surface")
		return
	}
	s.scroll.Discrete(steps)
}

// Frame commits the scroll samples received since the last frame and
// dispatches one MouseScroll interaction per tick. With nothing hovered
// the samples are kept for a later frame. Dispatch stops at the first
// outcome that ends the event loop.
func (s *State) Frame() dispatcher.Outcome {
	if s.surface == nil {
		return dispatcher.Continue
	}
	in := s.hoveredInstance()
	if in == nil {
		return dispatcher.Continue
	}

	dir, ticks := s.scroll.Commit()
	for i := 0; i < ticks; i++ {
		if out := s.interact(in, bind.MouseScroll, dir); out.Stops() {
			return out
		}
	}
	return dispatcher.Continue
}

// Leave detaches the pointer from its surface.
func (s *State) Leave(serial uint32) {
	s.logger.Info("pointer left surface")
	s.Release()
}

// Release drops every contribution this pointer makes to item counters
// and returns to the no-surface state without dispatching anything.
func (s *State) Release() {
	s.setCursor(CursorNone)
	if in, ok := s.store.Instance(s.hovered); ok {
		in.Hover.Sub(1)
		in.Press.Sub(s.clicks)
	}
	s.surface = nil
	s.x, s.y = 0, 0
	s.hovered = 0
	s.clicks = 0
	s.scroll.Reset()
}

func (s *State) hoveredInstance() *item.Instance {
	in, ok := s.store.Instance(s.hovered)
	if !ok {
		s.hovered = 0
		return nil
	}
	return in
}

func (s *State) interact(in *item.Instance, typ bind.InteractionType, special uint32) dispatcher.Outcome {
	if s.sink == nil {
		return dispatcher.Continue
	}
	return s.sink.Interact(dispatcher.Interaction{
		Seat:      s.seat,
		Item:      in.Item,
		Instance:  in.ID,
		Output:    s.surface.Output(),
		Type:      typ,
		Modifiers: s.mods.Modifiers(),
		Special:   special,
	})
}

func (s *State) setCursor(c Cursor) {
	if c == s.cursor {
		return
	}
	s.cursor = c
	if s.cursorSet != nil {
		s.cursorSet.SetCursor(s.serial, c)
	}
}

// Surface returns the surface the pointer is over.
func (s *State) Surface() (item.SurfaceID, bool) {
	if s.surface == nil {
		return 0, false
	}
	return s.surface.ID(), true
}

// Position returns the last surface-local coordinates.
func (s *State) Position() (x, y int32) {
	return s.x, s.y
}

// Hovered returns the instance under the pointer.
func (s *State) Hovered() (item.InstanceID, bool) {
	if in := s.hoveredInstance(); in != nil {
		return in.ID, true
	}
	return 0, false
}

// Clicks returns the number of buttons currently held.
func (s *State) Clicks() uint32 {
	return s.clicks
}

// Cursor returns the current cursor presentation.
func (s *State) Cursor() Cursor {
	return s.cursor
}

// PendingScroll returns the uncommitted scroll samples.
func (s *State) PendingScroll() (steps uint32, value int64) {
	return s.scroll.Pending()
}
