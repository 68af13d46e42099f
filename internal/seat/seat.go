// Package seat owns the per-seat input state and exposes the handlers the
// compositor connection calls for seat, pointer, touch and keyboard events.
//
// Every handler runs synchronously on the caller's goroutine. Handlers
// that can dispatch an interaction return the Outcome so the event loop
// can stop on reload or exit.
package seat

import (
	"sort"

	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/input/pointer"
	"github.com/dshills/lavapanel/internal/input/touch"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/logging"
)

// Seat is one compositor seat and the input channels bound on it.
type Seat struct {
	name uint32
	caps Capability

	keyboardBound bool
	mods          *key.Tracker
	pointer       *pointer.State
	touch         *touch.State
}

// Name returns the compositor global name of the seat.
func (s *Seat) Name() uint32 { return s.name }

// Capabilities returns the last advertised capabilities.
func (s *Seat) Capabilities() Capability { return s.caps }

// Modifiers returns the seat's modifier tracker. It is inert while no
// keyboard is bound.
func (s *Seat) Modifiers() *key.Tracker { return s.mods }

// KeyboardBound reports whether keyboard events are tracked.
func (s *Seat) KeyboardBound() bool { return s.keyboardBound }

// Pointer returns the pointer state, or nil if no pointer is bound.
func (s *Seat) Pointer() *pointer.State { return s.pointer }

// Touch returns the touch state, or nil if no touch device is bound.
func (s *Seat) Touch() *touch.State { return s.touch }

// Config wires a Manager to the rest of the panel.
type Config struct {
	// Needs records which channels the configuration uses. Channels it
	// does not use are never bound.
	Needs    bind.Requirements
	Store    *item.Store
	Surfaces item.SurfaceResolver
	Sink     dispatcher.Interactor
	// Cursor returns the cursor setter for a seat. May be nil.
	Cursor func(seat uint32) pointer.CursorSetter
	Logger *logging.Logger
}

// Manager tracks all seats.
type Manager struct {
	cfg    Config
	logger *logging.Logger
	seats  map[uint32]*Seat
}

// NewManager creates an empty seat manager.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logging.OrNull(cfg.Logger).WithComponent("seat"),
		seats:  make(map[uint32]*Seat),
	}
}

// Add registers a seat advertised by the compositor. Adding a known seat
// returns it unchanged.
func (m *Manager) Add(name uint32) *Seat {
	if s, ok := m.seats[name]; ok {
		return s
	}
	m.logger.Info("adding seat %d", name)
	s := &Seat{name: name, mods: key.NewTracker()}
	s.mods.Disable()
	m.seats[name] = s
	return s
}

// Remove destroys a seat and unwinds everything it contributed to item
// counters. Nothing is dispatched.
func (m *Manager) Remove(name uint32) {
	s, ok := m.seats[name]
	if !ok {
		return
	}
	m.logger.Info("destroying seat %d", name)
	m.releaseKeyboard(s)
	m.releaseTouch(s)
	m.releasePointer(s)
	delete(m.seats, name)
}

// Close removes every seat.
func (m *Manager) Close() {
	for _, s := range m.Seats() {
		m.Remove(s.name)
	}
}

// Seat returns the seat with the given name.
func (m *Manager) Seat(name uint32) (*Seat, bool) {
	s, ok := m.seats[name]
	return s, ok
}

// Seats returns all seats ordered by name.
func (m *Manager) Seats() []*Seat {
	out := make([]*Seat, 0, len(m.seats))
	for _, s := range m.seats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// OnSeatCapabilitiesChanged binds each channel that is both advertised
// and needed, and releases the others.
func (m *Manager) OnSeatCapabilitiesChanged(name uint32, caps Capability) {
	s, ok := m.seats[name]
	if !ok {
		m.logger.Warn("capabilities for unknown seat %d", name)
		return
	}
	m.logger.Info("handling seat capabilities: seat=%d caps=%s", name, caps)
	s.caps = caps

	if caps.Has(CapKeyboard) && m.cfg.Needs.Keyboard {
		m.bindKeyboard(s)
	} else {
		m.releaseKeyboard(s)
	}

	if caps.Has(CapPointer) && m.cfg.Needs.Pointer {
		m.bindPointer(s)
	} else {
		m.releasePointer(s)
	}

	if caps.Has(CapTouch) && m.cfg.Needs.Touch {
		m.bindTouch(s)
	} else {
		m.releaseTouch(s)
	}
}

func (m *Manager) bindKeyboard(s *Seat) {
	if s.keyboardBound {
		return
	}
	m.logger.Debug("binding keyboard: seat=%d", s.name)
	s.keyboardBound = true
	s.mods.SetLayout(key.DefaultLayout())
}

func (m *Manager) releaseKeyboard(s *Seat) {
	s.keyboardBound = false
	s.mods.Disable()
}

func (m *Manager) bindPointer(s *Seat) {
	if s.pointer != nil {
		return
	}
	m.logger.Debug("binding pointer: seat=%d", s.name)
	var cursor pointer.CursorSetter
	if m.cfg.Cursor != nil {
		cursor = m.cfg.Cursor(s.name)
	}
	s.pointer = pointer.New(pointer.Config{
		Seat:      s.name,
		Store:     m.cfg.Store,
		Surfaces:  m.cfg.Surfaces,
		Modifiers: s.mods,
		Sink:      m.cfg.Sink,
		Cursor:    cursor,
		Logger:    m.cfg.Logger,
	})
}

func (m *Manager) releasePointer(s *Seat) {
	if s.pointer == nil {
		return
	}
	s.pointer.Release()
	s.pointer = nil
}

func (m *Manager) bindTouch(s *Seat) {
	if s.touch != nil {
		return
	}
	m.logger.Debug("binding touch: seat=%d", s.name)
	s.touch = touch.New(touch.Config{
		Seat:      s.name,
		Store:     m.cfg.Store,
		Surfaces:  m.cfg.Surfaces,
		Modifiers: s.mods,
		Sink:      m.cfg.Sink,
		Logger:    m.cfg.Logger,
	})
}

func (m *Manager) releaseTouch(s *Seat) {
	if s.touch == nil {
		return
	}
	s.touch.Release()
	s.touch = nil
}

// OnPointerEvent feeds one pointer event to the seat. Events for a seat
// without a bound pointer are dropped.
func (m *Manager) OnPointerEvent(name uint32, ev PointerEvent) dispatcher.Outcome {
	s, ok := m.seats[name]
	if !ok || s.pointer == nil {
		m.logger.Debug("dropping pointer %s for seat %d", ev.Kind, name)
		return dispatcher.Continue
	}
	p := s.pointer

	switch ev.Kind {
	case PointerEnter:
		p.Enter(ev.Serial, ev.Surface, ev.X, ev.Y)
	case PointerLeave:
		p.Leave(ev.Serial)
	case PointerMotion:
		p.Motion(ev.Time, ev.X, ev.Y)
	case PointerButton:
		return p.Button(ev.Serial, ev.Time, ev.Button, ev.Pressed)
	case PointerAxis:
		p.Axis(ev.Time, ev.Axis, ev.Value)
	case PointerAxisDiscrete:
		p.AxisDiscrete(ev.Axis, ev.Steps)
	case PointerFrame:
		return p.Frame()
	}
	return dispatcher.Continue
}

// OnTouchEvent feeds one touch event to the seat. Events for a seat
// without a bound touch device are dropped.
func (m *Manager) OnTouchEvent(name uint32, ev TouchEvent) dispatcher.Outcome {
	s, ok := m.seats[name]
	if !ok || s.touch == nil {
		m.logger.Debug("dropping touch %s for seat %d", ev.Kind, name)
		return dispatcher.Continue
	}
	t := s.touch

	switch ev.Kind {
	case TouchDown:
		t.Down(ev.Serial, ev.Time, ev.Surface, ev.ID, ev.X, ev.Y)
	case TouchMotion:
		t.Motion(ev.Time, ev.ID, ev.X, ev.Y)
	case TouchUp:
		return t.Up(ev.Serial, ev.Time, ev.ID)
	case TouchCancel:
		t.Cancel()
	}
	return dispatcher.Continue
}

// OnKeyboardModifiersChanged replaces the seat's modifier mask.
func (m *Manager) OnKeyboardModifiersChanged(name, serial, depressed, latched, locked, group uint32) {
	s, ok := m.seats[name]
	if !ok || !s.keyboardBound {
		return
	}
	mods := s.mods.Update(depressed, latched, locked, group)
	m.logger.Debug("received modifiers: seat=%d mods=%q", name, mods.String())
}

// OnKeymapLoaded installs the keymap the compositor sent as a file
// descriptor. The descriptor is always consumed. On failure the keyboard
// becomes inert until a later keymap loads.
func (m *Manager) OnKeymapLoaded(name, format uint32, fd int, size uint32) error {
	layout, err := key.LoadKeymap(format, fd, size)
	return m.installKeymap(name, layout, err)
}

// OnKeymapText installs a keymap given as xkb text.
func (m *Manager) OnKeymapText(name uint32, text string) error {
	layout, err := key.ParseKeymap(text)
	return m.installKeymap(name, layout, err)
}

func (m *Manager) installKeymap(name uint32, layout key.Layout, err error) error {
	s, ok := m.seats[name]
	if !ok || !s.keyboardBound {
		return nil
	}
	if err != nil {
		m.logger.Error("failed to load keymap for seat %d: %v", name, err)
		s.mods.Disable()
		return err
	}
	m.logger.Debug("received keymap: seat=%d", name)
	s.mods.SetLayout(layout)
	return nil
}
