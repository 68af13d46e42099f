// Package app runs the panel's input engine: it owns the seats, bars,
// item instances and dispatcher, and feeds compositor events through them
// on a single goroutine.
package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dshills/lavapanel/internal/bar"
	"github.com/dshills/lavapanel/internal/config"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/input/pointer"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/logging"
	"github.com/dshills/lavapanel/internal/seat"
	"github.com/dshills/lavapanel/internal/toplevel"
)

// Options configures an Engine.
type Options struct {
	// Config is the loaded panel configuration. Required.
	Config *config.Config

	// Runner launches item commands.
	Runner dispatcher.Runner

	// Toplevels is the compositor's window list. If nil the engine keeps
	// its own registry, fed by toplevel events.
	Toplevels dispatcher.Toplevels

	// Cursor returns the cursor setter for a seat. May be nil.
	Cursor func(seat uint32) pointer.CursorSetter

	// Observer is called for every resolved or unresolved interaction.
	Observer dispatcher.Observer

	// Logger receives engine messages. Nil discards them.
	Logger *logging.Logger

	// EnableMetrics enables event and dispatch statistics.
	EnableMetrics bool
}

// Engine is the panel's input engine. Handle and Run must be called from
// one goroutine.
type Engine struct {
	opts Options
	cfg  *config.Config

	store      *item.Store
	bars       *bar.Set
	seats      *seat.Manager
	dispatcher *dispatcher.Dispatcher
	registry   *toplevel.Registry

	keymaps map[uint32]string

	logger  *logging.Logger
	metrics *Metrics

	running atomic.Bool
	closed  atomic.Bool
}

// New creates an engine for opts.Config.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, &InitError{Component: "config", Err: ErrNoConfig}
	}

	e := &Engine{
		opts:    opts,
		cfg:     opts.Config,
		store:   item.NewStore(),
		bars:    bar.NewSet(),
		keymaps: make(map[uint32]string),
		logger:  logging.OrNull(opts.Logger).WithComponent("engine"),
	}
	if opts.EnableMetrics {
		e.metrics = NewMetrics()
	}

	tl := opts.Toplevels
	if tl == nil {
		e.registry = toplevel.New(opts.Logger)
		tl = e.registry
	}

	dcfg := dispatcher.DefaultConfig().
		WithLogger(opts.Logger).
		WithObserver(opts.Observer)
	if opts.EnableMetrics {
		dcfg = dcfg.WithMetrics()
	}
	e.dispatcher = dispatcher.New(opts.Runner, tl, dcfg)
	e.seats = e.newSeatManager()

	e.logger.Info("loaded %d items from %s", len(e.cfg.Items), e.cfg.Path)
	return e, nil
}

func (e *Engine) newSeatManager() *seat.Manager {
	return seat.NewManager(seat.Config{
		Needs:    e.cfg.Needs,
		Store:    e.store,
		Surfaces: e.bars,
		Sink:     e.dispatcher,
		Cursor:   e.opts.Cursor,
		Logger:   e.opts.Logger,
	})
}

// Handle processes one event and returns what the caller should do next.
func (e *Engine) Handle(ev Event) dispatcher.Outcome {
	if e.closed.Load() {
		return dispatcher.Exit
	}

	start := time.Now()
	outcome := e.handle(ev)
	if e.metrics != nil {
		e.metrics.RecordEvent(ev.Kind, time.Since(start))
		if outcome == dispatcher.Reload {
			e.metrics.RecordReload()
		}
	}
	return outcome
}

func (e *Engine) handle(ev Event) dispatcher.Outcome {
	switch ev.Kind {
	case EventSeatAdded:
		e.seats.Add(ev.Seat)
	case EventSeatRemoved:
		e.seats.Remove(ev.Seat)
		delete(e.keymaps, ev.Seat)
	case EventSeatCapabilities:
		e.seats.OnSeatCapabilitiesChanged(ev.Seat, ev.Capabilities)
		e.restoreKeymap(ev.Seat)
	case EventPointer:
		return e.seats.OnPointerEvent(ev.Seat, ev.Pointer)
	case EventTouch:
		return e.seats.OnTouchEvent(ev.Seat, ev.Touch)
	case EventKeyboardModifiers:
		m := ev.Modifiers
		e.seats.OnKeyboardModifiersChanged(ev.Seat, m.Serial, m.Depressed, m.Latched, m.Locked, m.Group)
	case EventKeymap:
		if err := e.seats.OnKeymapText(ev.Seat, ev.Keymap); err == nil {
			e.keymaps[ev.Seat] = ev.Keymap
		}
	case EventOutputAdded:
		e.addOutput(ev.Surface, ev.Output)
	case EventOutputRemoved:
		if e.bars.Remove(ev.Surface) {
			e.logger.Info("removed bar %d", ev.Surface)
		}
	case EventToplevelAdded:
		e.addToplevel(ev)
	case EventToplevelRemoved:
		e.removeToplevel(ev)
	case EventConfigChanged:
		e.logger.Info("configuration changed, reloading")
		return dispatcher.Reload
	default:
		e.logger.Warn("ignoring unknown event %s", ev.Kind)
	}
	return dispatcher.Continue
}

// restoreKeymap reapplies the last keymap a seat sent. Binding a keyboard
// resets its layout to the default. A keymap that no longer applies is
// forgotten.
func (e *Engine) restoreKeymap(name uint32) {
	text, ok := e.keymaps[name]
	if !ok {
		return
	}
	s, ok := e.seats.Seat(name)
	if !ok || !s.KeyboardBound() {
		return
	}
	if err := e.seats.OnKeymapText(name, text); err != nil {
		e.logger.Warn("could not restore keymap for seat %d: %v", name, err)
		delete(e.keymaps, name)
	}
}

func (e *Engine) addOutput(surface item.SurfaceID, out item.Output) {
	b, err := bar.New(surface, out, e.cfg.Items, e.store, e.cfg.Layout)
	if err != nil {
		e.logger.Error("creating bar for %s: %v", out.Name, err)
		return
	}
	if err := e.bars.Add(b); err != nil {
		b.Destroy()
		e.logger.Error("adding bar for %s: %v", out.Name, err)
		return
	}
	e.logger.Info("created %s", b)
}

func (e *Engine) addToplevel(ev Event) {
	if e.registry == nil {
		return
	}
	if _, err := e.registry.Add(ev.AppID, ev.Title); err != nil {
		e.logger.Warn("ignoring toplevel: %v", err)
	}
}

func (e *Engine) removeToplevel(ev Event) {
	if e.registry == nil {
		return
	}
	if ev.Toplevel != 0 {
		e.registry.Remove(ev.Toplevel)
		return
	}
	e.registry.RemoveAppID(ev.AppID)
}

// Run handles events until one ends the loop, the channel closes or ctx
// is cancelled. A closed channel or cancelled context yields Exit.
func (e *Engine) Run(ctx context.Context, events <-chan Event) (dispatcher.Outcome, error) {
	if !e.running.CompareAndSwap(false, true) {
		return dispatcher.Exit, ErrAlreadyRunning
	}
	defer e.running.Store(false)

	if e.closed.Load() {
		return dispatcher.Exit, ErrClosed
	}

	for {
		select {
		case <-ctx.Done():
			return dispatcher.Exit, nil
		case ev, ok := <-events:
			if !ok {
				return dispatcher.Exit, nil
			}
			if outcome := e.Handle(ev); outcome.Stops() {
				e.logger.Info("event loop stopping: %s", outcome)
				return outcome, nil
			}
		}
	}
}

// Reload swaps in a new configuration. Bars are rebuilt for every known
// output and seats rebind against the new requirements. Held counters
// are unwound first; nothing is dispatched.
func (e *Engine) Reload(cfg *config.Config) error {
	if cfg == nil {
		return ErrNoConfig
	}
	if e.closed.Load() {
		return ErrClosed
	}

	type seatState struct {
		name uint32
		caps seat.Capability
	}
	var seats []seatState
	for _, s := range e.seats.Seats() {
		seats = append(seats, seatState{s.Name(), s.Capabilities()})
	}
	type outputState struct {
		surface item.SurfaceID
		output  item.Output
	}
	var outputs []outputState
	for _, b := range e.bars.Bars() {
		outputs = append(outputs, outputState{b.ID(), b.Output()})
	}

	e.seats.Close()
	e.bars.Clear()
	e.store.Clear()

	e.cfg = cfg
	e.seats = e.newSeatManager()

	for _, o := range outputs {
		e.addOutput(o.surface, o.output)
	}
	for _, s := range seats {
		e.seats.Add(s.name)
		e.seats.OnSeatCapabilitiesChanged(s.name, s.caps)
		e.restoreKeymap(s.name)
	}

	e.logger.Info("reloaded %d items from %s", len(cfg.Items), cfg.Path)
	return nil
}

// Close releases every seat and bar. Handle returns Exit afterwards.
func (e *Engine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.seats.Close()
	e.bars.Clear()
	e.store.Clear()
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Store returns the item instance store.
func (e *Engine) Store() *item.Store { return e.store }

// Bars returns the bar set.
func (e *Engine) Bars() *bar.Set { return e.bars }

// Seats returns the seat manager.
func (e *Engine) Seats() *seat.Manager { return e.seats }

// Dispatcher returns the dispatcher.
func (e *Engine) Dispatcher() *dispatcher.Dispatcher { return e.dispatcher }

// Toplevels returns the engine's own window registry, or nil when an
// external one was supplied.
func (e *Engine) Toplevels() *toplevel.Registry { return e.registry }

// Metrics returns the engine metrics, or nil if disabled.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// IsRunning reports whether Run is active.
func (e *Engine) IsRunning() bool { return e.running.Load() }
