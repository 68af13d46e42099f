// Package sim drives the panel engine from a terminal. The bar is drawn
// as a row of cells; mouse clicks, wheel notches and modifier keys held
// during them are fed to one seat as pointer or touch events.
package sim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/dshills/lavapanel/internal/app"
	"github.com/dshills/lavapanel/internal/bar"
	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/logging"
	"github.com/dshills/lavapanel/internal/seat"
)

// Defaults for the simulated display.
const (
	DefaultSeat       = 1
	DefaultSurface    = item.SurfaceID(1)
	DefaultOutputName = "sim-0"
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// ErrNotTerminal is returned when the simulator has no terminal to draw on.
var ErrNotTerminal = errors.New("simulator needs a terminal")

// RequireTTY fails unless both files are terminals.
func RequireTTY(in, out *os.File) error {
	for _, f := range []*os.File{in, out} {
		if f == nil || !term.IsTerminal(int(f.Fd())) {
			return ErrNotTerminal
		}
	}
	return nil
}

// Options configures a Simulator.
type Options struct {
	Seat       uint32
	OutputName string
	CellWidth  float64
	CellHeight float64
	Logger     *logging.Logger
}

func (o *Options) defaults() {
	if o.Seat == 0 {
		o.Seat = DefaultSeat
	}
	if o.OutputName == "" {
		o.OutputName = DefaultOutputName
	}
	if o.CellWidth <= 0 {
		o.CellWidth = DefaultCellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = DefaultCellHeight
	}
}

// Simulator owns a screen and the engine it feeds.
type Simulator struct {
	screen tcell.Screen
	engine *app.Engine
	opts   Options
	logger *logging.Logger

	tr *Translator

	mu     sync.Mutex
	status string
	count  int

	events    chan tcell.Event
	startOnce sync.Once
	closeOnce sync.Once
}

// New creates a simulator on screen. The engine is built from engineOpts
// with an observer that reports interactions on the status line.
func New(screen tcell.Screen, engineOpts app.Options, opts Options) (*Simulator, error) {
	opts.defaults()
	s := &Simulator{
		screen: screen,
		opts:   opts,
		logger: logging.OrNull(opts.Logger).WithComponent("sim"),
		events: make(chan tcell.Event, 64),
		status: "ready",
	}

	next := engineOpts.Observer
	engineOpts.Observer = func(in dispatcher.Interaction, b bind.Binding, resolved bool) {
		s.observe(in, b, resolved)
		if next != nil {
			next(in, b, resolved)
		}
	}
	if engineOpts.Logger == nil {
		engineOpts.Logger = opts.Logger
	}

	e, err := app.New(engineOpts)
	if err != nil {
		return nil, err
	}
	s.engine = e

	s.tr = &Translator{
		Seat:       opts.Seat,
		Surface:    DefaultSurface,
		CellWidth:  opts.CellWidth,
		CellHeight: opts.CellHeight,
		Inside:     s.inside,
		Layout:     key.DefaultLayout(),
	}
	return s, nil
}

// Engine returns the engine the simulator feeds.
func (s *Simulator) Engine() *app.Engine { return s.engine }

// Translator returns the event translator.
func (s *Simulator) Translator() *Translator { return s.tr }

// Status returns the status line text.
func (s *Simulator) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Interactions returns how many interactions were observed.
func (s *Simulator) Interactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Start initializes the screen and announces the simulated output and
// seat to the engine.
func (s *Simulator) Start() error {
	var err error
	s.startOnce.Do(func() {
		if err = s.screen.Init(); err != nil {
			return
		}
		s.screen.EnableMouse()
		s.screen.HideCursor()

		s.feed(
			app.Event{
				Kind:    app.EventOutputAdded,
				Surface: DefaultSurface,
				Output:  item.Output{Name: s.opts.OutputName, Scale: 1},
			},
			app.Event{Kind: app.EventSeatAdded, Seat: s.opts.Seat},
			app.Event{
				Kind:         app.EventSeatCapabilities,
				Seat:         s.opts.Seat,
				Capabilities: seat.CapPointer | seat.CapKeyboard | seat.CapTouch,
			},
		)

		go s.poll()
		s.draw()
	})
	return err
}

func (s *Simulator) poll() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			close(s.events)
			return
		}
		s.events <- ev
	}
}

// Run feeds terminal events to the engine until an interaction returns
// Reload or Exit, the user quits, or ctx is cancelled. It may be called
// again after a Reload.
func (s *Simulator) Run(ctx context.Context) (dispatcher.Outcome, error) {
	if err := s.Start(); err != nil {
		return dispatcher.Exit, fmt.Errorf("starting screen: %w", err)
	}
	s.draw()

	for {
		select {
		case <-ctx.Done():
			return dispatcher.Exit, nil
		case ev, ok := <-s.events:
			if !ok {
				return dispatcher.Exit, nil
			}
			if out := s.Handle(ev); out.Stops() {
				return out, nil
			}
			s.draw()
		}
	}
}

// Handle processes one terminal event.
func (s *Simulator) Handle(ev tcell.Event) dispatcher.Outcome {
	switch e := ev.(type) {
	case *tcell.EventMouse:
		return s.feed(s.tr.Mouse(e)...)
	case *tcell.EventKey:
		return s.key(e)
	case *tcell.EventResize:
		s.screen.Sync()
	}
	return dispatcher.Continue
}

func (s *Simulator) key(e *tcell.EventKey) dispatcher.Outcome {
	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return dispatcher.Exit
	case tcell.KeyRune:
	default:
		return dispatcher.Continue
	}

	switch e.Rune() {
	case 'q':
		return dispatcher.Exit
	case 't':
		on := !s.tr.Touch()
		out := s.feed(s.tr.SetTouch(on)...)
		s.SetStatus(fmt.Sprintf("touch emulation %s", onOff(on)))
		return out
	case 'r':
		return s.feed(app.Event{Kind: app.EventConfigChanged})
	}
	return dispatcher.Continue
}

func (s *Simulator) feed(evs ...app.Event) dispatcher.Outcome {
	for _, ev := range evs {
		if out := s.engine.Handle(ev); out.Stops() {
			return out
		}
	}
	return dispatcher.Continue
}

// Reset releases any pointer or touch state held by the simulated seat.
// Call it before reloading the engine.
func (s *Simulator) Reset() {
	s.feed(s.tr.Reset()...)
}

func (s *Simulator) observe(in dispatcher.Interaction, b bind.Binding, resolved bool) {
	msg := fmt.Sprintf("item %d: %s", in.Item.ID, in.Type)
	if mods := in.Modifiers.String(); mods != "" {
		msg += " +" + mods
	}
	switch {
	case !resolved:
		msg += " (no binding)"
	case b.Action != bind.ActionNone:
		msg += " -> @" + b.Action.String()
	default:
		msg += " -> " + b.Command
	}

	s.mu.Lock()
	s.status = msg
	s.count++
	s.mu.Unlock()
	s.logger.Debug("%s", msg)
}

// SetStatus replaces the status line text.
func (s *Simulator) SetStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

// bar returns the simulated output's bar, if the engine has one.
func (s *Simulator) bar() (*bar.Bar, bool) {
	return s.engine.Bars().Bar(DefaultSurface)
}

// extent returns the bar's size in cells.
func (s *Simulator) extent() (cols, rows int) {
	b, ok := s.bar()
	if !ok {
		return 0, 0
	}
	w, h := b.Size()
	return ceilDiv(float64(w), s.opts.CellWidth), ceilDiv(float64(h), s.opts.CellHeight)
}

func (s *Simulator) inside(col, row int) bool {
	cols, rows := s.extent()
	return col >= 0 && row >= 0 && col < cols && row < rows
}

// Close restores the terminal and releases the engine.
func (s *Simulator) Close() {
	s.closeOnce.Do(func() {
		s.screen.Fini()
		s.engine.Close()
	})
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
