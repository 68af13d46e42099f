package sim

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/lavapanel/internal/app"
	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/config"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/seat"
)

func newTranslator() *Translator {
	return &Translator{
		Seat:       1,
		Surface:    1,
		CellWidth:  8,
		CellHeight: 16,
		Inside:     func(col, row int) bool { return row == 0 && col < 6 },
		Layout:     key.DefaultLayout(),
	}
}

func mouse(col, row int, buttons tcell.ButtonMask, mods tcell.ModMask) *tcell.EventMouse {
	return tcell.NewEventMouse(col, row, buttons, mods)
}

func pointerKinds(evs []app.Event) []string {
	var kinds []string
	for _, ev := range evs {
		switch ev.Kind {
		case app.EventPointer:
			kinds = append(kinds, ev.Pointer.Kind.String())
		case app.EventTouch:
			kinds = append(kinds, "touch."+ev.Touch.Kind.String())
		default:
			kinds = append(kinds, ev.Kind.String())
		}
	}
	return kinds
}

func TestTranslatorClick(t *testing.T) {
	tr := newTranslator()

	evs := tr.Mouse(mouse(1, 0, tcell.ButtonNone, tcell.ModNone))
	if got := strings.Join(pointerKinds(evs), ","); got != "enter,frame" {
		t.Fatalf("move in = %s", got)
	}
	enter := evs[0].Pointer
	if enter.Surface != 1 || enter.X != 12 || enter.Y != 8 {
		t.Errorf("enter = %+v, want surface 1 at (12, 8)", enter)
	}

	evs = tr.Mouse(mouse(1, 0, tcell.Button1, tcell.ModNone))
	if got := strings.Join(pointerKinds(evs), ","); got != "motion,button,frame" {
		t.Fatalf("press = %s", got)
	}
	if p := evs[1].Pointer; p.Button != bind.BtnLeft || !p.Pressed {
		t.Errorf("press = %+v", p)
	}

	evs = tr.Mouse(mouse(1, 0, tcell.ButtonNone, tcell.ModNone))
	if p := evs[1].Pointer; p.Kind != seat.PointerButton || p.Pressed {
		t.Errorf("release = %+v", p)
	}

	evs = tr.Mouse(mouse(1, 3, tcell.ButtonNone, tcell.ModNone))
	if got := strings.Join(pointerKinds(evs), ","); got != "leave,frame" {
		t.Errorf("move out = %s", got)
	}
}

func TestTranslatorWheel(t *testing.T) {
	tr := newTranslator()
	tr.Mouse(mouse(0, 0, tcell.ButtonNone, tcell.ModNone))

	evs := tr.Mouse(mouse(0, 0, tcell.WheelDown, tcell.ModNone))
	if got := strings.Join(pointerKinds(evs), ","); got != "motion,axis-discrete,axis,frame" {
		t.Fatalf("wheel = %s", got)
	}
	if evs[1].Pointer.Steps != 1 || evs[2].Pointer.Value.Int() != WheelValue {
		t.Errorf("wheel down = %+v %+v", evs[1].Pointer, evs[2].Pointer)
	}

	evs = tr.Mouse(mouse(0, 0, tcell.WheelUp, tcell.ModNone))
	if evs[1].Pointer.Steps != -1 {
		t.Errorf("wheel up steps = %d", evs[1].Pointer.Steps)
	}
}

func TestTranslatorModifiers(t *testing.T) {
	tr := newTranslator()

	evs := tr.Mouse(mouse(0, 0, tcell.ButtonNone, tcell.ModCtrl|tcell.ModShift))
	if evs[0].Kind != app.EventKeyboardModifiers {
		t.Fatalf("first event = %s", evs[0].Kind)
	}
	l := key.DefaultLayout()
	if got := evs[0].Modifiers.Depressed; got != l.Control|l.Shift {
		t.Errorf("depressed = %#x", got)
	}

	evs = tr.Mouse(mouse(0, 0, tcell.ButtonNone, tcell.ModCtrl|tcell.ModShift))
	if evs[0].Kind == app.EventKeyboardModifiers {
		t.Error("unchanged modifiers sent again")
	}
}

func TestTranslatorTouch(t *testing.T) {
	tr := newTranslator()
	if evs := tr.SetTouch(true); len(evs) != 0 {
		t.Errorf("SetTouch from idle = %v", pointerKinds(evs))
	}

	if evs := tr.Mouse(mouse(9, 0, tcell.Button1, tcell.ModNone)); len(evs) != 0 {
		t.Errorf("touch outside bar = %v", pointerKinds(evs))
	}
	tr.Mouse(mouse(9, 0, tcell.ButtonNone, tcell.ModNone))

	down := tr.Mouse(mouse(2, 0, tcell.Button1, tcell.ModNone))
	motion := tr.Mouse(mouse(3, 0, tcell.Button1, tcell.ModNone))
	up := tr.Mouse(mouse(3, 0, tcell.ButtonNone, tcell.ModNone))
	got := strings.Join(pointerKinds(append(append(down, motion...), up...)), ",")
	if got != "touch.down,touch.motion,touch.up" {
		t.Fatalf("touch = %s", got)
	}
	if down[0].Touch.ID != up[0].Touch.ID || down[0].Touch.Surface != 1 {
		t.Errorf("down = %+v up = %+v", down[0].Touch, up[0].Touch)
	}

	tr.Mouse(mouse(2, 0, tcell.Button1, tcell.ModNone))
	if got := pointerKinds(tr.SetTouch(false)); len(got) != 1 || got[0] != "touch.cancel" {
		t.Errorf("switching mode = %v, want cancel", got)
	}
}

func TestRequireTTY(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := RequireTTY(f, f); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("RequireTTY(file) = %v", err)
	}
	if err := RequireTTY(nil, f); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("RequireTTY(nil) = %v", err)
	}
}

const simConfig = `bar:
  icon-size: 16
items:
  - type: button
    commands:
      - bind: "[mouse-left]"
        run: foot
  - type: spacer
    length: 16
  - type: button
    commands:
      - bind: "[mouse-left]"
        run: "@exit"
`

type recordRunner struct{ commands []string }

func (r *recordRunner) Run(command string, _ []string) error {
	r.commands = append(r.commands, command)
	return nil
}

func newSimulator(t *testing.T) (*Simulator, *recordRunner) {
	t.Helper()
	cfg, err := config.Parse("panel.yaml", []byte(simConfig))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	r := &recordRunner{}
	s, err := New(screen, app.Options{Config: cfg, Runner: r}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s, r
}

func TestSimulatorClick(t *testing.T) {
	s, r := newSimulator(t)

	if cols, rows := s.extent(); cols != 6 || rows != 1 {
		t.Fatalf("extent = %dx%d, want 6x1", cols, rows)
	}

	s.Handle(mouse(0, 0, tcell.Button1, tcell.ModNone))
	s.Handle(mouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	if len(r.commands) != 1 || r.commands[0] != "foot" {
		t.Fatalf("commands = %v", r.commands)
	}
	if s.Interactions() != 1 || !strings.Contains(s.Status(), "foot") {
		t.Errorf("status = %q after %d interactions", s.Status(), s.Interactions())
	}

	// Spacer cells are on the bar but hold no button.
	s.Handle(mouse(2, 0, tcell.Button1, tcell.ModNone))
	s.Handle(mouse(2, 0, tcell.ButtonNone, tcell.ModNone))
	if s.Interactions() != 1 {
		t.Errorf("spacer click dispatched")
	}

	s.Handle(mouse(4, 0, tcell.Button1, tcell.ModNone))
	if out := s.Handle(mouse(4, 0, tcell.ButtonNone, tcell.ModNone)); out != dispatcher.Exit {
		t.Errorf("exit button = %s", out)
	}
}

func TestSimulatorKeys(t *testing.T) {
	s, _ := newSimulator(t)

	if out := s.Handle(tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone)); out != dispatcher.Continue {
		t.Errorf("t = %s", out)
	}
	if !s.Translator().Touch() {
		t.Error("touch mode not enabled")
	}
	if out := s.Handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)); out != dispatcher.Reload {
		t.Errorf("r = %s", out)
	}
	if out := s.Handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)); out != dispatcher.Exit {
		t.Errorf("q = %s", out)
	}
	if out := s.Handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)); out != dispatcher.Exit {
		t.Errorf("escape = %s", out)
	}
}
