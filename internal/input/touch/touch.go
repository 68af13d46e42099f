// Package touch tracks one seat's active touch contacts.
//
// A contact only interacts with an item if it goes down and comes up on
// the same item. Moving off the item aborts the contact.
package touch

import (
	"sort"

	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/logging"
)

// Touchpoint is an active contact bound to the instance it went down on.
type Touchpoint struct {
	ID       int32
	Surface  item.Surface
	Instance item.InstanceID
}

// Config wires a touch State to its collaborators.
type Config struct {
	Seat      uint32
	Store     *item.Store
	Surfaces  item.SurfaceResolver
	Modifiers *key.Tracker
	Sink      dispatcher.Interactor
	Logger    *logging.Logger
}

// State is the touch state of one seat.
type State struct {
	seat     uint32
	store    *item.Store
	surfaces item.SurfaceResolver
	mods     *key.Tracker
	sink     dispatcher.Interactor
	logger   *logging.Logger

	points map[int32]*Touchpoint
}

// New creates the touch state for a seat.
func New(cfg Config) *State {
	return &State{
		seat:     cfg.Seat,
		store:    cfg.Store,
		surfaces: cfg.Surfaces,
		mods:     cfg.Modifiers,
		sink:     cfg.Sink,
		logger:   logging.OrNull(cfg.Logger).WithComponent("touch"),
		points:   make(map[int32]*Touchpoint),
	}
}

// Down starts a contact. Contacts that do not land on an item are ignored.
func (s *State) Down(serial, time uint32, surface item.SurfaceID, id int32, x, y float64) {
	ix, iy := int32(x), int32(y)
	s.logger.Info("touch down: x=%d y=%d", ix, iy)

	surf, ok := s.surfaces.Surface(surface)
	if !ok {
		s.logger.Error("touch down on unexpected surface %d", surface)
		return
	}
	instID, ok := surf.InstanceAt(ix, iy)
	if !ok {
		return
	}
	in, ok := s.store.Instance(instID)
	if !ok {
		return
	}

	// Ids are unique while active; a reused id replaces a lost contact.
	if old, ok := s.points[id]; ok {
		s.destroy(old)
	}

	in.Press.Inc()
	s.points[id] = &Touchpoint{ID: id, Surface: surf, Instance: instID}
}

// Motion moves a contact. A contact that leaves its item is destroyed
// without interacting.
func (s *State) Motion(time uint32, id int32, x, y float64) {
	tp, ok := s.points[id]
	if !ok {
		return
	}
	s.logger.Debug("touch move")

	at, ok := tp.Surface.InstanceAt(int32(x), int32(y))
	if !ok || at != tp.Instance {
		s.destroy(tp)
	}
}

// Up ends a contact and dispatches a Touch interaction to its item.
func (s *State) Up(serial, time uint32, id int32) dispatcher.Outcome {
	tp, ok := s.points[id]
	if !ok {
		return dispatcher.Continue
	}
	s.logger.Info("touch up")

	out := dispatcher.Continue
	if in, ok := s.store.Instance(tp.Instance); ok && s.sink != nil {
		out = s.sink.Interact(dispatcher.Interaction{
			Seat:      s.seat,
			Item:      in.Item,
			Instance:  in.ID,
			Output:    tp.Surface.Output(),
			Type:      bind.Touch,
			Modifiers: s.mods.Modifiers(),
			Special:   0,
		})
	}
	s.destroy(tp)
	return out
}

// Cancel destroys every contact without dispatching anything. The
// compositor sends it when it takes the touch sequence over.
func (s *State) Cancel() {
	for _, tp := range s.points {
		s.destroy(tp)
	}
}

// Release is Cancel for a touch device that is going away.
func (s *State) Release() {
	s.Cancel()
}

func (s *State) destroy(tp *Touchpoint) {
	if in, ok := s.store.Instance(tp.Instance); ok {
		in.Press.Sub(1)
	}
	delete(s.points, tp.ID)
}

// Active returns the ids of the live contacts in ascending order.
func (s *State) Active() []int32 {
	ids := make([]int32, 0, len(s.points))
	for id := range s.points {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Touchpoint returns the contact with the given id.
func (s *State) Touchpoint(id int32) (Touchpoint, bool) {
	tp, ok := s.points[id]
	if !ok {
		return Touchpoint{}, false
	}
	return *tp, true
}
