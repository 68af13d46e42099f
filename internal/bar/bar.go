// Package bar lays item instances out on a bar surface and answers hit
// tests for the input state machines.
package bar

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/lavapanel/internal/item"
)

// DefaultIconSize is the button size in surface-local units.
const DefaultIconSize = 80

// Sentinel errors.
var (
	ErrNoItems          = errors.New("bar has no items")
	ErrZeroIconSize     = errors.New("icon size must be positive")
	ErrDuplicateSurface = errors.New("surface already has a bar")
)

// Layout controls how items are placed.
type Layout struct {
	// IconSize is the length of a button along the bar and the bar's
	// thickness.
	IconSize uint32
	// Vertical stacks items top to bottom instead of left to right.
	Vertical bool
}

// DefaultLayout returns a horizontal layout with DefaultIconSize.
func DefaultLayout() Layout {
	return Layout{IconSize: DefaultIconSize}
}

// Placement is one instance's span along the bar.
type Placement struct {
	Instance item.InstanceID
	Item     *item.Item
	Offset   uint32
	Length   uint32
}

// Bar is the set of item instances on one output.
type Bar struct {
	id         item.SurfaceID
	output     item.Output
	layout     Layout
	store      *item.Store
	placements []Placement
	length     uint32
}

// New creates an instance of every item on surface id and places them in
// order.
func New(id item.SurfaceID, output item.Output, items []*item.Item, store *item.Store, layout Layout) (*Bar, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if layout.IconSize == 0 {
		return nil, ErrZeroIconSize
	}

	b := &Bar{id: id, output: output, layout: layout, store: store}
	for _, it := range items {
		n := layout.IconSize
		if it.Kind == item.KindSpacer {
			n = it.SpacerLength
		}
		in := store.Create(it, id)
		b.placements = append(b.placements, Placement{
			Instance: in.ID,
			Item:     it,
			Offset:   b.length,
			Length:   n,
		})
		b.length += n
	}
	return b, nil
}

// ID returns the surface id.
func (b *Bar) ID() item.SurfaceID { return b.id }

// Output returns the output the bar is shown on.
func (b *Bar) Output() item.Output { return b.output }

// Size returns the surface width and height.
func (b *Bar) Size() (w, h uint32) {
	if b.layout.Vertical {
		return b.layout.IconSize, b.length
	}
	return b.length, b.layout.IconSize
}

// Placements returns a copy of the item spans.
func (b *Bar) Placements() []Placement {
	return append([]Placement(nil), b.placements...)
}

// InstanceAt returns the instance under the surface-local point.
func (b *Bar) InstanceAt(x, y int32) (item.InstanceID, bool) {
	along, across := x, y
	if b.layout.Vertical {
		along, across = y, x
	}
	if along < 0 || across < 0 || uint32(across) >= b.layout.IconSize || uint32(along) >= b.length {
		return 0, false
	}

	pos := uint32(along)
	i := sort.Search(len(b.placements), func(i int) bool {
		p := b.placements[i]
		return p.Offset+p.Length > pos
	})
	if i == len(b.placements) {
		return 0, false
	}
	return b.placements[i].Instance, true
}

// Destroy removes the bar's instances from the store. Held ids stop
// resolving.
func (b *Bar) Destroy() int {
	return b.store.RemoveSurface(b.id)
}

// String formats the bar for logs.
func (b *Bar) String() string {
	w, h := b.Size()
	return fmt.Sprintf("bar %d on %s (%dx%d, %d items)", b.id, b.output.Name, w, h, len(b.placements))
}

// Set holds the bars of every output and resolves surface ids for the
// seats.
type Set struct {
	mu   sync.RWMutex
	bars map[item.SurfaceID]*Bar
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{bars: make(map[item.SurfaceID]*Bar)}
}

// Add registers b.
func (s *Set) Add(b *Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bars[b.id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateSurface, b.id)
	}
	s.bars[b.id] = b
	return nil
}

// Remove destroys and forgets the bar on surface id.
func (s *Set) Remove(id item.SurfaceID) bool {
	s.mu.Lock()
	b, ok := s.bars[id]
	delete(s.bars, id)
	s.mu.Unlock()

	if ok {
		b.Destroy()
	}
	return ok
}

// Clear destroys every bar.
func (s *Set) Clear() {
	s.mu.Lock()
	bars := s.bars
	s.bars = make(map[item.SurfaceID]*Bar)
	s.mu.Unlock()

	for _, b := range bars {
		b.Destroy()
	}
}

// Bar returns the bar on surface id.
func (s *Set) Bar(id item.SurfaceID) (*Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bars[id]
	return b, ok
}

// ByOutput returns the bar shown on the named output.
func (s *Set) ByOutput(name string) (*Bar, bool) {
	for _, b := range s.Bars() {
		if b.output.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Surface implements item.SurfaceResolver.
func (s *Set) Surface(id item.SurfaceID) (item.Surface, bool) {
	b, ok := s.Bar(id)
	if !ok {
		return nil, false
	}
	return b, true
}

// Bars returns all bars ordered by surface id.
func (s *Set) Bars() []*Bar {
	s.mu.RLock()
	out := make([]*Bar, 0, len(s.bars))
	for _, b := range s.bars {
		out = append(out, b)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Len returns the number of bars.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bars)
}
