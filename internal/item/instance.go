package item

import (
	"sort"
	"sync"
)

// SurfaceID identifies a bar surface.
type SurfaceID uint32

// Output describes the display a surface is shown on.
type Output struct {
	Name  string
	Scale int32
}

// InstanceID is a stable handle to an Instance. Holders must look the
// instance up again through Store.Instance before each use.
type InstanceID uint64

// Instance is the projection of an Item onto one bar surface.
type Instance struct {
	ID      InstanceID
	Item    *Item
	Surface SurfaceID

	// Hover counts pointers over the instance, across all seats.
	Hover Counter
	// Press counts held buttons and touches over the instance.
	Press Counter
}

// Hovered reports whether any pointer is over the instance.
func (in *Instance) Hovered() bool { return in.Hover.Active() }

// Pressed reports whether any button or touch is held on the instance.
func (in *Instance) Pressed() bool { return in.Press.Active() }

// Store owns every live Instance.
//
// Store is safe for concurrent use, though the input state machines only
// touch it from the event loop goroutine.
type Store struct {
	mu        sync.RWMutex
	next      InstanceID
	instances map[InstanceID]*Instance
}

// NewStore creates an empty instance store.
func NewStore() *Store {
	return &Store{instances: make(map[InstanceID]*Instance)}
}

// Create adds an instance of it on surface.
func (s *Store) Create(it *Item, surface SurfaceID) *Instance {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	in := &Instance{ID: s.next, Item: it, Surface: surface}
	s.instances[in.ID] = in
	return in
}

// Instance returns the instance for id, or false if it was removed.
func (s *Store) Instance(id InstanceID) (*Instance, bool) {
	if s == nil || id == 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	in, ok := s.instances[id]
	return in, ok
}

// Remove destroys one instance.
func (s *Store) Remove(id InstanceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, id)
}

// RemoveSurface destroys every instance on surface and returns how many
// were removed.
func (s *Store) RemoveSurface(surface SurfaceID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, in := range s.instances {
		if in.Surface == surface {
			delete(s.instances, id)
			n++
		}
	}
	return n
}

// Clear destroys all instances.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = make(map[InstanceID]*Instance)
}

// Len returns the number of live instances.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

// Instances returns the live instances ordered by id.
func (s *Store) Instances() []*Instance {
	s.mu.RLock()
	out := make([]*Instance, 0, len(s.instances))
	for _, in := range s.instances {
		out = append(out, in)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Surface is a bar surface as seen by the input state machines.
type Surface interface {
	ID() SurfaceID
	Output() Output
	// InstanceAt returns the instance under the surface-local point.
	InstanceAt(x, y int32) (InstanceID, bool)
}

// SurfaceResolver maps compositor surfaces to bar surfaces.
type SurfaceResolver interface {
	Surface(id SurfaceID) (Surface, bool)
}
