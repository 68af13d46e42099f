// Package toplevel models the compositor's list of application windows.
//
// The Registry stands in for the foreign-toplevel protocol when the
// engine is driven from a trace or the terminal simulator. It satisfies
// dispatcher.Toplevels.
package toplevel

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/lavapanel/internal/logging"
)

// ErrEmptyAppID is returned when adding a window without an app id.
var ErrEmptyAppID = errors.New("empty app id")

// Toplevel is one application window.
type Toplevel struct {
	Handle uint32
	AppID  string
	Title  string

	// Activated is set on the most recently activated window only.
	Activated bool
	// Seat is the seat that last activated the window.
	Seat uint32
}

// Registry tracks live windows. Handles start at 1 and are never reused.
type Registry struct {
	mu        sync.RWMutex
	next      uint32
	toplevels map[uint32]*Toplevel
	logger    *logging.Logger
}

// New creates an empty registry.
func New(logger *logging.Logger) *Registry {
	return &Registry{
		toplevels: make(map[uint32]*Toplevel),
		logger:    logging.OrNull(logger).WithComponent("toplevel"),
	}
}

// Add registers a window and returns its handle.
func (r *Registry) Add(appID, title string) (uint32, error) {
	if appID == "" {
		return 0, ErrEmptyAppID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.toplevels[r.next] = &Toplevel{Handle: r.next, AppID: appID, Title: title}
	return r.next, nil
}

// Remove forgets a window. It reports whether the handle was live.
func (r *Registry) Remove(handle uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.toplevels[handle]; !ok {
		return false
	}
	delete(r.toplevels, handle)
	return true
}

// RemoveAppID forgets every window with appID and returns how many.
func (r *Registry) RemoveAppID(appID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for h, tl := range r.toplevels {
		if tl.AppID == appID {
			delete(r.toplevels, h)
			n++
		}
	}
	return n
}

// FindByAppID returns the oldest live window with appID.
func (r *Registry) FindByAppID(appID string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found uint32
	for h, tl := range r.toplevels {
		if tl.AppID == appID && (found == 0 || h < found) {
			found = h
		}
	}
	return found, found != 0
}

// Activate focuses the window for seat. Unknown handles are ignored.
func (r *Registry) Activate(handle, seat uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tl, ok := r.toplevels[handle]
	if !ok {
		r.logger.Warn("activate: no toplevel %d", handle)
		return
	}
	for _, other := range r.toplevels {
		other.Activated = false
	}
	tl.Activated = true
	tl.Seat = seat
	r.logger.Info("activated %s", tl)
}

// Close asks the window to close. The in-process model closes at once.
func (r *Registry) Close(handle uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tl, ok := r.toplevels[handle]
	if !ok {
		r.logger.Warn("close: no toplevel %d", handle)
		return
	}
	delete(r.toplevels, handle)
	r.logger.Info("closed %s", tl)
}

// Get returns a copy of the window with handle.
func (r *Registry) Get(handle uint32) (Toplevel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tl, ok := r.toplevels[handle]
	if !ok {
		return Toplevel{}, false
	}
	return *tl, true
}

// List returns copies of all live windows ordered by handle.
func (r *Registry) List() []Toplevel {
	r.mu.RLock()
	out := make([]Toplevel, 0, len(r.toplevels))
	for _, tl := range r.toplevels {
		out = append(out, *tl)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Len returns the number of live windows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.toplevels)
}

// String formats the window for logs.
func (t *Toplevel) String() string {
	return fmt.Sprintf("%d(%s %q)", t.Handle, t.AppID, t.Title)
}
