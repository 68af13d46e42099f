// Package watcher reports changes to the panel configuration file so the
// engine can reload it.
//
// The parent directory is watched rather than the file itself, because
// editors commonly save by writing a new file and renaming it over the
// old one. Bursts of events for the file are coalesced into one Event.
package watcher

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/lavapanel/internal/logging"
)

// DefaultDebounce is how long the file must stay quiet before an Event
// is sent.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Op is a set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Has reports whether op contains o.
func (op Op) Has(o Op) bool { return op&o != 0 }

// String returns the operations joined by "|".
func (op Op) String() string {
	var parts []string
	for _, n := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "create"},
		{OpWrite, "write"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
	} {
		if op.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Event reports that the configuration file changed.
type Event struct {
	// Path is the absolute path of the configuration file.
	Path string
	// Op holds every operation seen during the debounce window.
	Op Op
	// Timestamp is the time of the last operation.
	Timestamp time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero sends every event at once.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// Watcher watches one configuration file.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	delay   time.Duration
	logger  *logging.Logger

	mu      sync.Mutex
	pending *Event
	timer   *time.Timer
	closed  bool

	events   chan Event
	errors   chan error
	closeCh  chan struct{}
	closedWg sync.WaitGroup

	totalEvents atomic.Int64
}

// New starts watching path. The file need not exist yet, its directory
// must.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		delay:   DefaultDebounce,
		events:  make(chan Event, 16),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrNull(w.logger).WithComponent("config-watcher")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.watcher = fsw

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Events returns the change channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error { return w.errors }

// TotalEvents returns how many events have been sent.
func (w *Watcher) TotalEvents() int64 { return w.totalEvents.Load() }

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	w.closedWg.Wait()

	err := w.watcher.Close()

	// fire may still be running from an expired timer.
	w.mu.Lock()
	close(w.events)
	close(w.errors)
	w.mu.Unlock()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	w.logger.Debug("%s: %s", ev.Name, op)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.pending != nil {
		w.pending.Op |= op
		w.pending.Timestamp = time.Now()
	} else {
		w.pending = &Event{Path: w.path, Op: op, Timestamp: time.Now()}
	}

	if w.delay == 0 {
		w.sendLocked()
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.delay, w.fire)
	} else {
		w.timer.Reset(w.delay)
	}
}

func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.sendLocked()
}

func (w *Watcher) sendLocked() {
	if w.pending == nil {
		return
	}
	select {
	case w.events <- *w.pending:
		w.totalEvents.Add(1)
	default:
		w.logger.Warn("event channel full, dropping change to %s", w.path)
	}
	w.pending = nil
}

// convertOp maps fsnotify operations; chmod alone is not a change.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
