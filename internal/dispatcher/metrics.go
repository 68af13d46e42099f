package dispatcher

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/lavapanel/internal/bind"
)

// Metrics counts interactions per type and the commands they ran.
type Metrics struct {
	mu sync.Mutex

	types    map[bind.InteractionType]*TypeCounts
	commands map[string]*CommandStats
	failures uint64
	panics   uint64
}

// TypeCounts splits one interaction type into resolved and unresolved.
type TypeCounts struct {
	Resolved   uint64
	Unresolved uint64
}

// CommandStats describes one bound command, keyed by its label.
type CommandStats struct {
	Label    string
	Runs     uint64
	Failures uint64
	Slowest  time.Duration
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{
		types:    make(map[bind.InteractionType]*TypeCounts),
		commands: make(map[string]*CommandStats),
	}
}

// CommandLabel names a binding for statistics: "@action cmd" for
// meta-actions, the command itself otherwise.
func CommandLabel(b bind.Binding) string {
	if b.Action == bind.ActionNone {
		return b.Command
	}
	if b.Command == "" {
		return "@" + b.Action.String()
	}
	return "@" + b.Action.String() + " " + b.Command
}

// RecordInteraction counts an interaction on a button.
func (m *Metrics) RecordInteraction(typ bind.InteractionType, resolved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.types[typ]
	if c == nil {
		c = &TypeCounts{}
		m.types[typ] = c
	}
	if resolved {
		c.Resolved++
	} else {
		c.Unresolved++
	}
}

// RecordExecution counts one executed binding.
func (m *Metrics) RecordExecution(b bind.Binding, took time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	label := CommandLabel(b)
	cs := m.commands[label]
	if cs == nil {
		cs = &CommandStats{Label: label}
		m.commands[label] = cs
	}
	cs.Runs++
	if took > cs.Slowest {
		cs.Slowest = took
	}
	if failed {
		cs.Failures++
		m.failures++
	}
}

// RecordPanic counts a recovered panic.
func (m *Metrics) RecordPanic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics++
}

// MetricsSnapshot is a copy of the counters at one point in time.
// Commands is ordered by run count, busiest first.
type MetricsSnapshot struct {
	Resolved   uint64
	Unresolved uint64
	Failures   uint64
	Panics     uint64
	ByType     map[bind.InteractionType]TypeCounts
	Commands   []CommandStats
}

// Interactions returns the number of button interactions seen.
func (s MetricsSnapshot) Interactions() uint64 {
	return s.Resolved + s.Unresolved
}

// Top returns at most n of the busiest commands.
func (s MetricsSnapshot) Top(n int) []CommandStats {
	if n > len(s.Commands) {
		n = len(s.Commands)
	}
	return s.Commands[:n]
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := MetricsSnapshot{
		Failures: m.failures,
		Panics:   m.panics,
		ByType:   make(map[bind.InteractionType]TypeCounts, len(m.types)),
		Commands: make([]CommandStats, 0, len(m.commands)),
	}
	for typ, c := range m.types {
		s.ByType[typ] = *c
		s.Resolved += c.Resolved
		s.Unresolved += c.Unresolved
	}
	for _, cs := range m.commands {
		s.Commands = append(s.Commands, *cs)
	}
	sort.Slice(s.Commands, func(i, j int) bool {
		if s.Commands[i].Runs != s.Commands[j].Runs {
			return s.Commands[i].Runs > s.Commands[j].Runs
		}
		return s.Commands[i].Label < s.Commands[j].Label
	})
	return s
}
