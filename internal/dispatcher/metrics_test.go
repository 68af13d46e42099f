package dispatcher

import (
	"testing"
	"time"

	"github.com/dshills/lavapanel/internal/bind"
)

func TestCommandLabel(t *testing.T) {
	tests := []struct {
		b    bind.Binding
		want string
	}{
		{bind.Binding{Command: "foot"}, "foot"},
		{bind.Binding{Action: bind.ActionExit}, "@exit"},
		{bind.Binding{Action: bind.ActionReload, Command: "notify-send hi"}, "@reload notify-send hi"},
	}
	for _, tt := range tests {
		if got := CommandLabel(tt.b); got != tt.want {
			t.Errorf("CommandLabel(%v) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	foot := bind.Binding{Command: "foot"}
	exit := bind.Binding{Action: bind.ActionExit}

	m.RecordInteraction(bind.MouseButton, true)
	m.RecordInteraction(bind.MouseButton, true)
	m.RecordInteraction(bind.MouseButton, false)
	m.RecordInteraction(bind.MouseScroll, true)
	m.RecordExecution(foot, 2*time.Millisecond, false)
	m.RecordExecution(foot, 5*time.Millisecond, true)
	m.RecordExecution(exit, time.Millisecond, false)
	m.RecordPanic()

	s := m.Snapshot()
	if s.Resolved != 3 || s.Unresolved != 1 || s.Interactions() != 4 {
		t.Errorf("resolved=%d unresolved=%d", s.Resolved, s.Unresolved)
	}
	if c := s.ByType[bind.MouseButton]; c.Resolved != 2 || c.Unresolved != 1 {
		t.Errorf("mouse-button counts = %+v", c)
	}
	if s.Failures != 1 || s.Panics != 1 {
		t.Errorf("failures=%d panics=%d", s.Failures, s.Panics)
	}

	if len(s.Commands) != 2 {
		t.Fatalf("commands = %+v", s.Commands)
	}
	top := s.Top(1)
	if len(top) != 1 || top[0].Label != "foot" || top[0].Runs != 2 || top[0].Failures != 1 {
		t.Errorf("Top(1) = %+v", top)
	}
	if top[0].Slowest != 5*time.Millisecond {
		t.Errorf("slowest = %v", top[0].Slowest)
	}
	if got := s.Top(10); len(got) != 2 || got[1].Label != "@exit" {
		t.Errorf("Top(10) = %+v", got)
	}
}

func TestMetricsSnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.RecordExecution(bind.Binding{Command: "foot"}, 0, false)
	s := m.Snapshot()
	m.RecordExecution(bind.Binding{Command: "foot"}, 0, false)
	if s.Commands[0].Runs != 1 {
		t.Errorf("snapshot changed after recording: %+v", s.Commands[0])
	}
}
