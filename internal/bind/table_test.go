package bind

import (
	"testing"

	"github.com/dshills/lavapanel/internal/input/key"
)

func mustParse(t *testing.T, bindStr, command string) Binding {
	t.Helper()
	b, _, err := Parse(bindStr, command)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", bindStr, err)
	}
	return b
}

func TestTableAddOverwrites(t *testing.T) {
	tbl := NewTable()
	tbl.Add(mustParse(t, "[shift+scroll-up]", "first"))
	tbl.Add(mustParse(t, "[mouse-left]", "left"))
	tbl.Add(mustParse(t, "[shift+scroll-up]", "@reload second"))

	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	got := tbl.Bindings()
	if got[0].Type != MouseScroll || got[0].Command != "second" || got[0].Action != ActionReload {
		t.Errorf("overwritten binding = %s", got[0])
	}
	if got[1].Command != "left" {
		t.Errorf("second binding moved: %s", got[1])
	}
}

func TestTableResolveExact(t *testing.T) {
	tbl := NewTable()
	tbl.Add(mustParse(t, "[mouse-left]", "plain"))
	tbl.Add(mustParse(t, "[shift+mouse-left]", "shifted"))
	tbl.Add(mustParse(t, "[mouse-right]", "right"))

	tests := []struct {
		name    string
		mods    key.Modifier
		special uint32
		want    string
		ok      bool
	}{
		{"plain", key.ModNone, BtnLeft, "plain", true},
		{"shifted", key.ModShift, BtnLeft, "shifted", true},
		{"right", key.ModNone, BtnRight, "right", true},
		{"modifier mismatch", key.ModControl, BtnLeft, "", false},
		{"extra modifier", key.ModShift | key.ModAlt, BtnLeft, "", false},
		{"unbound button", key.ModNone, BtnMiddle, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := tbl.Resolve(MouseButton, tt.mods, tt.special, true)
			if ok != tt.ok || b.Command != tt.want {
				t.Errorf("Resolve() = %q, %v; want %q, %v", b.Command, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTableResolveUniversalFallback(t *testing.T) {
	tbl := NewTable()
	tbl.Add(mustParse(t, "[mouse-right]", "right"))
	u, _ := ParseUniversal("universal")
	tbl.Add(u)
	u2, _ := ParseUniversal("ignored")
	u2.Modifiers = key.ModShift
	tbl.Add(u2)

	if b, ok := tbl.Resolve(MouseButton, key.ModNone, BtnLeft, true); !ok || b.Command != "universal" {
		t.Errorf("button fallback = %q, %v", b.Command, ok)
	}
	if b, ok := tbl.Resolve(Touch, key.ModAlt, 0, true); !ok || b.Command != "universal" {
		t.Errorf("touch fallback = %q, %v", b.Command, ok)
	}
	if b, ok := tbl.Resolve(MouseButton, key.ModNone, BtnRight, true); !ok || b.Command != "right" {
		t.Errorf("exact match should win over universal, got %q", b.Command)
	}
	if _, ok := tbl.Resolve(MouseButton, key.ModNone, BtnLeft, false); ok {
		t.Error("fallback used with allowUniversal=false")
	}
}

func TestTableResolveScrollNeverUniversal(t *testing.T) {
	tbl := NewTable()
	u, _ := ParseUniversal("universal")
	tbl.Add(u)

	for _, dir := range []uint32{ScrollUp, ScrollDown} {
		if b, ok := tbl.Resolve(MouseScroll, key.ModNone, dir, true); ok {
			t.Errorf("scroll resolved to %s", b)
		}
	}

	tbl.Add(mustParse(t, "[scroll-down]", "down"))
	if b, ok := tbl.Resolve(MouseScroll, key.ModNone, ScrollDown, true); !ok || b.Command != "down" {
		t.Errorf("exact scroll = %q, %v", b.Command, ok)
	}
}

func TestTableResolveDeterministic(t *testing.T) {
	tbl := NewTable()
	tbl.Add(mustParse(t, "[touch]", "a"))
	tbl.Add(mustParse(t, "[control+touch]", "b"))

	first, _ := tbl.Resolve(Touch, key.ModControl, 0, true)
	for i := 0; i < 10; i++ {
		got, _ := tbl.Resolve(Touch, key.ModControl, 0, true)
		if got != first {
			t.Fatalf("Resolve() changed between calls: %s vs %s", got, first)
		}
	}
}

func TestTableNil(t *testing.T) {
	var tbl *Table
	if _, ok := tbl.Resolve(Touch, key.ModNone, 0, true); ok {
		t.Error("nil table resolved a binding")
	}
	if tbl.Len() != 0 || tbl.Bindings() != nil {
		t.Error("nil table should be empty")
	}
}

func TestTableBindingsIsCopy(t *testing.T) {
	tbl := NewTable()
	tbl.Add(mustParse(t, "[touch]", "a"))
	got := tbl.Bindings()
	got[0].Command = "changed"
	if b, _ := tbl.Resolve(Touch, key.ModNone, 0, false); b.Command != "a" {
		t.Errorf("table mutated through Bindings(): %q", b.Command)
	}
}
