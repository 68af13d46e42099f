package bar

import (
	"errors"
	"testing"

	"github.com/dshills/lavapanel/internal/item"
)

func testItems(t *testing.T) []*item.Item {
	t.Helper()
	sp, err := item.NewSpacer(1, 20)
	if err != nil {
		t.Fatalf("NewSpacer: %v", err)
	}
	return []*item.Item{item.NewButton(0), sp, item.NewButton(2)}
}

func TestBarLayout(t *testing.T) {
	store := item.NewStore()
	b, err := New(7, item.Output{Name: "DP-1", Scale: 2}, testItems(t), store, Layout{IconSize: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if store.Len() != 3 {
		t.Errorf("store has %d instances, want 3", store.Len())
	}
	if w, h := b.Size(); w != 40 || h != 10 {
		t.Errorf("Size = %dx%d, want 40x10", w, h)
	}

	ps := b.Placements()
	wantOffsets := []uint32{0, 10, 30}
	for i, p := range ps {
		if p.Offset != wantOffsets[i] {
			t.Errorf("placement %d offset = %d, want %d", i, p.Offset, wantOffsets[i])
		}
	}

	tests := []struct {
		name   string
		x, y   int32
		want   item.InstanceID
		wantOK bool
	}{
		{"first button", 0, 0, ps[0].Instance, true},
		{"first button edge", 9, 9, ps[0].Instance, true},
		{"spacer", 10, 5, ps[1].Instance, true},
		{"spacer end", 29, 5, ps[1].Instance, true},
		{"last button", 39, 0, ps[2].Instance, true},
		{"past end", 40, 0, 0, false},
		{"below bar", 5, 10, 0, false},
		{"negative", -1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.InstanceAt(tt.x, tt.y)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("InstanceAt(%d,%d) = %d, %v; want %d, %v", tt.x, tt.y, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBarVertical(t *testing.T) {
	store := item.NewStore()
	b, err := New(1, item.Output{Name: "eDP-1"}, testItems(t), store, Layout{IconSize: 10, Vertical: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w, h := b.Size(); w != 10 || h != 40 {
		t.Errorf("Size = %dx%d, want 10x40", w, h)
	}
	ps := b.Placements()
	if got, _ := b.InstanceAt(5, 35); got != ps[2].Instance {
		t.Errorf("InstanceAt(5,35) = %d, want %d", got, ps[2].Instance)
	}
	if _, ok := b.InstanceAt(35, 5); ok {
		t.Error("hit outside vertical bar")
	}
}

func TestBarErrors(t *testing.T) {
	store := item.NewStore()
	if _, err := New(1, item.Output{}, nil, store, DefaultLayout()); !errors.Is(err, ErrNoItems) {
		t.Errorf("no items: %v", err)
	}
	if _, err := New(1, item.Output{}, testItems(t), store, Layout{}); !errors.Is(err, ErrZeroIconSize) {
		t.Errorf("zero icon size: %v", err)
	}
}

func TestSet(t *testing.T) {
	store := item.NewStore()
	items := testItems(t)
	a, _ := New(1, item.Output{Name: "DP-1"}, items, store, DefaultLayout())
	b, _ := New(2, item.Output{Name: "DP-2"}, items, store, DefaultLayout())

	s := NewSet()
	if err := s.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(a); !errors.Is(err, ErrDuplicateSurface) {
		t.Errorf("duplicate Add = %v", err)
	}

	surf, ok := s.Surface(2)
	if !ok || surf.Output().Name != "DP-2" {
		t.Errorf("Surface(2) = %v, %v", surf, ok)
	}
	if _, ok := s.Surface(3); ok {
		t.Error("Surface(3) resolved")
	}
	if got, ok := s.ByOutput("DP-1"); !ok || got != a {
		t.Error("ByOutput(DP-1) did not return bar a")
	}

	held := a.Placements()[0].Instance
	if !s.Remove(1) {
		t.Fatal("Remove(1) = false")
	}
	if _, ok := store.Instance(held); ok {
		t.Error("instance of removed bar still resolves")
	}
	if store.Len() != 3 {
		t.Errorf("store has %d instances, want 3", store.Len())
	}

	s.Clear()
	if s.Len() != 0 || store.Len() != 0 {
		t.Errorf("after Clear: %d bars, %d instances", s.Len(), store.Len())
	}
}
