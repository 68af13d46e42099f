package bind

import "github.com/dshills/lavapanel/internal/input/key"

// Table is the ordered set of bindings owned by one item.
// Order is insertion order and decides which binding a scan reaches first.
type Table struct {
	bindings []Binding
}

// NewTable creates an empty binding table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts b, or overwrites the action and command of the binding that
// already has b's Key. An overwritten binding keeps its position.
func (t *Table) Add(b Binding) {
	if i := t.indexOf(b.Key); i >= 0 {
		t.bindings[i].Action = b.Action
		t.bindings[i].Command = b.Command
		return
	}
	t.bindings = append(t.bindings, b)
}

func (t *Table) indexOf(k Key) int {
	for i := range t.bindings {
		if t.bindings[i].Key == k {
			return i
		}
	}
	return -1
}

// Resolve finds the binding for an interaction.
//
// An exact (type, modifiers, special) match wins. Failing that, and only
// when allowUniversal is set, the first Universal binding is used unless
// the interaction is a scroll. A miss is not an error.
func (t *Table) Resolve(typ InteractionType, mods key.Modifier, special uint32, allowUniversal bool) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	if i := t.indexOf(Key{Type: typ, Modifiers: mods, Special: special}); i >= 0 {
		return t.bindings[i], true
	}
	if !allowUniversal || typ == MouseScroll {
		return Binding{}, false
	}
	for _, b := range t.bindings {
		if b.Type == Universal {
			return b, true
		}
	}
	return Binding{}, false
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}

// Bindings returns a copy of the bindings in scan order.
func (t *Table) Bindings() []Binding {
	if t == nil {
		return nil
	}
	out := make([]Binding, len(t.bindings))
	copy(out, t.bindings)
	return out
}
