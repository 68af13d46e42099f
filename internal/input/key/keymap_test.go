package key

import (
	"errors"
	"testing"
)

const sampleKeymap = `xkb_keymap {
xkb_keycodes "(unnamed)" {
	minimum = 8;
	maximum = 255;
};
xkb_symbols "(unnamed)" {
	name[Group1]="English (US)";
	key <LFSH>               {	[         Shift_L ] };
	key <LCTL>               {	[       Control_L ] };
	key <LALT>               {	[           Alt_L,          Meta_L ] };
	key <RALT>               {	type= "TWO_LEVEL", symbols[1]= [ Alt_R, Meta_R ] };
	key <LWIN>               {	[         Super_L ] };
	key <NMLK>               {	[        Num_Lock ] };
	modifier_map Shift { <LFSH> };
	modifier_map Control { <LCTL> };
	modifier_map Mod3 { <LALT>, <RALT> };
	modifier_map Mod5 { <NMLK> };
	modifier_map Mod4 { <LWIN> };
};
};
`

func TestDefaultLayoutTranslate(t *testing.T) {
	l := DefaultLayout()
	tests := []struct {
		mask uint32
		want Modifier
	}{
		{0, ModNone},
		{1 << 0, ModShift},
		{1 << 1, ModCapsLock},
		{1 << 2, ModControl},
		{1 << 3, ModAlt},
		{1 << 4, ModNumLock},
		{1 << 6, ModLogo},
		{1<<0 | 1<<2, ModShift | ModControl},
		{1 << 5, ModNone},
	}

	for _, tt := range tests {
		if got := l.Translate(tt.mask); got != tt.want {
			t.Errorf("Translate(%#x) = %v, want %v", tt.mask, got, tt.want)
		}
	}
}

func TestParseKeymap(t *testing.T) {
	l, err := ParseKeymap(sampleKeymap)
	if err != nil {
		t.Fatalf("ParseKeymap() error = %v", err)
	}
	if l.Alt != 1<<5 {
		t.Errorf("Alt = %#x, want Mod3 (%#x)", l.Alt, 1<<5)
	}
	if l.NumLock != 1<<7 {
		t.Errorf("NumLock = %#x, want Mod5 (%#x)", l.NumLock, 1<<7)
	}
	if l.Logo != 1<<6 {
		t.Errorf("Logo = %#x, want Mod4", l.Logo)
	}
	if l.Shift != 1 || l.Control != 1<<2 || l.CapsLock != 1<<1 {
		t.Errorf("fixed modifiers changed: %+v", l)
	}
	if got := l.Translate(1 << 5); got != ModAlt {
		t.Errorf("Translate(Mod3) = %v, want alt", got)
	}
}

func TestParseKeymapKeepsDefaultsWhenUnmapped(t *testing.T) {
	l, err := ParseKeymap("xkb_keymap { };\x00trailing")
	if err != nil {
		t.Fatalf("ParseKeymap() error = %v", err)
	}
	if l != DefaultLayout() {
		t.Errorf("layout = %+v, want defaults", l)
	}
}

func TestParseKeymapErrors(t *testing.T) {
	if _, err := ParseKeymap("garbage"); !errors.Is(err, ErrInvalidKeymap) {
		t.Errorf("expected ErrInvalidKeymap, got %v", err)
	}
	bad := "xkb_keymap { modifier_map Hyper { <LALT> }; };"
	if _, err := ParseKeymap(bad); !errors.Is(err, ErrInvalidKeymap) {
		t.Errorf("expected ErrInvalidKeymap for unknown real modifier, got %v", err)
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	if got := tr.Update(1<<0, 0, 1<<1, 0); got != ModShift|ModCapsLock {
		t.Errorf("Update() = %v, want shift+capslock", got)
	}
	// Updates replace the mask rather than merging.
	tr.Update(1<<2, 0, 0, 0)
	if got := tr.Modifiers(); got != ModControl {
		t.Errorf("Modifiers() = %v, want control", got)
	}

	tr.Disable()
	if tr.Enabled() {
		t.Error("expected disabled tracker")
	}
	tr.Update(1<<0, 0, 0, 0)
	if got := tr.Modifiers(); got != ModNone {
		t.Errorf("disabled tracker Modifiers() = %v, want none", got)
	}

	tr.SetLayout(Layout{Shift: 1 << 7})
	tr.Update(1<<7, 0, 0, 0)
	if got := tr.Modifiers(); got != ModShift {
		t.Errorf("custom layout Modifiers() = %v, want shift", got)
	}
	tr.Reset()
	if tr.Modifiers() != ModNone {
		t.Error("Reset() should clear the mask")
	}

	var nilTracker *Tracker
	if nilTracker.Modifiers() != ModNone {
		t.Error("nil tracker should report no modifiers")
	}
}
