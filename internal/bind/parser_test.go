package bind

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/lavapanel/internal/input/key"
)

func TestParseMouseLeft(t *testing.T) {
	b, req, err := Parse("[mouse-left]", "foo")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := Binding{Key: Key{Type: MouseButton, Special: BtnLeft}, Action: ActionNone, Command: "foo"}
	if b != want {
		t.Errorf("Parse() = %+v, want %+v", b, want)
	}
	if !req.Pointer || req.Keyboard || req.Touch {
		t.Errorf("requirements = %+v, want pointer only", req)
	}
}

func TestParseModifiersAndTypes(t *testing.T) {
	tests := []struct {
		bind    string
		typ     InteractionType
		mods    key.Modifier
		special uint32
		req     Requirements
	}{
		{"[shift+scroll-up]", MouseScroll, key.ModShift, ScrollUp, Requirements{Keyboard: true, Pointer: true}},
		{"[scroll-down]", MouseScroll, key.ModNone, ScrollDown, Requirements{Pointer: true}},
		{"[touch]", Touch, key.ModNone, 0, Requirements{Touch: true}},
		{"[control+alt+touch]", Touch, key.ModControl | key.ModAlt, 0, Requirements{Keyboard: true, Touch: true}},
		{"[mouse-right+logo]", MouseButton, key.ModLogo, BtnRight, Requirements{Keyboard: true, Pointer: true}},
		{"[capslock+numlock+mouse-9]", MouseButton, key.ModCapsLock | key.ModNumLock, Btn9, Requirements{Keyboard: true, Pointer: true}},
		{"[mouse-backward]", MouseButton, key.ModNone, BtnBack, Requirements{Pointer: true}},
		{"[mouse-misc]", MouseButton, key.ModNone, BtnMisc, Requirements{Pointer: true}},
		{"[shift+shift+mouse-middle]", MouseButton, key.ModShift, BtnMiddle, Requirements{Keyboard: true, Pointer: true}},
	}

	for _, tt := range tests {
		t.Run(tt.bind, func(t *testing.T) {
			b, req, err := Parse(tt.bind, "cmd")
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.bind, err)
			}
			if b.Type != tt.typ || b.Modifiers != tt.mods || b.Special != tt.special {
				t.Errorf("Parse(%q) = %s", tt.bind, b)
			}
			if req != tt.req {
				t.Errorf("Parse(%q) requirements = %+v, want %+v", tt.bind, req, tt.req)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		bind string
		want error
	}{
		{"[mouse-left+mouse-right]", ErrMultipleTypes},
		{"[shift]", ErrNoType},
		{"[mouse-leftt]", ErrUnknownToken},
		{"[Shift+mouse-left]", ErrUnknownToken},
		{"[]", ErrUnknownToken},
		{"[shift+]", ErrUnknownToken},
		{"", ErrUnbalancedBrackets},
		{"mouse-left", ErrUnbalancedBrackets},
		{"[mouse-left", ErrUnbalancedBrackets},
		{"mouse-left]", ErrUnbalancedBrackets},
		{"[mouse-left][touch]", ErrUnbalancedBrackets},
		{"[[mouse-left]]", ErrUnbalancedBrackets},
		{"[mouse-left]x", ErrUnbalancedBrackets},
		{"+[mouse-left]", ErrUnbalancedBrackets},
		{"[" + strings.Repeat("a", MaxTokenLen+1) + "]", ErrTokenTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.bind, func(t *testing.T) {
			_, _, err := Parse(tt.bind, "cmd")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.bind, err, tt.want)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error is %T, want *ParseError", tt.bind, err)
			}
			if perr.Bind != tt.bind {
				t.Errorf("ParseError.Bind = %q, want %q", perr.Bind, tt.bind)
			}
		})
	}
}

func TestParseErrorNamesToken(t *testing.T) {
	_, _, err := Parse("[shift+wheel]", "cmd")
	if err == nil || !strings.Contains(err.Error(), `"wheel"`) {
		t.Errorf("expected error naming the token, got %v", err)
	}
	_, _, err = Parse("[mouse-left+touch]", "cmd")
	if err == nil || !strings.Contains(err.Error(), "single interaction type") {
		t.Errorf("expected single interaction type error, got %v", err)
	}
}

func TestParseTokenAtLimit(t *testing.T) {
	// Longest accepted token length still reaches token lookup.
	_, _, err := Parse("["+strings.Repeat("x", MaxTokenLen)+"]", "cmd")
	if !errors.Is(err, ErrUnknownToken) {
		t.Errorf("expected ErrUnknownToken at the length limit, got %v", err)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		command string
		action  Action
		rest    string
	}{
		{"@toplevel-close echo fallback", ActionToplevelClose, "echo fallback"},
		{"@toplevel-activate firefox", ActionToplevelActivate, "firefox"},
		{"@exit", ActionExit, ""},
		{"@reload", ActionReload, ""},
		{"@reload notify-send reloading", ActionReload, "notify-send reloading"},
		{"@exit\tbye", ActionExit, "bye"},
		{"@exitfoo", ActionNone, "@exitfoo"},
		{"@reloading now", ActionNone, "@reloading now"},
		{"@unknown thing", ActionNone, "@unknown thing"},
		{"@", ActionNone, "@"},
		{"firefox --new-window", ActionNone, "firefox --new-window"},
		{"", ActionNone, ""},
	}

	for _, tt := range tests {
		action, rest := ParseCommand(tt.command)
		if action != tt.action || rest != tt.rest {
			t.Errorf("ParseCommand(%q) = %v, %q; want %v, %q", tt.command, action, rest, tt.action, tt.rest)
		}
	}
}

func TestParseMetaActionBinding(t *testing.T) {
	b, _, err := Parse("[mouse-middle]", "@exit")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if b.Action != ActionExit || b.HasCommand() {
		t.Errorf("Parse() = %s, want exit without command", b)
	}
}

func TestParseUniversal(t *testing.T) {
	b, req := ParseUniversal("@toplevel-activate firefox")
	if b.Type != Universal || b.Action != ActionToplevelActivate || b.Command != "firefox" {
		t.Errorf("ParseUniversal() = %s", b)
	}
	if !req.Pointer || !req.Touch || req.Keyboard {
		t.Errorf("requirements = %+v, want pointer and touch", req)
	}
}

func TestButtonNames(t *testing.T) {
	if got := ButtonName(BtnLeft); got != "mouse-mouse" {
		t.Errorf("ButtonName(BtnLeft) = %q, want first alias mouse-mouse", got)
	}
	if got := ButtonName(BtnRight); got != "mouse-right" {
		t.Errorf("ButtonName(BtnRight) = %q", got)
	}
	if got := ButtonName(0x999); got != "" {
		t.Errorf("ButtonName(unknown) = %q, want empty", got)
	}
	if code, ok := ButtonFromName("mouse-left"); !ok || code != BtnLeft {
		t.Errorf("ButtonFromName(mouse-left) = %#x, %v", code, ok)
	}
	if _, ok := ButtonFromName("scroll-up"); ok {
		t.Error("ButtonFromName should reject scroll tokens")
	}
}

func TestRequirementsMerge(t *testing.T) {
	r := Requirements{Pointer: true}
	r.Merge(Requirements{Keyboard: true})
	r.Merge(Requirements{})
	if !r.Pointer || !r.Keyboard || r.Touch || r.Toplevel {
		t.Errorf("Merge() = %+v", r)
	}
}
