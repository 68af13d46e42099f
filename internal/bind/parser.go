package bind

import (
	"strings"
	"unicode"

	"github.com/dshills/lavapanel/internal/input/key"
)

// MaxTokenLen is the longest token a bind string may contain.
const MaxTokenLen = 19

// interactionTokens is the fixed vocabulary of interaction-type tokens.
var interactionTokens = []struct {
	name    string
	typ     InteractionType
	special uint32
}{
	{"mouse-mouse", MouseButton, BtnMouse},
	{"mouse-left", MouseButton, BtnLeft},
	{"mouse-right", MouseButton, BtnRight},
	{"mouse-middle", MouseButton, BtnMiddle},
	{"mouse-side", MouseButton, BtnSide},
	{"mouse-extra", MouseButton, BtnExtra},
	{"mouse-forward", MouseButton, BtnForward},
	{"mouse-backward", MouseButton, BtnBack},
	{"mouse-task", MouseButton, BtnTask},
	{"mouse-misc", MouseButton, BtnMisc},
	{"mouse-1", MouseButton, Btn1},
	{"mouse-2", MouseButton, Btn2},
	{"mouse-3", MouseButton, Btn3},
	{"mouse-4", MouseButton, Btn4},
	{"mouse-5", MouseButton, Btn5},
	{"mouse-6", MouseButton, Btn6},
	{"mouse-7", MouseButton, Btn7},
	{"mouse-8", MouseButton, Btn8},
	{"mouse-9", MouseButton, Btn9},
	{"scroll-up", MouseScroll, ScrollUp},
	{"scroll-down", MouseScroll, ScrollDown},
	{"touch", Touch, 0},
}

// metaActions is matched against commands starting with '@'.
var metaActions = []struct {
	name   string
	action Action
}{
	{"@toplevel-activate", ActionToplevelActivate},
	{"@toplevel-close", ActionToplevelClose},
	{"@reload", ActionReload},
	{"@exit", ActionExit},
}

// ButtonName returns the bind token for a button code, or "" if the code
// has no token. Aliased codes return the first token in the vocabulary.
func ButtonName(code uint32) string {
	for _, t := range interactionTokens {
		if t.typ == MouseButton && t.special == code {
			return t.name
		}
	}
	return ""
}

// ButtonFromName returns the button code for a "mouse-*" token.
func ButtonFromName(name string) (uint32, bool) {
	for _, t := range interactionTokens {
		if t.typ == MouseButton && t.name == name {
			return t.special, true
		}
	}
	return 0, false
}

// Parse parses a bind string such as "[shift+mouse-left]" together with
// its command into a Binding.
//
// The bracket group must appear exactly once and hold '+'-separated
// tokens: any number of modifier names and exactly one interaction type.
// The returned Requirements name the input channels the binding needs.
func Parse(bind, command string) (Binding, Requirements, error) {
	var (
		b           Binding
		req         Requirements
		typeDefined bool
		start, stop bool
		token       strings.Builder
	)

	fail := func(err error, tok string) (Binding, Requirements, error) {
		return Binding{}, Requirements{}, &ParseError{Bind: bind, Token: tok, Err: err}
	}

	flush := func() error {
		tok := token.String()
		token.Reset()

		if mod, ok := key.ModifierFromName(tok); ok {
			b.Modifiers = b.Modifiers.With(mod)
			req.Keyboard = true
			return nil
		}

		for _, t := range interactionTokens {
			if t.name != tok {
				continue
			}
			if typeDefined {
				return ErrMultipleTypes
			}
			typeDefined = true
			b.Type = t.typ
			b.Special = t.special
			switch t.typ {
			case MouseButton, MouseScroll:
				req.Pointer = true
			case Touch:
				req.Touch = true
			}
			return nil
		}
		return ErrUnknownToken
	}

	for _, ch := range bind {
		switch ch {
		case '[':
			if start || stop {
				return fail(ErrUnbalancedBrackets, "")
			}
			start = true
		case ']':
			if !start || stop {
				return fail(ErrUnbalancedBrackets, "")
			}
			tok := token.String()
			if err := flush(); err != nil {
				return fail(err, tok)
			}
			stop = true
		case '+':
			if !start || stop {
				return fail(ErrUnbalancedBrackets, "")
			}
			tok := token.String()
			if err := flush(); err != nil {
				return fail(err, tok)
			}
		default:
			if !start || stop {
				return fail(ErrUnbalancedBrackets, "")
			}
			if token.Len()+len(string(ch)) > MaxTokenLen {
				return fail(ErrTokenTooLong, token.String()+string(ch))
			}
			token.WriteRune(ch)
		}
	}

	if !start || !stop {
		return fail(ErrUnbalancedBrackets, "")
	}
	if !typeDefined {
		return fail(ErrNoType, "")
	}

	b.Action, b.Command = ParseCommand(command)
	return b, req, nil
}

// ParseUniversal builds the binding for a command given without a bind
// string. Universal bindings answer to both pointer buttons and touch.
func ParseUniversal(command string) (Binding, Requirements) {
	b := Binding{Key: Key{Type: Universal}}
	b.Action, b.Command = ParseCommand(command)
	return b, Requirements{Pointer: true, Touch: true}
}

// ParseCommand splits a leading meta-action name off a command.
//
// "@toplevel-close echo fallback" yields ActionToplevelClose with the
// fallback "echo fallback". The name must be followed by whitespace or
// the end of the command. A leading '@' that names no meta-action is
// part of the command text.
func ParseCommand(command string) (Action, string) {
	if strings.HasPrefix(command, "@") {
		for _, m := range metaActions {
			rest, ok := strings.CutPrefix(command, m.name)
			if !ok {
				continue
			}
			if rest != "" && !unicode.IsSpace(rune(rest[0])) {
				continue
			}
			return m.action, strings.TrimSpace(rest)
		}
	}
	return ActionNone, command
}
