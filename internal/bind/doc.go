// Package bind parses command bind strings and resolves interactions to
// bindings.
//
// A bind string names one interaction type and any modifiers inside a
// single bracket group:
//
//	[mouse-left]
//	[shift+scroll-up]
//	[control+alt+touch]
//
// A command starting with one of the meta-action names (@toplevel-activate,
// @toplevel-close, @reload, @exit) selects that action; any text after the
// name is the fallback command.
package bind
