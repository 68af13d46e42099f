package bind

import (
	"errors"
	"fmt"
)

// Parse errors.
var (
	ErrUnbalancedBrackets = errors.New("bind must contain exactly one [...] group")
	ErrMultipleTypes      = errors.New("a command can only have a single interaction type")
	ErrNoType             = errors.New("no interaction type defined")
	ErrUnknownToken       = errors.New("unrecognized interaction type / modifier")
	ErrTokenTooLong       = errors.New("bind token too long")
)

// ParseError describes a bind string that could not be parsed.
type ParseError struct {
	// Bind is the offending bind string.
	Bind string
	// Token is the token being parsed when the error occurred, if any.
	Token string
	// Err is one of the parse sentinel errors.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token != "" || errors.Is(e.Err, ErrUnknownToken) {
		return fmt.Sprintf("unable to parse command bind string %q: %v %q", e.Bind, e.Err, e.Token)
	}
	return fmt.Sprintf("unable to parse command bind string %q: %v", e.Bind, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ParseError) Unwrap() error {
	return e.Err
}
