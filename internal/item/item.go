// Package item models panel items, their per-output instances and the
// hover/press counters that drive their visual state.
package item

import (
	"errors"
	"fmt"

	"github.com/dshills/lavapanel/internal/bind"
)

// Kind distinguishes buttons from spacers.
type Kind uint8

const (
	// KindButton is an item that answers to interactions.
	KindButton Kind = iota
	// KindSpacer only occupies space in the bar.
	KindSpacer
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindSpacer:
		return "spacer"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses a configuration item type.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "button":
		return KindButton, nil
	case "spacer":
		return KindSpacer, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Item errors.
var (
	ErrUnknownKind   = errors.New("unknown item type")
	ErrSpacerCommand = errors.New("spacers do not take commands")
	ErrSpacerLength  = errors.New("spacer length must be positive")
	ErrNotApplicable = errors.New("setting does not apply to this item type")
)

// AppIDNone clears the associated application id.
const AppIDNone = "none"

// ID is the position of an item in the configuration.
type ID int

// Item is one configured panel entry.
type Item struct {
	ID   ID
	Kind Kind

	// SpacerLength is the size of a spacer along the bar.
	SpacerLength uint32
	// ImagePath is passed through to rendering.
	ImagePath string
	// AppID names the application whose window the toplevel meta-actions
	// target. Empty means none.
	AppID string

	Bindings *bind.Table
}

// NewButton creates an empty button item.
func NewButton(id ID) *Item {
	return &Item{ID: id, Kind: KindButton, Bindings: bind.NewTable()}
}

// NewSpacer creates a spacer of the given length.
func NewSpacer(id ID, length uint32) (*Item, error) {
	if length == 0 {
		return nil, ErrSpacerLength
	}
	return &Item{ID: id, Kind: KindSpacer, SpacerLength: length, Bindings: bind.NewTable()}, nil
}

// IsButton reports whether the item answers to interactions.
func (it *Item) IsButton() bool {
	return it != nil && it.Kind == KindButton
}

// AddCommand parses a bind string and command and adds the binding to
// the item. An empty bind string adds a Universal binding.
func (it *Item) AddCommand(bindStr, command string) (bind.Requirements, error) {
	if it.Kind != KindButton {
		return bind.Requirements{}, ErrSpacerCommand
	}

	var (
		b   bind.Binding
		req bind.Requirements
	)
	if bindStr == "" {
		b, req = bind.ParseUniversal(command)
	} else {
		var err error
		b, req, err = bind.Parse(bindStr, command)
		if err != nil {
			return bind.Requirements{}, err
		}
	}
	it.Bindings.Add(b)
	return req, nil
}

// SetAppID sets the application id used by the toplevel meta-actions.
// "none" clears it.
func (it *Item) SetAppID(id string) (bind.Requirements, error) {
	if it.Kind != KindButton {
		return bind.Requirements{}, fmt.Errorf("%w: toplevel-app-id", ErrNotApplicable)
	}
	if id == AppIDNone {
		it.AppID = ""
		return bind.Requirements{}, nil
	}
	it.AppID = id
	return bind.Requirements{Toplevel: true}, nil
}
