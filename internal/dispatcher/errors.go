package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrNoRunner indicates a command was resolved but no runner is set.
	ErrNoRunner = errors.New("dispatcher: no command runner")

	// ErrPanic indicates a collaborator panicked while handling an action.
	ErrPanic = errors.New("dispatcher: action panic")
)
