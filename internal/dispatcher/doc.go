// Package dispatcher resolves item interactions to bindings and carries
// out the bound action.
//
// The pointer and touch state machines hand every committed interaction
// to an Interactor. The Dispatcher is the production Interactor: it looks
// the interaction up in the item's binding table and then either runs the
// bound command, drives the associated toplevel, or requests a reload or
// exit of the event loop.
//
// Requests to stop the loop are returned as an Outcome rather than stored
// in shared state:
//
//	switch d.Interact(in) {
//	case dispatcher.Reload:
//		// tear down and load the configuration again
//	case dispatcher.Exit:
//		// tear down and quit
//	}
//
// Commands are fire-and-forget. A failed launch is logged and counted but
// never retried.
package dispatcher
