package app

import (
	"context"

	"github.com/dshills/lavapanel/internal/config/watcher"
)

// ForwardConfigChanges turns watcher events into EventConfigChanged on
// out until ctx ends or the watcher closes.
func ForwardConfigChanges(ctx context.Context, w *watcher.Watcher, out chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Events():
			if !ok {
				return
			}
			select {
			case out <- Event{Kind: EventConfigChanged}:
			case <-ctx.Done():
				return
			}
		}
	}
}
