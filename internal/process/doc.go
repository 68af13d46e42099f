// Package process launches the shell commands bound to panel items.
//
// Commands run as "/bin/sh -c <command>" in their own session with the
// panel's environment plus the output variables supplied by the caller.
// The Runner never waits on a command in the caller's goroutine: each
// child is reaped by a background goroutine, non-zero exits are logged,
// and nothing is retried.
//
//	r := process.NewRunner(process.WithLogger(log))
//	if err := r.Run("foot", []string{"LAVALAUNCHER_OUTPUT_NAME=DP-1"}); err != nil {
//		log.Error("launch failed: %v", err)
//	}
package process
