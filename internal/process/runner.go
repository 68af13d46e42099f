package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/lavapanel/internal/logging"
)

// DefaultShell runs item commands.
const DefaultShell = "/bin/sh"

// Runner launches item commands through the shell, detached from the
// panel, and reaps them in the background.
//
// Runner is safe for concurrent use.
type Runner struct {
	mu        sync.RWMutex
	processes map[string]*Process
	wg        sync.WaitGroup
	closed    atomic.Bool

	shell         string
	maxProcesses  int
	logger        *logging.Logger
	onProcessExit func(p *Process)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithShell sets the shell used to interpret commands.
func WithShell(shell string) RunnerOption {
	return func(r *Runner) {
		r.shell = shell
	}
}

// WithMaxProcesses limits the number of commands alive at once.
// A value of 0 (default) means unlimited.
func WithMaxProcesses(max int) RunnerOption {
	return func(r *Runner) {
		r.maxProcesses = max
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithProcessExitCallback sets a callback for when commands exit.
func WithProcessExitCallback(fn func(p *Process)) RunnerOption {
	return func(r *Runner) {
		r.onProcessExit = fn
	}
}

// NewRunner creates a command runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		processes: make(map[string]*Process),
		shell:     DefaultShell,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNull(r.logger).WithComponent("process")
	return r
}

// Run starts command with env appended to the panel's environment and
// returns once it is running. The command gets its own session and no
// standard streams, so it outlives the panel.
func (r *Runner) Run(command string, env []string) error {
	_, err := r.Start(command, env)
	return err
}

// Start is Run returning the tracked process.
func (r *Runner) Start(command string, env []string) (*Process, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil, ErrRunnerClosed
	}
	if r.maxProcesses > 0 && len(r.processes) >= r.maxProcesses {
		return nil, fmt.Errorf("process limit reached: %d", r.maxProcesses)
	}

	cmd := exec.Command(r.shell, "-c", command)
	cmd.Env = append(os.Environ(), env...)
	cmd.SysProcAttr = detachedAttr()

	proc := NewProcess(uuid.New().String(), command, cmd)
	if err := proc.start(); err != nil {
		return nil, err
	}

	r.logger.Debug("started %s: pid=%d cmd=%q", proc.ID, proc.PID(), command)
	r.processes[proc.ID] = proc
	r.wg.Add(1)
	go r.monitor(proc)

	return proc, nil
}

func (r *Runner) monitor(proc *Process) {
	defer r.wg.Done()
	<-proc.Done()

	if code := proc.ExitCode(); code != 0 {
		r.logger.Warn("command %q exited with code %d", proc.Command, code)
	}

	if r.onProcessExit != nil {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("process exit callback panicked: %v", rec)
				}
			}()
			r.onProcessExit(proc)
		}()
	}

	r.mu.Lock()
	delete(r.processes, proc.ID)
	r.mu.Unlock()
}

// Get returns a running process by ID, or nil.
func (r *Runner) Get(id string) *Process {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.processes[id]
}

// Running returns the commands that have not exited, oldest first.
func (r *Runner) Running() []*Process {
	r.mu.RLock()
	out := make([]*Process, 0, len(r.processes))
	for _, p := range r.processes {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// Count returns the number of running commands.
func (r *Runner) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.processes)
}

// Wait blocks until every started command has been reaped or ctx ends.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting commands. Running commands are left alone.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed.Store(true)
}

// DryRunner logs commands instead of running them.
type DryRunner struct {
	mu     sync.Mutex
	logger *logging.Logger
	runs   []DryRun
}

// DryRun is one command a DryRunner was asked to run.
type DryRun struct {
	Command string
	Env     []string
}

// NewDryRunner creates a DryRunner.
func NewDryRunner(l *logging.Logger) *DryRunner {
	return &DryRunner{logger: logging.OrNull(l).WithComponent("process")}
}

// Run records the command.
func (d *DryRunner) Run(command string, env []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger.Info("dry run: %s %v", command, env)
	d.runs = append(d.runs, DryRun{Command: command, Env: append([]string(nil), env...)})
	return nil
}

// Runs returns the recorded commands.
func (d *DryRunner) Runs() []DryRun {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DryRun(nil), d.runs...)
}
