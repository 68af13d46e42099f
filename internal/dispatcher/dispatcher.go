package dispatcher

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/input/key"
	"github.com/dshills/lavapanel/internal/item"
	"github.com/dshills/lavapanel/internal/logging"
)

// Outcome tells the event loop whether to keep running.
type Outcome uint8

const (
	// Continue keeps the event loop running.
	Continue Outcome = iota
	// Reload stops the loop and restarts with a fresh configuration.
	Reload
	// Exit stops the loop for good.
	Exit
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Reload:
		return "reload"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Stops reports whether the outcome ends the event loop.
func (o Outcome) Stops() bool {
	return o != Continue
}

// Environment variables describing the output an item was used on.
const (
	EnvOutputName  = "LAVALAUNCHER_OUTPUT_NAME"
	EnvOutputScale = "LAVALAUNCHER_OUTPUT_SCALE"
)

// OutputEnv returns the environment passed to commands launched from an
// item shown on o.
func OutputEnv(o item.Output) []string {
	return []string{
		EnvOutputName + "=" + o.Name,
		EnvOutputScale + "=" + strconv.Itoa(int(o.Scale)),
	}
}

// Interaction is one committed user interaction with an item.
type Interaction struct {
	Seat     uint32
	Item     *item.Item
	Instance item.InstanceID
	Output   item.Output

	Type      bind.InteractionType
	Modifiers key.Modifier
	// Special is the button code or the scroll direction.
	Special uint32
}

// Interactor consumes interactions.
type Interactor interface {
	Interact(in Interaction) Outcome
}

// InteractorFunc adapts a function to the Interactor interface.
type InteractorFunc func(in Interaction) Outcome

// Interact calls f(in).
func (f InteractorFunc) Interact(in Interaction) Outcome {
	return f(in)
}

// Runner launches shell commands without waiting for them.
type Runner interface {
	Run(command string, env []string) error
}

// Toplevels gives access to the compositor's window list.
type Toplevels interface {
	// FindByAppID returns a live window with the given application id.
	FindByAppID(appID string) (handle uint32, ok bool)
	Activate(handle, seat uint32)
	Close(handle uint32)
}

// Observer is notified of every interaction after resolution. resolved
// is false when no binding matched.
type Observer func(in Interaction, b bind.Binding, resolved bool)

// Dispatcher resolves interactions against item bindings and executes
// the bound action.
type Dispatcher struct {
	runner    Runner
	toplevels Toplevels

	config  Config
	logger  *logging.Logger
	metrics *Metrics
}

// New creates a dispatcher. toplevels may be nil, in which case the
// toplevel meta-actions always fall back to their command.
func New(runner Runner, toplevels Toplevels, config Config) *Dispatcher {
	d := &Dispatcher{
		runner:    runner,
		toplevels: toplevels,
		config:    config,
		logger:    logging.OrNull(config.Logger).WithComponent("dispatcher"),
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// NewWithDefaults creates a dispatcher with the default configuration.
func NewWithDefaults(runner Runner, toplevels Toplevels) *Dispatcher {
	return New(runner, toplevels, DefaultConfig())
}

// Metrics returns the metrics collector, or nil if metrics are disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}

// Interact resolves in against the item's bindings and executes the
// result. Spacers and unbound interactions are ignored.
func (d *Dispatcher) Interact(in Interaction) Outcome {
	if !in.Item.IsButton() {
		return Continue
	}

	d.logger.Debug("interaction: type=%s mod=%q spec=%d", in.Type, in.Modifiers.String(), in.Special)

	b, ok := in.Item.Bindings.Resolve(in.Type, in.Modifiers, in.Special, true)
	if d.config.Observer != nil {
		d.config.Observer(in, b, ok)
	}
	if d.metrics != nil {
		d.metrics.RecordInteraction(in.Type, ok)
	}
	if !ok {
		return Continue
	}

	start := time.Now()
	outcome, err := d.execute(in, b)
	if d.metrics != nil {
		d.metrics.RecordExecution(b, time.Since(start), err != nil)
	}
	return outcome
}

// execute carries out b. The outcome is fixed by the action before any
// collaborator is called, so a failing command never cancels a reload or
// exit.
func (d *Dispatcher) execute(in Interaction, b bind.Binding) (outcome Outcome, err error) {
	switch b.Action {
	case bind.ActionReload:
		outcome = Reload
	case bind.ActionExit:
		outcome = Exit
	default:
		outcome = Continue
	}

	if d.config.RecoverFromPanic {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrPanic, r)
				d.logger.Error("recovered from panic running %s: %v", b.Action, r)
				if d.metrics != nil {
					d.metrics.RecordPanic()
				}
			}
		}()
	}

	switch b.Action {
	case bind.ActionNone:
		err = d.run(in, b)

	case bind.ActionToplevelActivate, bind.ActionToplevelClose:
		handle, found := d.findToplevel(in.Item.AppID)
		if !found {
			err = d.run(in, b)
			break
		}
		if b.Action == bind.ActionToplevelActivate {
			d.logger.Info("activating toplevel: app-id=%s", in.Item.AppID)
			d.toplevels.Activate(handle, in.Seat)
		} else {
			d.logger.Info("closing toplevel: app-id=%s", in.Item.AppID)
			d.toplevels.Close(handle)
		}

	case bind.ActionReload:
		err = d.run(in, b)
		d.logger.Info("triggering reload")

	case bind.ActionExit:
		err = d.run(in, b)
		d.logger.Info("triggering exit")
	}
	return outcome, err
}

func (d *Dispatcher) findToplevel(appID string) (uint32, bool) {
	if d.toplevels == nil || appID == "" {
		return 0, false
	}
	return d.toplevels.FindByAppID(appID)
}

// run launches the binding's command, if it has one. Failures are logged
// and returned for accounting only.
func (d *Dispatcher) run(in Interaction, b bind.Binding) error {
	if !b.HasCommand() {
		return nil
	}
	if d.runner == nil {
		d.logger.Error("cannot run %q: %v", b.Command, ErrNoRunner)
		return ErrNoRunner
	}

	d.logger.Info("executing command: %s", b.Command)
	if err := d.runner.Run(b.Command, OutputEnv(in.Output)); err != nil {
		d.logger.Error("command %q failed: %v", b.Command, err)
		return err
	}
	return nil
}
