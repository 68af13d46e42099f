package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/lavapanel/internal/app"
	"github.com/dshills/lavapanel/internal/config"
	"github.com/dshills/lavapanel/internal/config/watcher"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/logging"
	"github.com/dshills/lavapanel/internal/process"
	"github.com/dshills/lavapanel/internal/sim"
	"github.com/dshills/lavapanel/internal/trace"
)

// runCheck validates the configuration and lists its items.
func runCheck(path string, out io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	orientation := "horizontal"
	if cfg.Layout.Vertical {
		orientation = "vertical"
	}
	fmt.Fprintf(out, "%s: %d items (%d buttons), icon size %d, %s\n",
		cfg.Path, len(cfg.Items), cfg.Buttons(), cfg.Layout.IconSize, orientation)
	for _, it := range cfg.Items {
		if !it.IsButton() {
			fmt.Fprintf(out, "  %d spacer length=%d\n", it.ID, it.SpacerLength)
			continue
		}
		fmt.Fprintf(out, "  %d button", it.ID)
		if it.AppID != "" {
			fmt.Fprintf(out, " app-id=%s", it.AppID)
		}
		fmt.Fprintln(out)
		for _, b := range it.Bindings.Bindings() {
			fmt.Fprintf(out, "    %s\n", b)
		}
	}
	n := cfg.Needs
	fmt.Fprintf(out, "needs: pointer=%t keyboard=%t touch=%t toplevel=%t\n",
		n.Pointer, n.Keyboard, n.Touch, n.Toplevel)
	return nil
}

// runStdin runs the engine on compositor events read from stdin,
// launching commands and reloading when the configuration file changes.
func runStdin(path string, opts *options, logger *logging.Logger, stdin io.Reader) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	runner := process.NewRunner(process.WithLogger(logger))
	defer runner.Close()

	e, err := app.New(app.Options{
		Config:        cfg,
		Runner:        runner,
		Logger:        logger,
		EnableMetrics: logger.Enabled(logging.LevelDebug),
	})
	if err != nil {
		return err
	}
	defer e.Close()

	events := make(chan app.Event)
	if !opts.noWatch {
		w, err := watcher.New(path, watcher.WithLogger(logger))
		if err != nil {
			logger.Warn("not watching %s: %v", path, err)
		} else {
			defer w.Close()
			go app.ForwardConfigChanges(ctx, w, events)
		}
	}

	return drive(ctx, e, path, trace.NewReader(stdin), events, logger)
}

// runReplay feeds a recorded trace through the engine and writes one
// JSON line per interaction to out.
func runReplay(path, tracePath string, opts *options, logger *logging.Logger, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	f, err := os.Open(tracePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var runner dispatcher.Runner = process.NewDryRunner(logger)
	if opts.exec {
		r := process.NewRunner(process.WithLogger(logger))
		defer r.Close()
		runner = r
	}

	reporter := trace.NewReporter(out, logger)
	e, err := app.New(app.Options{
		Config:        cfg,
		Runner:        runner,
		Observer:      reporter.Observer(),
		Logger:        logger,
		EnableMetrics: true,
	})
	if err != nil {
		return err
	}
	defer e.Close()

	err = drive(ctx, e, path, trace.NewReader(f), make(chan app.Event), logger)
	if m := e.Metrics(); m != nil {
		s := m.Snapshot()
		logger.Info("replayed %d events, %d interactions, %d reloads", s.EventCount, reporter.Count(), s.Reloads)
	}
	if m := e.Dispatcher().Metrics(); m != nil {
		logDispatchStats(logger, m.Snapshot())
	}
	return err
}

// logDispatchStats summarizes what the replayed interactions resolved to.
func logDispatchStats(logger *logging.Logger, s dispatcher.MetricsSnapshot) {
	logger.Info("interactions: %d resolved, %d unresolved, %d failed commands, %d panics",
		s.Resolved, s.Unresolved, s.Failures, s.Panics)
	for _, c := range s.Top(5) {
		logger.Info("  %dx %s (%d failed, slowest %s)", c.Runs, c.Label, c.Failures, c.Slowest)
	}
}

// drive feeds r into the engine until the trace ends or an interaction
// asks to exit. Reload requests load the configuration again.
func drive(ctx context.Context, e *app.Engine, path string, r *trace.Reader, events chan app.Event, logger *logging.Logger) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	feedErr := make(chan error, 1)
	go func() {
		feedErr <- r.Feed(runCtx, events)
		cancel()
	}()

	for {
		outcome, err := e.Run(runCtx, events)
		if err != nil {
			return err
		}
		if outcome != dispatcher.Reload {
			break
		}
		if err := reload(e, path); err != nil {
			logger.Error("%v", err)
		}
	}

	cancel()
	if err := <-feedErr; err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// reload swaps in a freshly loaded configuration. A configuration that
// fails to load leaves the current one in place.
func reload(e *app.Engine, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("reload failed, keeping current configuration: %w", err)
	}
	if err := e.Reload(cfg); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// runSim drives the engine from the terminal.
func runSim(path string) error {
	if err := sim.RequireTTY(os.Stdin, os.Stdout); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}

	// Log lines would tear the screen.
	quiet := logging.Null
	runner := process.NewRunner(process.WithLogger(quiet))
	defer runner.Close()

	s, err := sim.New(screen, app.Options{Config: cfg, Runner: runner, Logger: quiet}, sim.Options{Logger: quiet})
	if err != nil {
		return err
	}
	defer s.Close()

	for {
		outcome, err := s.Run(ctx)
		if err != nil {
			return err
		}
		if outcome != dispatcher.Reload {
			return nil
		}
		s.Reset()
		if err := reload(s.Engine(), path); err != nil {
			s.SetStatus(err.Error())
			continue
		}
		s.SetStatus("configuration reloaded")
	}
}
