// Command fsmdemo drives the Idle/Active/Stopped/Canceled state machine with the
// events given on the command line and prints what happens.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/shutdown"
	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/telemetry"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

var errUnknownName = errors.New("unknown")

// config holds settings read from the environment.
type config struct {
	Name    string `env:"FSM_DEMO_NAME"    envDefault:"fsmdemo"`
	Metrics bool   `env:"FSM_DEMO_METRICS" envDefault:"false"`
}

type flags struct {
	initial   string
	denyGuard bool
	stdin     bool
	quiet     bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "fsmdemo [events...]",
		Short: "Feed events to the demo state machine",
		Long: "Feed events (Start, Timeout, Cancel, Restart) to a state machine with states " +
			"Idle, Active, Stopped and Canceled. Without arguments, Start Timeout Restart is used. " +
			"With --stdin, events are read one per line until EOF or SIGINT.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := logger.ConfigureLogging(cmd.Root().Name())

			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config
			if err := env.Parse(&cfg); err != nil {
				return fmt.Errorf("parse config: %w", err)
			}

			otelCfg, err := telemetry.LoadConfig()
			if err != nil {
				return err
			}

			if len(args) == 0 && !f.stdin {
				args = []string{"Start", "Timeout", "Restart"}
			}

			return run(cmd, out, cfg, otelCfg, f, args)
		},
	}

	cmd.Flags().StringVar(&f.initial, "initial", "Idle", "initial state")
	cmd.Flags().BoolVar(&f.denyGuard, "deny-guard", false, "attach a guard to Idle that forbids every transition")
	cmd.Flags().BoolVar(&f.quiet, "quiet", false, "mute the state machine's own log output")
	cmd.Flags().BoolVar(&f.stdin, "stdin", false, "read events from standard input after the arguments")

	return cmd
}

func run(cmd *cobra.Command, out io.Writer, cfg config, otelCfg telemetry.Config, f flags, args []string) error {
	initial, err := parseName[State]("state", f.initial)
	if err != nil {
		return err
	}

	events := make([]Event, 0, len(args))

	for _, arg := range args {
		ev, err := parseName[Event]("event", arg)
		if err != nil {
			return err
		}

		events = append(events, ev)
	}

	handler, ctx := shutdown.New(cmd.Context())
	defer handler.Shutdown()

	provider, err := telemetry.Initialize(ctx, otelCfg)
	if err != nil {
		return err
	}

	ctx = engineContext(ctx, cfg.Name, f.quiet)

	m := newScenario(initial,
		statemachine.WithName(cfg.Name),
		statemachine.WithMetrics(cfg.Metrics),
		statemachine.WithTracing(provider != nil),
		statemachine.WithLogger(statemachine.NewDefaultLogger(nil)),
	)

	m.AttachOnExitStateCallback(Idle, func(_ statemachine.TransitionType, cur, next State, ev Event) {
		fmt.Fprintf(out, "Exit: %v -> %v on %v\n", cur, next, ev)
	})
	m.AttachOnEnterStateCallback(Active, func(_ statemachine.TransitionType, prev, next State, ev Event) {
		fmt.Fprintf(out, "Enter: %v -> %v on %v\n", prev, next, ev)
	})
	m.AttachTransitionGuard(Idle, func(cur, next State, ev Event) bool {
		fmt.Fprintf(out, "Guard: %v -> %v on %v\n", cur, next, ev)

		return !f.denyGuard
	})

	driver := statemachine.NewDriver(ctx, m)

	// spans are flushed once the driver has drained
	handler.BeforeShutdown(func() {
		driver.Stop()

		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Get(ctx).Error("Failed to shut down tracing", "error", err)
		}
	})

	for _, ev := range events {
		if err := send(ctx, out, driver, ev); err != nil {
			return err
		}
	}

	if f.stdin {
		if err := readEvents(ctx, cmd.InOrStdin(), out, driver); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Processed %d, rejected %d\n", driver.Processed(), driver.Rejected())

	return nil
}

// engineContext tags the engine's log output with its subsystem and machine name, or
// mutes it.
func engineContext(ctx context.Context, name string, quiet bool) context.Context {
	ctx = logger.WithSubsystem(ctx, "statemachine")
	ctx = logger.With(ctx, "machine", name)

	return logger.WithMuted(ctx, quiet)
}

// readEvents sends one event per non-empty input line. Unknown names are reported and skipped.
func readEvents(ctx context.Context, in io.Reader, out io.Writer, driver *statemachine.Driver[State, Event]) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, err := parseName[Event]("event", line)
		if err != nil {
			fmt.Fprintln(out, err)

			continue
		}

		if err := send(ctx, out, driver, ev); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// send delivers ev and prints the outcome. Machine rejections are printed, not returned.
func send(ctx context.Context, out io.Writer, driver *statemachine.Driver[State, Event], ev Event) error {
	state, err := driver.Send(ctx, ev)
	if err != nil {
		if _, ok := statemachine.ReasonOf(err); !ok {
			return err
		}

		fmt.Fprintf(out, "%v rejected: %v\n", ev, err)

		return nil
	}

	fmt.Fprintf(out, "Now in state %v\n", state)

	return nil
}
