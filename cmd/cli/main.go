package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/reqgraph/internal/app"
	"github.com/specialistvlad/reqgraph/internal/cli"
)

// main is the entrypoint for the reqgraph application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.ExitRuntime)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Reports go to outW, logs and usage errors to errW.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on fatal startup errors, and propagation panics on a
	// boss it cannot handle. Either becomes a runtime exit.
	stage := "startup"
	defer func() {
		if r := recover(); r != nil {
			err = &cli.ExitError{Code: cli.ExitRuntime, Message: fmt.Sprintf("application %s panicked: %v", stage, r)}
		}
	}()

	a := app.NewApp(outW, errW, cfg)
	stage = "run"
	return a.Run(ctx)
}
