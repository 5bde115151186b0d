package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sudo97/rorth/internal/compiler"
	"github.com/sudo97/rorth/internal/logger"
	"github.com/sudo97/rorth/internal/repl"
	"github.com/sudo97/rorth/pkg/color"
	"github.com/urfave/cli"
)

var (
	verbose  bool
	noColor  bool
	entry    string
	maxSteps int
	maxDepth int
	timeout  time.Duration
	trace    bool
	dump     bool
)

// Main entry point for the rorth interpreter.
func main() {
	app := cli.NewApp()
	app.Name = "rorth"
	app.Usage = "run programs written in a minimal stack language"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:        "verbose, v",
			Usage:       "log what the interpreter is doing",
			Destination: &verbose,
		},
		cli.BoolFlag{
			Name:        "no-color, n",
			Usage:       "disable colored output",
			Destination: &noColor,
		},
	}

	entryFlag := cli.StringFlag{
		Name:        "entry, e",
		Value:       "main",
		Usage:       "function to start execution from",
		Destination: &entry,
	}

	maxStepsFlag := cli.IntFlag{
		Name:        "max-steps",
		Usage:       "stop after this many instructions, 0 for no limit",
		Destination: &maxSteps,
	}

	maxDepthFlag := cli.IntFlag{
		Name:        "max-depth",
		Value:       1024,
		Usage:       "maximum nesting of calls and loops",
		Destination: &maxDepth,
	}

	timeoutFlag := cli.DurationFlag{
		Name:        "timeout",
		Usage:       "stop after this much wall clock time, 0 for no limit",
		Destination: &timeout,
	}

	traceFlag := cli.BoolFlag{
		Name:        "trace",
		Usage:       "log every executed instruction with the stack (implies --verbose)",
		Destination: &trace,
	}

	dumpFlag := cli.BoolFlag{
		Name:        "dump",
		Usage:       "print the parsed program before running it",
		Destination: &dump,
	}

	app.Before = func(c *cli.Context) error {
		if noColor {
			color.EnableColor(false)
		}
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "run",
			Aliases:   []string{"r"},
			Usage:     "Execute a program from its entry function",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{entryFlag, maxStepsFlag, maxDepthFlag, timeoutFlag, traceFlag, dumpFlag},
			Action: func(c *cli.Context) error {
				comp, err := newCompiler(c)
				if err != nil {
					return err
				}
				return exitError(comp.Run())
			},
		},
		{
			Name:      "check",
			Aliases:   []string{"c"},
			Usage:     "Parse a program and report stack effects and likely mistakes without running it",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{entryFlag},
			Action: func(c *cli.Context) error {
				comp, err := newCompiler(c)
				if err != nil {
					return err
				}
				_, err = comp.Check()
				return exitError(err)
			},
		},
		{
			Name:      "disasm",
			Aliases:   []string{"d"},
			Usage:     "Print the instructions of every function",
			ArgsUsage: "<file>",
			Action: func(c *cli.Context) error {
				comp, err := newCompiler(c)
				if err != nil {
					return err
				}
				return exitError(comp.Disasm())
			},
		},
		{
			Name:  "repl",
			Usage: "Start an interactive session",
			Flags: []cli.Flag{maxStepsFlag, timeoutFlag},
			Action: func(c *cli.Context) error {
				initLogger()

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()

				s := repl.NewSession(os.Stdout, os.Stderr)
				s.MaxSteps = maxSteps
				s.Timeout = timeout
				s.NoColor = !useColor()
				// an interrupt while a program runs ends the session
				if err := repl.Run(ctx, s); !errors.Is(err, context.Canceled) {
					return exitError(err)
				}
				return nil
			},
		},
	}

	app.Action = func(c *cli.Context) error {
		return cli.ShowAppHelp(c)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.Error(err.Error()))
		os.Exit(1)
	}
}

func initLogger() {
	logger.Init(verbose || trace, !useColor())
}

func useColor() bool {
	return !noColor && color.IsColorEnabled()
}

// newCompiler builds the pipeline for the file named by the single argument
func newCompiler(c *cli.Context) (*compiler.Compiler, error) {
	initLogger()

	if len(c.Args()) != 1 {
		return nil, cli.NewExitError(color.Error("expected exactly one source file"), 2)
	}

	return &compiler.Compiler{
		Verbose:    verbose,
		NoColor:    !useColor(),
		Trace:      trace,
		Dump:       dump,
		Entry:      entry,
		MaxSteps:   maxSteps,
		MaxDepth:   maxDepth,
		Timeout:    timeout,
		SourceFile: c.Args()[0],
	}, nil
}

// exitError maps a pipeline error to the process exit status. Diagnostics
// the pipeline already printed are not repeated.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, compiler.ErrReported) {
		return cli.NewExitError("", 1)
	}
	return cli.NewExitError(color.Error(err.Error()), 1)
}
