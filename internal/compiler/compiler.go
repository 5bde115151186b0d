package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kr/pretty"
	"github.com/sudo97/rorth/pkg/checker"
	"github.com/sudo97/rorth/pkg/color"
	"github.com/sudo97/rorth/pkg/feedback"
	"github.com/sudo97/rorth/pkg/interpreter"
	"github.com/sudo97/rorth/pkg/parser"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

// ErrReported is returned once a diagnostic has already been written to
// Stderr, so callers only need to pick an exit code.
var ErrReported = errors.New("error reported")

type Compiler struct {
	Verbose    bool          // Enable debug logging
	NoColor    bool          // Disable colored output
	Trace      bool          // Log every executed instruction
	Dump       bool          // Print the parsed program before running it
	Entry      string        // Function to start execution from
	MaxSteps   int           // Step limit, 0 for none
	MaxDepth   int           // Frame depth limit, 0 for the default
	Timeout    time.Duration // Wall clock limit, 0 for none
	SourceFile string        // Path to the source file

	Stdout io.Writer // program output, defaults to os.Stdout
	Stderr io.Writer // diagnostics, defaults to os.Stderr

	file *feedback.File
}

// Load reads and parses the source file
func (c *Compiler) Load() (*codegen.Program, error) {
	log.Debug("Processing file", "file", c.SourceFile)

	input, err := os.ReadFile(c.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.SourceFile, err)
	}
	c.file = feedback.NewFile(c.SourceFile, string(input))

	program, err := parser.Load(string(input))
	if err != nil {
		return nil, c.report(err)
	}

	log.Debug("Program loaded", "functions", program.Len())
	return program, nil
}

// Run loads the source file and executes it from the entry function,
// echoing printed values to Stdout as they are produced.
func (c *Compiler) Run() error {
	program, err := c.Load()
	if err != nil {
		return err
	}

	if c.Dump {
		fmt.Fprintln(c.stderr(), color.GreenText("=== Program ==="))
		for _, name := range program.Names() {
			fn, _ := program.Lookup(name)
			fmt.Fprintf(c.stderr(), "%s at %s %s\n", color.CyanText(name), color.Position(fn.Pos.Line, fn.Pos.Column), pretty.Sprint(fn.Body))
		}
	}

	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	opts := []interpreter.Option{
		interpreter.WithWriter(c.stdout()),
		interpreter.WithContext(ctx),
		interpreter.WithMaxSteps(c.MaxSteps),
		interpreter.WithTrace(c.Trace),
	}
	if c.MaxDepth > 0 {
		opts = append(opts, interpreter.WithMaxDepth(c.MaxDepth))
	}

	out, err := interpreter.Execute(program, c.entry(), opts...)
	log.Debug("Run finished", "printed", len(out), "error", err)
	if err != nil {
		return c.report(err)
	}

	return nil
}

// Check loads the source file and reports static findings. It fails only
// when the file cannot be loaded.
func (c *Compiler) Check() (checker.Report, error) {
	program, err := c.Load()
	if err != nil {
		return checker.Report{}, err
	}

	report := checker.Check(program, c.entry())
	for _, w := range report.Warnings {
		fmt.Fprintln(c.stderr(), feedback.FromWarning(w).Make(c.file, !c.NoColor))
	}

	for _, name := range program.Names() {
		fmt.Fprintf(c.stdout(), "%s %s\n", color.CyanText(name), report.Effects[name])
	}

	if n := len(report.Warnings); n > 0 {
		fmt.Fprintln(c.stderr(), color.Warning(fmt.Sprintf("%d warning(s) in %s", n, c.SourceFile)))
	} else {
		fmt.Fprintln(c.stderr(), color.Success(fmt.Sprintf("%s: no warnings", c.SourceFile)))
	}

	return report, nil
}

// Disasm loads the source file and prints its instruction listing
func (c *Compiler) Disasm() error {
	program, err := c.Load()
	if err != nil {
		return err
	}

	listing := codegen.DisassembleString(program)
	for _, line := range strings.SplitAfter(listing, "\n") {
		if strings.HasPrefix(line, "fun ") {
			line = color.BoldText(line)
		}
		fmt.Fprint(c.stdout(), line)
	}

	return nil
}

// report writes err as a diagnostic. Errors feedback cannot place are
// returned unchanged.
func (c *Compiler) report(err error) error {
	msg, ok := feedback.FromError(err)
	if !ok {
		return err
	}

	fmt.Fprintln(c.stderr(), msg.Make(c.file, !c.NoColor))
	return fmt.Errorf("%w: %w", ErrReported, err)
}

func (c *Compiler) entry() string {
	if c.Entry == "" {
		return "main"
	}
	return c.Entry
}

func (c *Compiler) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *Compiler) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}
