package compiler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sudo97/rorth/pkg/checker"
	"github.com/sudo97/rorth/pkg/color"
	"github.com/sudo97/rorth/pkg/interpreter"
	"github.com/sudo97/rorth/pkg/parser"
)

const factorial = `fun factorial
  1 swap
  while
    swap over *
    swap 1 -
  end
  pop
ret
fun main
  5 factorial print
ret
`

func newCompiler(t *testing.T, source string) (*Compiler, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.EnableColor(false)

	path := filepath.Join(t.TempDir(), "prog.rf")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	return &Compiler{
		SourceFile: path,
		NoColor:    true,
		Stdout:     &stdout,
		Stderr:     &stderr,
	}, &stdout, &stderr
}

func TestRun(t *testing.T) {
	c, stdout, stderr := newCompiler(t, factorial)
	if err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stdout.String() != "120\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "120\n")
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected diagnostics: %q", stderr.String())
	}
}

func TestRunEntry(t *testing.T) {
	c, stdout, _ := newCompiler(t, "fun main 1 print ret\nfun other 2 print ret\n")
	c.Entry = "other"
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "2\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "2\n")
	}
}

func TestRunReportsParseError(t *testing.T) {
	c, _, stderr := newCompiler(t, "fun main\n  1 print\n")
	err := c.Run()
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Run() error = %v, want ErrReported", err)
	}

	var perr *parser.Error
	if !errors.As(err, &perr) || perr.Kind != parser.MissingRet {
		t.Errorf("expected a missing ret parse error, got %v", err)
	}
	if !strings.Contains(stderr.String(), "error: parse error: missing ret") {
		t.Errorf("diagnostic missing: %q", stderr.String())
	}
}

func TestRunPartialOutput(t *testing.T) {
	c, stdout, stderr := newCompiler(t, "fun main\n  7 print\n  print\nret\n")
	err := c.Run()
	if !errors.Is(err, interpreter.StackUnderflow) {
		t.Fatalf("Run() error = %v, want stack underflow", err)
	}
	if stdout.String() != "7\n" {
		t.Errorf("stdout = %q, want output printed before the failure", stdout.String())
	}
	if !strings.Contains(stderr.String(), "prog.rf:3:3") {
		t.Errorf("diagnostic does not point at the failing print: %q", stderr.String())
	}
}

func TestRunLimits(t *testing.T) {
	loop := "fun main\n  1 while end\nret\n"

	c, _, _ := newCompiler(t, loop)
	c.MaxSteps = 100
	if err := c.Run(); !errors.Is(err, interpreter.StepLimitExceeded) {
		t.Errorf("step limit: got %v", err)
	}

	c, _, _ = newCompiler(t, loop)
	c.Timeout = 10 * time.Millisecond
	if err := c.Run(); !errors.Is(err, interpreter.Cancelled) {
		t.Errorf("timeout: got %v", err)
	}

	c, _, _ = newCompiler(t, "fun main main ret\n")
	c.MaxDepth = 8
	if err := c.Run(); !errors.Is(err, interpreter.DepthExceeded) {
		t.Errorf("depth: got %v", err)
	}
}

func TestRunMissingFile(t *testing.T) {
	c := &Compiler{SourceFile: filepath.Join(t.TempDir(), "nope.rf")}
	err := c.Run()
	if err == nil || errors.Is(err, ErrReported) {
		t.Fatalf("Run() error = %v, want an unreported read error", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not wrap os.ErrNotExist: %v", err)
	}
}

func TestCheck(t *testing.T) {
	c, stdout, stderr := newCompiler(t, factorial+"fun broken\n  missing\nret\n")
	report, err := c.Check()
	if err != nil {
		t.Fatal(err)
	}

	if got := report.Effects["factorial"].String(); got != "( 1 -- 1 )" {
		t.Errorf("factorial effect = %s", got)
	}
	if !strings.Contains(stdout.String(), "main ( 0 -- 0 )") {
		t.Errorf("effects listing = %q", stdout.String())
	}

	found := false
	for _, w := range report.Warnings {
		if w.Kind == checker.UndefinedFunction && w.Func == "broken" {
			found = true
		}
	}
	if !found {
		t.Errorf("no undefined function warning in %v", report.Warnings)
	}
	if !strings.Contains(stderr.String(), "warning: check warning: undefined function") {
		t.Errorf("warning not rendered: %q", stderr.String())
	}
}

func TestDisasm(t *testing.T) {
	c, stdout, _ := newCompiler(t, factorial)
	if err := c.Disasm(); err != nil {
		t.Fatal(err)
	}

	out := stdout.String()
	for _, want := range []string{
		"fun factorial (10 instructions) at 1:5",
		"fun main (3 instructions) at 9:5",
		"call factorial",
		"  end",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestDump(t *testing.T) {
	c, _, stderr := newCompiler(t, "fun main 1 print ret\n")
	c.Dump = true
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr.String(), "=== Program ===") || !strings.Contains(stderr.String(), "main") {
		t.Errorf("dump missing: %q", stderr.String())
	}
}
