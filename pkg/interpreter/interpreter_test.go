package interpreter_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/sudo97/rorth/pkg/interpreter"
	"github.com/sudo97/rorth/pkg/parser"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

const factorial = `# computes 5!
fun factorial
  1 swap          # acc n
  while
    swap over *   # n acc*n
    swap 1 -      # acc n-1
  end
  pop
ret

fun main
  5 factorial print
ret
`

func mustLoad(t *testing.T, source string) *codegen.Program {
	t.Helper()
	program, err := parser.Load(source)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return program
}

func TestFactorialEndToEnd(t *testing.T) {
	out, err := interpreter.Execute(mustLoad(t, factorial), "main")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !slices.Equal(out, interpreter.Output{120}) {
		t.Errorf("output: got %v, want [120]", out)
	}
}

func TestFactorialLeavesResult(t *testing.T) {
	it := interpreter.NewInterpreter(mustLoad(t, factorial), interpreter.WithStack([]int64{5}))
	if err := it.Run("factorial"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := it.Stack(); !slices.Equal(got, []int64{120}) {
		t.Errorf("stack: got %v, want [120]", got)
	}
	if it.State() != interpreter.Completed {
		t.Errorf("state: got %s, want completed", it.State())
	}
}

func TestStackEffects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		start []int64
		want  []int64
	}{
		{"push", "7 -2", nil, []int64{7, -2}},
		{"dup pop is a no-op", "dup pop", []int64{1, 2}, []int64{1, 2}},
		{"swap swap is a no-op", "swap swap", []int64{1, 2}, []int64{1, 2}},
		{"swap", "swap", []int64{1, 2}, []int64{2, 1}},
		{"over", "over", []int64{1, 2}, []int64{1, 2, 1}},
		{"over swap pop", "over swap pop", []int64{1, 2}, []int64{1, 1}},
		{"dup", "dup", []int64{4}, []int64{4, 4}},
		{"pop", "pop", []int64{4, 5}, []int64{4}},
		{"add", "+", []int64{2, 3}, []int64{5}},
		{"sub reads left to right", "-", []int64{10, 3}, []int64{7}},
		{"counter minus one", "1 -", []int64{5}, []int64{4}},
		{"mul", "*", []int64{-4, 3}, []int64{-12}},
		{"div truncates", "/", []int64{7, 2}, []int64{3}},
		{"div negative", "/", []int64{-7, 2}, []int64{-3}},
		{"mod", "%", []int64{7, 3}, []int64{1}},
		{"add wraps", "1 +", []int64{math.MaxInt64}, []int64{math.MinInt64}},
		{"print consumes", "print", []int64{1, 2}, []int64{1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			program := mustLoad(t, "fun f "+test.body+" ret")
			it := interpreter.NewInterpreter(program, interpreter.WithStack(test.start))
			if err := it.Run("f"); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := it.Stack(); !slices.Equal(got, test.want) {
				t.Errorf("stack: got %v, want %v", got, test.want)
			}
		})
	}
}

func TestLoopWithZeroSkipsBody(t *testing.T) {
	program := mustLoad(t, "fun main 0 while 99 print end ret")
	it := interpreter.NewInterpreter(program)
	if err := it.Run("main"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out := it.Output(); len(out) != 0 {
		t.Errorf("output: got %v, want none", out)
	}
	if got := it.Stack(); !slices.Equal(got, []int64{0}) {
		t.Errorf("stack: got %v, want [0]", got)
	}
}

func TestNestedLoops(t *testing.T) {
	source := `
fun main
  2 while
    3 while
      dup print
      1 -
    end
    pop
    1 -
  end
  pop
ret`
	out, err := interpreter.Execute(mustLoad(t, source), "main")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if want := (interpreter.Output{3, 2, 1, 3, 2, 1}); !slices.Equal(out, want) {
		t.Errorf("output: got %v, want %v", out, want)
	}
}

func TestCallsInsideLoops(t *testing.T) {
	source := `
fun show dup print ret
fun main
  3 while show 1 - end pop
ret`
	out, err := interpreter.Execute(mustLoad(t, source), "main")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if want := (interpreter.Output{3, 2, 1}); !slices.Equal(out, want) {
		t.Errorf("output: got %v, want %v", out, want)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		entry  string
		errno  interpreter.Errno
		line   int
		output interpreter.Output
	}{
		{"dup on empty stack", "fun main\n dup\nret", "main", interpreter.StackUnderflow, 2, nil},
		{"sub with one item", "fun main 1 -\nret", "main", interpreter.StackUnderflow, 1, nil},
		{"print on empty stack", "fun main 1 print print ret", "main", interpreter.StackUnderflow, 1, interpreter.Output{1}},
		{"while on empty stack", "fun main\n\n while end ret", "main", interpreter.StackUnderflow, 3, nil},
		{"body consumes the condition", "fun main 3 while pop end ret", "main", interpreter.StackUnderflow, 1, nil},
		{"unresolved call", "fun main 1 print\n nowhere\nret", "main", interpreter.UnresolvedCall, 2, interpreter.Output{1}},
		{"division by zero", "fun main 1 0 / ret", "main", interpreter.DivisionByZero, 1, nil},
		{"modulo by zero", "fun main 1 0 % ret", "main", interpreter.DivisionByZero, 1, nil},
		{"missing entry", "fun main ret", "start", interpreter.EntryNotFound, 0, nil},
		{"unbounded recursion", "fun main\n main\nret", "main", interpreter.DepthExceeded, 2, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := interpreter.Execute(mustLoad(t, test.source), test.entry)
			if !errors.Is(err, test.errno) {
				t.Fatalf("expected %s, got %v", test.errno, err)
			}

			var rerr *interpreter.Error
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *interpreter.Error, got %T", err)
			}
			if rerr.Pos.Line != test.line {
				t.Errorf("line: got %d, want %d", rerr.Pos.Line, test.line)
			}
			if !slices.Equal(out, test.output) {
				t.Errorf("partial output: got %v, want %v", out, test.output)
			}
		})
	}
}

func TestUnresolvedCallNamesTarget(t *testing.T) {
	_, err := interpreter.Execute(mustLoad(t, "fun main helper ret"), "main")

	var rerr *interpreter.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *interpreter.Error, got %v", err)
	}
	if rerr.Name != "helper" || rerr.Func != "main" {
		t.Errorf("got name %q in %q, want helper in main", rerr.Name, rerr.Func)
	}
}

func TestEntryNotFoundRunsNothing(t *testing.T) {
	it := interpreter.NewInterpreter(mustLoad(t, "fun main 1 print ret"))
	err := it.Run("missing")
	if !errors.Is(err, interpreter.EntryNotFound) {
		t.Fatalf("expected EntryNotFound, got %v", err)
	}
	if it.Steps() != 0 || len(it.Output()) != 0 {
		t.Errorf("expected no execution, got %d steps and output %v", it.Steps(), it.Output())
	}
	if it.State() != interpreter.Failed {
		t.Errorf("state: got %s, want failed", it.State())
	}
}

func TestMaxDepth(t *testing.T) {
	source := "fun main 1 while dive end ret\nfun dive 1 while dive end ret"
	it := interpreter.NewInterpreter(mustLoad(t, source), interpreter.WithMaxDepth(10))
	err := it.Run("main")
	if !errors.Is(err, interpreter.DepthExceeded) {
		t.Fatalf("expected DepthExceeded, got %v", err)
	}
	if it.Depth() != 10 {
		t.Errorf("depth at failure: got %d, want 10", it.Depth())
	}
}

func TestStepLimit(t *testing.T) {
	// the counter moves away from zero and never terminates
	source := "fun main -1 while 1 - end ret"
	it := interpreter.NewInterpreter(mustLoad(t, source), interpreter.WithMaxSteps(1000))
	err := it.Run("main")
	if !errors.Is(err, interpreter.StepLimitExceeded) {
		t.Fatalf("expected StepLimitExceeded, got %v", err)
	}
	if it.Steps() != 1000 {
		t.Errorf("steps: got %d, want 1000", it.Steps())
	}
}

func TestEmptyLoopCountsSteps(t *testing.T) {
	it := interpreter.NewInterpreter(mustLoad(t, "fun main 1 while end ret"), interpreter.WithMaxSteps(50))
	if err := it.Run("main"); !errors.Is(err, interpreter.StepLimitExceeded) {
		t.Fatalf("expected StepLimitExceeded, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := interpreter.Execute(mustLoad(t, "fun main 1 while end ret"), "main", interpreter.WithContext(ctx))
	if !errors.Is(err, interpreter.Cancelled) {
		t.Fatalf("expected Cancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected the context error to be wrapped, got %v", err)
	}
}

func TestWriterEcho(t *testing.T) {
	var buf bytes.Buffer
	out, err := interpreter.Execute(mustLoad(t, "fun main 1 print 2 print ret"), "main", interpreter.WithWriter(&buf))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if buf.String() != "1\n2\n" {
		t.Errorf("writer: got %q", buf.String())
	}
	if out.String() != buf.String() {
		t.Errorf("Output.String: got %q, want %q", out.String(), buf.String())
	}
}

func TestNoResumeAfterFailure(t *testing.T) {
	it := interpreter.NewInterpreter(mustLoad(t, "fun main pop ret"))
	if err := it.Run("main"); !errors.Is(err, interpreter.StackUnderflow) {
		t.Fatalf("expected StackUnderflow, got %v", err)
	}

	if _, err := it.Step(); !errors.Is(err, interpreter.ErrNotRunning) {
		t.Errorf("Step after failure: expected ErrNotRunning, got %v", err)
	}
	if !errors.Is(it.Err(), interpreter.StackUnderflow) {
		t.Errorf("Err: got %v", it.Err())
	}

	// a fresh run is the only way forward
	it = interpreter.NewInterpreter(mustLoad(t, "fun main pop ret"), interpreter.WithStack([]int64{1}))
	if err := it.Run("main"); err != nil {
		t.Fatalf("fresh run: %v", err)
	}
	if halted, err := it.Step(); !halted || err != nil {
		t.Errorf("Step after completion: got (%v, %v), want (true, nil)", halted, err)
	}
}

func TestStepByStep(t *testing.T) {
	it := interpreter.NewInterpreter(mustLoad(t, "fun main 2 3 + print ret"))
	if it.State() != interpreter.NotStarted {
		t.Fatalf("state: got %s, want not started", it.State())
	}
	if err := it.Start("main"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 2; i++ {
		if halted, err := it.Step(); halted || err != nil {
			t.Fatalf("Step: got (%v, %v)", halted, err)
		}
	}
	if got := it.Stack(); !slices.Equal(got, []int64{2, 3}) {
		t.Errorf("stack after two pushes: got %v", got)
	}
	if it.State() != interpreter.Running {
		t.Errorf("state: got %s, want running", it.State())
	}
}

func TestConcurrentRunsShareProgram(t *testing.T) {
	program := mustLoad(t, factorial)

	var wg sync.WaitGroup
	results := make([]interpreter.Output, 8)
	errs := make([]error, 8)
	for n := range results {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[n], errs[n] = interpreter.Execute(program, "main")
		}()
	}
	wg.Wait()

	for n := range results {
		if errs[n] != nil {
			t.Errorf("run %d: %v", n, errs[n])
		}
		if !slices.Equal(results[n], interpreter.Output{120}) {
			t.Errorf("run %d: got %v", n, results[n])
		}
	}
}
