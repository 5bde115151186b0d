package interpreter

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/sudo97/rorth/pkg/parser/codegen"
	"github.com/sudo97/rorth/pkg/stack"
)

// DefaultMaxDepth bounds the call stack (function calls plus active loop
// bodies) unless WithMaxDepth says otherwise.
const DefaultMaxDepth = 1024

// State is the lifecycle of a run
type State int

const (
	NotStarted State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Interpreter executes a Program. The Program is only read, so several
// interpreters may share one; each interpreter is single-threaded and owns its
// operand stack, call stack and output.
type Interpreter struct {
	program *codegen.Program // functions to run

	stack  *stack.Stack[int64]  // operand stack
	frames *stack.Stack[*Frame] // call stack (function and loop frames)
	output Output               // values printed so far

	initial []int64   // operand stack contents at the start of each run
	out     io.Writer // optional writer echoing each printed value

	ctx  context.Context
	done <-chan struct{}

	state State
	err   error

	trace    bool // log every dispatched instruction
	maxDepth int  // maximum call stack depth
	maxSteps int  // maximum steps (0 = unlimited)
	steps    int  // steps executed
}

type Option func(*Interpreter)

// WithWriter echoes every printed value to w, one per line, as it is printed
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps sets a maximum number of interpreter steps before the run fails
// with StepLimitExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithMaxDepth sets the maximum call stack depth before the run fails with
// DepthExceeded
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) { i.maxDepth = n }
}

// WithStack sets the operand stack contents (bottom first) each run starts from
func WithStack(values []int64) Option {
	return func(i *Interpreter) { i.initial = append([]int64(nil), values...) }
}

// WithContext makes the run fail with Cancelled once ctx is done. The context
// is checked between instruction dispatches.
func WithContext(ctx context.Context) Option {
	return func(i *Interpreter) { i.ctx = ctx }
}

// WithTrace logs every dispatched instruction at debug level
func WithTrace(trace bool) Option {
	return func(i *Interpreter) { i.trace = trace }
}

// NewInterpreter creates a new Interpreter instance
func NewInterpreter(program *codegen.Program, opts ...Option) *Interpreter {
	it := &Interpreter{
		program:  program,
		stack:    stack.NewStack[int64](),
		frames:   stack.NewStack[*Frame](),
		output:   make(Output, 0),
		ctx:      context.Background(),
		state:    NotStarted,
		maxDepth: DefaultMaxDepth,
		maxSteps: 0, // 0 => unlimited
	}

	for _, o := range opts {
		o(it)
	}

	if it.ctx == nil {
		it.ctx = context.Background()
	}
	it.done = it.ctx.Done()

	return it
}

// Execute runs entry of program to completion. On failure the output printed
// before the failure is returned together with the error.
func Execute(program *codegen.Program, entry string, opts ...Option) (Output, error) {
	it := NewInterpreter(program, opts...)
	err := it.Run(entry)
	return it.Output(), err
}

// Reset clears runtime state (stacks, output, counters) back to NotStarted
func (i *Interpreter) Reset() {
	i.stack.Clear()
	for _, v := range i.initial {
		i.stack.Push(v)
	}
	i.frames.Clear()
	i.output = make(Output, 0)
	i.steps = 0
	i.err = nil
	i.state = NotStarted
}

// Start begins a fresh run of the entry function. A missing entry fails the
// run before any instruction executes.
func (i *Interpreter) Start(entry string) error {
	i.Reset()

	fn, ok := i.program.Lookup(entry)
	if !ok {
		return i.fail(&Error{Errno: EntryNotFound, Name: entry, Stack: i.stack.Array()})
	}

	i.frames.Push(&Frame{FuncName: fn.Name, Body: fn.Body})
	i.state = Running
	log.Debug("Run started", "entry", entry, "stack", i.stack.Size())

	return nil
}

// Run executes the entry function until it returns or fails
func (i *Interpreter) Run(entry string) error {
	if err := i.Start(entry); err != nil {
		return err
	}

	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

// Step executes a single instruction, returning (halted, error)
func (i *Interpreter) Step() (bool, error) {
	if i.state != Running {
		if i.state == Completed {
			return true, nil
		}
		return false, ErrNotRunning
	}

	select {
	case <-i.done:
		return false, i.fail(i.newErrorFull(Cancelled, i.ctx.Err(), i.nextInstruction()))
	default:
	}

	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, i.fail(i.newError(StepLimitExceeded, i.nextInstruction()))
	}

	halted, err := coreStep(i)
	i.steps++

	if err != nil {
		return false, i.fail(err)
	}
	if halted {
		i.state = Completed
		log.Debug("Run completed", "steps", i.steps, "printed", len(i.output))
	}

	return halted, nil
}

// State returns the lifecycle state of the current run
func (i *Interpreter) State() State {
	return i.state
}

// Err returns the error that failed the run, if any
func (i *Interpreter) Err() error {
	return i.err
}

// Output returns the values printed so far
func (i *Interpreter) Output() Output {
	return append(Output(nil), i.output...)
}

// Stack returns a copy of the operand stack, bottom first
func (i *Interpreter) Stack() []int64 {
	return i.stack.Array()
}

// Steps returns the number of steps executed by the current run
func (i *Interpreter) Steps() int {
	return i.steps
}

// Depth returns the current call stack depth
func (i *Interpreter) Depth() int {
	return i.frames.Size()
}

// Program returns the program being run
func (i *Interpreter) Program() *codegen.Program {
	return i.program
}

// fail moves the run to Failed and records err
func (i *Interpreter) fail(err error) error {
	i.state = Failed
	i.err = err
	log.Debug("Run failed", "error", err, "steps", i.steps)
	return err
}

// currentFrame returns the current call frame, or nil if none
func (i *Interpreter) currentFrame() *Frame {
	f, ok := i.frames.Peek()
	if !ok {
		return nil
	}
	return f
}

// nextInstruction returns the instruction the next step would run, or the
// loop being re-checked, for error context
func (i *Interpreter) nextInstruction() *codegen.Instruction {
	f := i.currentFrame()
	if f == nil {
		return nil
	}
	if f.IP < len(f.Body) {
		return &f.Body[f.IP]
	}
	return f.Loop
}

// pushFrame enters a function or loop body, enforcing the depth limit
func (i *Interpreter) pushFrame(frame *Frame, in *codegen.Instruction) error {
	if i.maxDepth > 0 && i.frames.Size() >= i.maxDepth {
		return i.newError(DepthExceeded, in)
	}

	i.frames.Push(frame)
	return nil
}

// popFrame leaves the current function or loop body
func (i *Interpreter) popFrame() *Frame {
	f, _ := i.frames.Pop()
	return f
}
