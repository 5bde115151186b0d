package interpreter

import (
	"errors"
	"fmt"

	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

// List of runtime traps for Errno
const (
	StackUnderflow = Errno(iota)
	UnresolvedCall
	DepthExceeded
	EntryNotFound
	StepLimitExceeded
	DivisionByZero
	Cancelled
)

var strError = []string{
	"stack underflow",
	"unresolved call",
	"nesting depth exceeded",
	"entry function not found",
	"step limit exceeded",
	"division by zero",
	"run cancelled",
}

// Errno describes the reason a run failed.
type Errno int

func (e Errno) Error() string {
	if int(e) < len(strError) {
		return strError[e]
	}
	return fmt.Sprintf("errno %d", int(e))
}

var ErrNotRunning = errors.New("interpreter is not running")

// Error describes the cause and the context of a failed run. errors.Is
// matches it against its Errno.
type Error struct {
	Errno Errno             // nature of the failure
	Err   error             // context error when Errno is Cancelled
	Func  string            // function executing when the run failed
	Op    codegen.Operation // instruction that failed, empty before the first one
	Name  string            // called or entry function name
	Pos   lexer.Position    // source position of the failed instruction
	Stack []int64           // operand stack at the time of failure, bottom first
}

func (e *Error) Error() string {
	msg := "runtime error: " + e.Errno.Error()
	switch e.Errno {
	case UnresolvedCall, EntryNotFound:
		msg += " `" + e.Name + "`"
	case Cancelled:
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	}

	if e.Op != "" {
		msg += fmt.Sprintf(" at '%s' in `%s`, line %d, column %d", e.Op, e.Func, e.Pos.Line, e.Pos.Column)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Errno, e.Err}
	}
	return []error{e.Errno}
}

func (i *Interpreter) newErrorFull(errno Errno, err error, in *codegen.Instruction) error {
	e := &Error{
		Errno: errno,
		Err:   err,
		Stack: i.stack.Array(),
	}

	if f := i.currentFrame(); f != nil {
		e.Func = f.FuncName
	}

	if in != nil {
		e.Op = in.Op
		e.Name = in.Name
		e.Pos = in.Pos
	}

	return e
}

func (i *Interpreter) newError(errno Errno, in *codegen.Instruction) error {
	return i.newErrorFull(errno, nil, in)
}
