package interpreter

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kr/pretty"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

// coreStep is the main single-step execution function.
// It returns (halted, error).
func coreStep(i *Interpreter) (bool, error) {
	f := i.currentFrame()
	if f == nil {
		return true, nil
	}

	// end of a body: re-check a loop, or return from a function
	if f.IP >= len(f.Body) {
		if f.IsLoop() {
			return false, i.loopCheck(f)
		}

		i.popFrame()
		if i.trace {
			log.Debug("ret", "func", f.FuncName, "depth", i.frames.Size())
		}
		return i.frames.Size() == 0, nil
	}

	in := &f.Body[f.IP]
	f.IP++

	if i.trace {
		log.Debug("step", "func", f.FuncName, "pos", in.Pos, "op", in, "stack", pretty.Sprint(i.stack.Array()))
	}

	if i.stack.Size() < in.Arity() {
		return false, i.newError(StackUnderflow, in)
	}

	switch in.Op {
	case codegen.OpPush:
		i.stack.Push(in.Value)

	case codegen.OpDup:
		top, _ := i.stack.Peek()
		i.stack.Push(top)

	case codegen.OpPop:
		i.stack.Pop()

	case codegen.OpSwap:
		a, _ := i.stack.Pop()
		b, _ := i.stack.Pop()
		i.stack.Push(a)
		i.stack.Push(b)

	case codegen.OpOver:
		second, _ := i.stack.PeekAt(1)
		i.stack.Push(second)

	case codegen.OpAdd, codegen.OpSub, codegen.OpMul, codegen.OpDiv, codegen.OpMod:
		if in.Op == codegen.OpDiv || in.Op == codegen.OpMod {
			if divisor, _ := i.stack.Peek(); divisor == 0 {
				return false, i.newError(DivisionByZero, in)
			}
		}

		// a was pushed last: b op a reads left to right
		a, _ := i.stack.Pop()
		b, _ := i.stack.Pop()
		res, err := evalBinary(in.Op, b, a)
		if err != nil {
			return false, err
		}
		i.stack.Push(res)

	case codegen.OpPrint:
		v, _ := i.stack.Pop()
		i.output = append(i.output, v)
		if i.out != nil {
			fmt.Fprintf(i.out, "%d\n", v)
		}

	case codegen.OpCall:
		fn, ok := i.program.Lookup(in.Name)
		if !ok {
			return false, i.newError(UnresolvedCall, in)
		}
		if err := i.pushFrame(&Frame{FuncName: fn.Name, Body: fn.Body}, in); err != nil {
			return false, err
		}

	case codegen.OpLoop:
		top, ok := i.stack.Peek()
		if !ok {
			return false, i.newError(StackUnderflow, in)
		}
		if top != 0 {
			frame := &Frame{FuncName: f.FuncName, Body: in.Body, Loop: in}
			if err := i.pushFrame(frame, in); err != nil {
				return false, err
			}
		}

	default:
		return false, fmt.Errorf("unhandled op %q at %s", in.Op, in.Pos)
	}

	return false, nil
}

// loopCheck runs after a loop body finished: the top of stack is peeked,
// never consumed. Nonzero runs the body again, zero leaves the loop.
func (i *Interpreter) loopCheck(f *Frame) error {
	top, ok := i.stack.Peek()
	if !ok {
		return i.newError(StackUnderflow, f.Loop)
	}

	if top != 0 {
		f.IP = 0
		return nil
	}

	i.popFrame()
	return nil
}

// evalBinary applies an arithmetic operation to b (pushed first) and a.
// Overflow wraps around. The caller rules out a zero divisor.
func evalBinary(op codegen.Operation, b, a int64) (int64, error) {
	switch op {
	case codegen.OpAdd:
		return b + a, nil
	case codegen.OpSub:
		return b - a, nil
	case codegen.OpMul:
		return b * a, nil
	case codegen.OpDiv:
		return b / a, nil
	case codegen.OpMod:
		return b % a, nil
	default:
		return 0, fmt.Errorf("unsupported binary op: %s", op)
	}
}
