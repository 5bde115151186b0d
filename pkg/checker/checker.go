// Package checker estimates the stack effect of each function of a program
// without running it and reports code that is certain or likely to fail.
//
// Its findings are warnings: a program the checker flags may still run fine
// with a suitable initial stack, and the interpreter stays the authority.
package checker

import (
	"fmt"

	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

// Effect is the stack effect of a body: it reads Needs items that were on the
// stack before it started and changes the depth by Net. Known is false when a
// loop or call makes the effect data dependent.
type Effect struct {
	Needs int
	Net   int
	Known bool
}

func (e Effect) String() string {
	if !e.Known {
		return "( ? )"
	}
	return fmt.Sprintf("( %d -- %d )", e.Needs, e.Needs+e.Net)
}

// WarningKind classifies a finding
type WarningKind int

const (
	UndefinedFunction WarningKind = iota
	UnbalancedLoop
	EntryNeedsInput
	EntryMissing
)

var strWarningKind = []string{
	"undefined function",
	"unbalanced loop",
	"entry reads missing values",
	"entry function missing",
}

func (k WarningKind) String() string {
	if int(k) < len(strWarningKind) {
		return strWarningKind[k]
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning is one finding, tied to the instruction or function it concerns
type Warning struct {
	Kind WarningKind
	Func string
	Pos  lexer.Position
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (in `%s` at %s)", w.Kind, w.Msg, w.Func, w.Pos)
}

// Report holds the results of a check
type Report struct {
	Effects  map[string]Effect
	Warnings []Warning
}

type checker struct {
	program  *codegen.Program
	effects  map[string]Effect
	visiting map[string]bool
	warnings []Warning
}

// Check analyses every function of p, in definition order, and the entry
// function's requirements on the initial stack.
func Check(p *codegen.Program, entry string) Report {
	c := &checker{
		program:  p,
		effects:  make(map[string]Effect),
		visiting: make(map[string]bool),
	}

	for _, name := range p.Names() {
		c.function(name)
	}

	if fn, ok := p.Lookup(entry); !ok {
		c.warn(EntryMissing, entry, lexer.Position{}, fmt.Sprintf("no function named `%s`", entry))
	} else if eff := c.effects[entry]; eff.Needs > 0 {
		c.warn(EntryNeedsInput, entry, fn.Pos,
			fmt.Sprintf("reads %d value(s) below an empty stack and will underflow", eff.Needs))
	}

	return Report{Effects: c.effects, Warnings: c.warnings}
}

// function returns the memoized effect of a named function. Recursive
// functions are unknown.
func (c *checker) function(name string) Effect {
	if eff, ok := c.effects[name]; ok {
		return eff
	}
	if c.visiting[name] {
		return Effect{}
	}

	fn, ok := c.program.Lookup(name)
	if !ok {
		return Effect{}
	}

	c.visiting[name] = true
	eff := c.body(fn.Name, fn.Body)
	c.visiting[name] = false

	c.effects[name] = eff
	return eff
}

// body folds the effects of a sequence of instructions
func (c *checker) body(fn string, body []codegen.Instruction) Effect {
	depth, lowest := 0, 0
	known := true

	apply := func(needs, net int) {
		if depth-needs < lowest {
			lowest = depth - needs
		}
		depth += net
	}

	for _, in := range body {
		var eff Effect
		switch in.Op {
		case codegen.OpCall:
			if _, ok := c.program.Lookup(in.Name); !ok {
				c.warn(UndefinedFunction, fn, in.Pos, fmt.Sprintf("call to `%s` will fail", in.Name))
			}
			eff = c.function(in.Name)
		case codegen.OpLoop:
			eff = c.loop(fn, in)
		default:
			eff = instructionEffect(in)
		}

		// past an unknown effect the depth is data dependent; the rest of
		// the body is still walked for warnings
		if !known {
			continue
		}
		if !eff.Known {
			known = false
			apply(eff.Needs, 0)
			continue
		}
		apply(eff.Needs, eff.Net)
	}

	return Effect{Needs: -lowest, Net: depth, Known: known}
}

// loop computes the effect of a while: it peeks one item, and a body that
// does not leave the depth unchanged makes the result unknown.
func (c *checker) loop(fn string, in codegen.Instruction) Effect {
	body := c.body(fn, in.Body)
	if !body.Known {
		return Effect{Needs: max(1, body.Needs)}
	}

	if body.Net != 0 {
		c.warn(UnbalancedLoop, fn, in.Pos,
			fmt.Sprintf("body changes the stack depth by %+d per iteration", body.Net))
		return Effect{Needs: max(1, body.Needs)}
	}

	return Effect{Needs: max(1, body.Needs), Net: 0, Known: true}
}

// instructionEffect is the fixed effect of a non-call, non-loop instruction
func instructionEffect(in codegen.Instruction) Effect {
	switch in.Op {
	case codegen.OpPush:
		return Effect{Needs: 0, Net: 1, Known: true}
	case codegen.OpDup, codegen.OpOver:
		return Effect{Needs: in.Arity(), Net: 1, Known: true}
	case codegen.OpSwap:
		return Effect{Needs: 2, Net: 0, Known: true}
	case codegen.OpPop, codegen.OpPrint, codegen.OpAdd, codegen.OpSub, codegen.OpMul, codegen.OpDiv, codegen.OpMod:
		return Effect{Needs: in.Arity(), Net: -1, Known: true}
	default:
		return Effect{}
	}
}

func (c *checker) warn(kind WarningKind, fn string, pos lexer.Position, msg string) {
	c.warnings = append(c.warnings, Warning{Kind: kind, Func: fn, Pos: pos, Msg: msg})
}
