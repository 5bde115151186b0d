package codegen

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble writes every function of p in definition order. Each line holds
// the instruction's source position and its operation; loop bodies are
// indented one level below their while.
func Disassemble(w io.Writer, p *Program) {
	for i, name := range p.Names() {
		fn, _ := p.Lookup(name)
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "fun %s (%d instructions) at %s\n", fn.Name, countInstructions(fn.Body), fn.Pos)
		disassembleBody(w, fn.Body, 1)
	}
}

// DisassembleString is Disassemble into a string
func DisassembleString(p *Program) string {
	var b strings.Builder
	Disassemble(&b, p)
	return b.String()
}

func disassembleBody(w io.Writer, body []Instruction, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, in := range body {
		switch in.Op {
		case OpPush:
			fmt.Fprintf(w, "%6s %s%s %d\n", in.Pos, indent, in.Op, in.Value)
		case OpCall:
			fmt.Fprintf(w, "%6s %s%s %s\n", in.Pos, indent, in.Op, in.Name)
		case OpLoop:
			fmt.Fprintf(w, "%6s %s%s\n", in.Pos, indent, in.Op)
			disassembleBody(w, in.Body, depth+1)
			fmt.Fprintf(w, "%6s %send\n", "", indent)
		default:
			fmt.Fprintf(w, "%6s %s%s\n", in.Pos, indent, in.Op)
		}
	}
}

// countInstructions counts instructions including those nested in loops
func countInstructions(body []Instruction) int {
	n := len(body)
	for _, in := range body {
		if in.Op == OpLoop {
			n += countInstructions(in.Body)
		}
	}
	return n
}
