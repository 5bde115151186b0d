package interpreter

import "github.com/sudo97/rorth/pkg/parser/codegen"

// Frame is one entry of the call stack: a function body, or the body of a
// loop currently iterating inside one.
type Frame struct {
	FuncName string                // function this frame executes in
	Body     []codegen.Instruction // instruction sequence being executed
	IP       int                   // index of the next instruction in Body
	Loop     *codegen.Instruction  // the while owning Body, nil for a function frame
}

// IsLoop reports whether the frame runs a loop body
func (f *Frame) IsLoop() bool {
	return f.Loop != nil
}
