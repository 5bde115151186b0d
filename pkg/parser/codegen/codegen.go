package codegen

import (
	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/stack"
)

// block is an instruction sequence still being filled: a function body or
// the body of an open while loop.
type block struct {
	instrs []Instruction
	pos    lexer.Position // position of the fun name or the while keyword
}

type Codegen struct {
	blocks       *stack.Stack[*block] // open bodies, innermost on top
	program      *Program             // functions closed so far
	function     *Function            // function being defined
	currentToken lexer.Token          // last token matched by the parser
}

// NewCodegen creates a new Codegen instance
func NewCodegen() *Codegen {
	return &Codegen{
		blocks:       stack.NewStack[*block](),
		program:      NewProgram(),
		function:     nil,
		currentToken: lexer.Token{},
	}
}

// GetProgram returns the generated program
func (c *Codegen) GetProgram() *Program {
	return c.program
}

// SetCurrentToken sets the current token being processed
func (c *Codegen) SetCurrentToken(token lexer.Token) {
	c.currentToken = token
}

// OpenLoops returns the number of while blocks not yet closed by end
func (c *Codegen) OpenLoops() int {
	if c.blocks.Size() == 0 {
		return 0
	}
	return c.blocks.Size() - 1
}

// InnermostLoop returns the position of the innermost open while
func (c *Codegen) InnermostLoop() (lexer.Position, bool) {
	if c.OpenLoops() == 0 {
		return lexer.Position{}, false
	}
	b, _ := c.blocks.Peek()
	return b.pos, true
}

// CurrentFunction returns the name and position of the function being defined
func (c *Codegen) CurrentFunction() (string, lexer.Position, bool) {
	if c.function == nil {
		return "", lexer.Position{}, false
	}
	return c.function.Name, c.function.Pos, true
}

// emit appends an instruction to the innermost open block
func (c *Codegen) emit(in Instruction) {
	b, ok := c.blocks.Peek()
	if !ok {
		return
	}
	b.instrs = append(b.instrs, in)
}

// openBlock starts a new instruction sequence at pos
func (c *Codegen) openBlock(pos lexer.Position) {
	c.blocks.Push(&block{instrs: make([]Instruction, 0), pos: pos})
}

// closeBlock finishes the innermost instruction sequence
func (c *Codegen) closeBlock() []Instruction {
	b, ok := c.blocks.Pop()
	if !ok {
		return nil
	}
	return b.instrs
}
