package codegen

import (
	"fmt"

	"github.com/sudo97/rorth/pkg/lexer"
)

type Operation string

// List of VM operations
const (
	OpPush  Operation = "push"
	OpDup   Operation = "dup"
	OpPop   Operation = "pop"
	OpSwap  Operation = "swap"
	OpOver  Operation = "over"
	OpAdd   Operation = "+"
	OpSub   Operation = "-"
	OpMul   Operation = "*"
	OpDiv   Operation = "/"
	OpMod   Operation = "%"
	OpCall  Operation = "call"
	OpPrint Operation = "print"
	OpLoop  Operation = "while"
)

// Builtins maps the built-in words to their operation. Every other bare
// identifier in a body is a call.
var Builtins = map[string]Operation{
	"dup":   OpDup,
	"pop":   OpPop,
	"swap":  OpSwap,
	"over":  OpOver,
	"print": OpPrint,
}

// Instruction is one node of a function body. Loops own their body, so a
// function is a tree rather than a flat array with jump targets.
type Instruction struct {
	Op Operation

	Value int64         // operand of OpPush
	Name  string        // target of OpCall
	Body  []Instruction // body of OpLoop

	Pos lexer.Position // source position of the word
}

// String returns a string representation of the instruction
func (i Instruction) String() string {
	switch i.Op {
	case OpPush:
		return fmt.Sprintf("(%s, %d)", i.Op, i.Value)
	case OpCall:
		return fmt.Sprintf("(%s, %s)", i.Op, i.Name)
	case OpLoop:
		return fmt.Sprintf("(%s, %d instructions)", i.Op, len(i.Body))
	default:
		return fmt.Sprintf("(%s)", i.Op)
	}
}

// Arity returns how many operand stack items the instruction needs to be
// present before it runs. Calls and loops report 0; their needs depend on
// what they execute.
func (i Instruction) Arity() int {
	switch i.Op {
	case OpDup, OpPop, OpPrint:
		return 1
	case OpSwap, OpOver, OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return 2
	default:
		return 0
	}
}

// GetLexOperation maps a lexer token type to an arithmetic operation
func GetLexOperation(t lexer.TokenType) (Operation, bool) {
	switch t {
	case lexer.PLUS:
		return OpAdd, true
	case lexer.MINUS:
		return OpSub, true
	case lexer.MULT:
		return OpMul, true
	case lexer.DIV:
		return OpDiv, true
	case lexer.MOD:
		return OpMod, true
	default:
		return "", false
	}
}
