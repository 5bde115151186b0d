package codegen

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
)

// functionStartAction opens a function named by the current token
func (c *Codegen) functionStartAction() error {
	name := c.currentToken.Lexeme
	pos := c.currentToken.Pos

	if prev, exists := c.program.Lookup(name); exists {
		return &RedeclarationError{Name: name, Pos: pos, Prev: prev.Pos}
	}

	c.function = &Function{Name: name, Pos: pos}
	c.openBlock(pos)
	return nil
}

// funcEndAction closes the current function and records it in the program
func (c *Codegen) funcEndAction() error {
	if c.function == nil {
		return fmt.Errorf("ret outside of a function")
	}

	c.function.Body = c.closeBlock()
	c.program.define(c.function)
	log.Debug("Function defined", "name", c.function.Name, "instructions", len(c.function.Body))

	c.function = nil
	return nil
}

// pushAction emits a literal push of the current number token
func (c *Codegen) pushAction() error {
	n, err := strconv.ParseInt(c.currentToken.Literal, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid literal %q: %w", c.currentToken.Literal, err)
	}

	c.emit(Instruction{Op: OpPush, Value: n, Pos: c.currentToken.Pos})
	return nil
}

// wordAction emits a built-in operation or, for any other identifier, a call.
// Call targets are resolved when the program runs.
func (c *Codegen) wordAction() error {
	name := c.currentToken.Lexeme
	if op, ok := Builtins[name]; ok {
		c.emit(Instruction{Op: op, Pos: c.currentToken.Pos})
		return nil
	}

	c.emit(Instruction{Op: OpCall, Name: name, Pos: c.currentToken.Pos})
	return nil
}

// binaryOpAction emits the arithmetic operation of the current token
func (c *Codegen) binaryOpAction() error {
	op, ok := GetLexOperation(c.currentToken.Type)
	if !ok {
		return fmt.Errorf("token %s is not an arithmetic operator", c.currentToken.Type)
	}

	c.emit(Instruction{Op: op, Pos: c.currentToken.Pos})
	return nil
}

// loopStartAction opens a loop body at the current while token
func (c *Codegen) loopStartAction() error {
	c.openBlock(c.currentToken.Pos)
	return nil
}

// loopEndAction closes the innermost loop body and emits the loop into its parent
func (c *Codegen) loopEndAction() error {
	if c.OpenLoops() == 0 {
		return fmt.Errorf("end without while")
	}

	b, _ := c.blocks.Peek()
	body := c.closeBlock()
	c.emit(Instruction{Op: OpLoop, Body: body, Pos: b.pos})
	return nil
}

// ExecuteAction executes the semantic action corresponding to the given action name
func (c *Codegen) ExecuteAction(actionName string) error {
	SemanticActions := map[string]func() error{
		"@func_start": c.functionStartAction,
		"@func_end":   c.funcEndAction,
		"@push":       c.pushAction,
		"@word":       c.wordAction,
		"@binop":      c.binaryOpAction,
		"@loop_start": c.loopStartAction,
		"@loop_end":   c.loopEndAction,
	}

	if action, exists := SemanticActions[actionName]; exists {
		return action()
	}

	log.Error("Unknown semantic action", "action", actionName)
	return fmt.Errorf("unknown semantic action %q", actionName)
}
