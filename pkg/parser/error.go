package parser

import (
	"errors"
	"fmt"

	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

// ErrorKind classifies a parse error
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	MissingFunctionName
	MissingRet
	UnmatchedEnd
	UnclosedWhile
	DuplicateFunction
)

var strErrorKind = []string{
	"unexpected token",
	"missing function name",
	"missing ret",
	"end without while",
	"unclosed while",
	"duplicate function",
}

func (k ErrorKind) String() string {
	if int(k) < len(strErrorKind) {
		return strErrorKind[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a parse error. Parsing stops at the first one and no program is
// returned.
type Error struct {
	Kind  ErrorKind
	Pos   lexer.Position  // where the problem was detected
	Found lexer.TokenType // token at Pos
	Name  string          // function involved, if any
	Open  lexer.Position  // the fun or while left open, for MissingRet and UnclosedWhile
}

func (e *Error) Error() string {
	msg := "parse error: " + e.Kind.String()
	switch e.Kind {
	case MissingRet:
		msg += fmt.Sprintf(" in function `%s` (opened at line %d)", e.Name, e.Open.Line)
	case UnclosedWhile:
		msg += fmt.Sprintf(" in function `%s` (while at line %d)", e.Name, e.Open.Line)
	case DuplicateFunction:
		msg += fmt.Sprintf(" `%s` (first defined at line %d)", e.Name, e.Open.Line)
	case MissingFunctionName, UnexpectedToken, UnmatchedEnd:
		msg += fmt.Sprintf(", found '%s'", e.Found)
	}
	return msg + fmt.Sprintf(" at line %d, column %d", e.Pos.Line, e.Pos.Column)
}

// Incomplete reports whether the source simply stopped early, i.e. more
// input could still turn it into a valid program.
func (e *Error) Incomplete() bool {
	if e.Found != lexer.EOF {
		return false
	}
	switch e.Kind {
	case MissingRet, UnclosedWhile, MissingFunctionName:
		return true
	default:
		return false
	}
}

// IsIncomplete reports whether err is a parse error caused by input ending
// inside an open fun or while block.
func IsIncomplete(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Incomplete()
}

// handleTerminalError is called when a terminal on the stack doesn't match
// the current token.
func (p *Parser) handleTerminalError(expected string) {
	switch expected {
	case "id":
		// the only id terminal in the grammar follows fun
		p.addError(MissingFunctionName)
	case "ret":
		if p.currentToken.Type == lexer.END {
			p.addError(UnmatchedEnd)
		} else {
			p.addError(MissingRet)
		}
	case "end":
		p.addError(UnclosedWhile)
	default:
		p.addError(UnexpectedToken)
	}
}

// handleNonTerminalError is called when there is no production for the top
// non-terminal and the current token.
func (p *Parser) handleNonTerminalError(expected string) {
	switch expected {
	case "Body":
		if p.currentToken.Type != lexer.EOF && p.currentToken.Type != lexer.FUN {
			p.addError(UnexpectedToken)
		} else if p.cg.OpenLoops() > 0 {
			// input ended or a new fun started inside a body
			p.addError(UnclosedWhile)
		} else {
			p.addError(MissingRet)
		}
	default:
		p.addError(UnexpectedToken)
	}
}

// handleSemanticError turns a failed semantic action into a parse error
func (p *Parser) handleSemanticError(err error) {
	var redecl *codegen.RedeclarationError
	if errors.As(err, &redecl) {
		p.err = &Error{
			Kind:  DuplicateFunction,
			Pos:   redecl.Pos,
			Found: lexer.ID,
			Name:  redecl.Name,
			Open:  redecl.Prev,
		}
		return
	}

	p.addError(UnexpectedToken)
}

// addError records the parse error at the current token
func (p *Parser) addError(kind ErrorKind) {
	perr := &Error{
		Kind:  kind,
		Pos:   p.currentToken.Pos,
		Found: p.currentToken.Type,
	}

	if name, pos, ok := p.cg.CurrentFunction(); ok {
		perr.Name = name
		perr.Open = pos
	}
	if kind == UnclosedWhile {
		if pos, ok := p.cg.InnermostLoop(); ok {
			perr.Open = pos
		}
	}

	p.err = perr
}
