package lexer

import "fmt"

const (
	msgMalformedNumber = "malformed number literal"
	msgNumberRange     = "number literal out of range"
	msgIllegalChar     = "unexpected character"
)

// Error is a lexical error. Lexing stops at the first one.
type Error struct {
	Pos    Position
	Lexeme string
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error: %s %q at line %d, column %d", e.Msg, e.Lexeme, e.Pos.Line, e.Pos.Column)
}
