package lexer

import (
	"fmt"
)

type TokenType int

type Token struct {
	Type    TokenType // Type of the token
	Lexeme  string    // Actual string from source code
	Literal string    // Literal value (if applicable), empty string if not
	Pos     Position  // Position in source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, Pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     Pos,
	}
}

const (
	EOF TokenType = iota // End of file

	FUN   // fun
	RET   // ret
	WHILE // while
	END   // end

	ID  // id (identifier, also built-in words such as dup or print)
	NUM // num (signed integer literal)

	PLUS  // +
	MINUS // -
	MULT  // *
	DIV   // /
	MOD   // %
	DOT   // . (lexed, but no instruction uses it)

	ILLEGAL // illegal token
)

// Keywords holds the reserved words. Built-in words like dup or print are
// plain identifiers at this level.
var Keywords = map[string]TokenType{
	"fun":   FUN,
	"ret":   RET,
	"while": WHILE,
	"end":   END,
}

var tokenNames = map[TokenType]string{
	FUN:     "fun",
	RET:     "ret",
	WHILE:   "while",
	END:     "end",
	PLUS:    "+",
	MINUS:   "-",
	MULT:    "*",
	DIV:     "/",
	MOD:     "%",
	DOT:     ".",
	ID:      "id",
	NUM:     "num",
	ILLEGAL: "illegal",
	EOF:     "$",
}

// TokenToString converts a TokenType to its string representation
func (t Token) TokenToString() (string, bool) {
	str, ok := tokenNames[t.Type]
	return str, ok
}

// String returns a string representation of the Token
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("T_{%s, %v, nil, %s}",
			t.Type, t.Lexeme, t.Pos.String())
	}

	return fmt.Sprintf("T_{%s, %v, %q, %s}",
		t.Type, t.Lexeme, t.Literal, t.Pos.String())
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := (Token{Type: t}).TokenToString(); ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// IsKeyword checks if the given identifier is a keyword and returns its TokenType if it is
func IsKeyword(identifier string) (TokenType, bool) {
	tokenType, ok := Keywords[identifier]
	return tokenType, ok
}
