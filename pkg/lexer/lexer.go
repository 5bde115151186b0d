package lexer

import (
	"strconv"
	"unicode/utf8"
)

type Lexer struct {
	input    string // input string to be tokenized
	length   int    // length of the input string
	position int    // current position in the input string
	line     int    // current line number for error reporting
	column   int    // current column number for error reporting
}

// Create a new lexer instance
func NewLexer(s string) *Lexer {
	return &Lexer{
		input:    s,
		length:   len(s),
		position: 0,
		line:     1,
		column:   1,
	}
}

// Tokenize runs the lexer over the whole source. The returned slice always
// ends with an EOF token. The first illegal token aborts with an *Error.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	tokens := make([]Token, 0, len(source)/2)

	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return nil, &Error{Pos: tok.Pos, Lexeme: tok.Lexeme, Msg: tok.Literal}
		}

		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.currentPosition()

	// End of input
	if l.position >= l.length {
		return NewToken(EOF, "", "", start)
	}

	// A '-' glued to digits is a negative literal, a lone '-' is subtraction.
	// Anything else glued to it is not a valid word.
	if l.input[l.position] == '-' && l.position+1 < l.length {
		next := l.input[l.position+1]
		switch {
		case isDigit(next):
			_, lex, _ := MatchToken(l.input[l.position+1:])
			return l.number(start, "-"+lex)
		case !isSeparator(next):
			return l.illegal(start, l.wordAt(l.position+1)+1, msgMalformedNumber)
		}
	}

	remaining := l.input[l.position:]
	tokenType, lexeme, matched := MatchToken(remaining)

	if !matched {
		return l.illegal(start, len(lexeme), msgIllegalChar)
	}

	switch tokenType {
	case NUM:
		return l.number(start, lexeme)
	case ID:
		if kw, ok := IsKeyword(lexeme); ok {
			tokenType = kw
		}
	}

	l.advance(len(lexeme))
	return NewToken(tokenType, lexeme, lexeme, start)
}

// View next token without advancing the position
func (l *Lexer) Peek() Token {
	// save state
	cpos := l.position
	cline := l.line
	ccol := l.column

	token := l.NextToken()

	// restore state
	l.position = cpos
	l.line = cline
	l.column = ccol

	return token
}

// number finishes a numeric literal whose digits (with optional sign) are in
// lexeme. A digit run glued to letters such as 12ab is rejected as a whole.
func (l *Lexer) number(start Position, lexeme string) Token {
	end := l.position + len(lexeme)
	if end < l.length {
		if r, _ := utf8.DecodeRuneInString(l.input[end:]); isWordRune(r) {
			return l.illegal(start, l.wordAt(l.position+1)+1, msgMalformedNumber)
		}
	}

	if _, err := strconv.ParseInt(lexeme, 10, 64); err != nil {
		return l.illegal(start, len(lexeme), msgNumberRange)
	}

	l.advance(len(lexeme))
	return NewToken(NUM, lexeme, lexeme, start)
}

// illegal consumes n bytes and returns an ILLEGAL token carrying msg
func (l *Lexer) illegal(start Position, n int, msg string) Token {
	lexeme := l.input[l.position : l.position+n]
	l.advance(n)
	return NewToken(ILLEGAL, lexeme, msg, start)
}

// wordAt returns the length of the run of non-separator bytes starting at pos
func (l *Lexer) wordAt(pos int) int {
	n := 0
	for pos+n < l.length && !isSeparator(l.input[pos+n]) {
		n++
	}
	return n
}

// Skip whitespace and comments
func (l *Lexer) skipWhitespace() {
	for l.position < l.length {
		ch := l.input[l.position]

		if isSpace(ch) {
			// handle whitespace and new lines
			if ch == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
			l.position++

		} else if ch == '#' {
			// comment runs to the end of the line; the newline itself is
			// left for the next iteration
			for l.position < l.length && l.input[l.position] != '\n' {
				l.position++
				l.column++
			}
		} else {
			break
		}
	}
}

// Advance the lexer position by n characters
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.position >= l.length {
			break
		}

		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}

		l.position++
	}
}

// Get the current position of the lexer
func (l *Lexer) currentPosition() Position {
	return NewPosition(l.line, l.column, l.position)
}
