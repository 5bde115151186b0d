package lexer

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Token regex patterns
var tokenRegexes = map[TokenType]*regexp.Regexp{
	PLUS:  regexp.MustCompile(`^\+`),
	MINUS: regexp.MustCompile(`^-`),
	MULT:  regexp.MustCompile(`^\*`),
	DIV:   regexp.MustCompile(`^/`),
	MOD:   regexp.MustCompile(`^%`),
	DOT:   regexp.MustCompile(`^\.`),

	NUM: regexp.MustCompile(`^[0-9]+`),
	ID:  regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*`),
}

var (
	whitespaceRegex = regexp.MustCompile(`^[ \t\n\r\v\f]+`)
	commentRegex    = regexp.MustCompile(`^#[^\n]*`)
)

// Token precedence order for matching
var tokenPrecedenceOrder = []TokenType{
	PLUS, MINUS, MULT, DIV, MOD, DOT, NUM, ID,
}

// MatchToken matches the token at the start of the string. Whitespace and
// comments are reported as EOF with a non-empty lexeme so the caller can skip
// them. Keywords come back as ID and are resolved by the lexer.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := commentRegex.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if regex, ok := tokenRegexes[tokenType]; ok {
			if match := regex.FindString(s); match != "" {
				return tokenType, match, true
			}
		}
	}

	_, size := utf8.DecodeRuneInString(s)
	return ILLEGAL, s[:size], false
}

// Check if a byte is a digit
func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isWordRune reports whether r may continue an identifier or number run
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isSpace reports whether the byte is whitespace
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// isSeparator reports whether the byte ends a word: whitespace or a comment
func isSeparator(b byte) bool {
	return isSpace(b) || b == '#'
}
