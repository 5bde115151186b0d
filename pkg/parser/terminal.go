package parser

import (
	"strings"

	"github.com/sudo97/rorth/pkg/lexer"
)

var terminals = map[string]lexer.TokenType{
	"fun":   lexer.FUN,
	"ret":   lexer.RET,
	"while": lexer.WHILE,
	"end":   lexer.END,
	"id":    lexer.ID,
	"num":   lexer.NUM,
	"+":     lexer.PLUS,
	"-":     lexer.MINUS,
	"*":     lexer.MULT,
	"/":     lexer.DIV,
	"%":     lexer.MOD,
	"$":     lexer.EOF,
}

// isTerminal checks if a symbol is a terminal
func (p *Parser) isTerminal(symbol string) bool {
	// Semantic actions are considered terminals
	if strings.HasPrefix(symbol, "@") {
		return true
	}

	_, ok := terminals[symbol]
	return ok
}

// matchTerminal checks if the current token matches the expected terminal
func (p *Parser) matchTerminal(expected string) bool {
	tokenType, ok := terminals[expected]
	return ok && p.currentToken.Type == tokenType
}
