package parser

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/parser/codegen"
	"github.com/sudo97/rorth/pkg/stack"
)

// TokenSource yields tokens one at a time. *lexer.Lexer is one.
type TokenSource interface {
	NextToken() lexer.Token
}

type Parser struct {
	stack        *stack.Stack[string] // LL(1) parsing stack
	tokens       TokenSource          // token source
	cg           *codegen.Codegen     // code generator instance
	currentToken lexer.Token          // current token
	table        ParsingTable         // LL(1) parsing table
	err          error                // first error, parsing stops there
}

// NewParser creates a new parser instance
func NewParser(src TokenSource) *Parser {
	p := &Parser{
		tokens: src,
		cg:     codegen.NewCodegen(),
		table:  NewParsingTable(),
		stack:  stack.NewStack("$", "Program"), // Program is start state and $ is bottom of the stack
	}

	// Initialize current token
	p.nextToken()

	return p
}

// Load tokenizes and parses source in one go
func Load(source string) (*codegen.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}

	return Parse(tokens)
}

// Parse builds a Program from a token sequence. The sequence need not end
// with EOF; running out of tokens counts as end of input.
func Parse(tokens []lexer.Token) (*codegen.Program, error) {
	p := NewParser(&sliceSource{tokens: tokens})
	p.Parse()

	if err := p.Err(); err != nil {
		return nil, err
	}

	return p.GetProgram(), nil
}

// Parse starts parsing the input program
func (p *Parser) Parse() {
	for p.err == nil && p.stack.Size() > 1 { // While stack is not empty (only $ remains)
		top, _ := p.stack.Pop()

		if p.isTerminal(top) {
			// Check if this is a semantic action
			if p.isSemanticAction(top) {
				if err := p.cg.ExecuteAction(top); err != nil {
					p.handleSemanticError(err)
				}
			} else if p.matchTerminal(top) {
				p.cg.SetCurrentToken(p.currentToken)
				p.nextToken()
			} else {
				p.handleTerminalError(top)
			}
			continue
		}

		// Non-terminal: pick production from table
		production, ok := p.table[top][p.currentToken.Type]
		if !ok {
			p.handleNonTerminalError(top)
			continue
		}

		rhsLength := len(production.RHS)
		// If production is ε, do not push anything
		if rhsLength == 0 || (rhsLength == 1 && production.RHS[0] == "ε") {
			continue
		}

		// Push RHS of production onto stack in reverse order (so first symbol is on top)
		for i := rhsLength - 1; i >= 0; i-- {
			if production.RHS[i] != "ε" {
				p.stack.Push(production.RHS[i])
			}
		}
	}

	if p.err == nil && p.currentToken.Type != lexer.EOF {
		p.addError(UnexpectedToken)
	}

	if p.err == nil {
		log.Debug("Program parsed", "functions", p.cg.GetProgram().Len())
	}
}

// nextToken advances to the next token. An illegal token from a streaming
// lexer stops the parse with a lexer error.
func (p *Parser) nextToken() {
	p.currentToken = p.tokens.NextToken()
	if p.currentToken.Type == lexer.ILLEGAL && p.err == nil {
		p.err = &lexer.Error{Pos: p.currentToken.Pos, Lexeme: p.currentToken.Lexeme, Msg: p.currentToken.Literal}
	}
}

// isSemanticAction checks if a symbol is a semantic action
func (p *Parser) isSemanticAction(symbol string) bool {
	return strings.HasPrefix(symbol, "@")
}

// Err returns the error that stopped parsing, if any
func (p *Parser) Err() error {
	return p.err
}

// GetProgram returns the parsed program, or nil if parsing failed
func (p *Parser) GetProgram() *codegen.Program {
	if p.err != nil {
		return nil
	}
	return p.cg.GetProgram()
}

// sliceSource feeds a pre-lexed token slice to the parser
type sliceSource struct {
	tokens []lexer.Token
	pos    int
}

func (s *sliceSource) NextToken() lexer.Token {
	if s.pos >= len(s.tokens) {
		var last lexer.Position
		if n := len(s.tokens); n > 0 {
			last = s.tokens[n-1].Pos
		}
		return lexer.NewToken(lexer.EOF, "", "", last)
	}

	tok := s.tokens[s.pos]
	s.pos++
	return tok
}
