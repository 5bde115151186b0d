package parser

import "github.com/sudo97/rorth/pkg/lexer"

type Production struct {
	LHS string
	RHS []string
}

type ParsingTable map[string]map[lexer.TokenType]Production

var grammar = []Production{
	{}, // 0 - empty
	{LHS: "Program", RHS: []string{"FuncList"}}, // 1

	{LHS: "FuncList", RHS: []string{"Func", "FuncList"}}, // 2
	{LHS: "FuncList", RHS: []string{"ε"}},                // 3

	{LHS: "Func", RHS: []string{"fun", "id", "@func_start", "Body", "ret", "@func_end"}}, // 4

	{LHS: "Body", RHS: []string{"Instr", "Body"}}, // 5
	{LHS: "Body", RHS: []string{"ε"}},             // 6

	{LHS: "Instr", RHS: []string{"num", "@push"}}, // 7
	{LHS: "Instr", RHS: []string{"id", "@word"}},  // 8
	{LHS: "Instr", RHS: []string{"+", "@binop"}},  // 9
	{LHS: "Instr", RHS: []string{"-", "@binop"}},  // 10
	{LHS: "Instr", RHS: []string{"*", "@binop"}},  // 11
	{LHS: "Instr", RHS: []string{"/", "@binop"}},  // 12
	{LHS: "Instr", RHS: []string{"%", "@binop"}},  // 13

	{LHS: "Instr", RHS: []string{"while", "@loop_start", "Body", "end", "@loop_end"}}, // 14
}

// NewParsingTable creates and returns a new LL(1) parsing table
func NewParsingTable() ParsingTable {
	return ParsingTable{
		"Program": {
			lexer.FUN: grammar[1],
			lexer.EOF: grammar[1],
		},

		"FuncList": {
			lexer.FUN: grammar[2],
			lexer.EOF: grammar[3],
		},

		"Func": {
			lexer.FUN: grammar[4],
		},

		// Body is followed by ret in a function and by end in a loop, so both
		// select the empty production; the terminal match decides which one
		// was actually expected.
		"Body": {
			lexer.NUM:   grammar[5],
			lexer.ID:    grammar[5],
			lexer.PLUS:  grammar[5],
			lexer.MINUS: grammar[5],
			lexer.MULT:  grammar[5],
			lexer.DIV:   grammar[5],
			lexer.MOD:   grammar[5],
			lexer.WHILE: grammar[5],
			lexer.RET:   grammar[6],
			lexer.END:   grammar[6],
		},

		"Instr": {
			lexer.NUM:   grammar[7],
			lexer.ID:    grammar[8],
			lexer.PLUS:  grammar[9],
			lexer.MINUS: grammar[10],
			lexer.MULT:  grammar[11],
			lexer.DIV:   grammar[12],
			lexer.MOD:   grammar[13],
			lexer.WHILE: grammar[14],
		},
	}
}
