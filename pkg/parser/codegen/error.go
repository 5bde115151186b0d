package codegen

import (
	"fmt"

	"github.com/sudo97/rorth/pkg/lexer"
)

// RedeclarationError reports a second fun with an already used name
type RedeclarationError struct {
	Name string
	Pos  lexer.Position // second definition
	Prev lexer.Position // first definition
}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("redeclaration of function `%s` at line %d (first defined at line %d)", e.Name, e.Pos.Line, e.Prev.Line)
}
