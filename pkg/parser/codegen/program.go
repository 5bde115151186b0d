package codegen

import (
	"github.com/sudo97/rorth/pkg/lexer"
)

// Function is a named instruction sequence. The closing ret is implied by
// the end of Body.
type Function struct {
	Name string
	Body []Instruction
	Pos  lexer.Position // position of the name
}

// Program maps function names to their bodies. It is built once by the
// parser and never mutated afterwards, so one Program may back any number of
// concurrent runs.
type Program struct {
	functions map[string]*Function
	order     []string
}

// NewProgram creates an empty program
func NewProgram() *Program {
	return &Program{
		functions: make(map[string]*Function),
		order:     make([]string, 0),
	}
}

// Lookup returns the function with the given name
func (p *Program) Lookup(name string) (*Function, bool) {
	if p == nil {
		return nil, false
	}
	fn, ok := p.functions[name]
	return fn, ok
}

// Names returns function names in definition order
func (p *Program) Names() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.order...)
}

// Len returns the number of defined functions
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Merge returns a new program holding the functions of p overlaid with
// those of other. Definitions in other replace same-named ones in p.
func (p *Program) Merge(other *Program) *Program {
	merged := NewProgram()
	for _, src := range []*Program{p, other} {
		for _, name := range src.Names() {
			fn, _ := src.Lookup(name)
			merged.define(fn)
		}
	}
	return merged
}

// define adds or replaces a function, keeping the first definition order
func (p *Program) define(fn *Function) {
	if _, exists := p.functions[fn.Name]; !exists {
		p.order = append(p.order, fn.Name)
	}
	p.functions[fn.Name] = fn
}
