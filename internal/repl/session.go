package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sudo97/rorth/pkg/checker"
	"github.com/sudo97/rorth/pkg/color"
	"github.com/sudo97/rorth/pkg/feedback"
	"github.com/sudo97/rorth/pkg/interpreter"
	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/parser"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

// ErrQuit is returned by Eval for the :quit command
var ErrQuit = errors.New("quit")

// immediateName is the function wrapping input that is not a definition.
// The lexer cannot produce it as an identifier, so user functions never
// collide with it.
const immediateName = "<input>"

const helpText = `Input starting with fun defines functions; anything else runs at once
against the session stack.

  :stack   show the stack, bottom first
  :words   list defined functions and their stack effects
  :reset   forget all functions and clear the stack
  :help    show this message
  :quit    leave`

// Session holds the functions and the operand stack that persist between
// inputs.
type Session struct {
	Out      io.Writer     // printed values and command output
	Err      io.Writer     // diagnostics
	MaxSteps int           // step limit per input, 0 for none
	Timeout  time.Duration // wall clock limit per input, 0 for none
	NoColor  bool

	program *codegen.Program
	stack   []int64
}

// NewSession creates an empty session writing to out and diagnostics to errOut
func NewSession(out, errOut io.Writer) *Session {
	return &Session{
		Out:     out,
		Err:     errOut,
		program: codegen.NewProgram(),
	}
}

// Stack returns a copy of the session stack, bottom first
func (s *Session) Stack() []int64 {
	return append([]int64(nil), s.stack...)
}

// Program returns the functions defined so far
func (s *Session) Program() *codegen.Program {
	return s.program
}

// Incomplete reports whether src needs more lines before it can be
// evaluated: an unterminated definition or an open while.
func Incomplete(src string) bool {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return false
	}

	if isDefinition(tokens) {
		_, err = parser.Parse(tokens)
		return parser.IsIncomplete(err)
	}

	// without the closing ret, a body that is merely unfinished shows up
	// as an unclosed while at end of input
	_, err = parser.Parse(wrap(tokens, false))
	var perr *parser.Error
	return errors.As(err, &perr) && perr.Kind == parser.UnclosedWhile && perr.Found == lexer.EOF
}

// Eval handles one complete input: a command, a group of definitions or
// words to run immediately. Errors have already been reported to Err by the
// time they are returned, except ErrQuit.
func (s *Session) Eval(ctx context.Context, src string) error {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	file := feedback.NewFile("<repl>", src)

	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return s.report(file, err)
	}

	if isDefinition(tokens) {
		defs, err := parser.Parse(tokens)
		if err != nil {
			return s.report(file, err)
		}
		s.program = s.program.Merge(defs)
		log.Debug("Functions defined", "names", defs.Names())
		return nil
	}

	wrapped, err := parser.Parse(wrap(tokens, true))
	if err != nil {
		return s.report(file, err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	it := interpreter.NewInterpreter(s.program.Merge(wrapped),
		interpreter.WithWriter(s.Out),
		interpreter.WithStack(s.stack),
		interpreter.WithMaxSteps(s.MaxSteps),
		interpreter.WithContext(ctx),
	)
	if err := it.Run(immediateName); err != nil {
		// the stack is left as it was before the failed input
		return s.report(file, err)
	}

	s.stack = it.Stack()
	return nil
}

func (s *Session) command(cmd string) error {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return ErrQuit
	case ":stack", ":s":
		fmt.Fprintln(s.Out, FormatStack(s.stack))
	case ":words", ":w":
		report := checker.Check(s.program, "")
		for _, name := range s.program.Names() {
			fmt.Fprintf(s.Out, "%s %s\n", color.CyanText(name), report.Effects[name])
		}
	case ":reset":
		s.program = codegen.NewProgram()
		s.stack = nil
		fmt.Fprintln(s.Out, color.Info("session cleared"))
	case ":help", ":h":
		fmt.Fprintln(s.Out, helpText)
	default:
		fmt.Fprintf(s.Err, "unknown command %s. Type :help for a list.\n", cmd)
		return fmt.Errorf("unknown command %s", cmd)
	}
	return nil
}

func (s *Session) report(file *feedback.File, err error) error {
	if msg, ok := feedback.FromError(err); ok {
		fmt.Fprintln(s.Err, msg.Make(file, !s.NoColor))
	} else {
		fmt.Fprintln(s.Err, color.RedText(err.Error()))
	}
	return err
}

// FormatStack renders a stack as <depth> followed by its items, bottom first
func FormatStack(stack []int64) string {
	var b strings.Builder
	b.WriteString("<" + strconv.Itoa(len(stack)) + ">")
	for _, v := range stack {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

func isDefinition(tokens []lexer.Token) bool {
	return len(tokens) > 0 && tokens[0].Type == lexer.FUN
}

// wrap turns the tokens of immediate input into the body of a function
// named immediateName. Positions of the input tokens are kept.
func wrap(tokens []lexer.Token, closed bool) []lexer.Token {
	var start, end lexer.Position
	if len(tokens) > 0 {
		end = tokens[len(tokens)-1].Pos
	}

	out := make([]lexer.Token, 0, len(tokens)+3)
	out = append(out,
		lexer.NewToken(lexer.FUN, "fun", "fun", start),
		lexer.NewToken(lexer.ID, immediateName, immediateName, start),
	)
	for _, tok := range tokens {
		if tok.Type != lexer.EOF {
			out = append(out, tok)
		}
	}
	if closed {
		out = append(out, lexer.NewToken(lexer.RET, "ret", "ret", end))
	}
	return append(out, lexer.NewToken(lexer.EOF, "", "", end))
}
