package feedback

import (
	"errors"
	"strings"
	"testing"

	"github.com/sudo97/rorth/pkg/checker"
	"github.com/sudo97/rorth/pkg/interpreter"
	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/parser"
)

func TestLexErrorMessage(t *testing.T) {
	src := "fun main\n  1 12ab print\nret\n"
	_, err := parser.Load(src)
	if err == nil {
		t.Fatal("expected a lex error")
	}

	msg, ok := FromError(err)
	if !ok {
		t.Fatalf("FromError did not recognise %T", err)
	}
	if msg.Classification != LexError {
		t.Errorf("classification = %q, want %q", msg.Classification, LexError)
	}

	got := msg.Make(NewFile("bad.rf", src), false)
	want := strings.Join([]string{
		"error: lex error: malformed number literal",
		"  --> bad.rf:2:5",
		"   |",
		" 2 |   1 12ab print",
		"   |     ^^^^ malformed number literal \"12ab\"",
	}, "\n")
	if got != want {
		t.Errorf("Make() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseErrorMessage(t *testing.T) {
	src := "fun main\n  1 print\n  end\nret\n"
	_, err := parser.Load(src)

	msg, ok := FromError(err)
	if !ok {
		t.Fatalf("FromError did not recognise %v", err)
	}
	if msg.Classification != ParseError {
		t.Errorf("classification = %q, want %q", msg.Classification, ParseError)
	}
	if msg.Pos.Line != 3 {
		t.Errorf("line = %d, want 3", msg.Pos.Line)
	}

	out := msg.Make(NewFile("bad.rf", src), false)
	if !strings.Contains(out, " 3 |   end") {
		t.Errorf("excerpt missing offending line:\n%s", out)
	}
	if !strings.Contains(out, "|   ^ end without while") {
		t.Errorf("caret not under the offending token:\n%s", out)
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	src := "fun main\n  1 print\n  dup\nret\n"
	p, err := parser.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	_, err = interpreter.Execute(p, "main")
	if !errors.Is(err, interpreter.StackUnderflow) {
		t.Fatalf("expected stack underflow, got %v", err)
	}

	msg, ok := FromError(err)
	if !ok {
		t.Fatalf("FromError did not recognise %v", err)
	}
	out := msg.Make(NewFile("run.rf", src), false)
	if !strings.HasPrefix(out, "error: runtime error: stack underflow") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "  --> run.rf:3:3") {
		t.Errorf("unexpected location:\n%s", out)
	}
	if !strings.Contains(out, "  ^^^ stack underflow, stack []") {
		t.Errorf("unexpected underline:\n%s", out)
	}
}

func TestEntryNotFoundHasNoExcerpt(t *testing.T) {
	p, err := parser.Load("fun helper\nret\n")
	if err != nil {
		t.Fatal(err)
	}
	_, err = interpreter.Execute(p, "main")

	msg, ok := FromError(err)
	if !ok {
		t.Fatalf("FromError did not recognise %v", err)
	}
	out := msg.Make(NewFile("prog.rf", ""), false)
	want := "error: runtime error: entry function not found\n  --> prog.rf"
	if out != want {
		t.Errorf("Make() = %q, want %q", out, want)
	}
}

func TestWarningMessage(t *testing.T) {
	w := checker.Warning{
		Kind: checker.UndefinedFunction,
		Func: "main",
		Pos:  lexer.Position{Line: 1, Column: 10},
		Msg:  "call to undefined function `nope`",
	}
	out := FromWarning(w).Make(NewFile("w.rf", "fun main nope ret\n"), false)
	if !strings.HasPrefix(out, "warning: check warning: undefined function") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "   |          ^ call to undefined function `nope`") {
		t.Errorf("unexpected underline:\n%s", out)
	}
}

func TestUnknownError(t *testing.T) {
	if _, ok := FromError(errors.New("boom")); ok {
		t.Error("FromError accepted a foreign error")
	}
}

func TestColorOutput(t *testing.T) {
	w := checker.Warning{Kind: checker.EntryMissing, Msg: "no entry"}
	out := FromWarning(w).Make(NewFile("c.rf", ""), true)
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected ANSI escapes in %q", out)
	}
}
