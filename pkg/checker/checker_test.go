package checker_test

import (
	"testing"

	"github.com/sudo97/rorth/pkg/checker"
	"github.com/sudo97/rorth/pkg/parser"
	"github.com/sudo97/rorth/pkg/parser/codegen"
)

const factorial = `
fun factorial
  1 swap
  while
    swap over *
    swap 1 -
  end
  pop
ret

fun main
  5 factorial print
ret
`

func mustLoad(t *testing.T, source string) *codegen.Program {
	t.Helper()
	program, err := parser.Load(source)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return program
}

func TestFactorialIsClean(t *testing.T) {
	report := checker.Check(mustLoad(t, factorial), "main")
	if len(report.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", report.Warnings)
	}

	tests := []struct {
		fn   string
		want checker.Effect
	}{
		{"factorial", checker.Effect{Needs: 1, Net: 0, Known: true}},
		{"main", checker.Effect{Needs: 0, Net: 0, Known: true}},
	}
	for _, test := range tests {
		if got := report.Effects[test.fn]; got != test.want {
			t.Errorf("%s: got %s %+v, want %s", test.fn, got, got, test.want)
		}
	}
}

func TestEffects(t *testing.T) {
	tests := []struct {
		body string
		want checker.Effect
	}{
		{"", checker.Effect{Needs: 0, Net: 0, Known: true}},
		{"1 2", checker.Effect{Needs: 0, Net: 2, Known: true}},
		{"dup", checker.Effect{Needs: 1, Net: 1, Known: true}},
		{"over", checker.Effect{Needs: 2, Net: 1, Known: true}},
		{"+", checker.Effect{Needs: 2, Net: -1, Known: true}},
		{"1 +", checker.Effect{Needs: 1, Net: 0, Known: true}},
		{"swap pop", checker.Effect{Needs: 2, Net: -1, Known: true}},
		{"print", checker.Effect{Needs: 1, Net: -1, Known: true}},
		{"while 1 - end", checker.Effect{Needs: 1, Net: 0, Known: true}},
		{"while dup end", checker.Effect{Needs: 1, Net: 0, Known: false}},
		{"while + elsewhere end", checker.Effect{Needs: 2, Net: 0, Known: false}},
	}

	for _, test := range tests {
		report := checker.Check(mustLoad(t, "fun f "+test.body+" ret"), "f")
		if got := report.Effects["f"]; got != test.want {
			t.Errorf("%q: got %+v, want %+v", test.body, got, test.want)
		}
	}
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kinds  []checker.WarningKind
	}{
		{"undefined call", "fun main helper ret", []checker.WarningKind{checker.UndefinedFunction}},
		{"entry underflows", "fun main + ret", []checker.WarningKind{checker.EntryNeedsInput}},
		{"unbalanced loop", "fun main 1 while dup end ret", []checker.WarningKind{checker.UnbalancedLoop}},
		{"missing entry", "fun other ret", []checker.WarningKind{checker.EntryMissing}},
		{"undefined call after unknown effect", "fun main 1 while dup end nowhere ret",
			[]checker.WarningKind{checker.UnbalancedLoop, checker.UndefinedFunction}},
		{"loop reads below an unknown call", "fun main 1 while + helper end ret",
			[]checker.WarningKind{checker.UndefinedFunction, checker.EntryNeedsInput}},
		{"recursion is not an error", "fun main 0 while main end pop ret", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			report := checker.Check(mustLoad(t, test.source), "main")
			if len(report.Warnings) != len(test.kinds) {
				t.Fatalf("expected %d warnings, got %v", len(test.kinds), report.Warnings)
			}
			for i, kind := range test.kinds {
				if report.Warnings[i].Kind != kind {
					t.Errorf("warning %d: got %s, want %s", i, report.Warnings[i].Kind, kind)
				}
			}
		})
	}
}
