// Package feedback renders load-time and run-time errors, and checker
// warnings, as human readable messages pointing into the source file.
package feedback

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/sudo97/rorth/pkg/checker"
	"github.com/sudo97/rorth/pkg/interpreter"
	"github.com/sudo97/rorth/pkg/lexer"
	"github.com/sudo97/rorth/pkg/parser"
)

// Severity of a message
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Classification constants
const (
	LexError     = "lex error"
	ParseError   = "parse error"
	RuntimeError = "runtime error"
	CheckWarning = "check warning"
)

// File is a source file split into lines for excerpts
type File struct {
	Filename string
	Lines    []string
}

// NewFile wraps source contents read from filename
func NewFile(filename, contents string) *File {
	return &File{
		Filename: filename,
		Lines:    strings.SplitAfter(contents, "\n"),
	}
}

// Message is a diagnostic tied to a span of one line
type Message struct {
	Severity       Severity
	Classification string
	Title          string         // short description, e.g. the error kind
	Pos            lexer.Position // start of the offending span; line 0 means no location
	Width          int            // span width in runes, at least 1
	Description    string         // text printed under the caret line
}

// FromError converts an error of the lexer, parser or interpreter into a
// Message. ok is false for any other error.
func FromError(err error) (msg Message, ok bool) {
	var (
		lexErr   *lexer.Error
		parseErr *parser.Error
		runErr   *interpreter.Error
	)

	switch {
	case errors.As(err, &lexErr):
		return Message{
			Severity:       SeverityError,
			Classification: LexError,
			Title:          lexErr.Msg,
			Pos:            lexErr.Pos,
			Width:          utf8.RuneCountInString(lexErr.Lexeme),
			Description:    fmt.Sprintf("%s %q", lexErr.Msg, lexErr.Lexeme),
		}, true

	case errors.As(err, &parseErr):
		return Message{
			Severity:       SeverityError,
			Classification: ParseError,
			Title:          parseErr.Kind.String(),
			Pos:            parseErr.Pos,
			Width:          1,
			Description:    strings.TrimPrefix(parseErr.Error(), "parse error: "),
		}, true

	case errors.As(err, &runErr):
		width := utf8.RuneCountInString(string(runErr.Op))
		if runErr.Name != "" {
			width = utf8.RuneCountInString(runErr.Name)
		}
		return Message{
			Severity:       SeverityError,
			Classification: RuntimeError,
			Title:          runErr.Errno.Error(),
			Pos:            runErr.Pos,
			Width:          width,
			Description:    fmt.Sprintf("%s, stack %v", runErr.Errno, runErr.Stack),
		}, true
	}

	return Message{}, false
}

// FromWarning converts a checker warning into a Message
func FromWarning(w checker.Warning) Message {
	return Message{
		Severity:       SeverityWarning,
		Classification: CheckWarning,
		Title:          w.Kind.String(),
		Pos:            w.Pos,
		Width:          1,
		Description:    w.Msg,
	}
}

// Make renders the message in the form:
//
//	error: <classification>: <title>
//	  --> <filename>:<line>:<column>
//	   |
//	 3 | <offending line of source code>
//	   |     ^^^ <description>
func (m Message) Make(file *File, withColor bool) string {
	color.NoColor = !withColor

	blue := color.New(color.FgBlue).SprintFunc()
	accentBold := color.New(color.FgRed, color.Bold).SprintFunc()
	accent := color.New(color.FgRed).SprintFunc()
	header := "error:"
	if m.Severity == SeverityWarning {
		accentBold = color.New(color.FgYellow, color.Bold).SprintFunc()
		accent = color.New(color.FgYellow).SprintFunc()
		header = "warning:"
	}

	lines := []string{accentBold(fmt.Sprintf("%s %s: %s", header, m.Classification, m.Title))}

	if m.Pos.Line < 1 || file == nil || m.Pos.Line > len(file.Lines) {
		if file != nil {
			lines = append(lines, fmt.Sprintf("  %s %s", blue("-->"), file.Filename))
		}
		return strings.Join(lines, "\n")
	}

	margin := len(fmt.Sprintf("%d", m.Pos.Line))
	pad := strings.Repeat(" ", margin)

	lines = append(lines, fmt.Sprintf(" %s%s %s:%d:%d", pad, blue("-->"), file.Filename, m.Pos.Line, m.Pos.Column))
	lines = append(lines, blue(fmt.Sprintf(" %s |", pad)))

	src := strings.TrimRight(file.Lines[m.Pos.Line-1], "\r\n")
	src = strings.ReplaceAll(src, "\t", " ")
	lines = append(lines, fmt.Sprintf(" %s %s %s", blue(fmt.Sprintf("%*d", margin, m.Pos.Line)), blue("|"), src))

	width := max(m.Width, 1)
	leftPad := strings.Repeat(" ", max(runeColumn(src, m.Pos.Column)-1, 0))
	underline := accent(strings.Repeat("^", width))
	lines = append(lines, fmt.Sprintf(" %s %s %s%s %s", pad, blue("|"), leftPad, underline, accent(m.Description)))

	return strings.Join(lines, "\n")
}

// runeColumn converts a 1-based byte column into a 1-based rune column
func runeColumn(line string, byteCol int) int {
	if byteCol-1 > len(line) {
		return byteCol
	}
	return utf8.RuneCountInString(line[:byteCol-1]) + 1
}
