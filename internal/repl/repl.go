// Package repl is the interactive read-eval-print loop: definitions and
// the operand stack persist from one input to the next.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"
	"github.com/sudo97/rorth/pkg/color"
)

const (
	historyFile = ".rorth_history"
	promptMain  = "rorth> "
	promptCont  = "  ...> "
	banner      = "rorth REPL. Type :help for commands, :quit or Ctrl-D to leave."
)

// Run reads inputs from the terminal until :quit or end of input. Ctrl-C
// abandons the current input.
func Run(ctx context.Context, s *Session) error {
	fmt.Fprintln(s.Out, color.GrayText(banner))

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				log.Warn("Could not save history", "file", histPath, "error", err)
			}
		}()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(s.Out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if err := s.Eval(ctx, src); errors.Is(err, ErrQuit) {
			return nil
		}
	}
}

// readByParseProbe keeps prompting with cont while the accumulated input is
// incomplete. ok is false at end of input.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			log.Error("Prompt failed", "error", err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !Incomplete(src) {
			return src, true
		}
	}
}
