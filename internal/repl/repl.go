// Package repl implements NumFu's interactive Read-Eval-Print Loop on
// top of liner, with persistent history and a multi-line continuation
// convention (a trailing backslash), mirroring
// original_source/repl.py's prompt loop.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// Color functions for pretty output
var (
	red  = color.New(color.FgRed).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

// Do is the per-input callback: the run-REPL command evaluates, the
// ast-REPL command pretty-prints the parse tree.
type Do func(code string)

// REPL drives the prompt loop.
type REPL struct {
	historyPath string
	out         io.Writer
}

// New creates a REPL with history at ~/.numfu_history.
func New(out io.Writer) *REPL {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	if out == nil {
		out = os.Stdout
	}
	return &REPL{
		historyPath: filepath.Join(home, ".numfu_history"),
		out:         out,
	}
}

// Start runs the prompt loop until EOF or `exit`.
func (r *REPL) Start(intro string, do Do) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)

	if f, err := os.Open(r.historyPath); err == nil {
		_, _ = line.ReadHistory(f) // history is optional
		f.Close()
	}
	defer func() {
		if f, err := os.Create(r.historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	if intro == "" {
		intro = fmt.Sprintf("%s REPL. Type 'exit' or press Ctrl+D to exit.", bold("NumFu"))
	}
	fmt.Fprintln(r.out, intro)

	for {
		input, err := r.read(line)
		if err == io.EOF {
			fmt.Fprintln(r.out)
			return
		}
		if err == liner.ErrPromptAborted {
			fmt.Fprintln(r.out, dim("(Type 'exit' or press Ctrl+D to exit)"))
			continue
		}
		if err != nil {
			fmt.Fprintf(r.out, "%s: %v\n", red("error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			return
		}

		line.AppendHistory(input)
		do(input)
	}
}

// read collects one logical input: lines ending in a backslash
// continue on the next prompt.
func (r *REPL) read(line *liner.State) (string, error) {
	first, err := line.Prompt(">>> ")
	if err != nil {
		return "", err
	}
	parts := []string{strings.TrimSpace(first)}
	for strings.HasSuffix(parts[len(parts)-1], "\\") {
		parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], "\\")
		next, err := line.Prompt(fmt.Sprintf("%s ", cyan("...")))
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(next))
	}
	return strings.Join(parts, "\n"), nil
}
