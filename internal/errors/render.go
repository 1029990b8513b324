package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	errKind = color.New(color.FgRed, color.Bold).SprintFunc()
	errLoc  = color.New(color.FgCyan).SprintFunc()
	errMsg  = color.New(color.FgRed).SprintFunc()
	errLine = color.New(color.FgHiBlack).SprintFunc()
	errUl   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// cpos is a 1-based line/column span, derived from a byte-offset ast.Pos
// and its module's source. Grounded in original_source/errors.py's CPos.
type cpos struct {
	line, col, endLine, endCol int
}

func fromOffsets(src string, start, end int) cpos {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	line := strings.Count(src[:clamp(start, len(src))], "\n") + 1
	lastNL := strings.LastIndex(src[:clamp(start, len(src))], "\n")
	col := start - lastNL
	endLine := strings.Count(src[:clamp(end, len(src))], "\n") + 1
	lastNLEnd := strings.LastIndex(src[:clamp(end, len(src))], "\n")
	endCol := end - lastNLEnd
	return cpos{line, col, endLine, endCol}
}

func clamp(n, max int) int {
	if n > max {
		return max
	}
	if n < 0 {
		return 0
	}
	return n
}

// Render formats r for terminal output: a location line, an up-to-60
// code-point excerpt with the offending span underlined (split per line
// for multi-line spans), and the kind/message line.
func Render(r *Report) string {
	var b strings.Builder

	file := r.Module
	if file == "" {
		file = "unknown"
	}

	if r.Pos != nil && r.Source != "" {
		cp := fromOffsets(r.Source, r.Pos.Start, r.Pos.End)
		fmt.Fprintf(&b, "[at %s:%d:%d]\n", errLoc(file), cp.line, cp.col)
		renderExcerpt(&b, r.Source, cp)
	} else {
		fmt.Fprintf(&b, "[at %s]\n", errLoc(file))
	}

	fmt.Fprintf(&b, "%s", errKind(string(r.Kind)))
	if r.Message != "" {
		fmt.Fprintf(&b, ": %s", errMsg(r.Message))
	}
	b.WriteString("\n")
	return b.String()
}

func renderExcerpt(b *strings.Builder, src string, cp cpos) {
	lines := strings.Split(src, "\n")
	for line := cp.line; line <= cp.endLine; line++ {
		if line < 1 || line > len(lines) {
			continue
		}
		text := lines[line-1]

		col, endCol := 1, len(text)+1
		if line == cp.line {
			col = cp.col
		}
		if line == cp.endLine {
			endCol = cp.endCol
		}
		if endCol <= col {
			endCol = col + 1
		}
		if col > len(text)+1 {
			col = len(text) + 1
		}
		if endCol > len(text)+1 {
			endCol = len(text) + 1
		}

		start := col - 1
		for n := 0; n < 29 && start > 0; n++ {
			_, size := utf8.DecodeLastRuneInString(text[:start])
			start -= size
		}
		end := col - 1
		for n := 0; n < 31 && end < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		prefix, suffix := "", ""
		if start > 0 {
			prefix = "..."
		}
		if end < len(text) {
			suffix = "..."
		}

		before := safeSlice(text, start, col-1)
		mid := safeSlice(text, col-1, endCol-1)
		after := safeSlice(text, endCol-1, end)

		gutter := fmt.Sprintf("[%d]   ", line)
		fmt.Fprintf(b, "%s%s%s%s%s%s\n", errLine(gutter), prefix, before, errUl(mid), after, suffix)
		pad := strings.Repeat(" ", len(gutter)+len(prefix)+len(before))
		carets := errUl(strings.Repeat("^", max(1, endCol-col)))
		fmt.Fprintf(b, "%s%s\n", pad, carets)
	}
}

func safeSlice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start > end {
		start = end
	}
	return s[start:end]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
