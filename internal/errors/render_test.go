package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunholo/numfu/internal/ast"
)

func init() {
	// Keep assertions free of ANSI escapes.
	color.NoColor = true
}

func TestReportImplementsError(t *testing.T) {
	rep := New(TypeError, "bad thing", nil, "", "", false)
	assert.Equal(t, "TypeError: bad thing", rep.Error())
}

func TestWrapAndAs(t *testing.T) {
	rep := New(NameError, "'x' is not defined", nil, "m.nfu", "", false)
	err := Wrap(rep)
	got, ok := As(err)
	require.True(t, ok)
	assert.Same(t, rep, got)

	// Survives wrapping middleware.
	wrapped := fmt.Errorf("while evaluating: %w", err)
	got, ok = As(wrapped)
	require.True(t, ok)
	assert.Same(t, rep, got)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestRenderWithoutPosition(t *testing.T) {
	rep := New(RuntimeError, "boom", nil, "prog.nfu", "", false)
	out := Render(rep)
	assert.Contains(t, out, "[at prog.nfu]")
	assert.Contains(t, out, "RuntimeError: boom")
}

func TestRenderUnderlinesSpan(t *testing.T) {
	src := "let x = 1\nx + nope\n"
	// Span of "nope": offsets 14..18.
	pos := &ast.Pos{Start: 14, End: 18, Module: "prog.nfu", Index: -1}
	rep := New(NameError, "'nope' is not defined", pos, "prog.nfu", src, false)
	out := Render(rep)

	assert.Contains(t, out, "[at prog.nfu:2:5]")
	assert.Contains(t, out, "x + nope")
	assert.Contains(t, out, "^^^^")
	assert.Contains(t, out, "NameError")
}

func TestRenderMultiLineSpanSplitsPerLine(t *testing.T) {
	src := "aaa\nbbb\nccc\n"
	pos := &ast.Pos{Start: 0, End: 11, Module: "m.nfu", Index: -1}
	rep := New(SyntaxError, "bad", pos, "m.nfu", src, false)
	out := Render(rep)
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "[2]")
	assert.Contains(t, out, "[3]")
}

func TestOffsetsToLineColumn(t *testing.T) {
	src := "ab\ncd\nef"
	cp := fromOffsets(src, 4, 5)
	assert.Equal(t, 2, cp.line)
	assert.Equal(t, 2, cp.col)

	cp = fromOffsets(src, 0, 2)
	assert.Equal(t, 1, cp.line)
	assert.Equal(t, 1, cp.col)
}

func TestNewfFormats(t *testing.T) {
	rep := Newf(ImportError, nil, "m", "", true, "cannot find module %q", "x")
	assert.Equal(t, `ImportError: cannot find module "x"`, rep.Error())
	assert.True(t, rep.Fatal)
}
