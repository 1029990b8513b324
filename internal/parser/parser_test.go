package parser

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/errors"
)

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	tree, err := Parse(src, "test.nfu")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	return tree[0]
}

// shape renders the tree structurally, ignoring positions, so tests
// compare desugared forms compactly.
func shape(n ast.Node) string {
	switch t := n.(type) {
	case *ast.Number:
		return t.Text
	case *ast.String:
		return `"` + t.Text + `"`
	case *ast.Bool:
		if t.Value {
			return "true"
		}
		return "false"
	case *ast.Variable:
		return t.Name
	case *ast.List:
		out := "["
		for i, e := range t.Elements {
			if i > 0 {
				out += " "
			}
			out += shape(e)
		}
		return out + "]"
	case *ast.Spread:
		return "(spread " + shape(t.Expr) + ")"
	case *ast.Lambda:
		out := "(lambda ("
		for i, a := range t.ArgNames {
			if i > 0 {
				out += " "
			}
			out += a
		}
		return out + ") " + shape(t.Body) + ")"
	case *ast.Call:
		out := "(" + shape(t.Func)
		for _, a := range t.Args {
			out += " " + shape(a)
		}
		return out + ")"
	case *ast.Index:
		return "(index " + shape(t.Target) + " " + shape(t.Index) + ")"
	case *ast.Conditional:
		return "(if " + shape(t.Test) + " " + shape(t.Then) + " " + shape(t.Else) + ")"
	case *ast.Constant:
		return "(let " + t.Name + " " + shape(t.Value) + ")"
	case *ast.Delete:
		return "(del " + t.Name + ")"
	case *ast.Import:
		out := "(import " + t.Module
		for _, in := range t.Names {
			out += " " + in.Name
		}
		return out + ")"
	case *ast.Export:
		out := "(export"
		for _, in := range t.Names {
			out += " " + in.Name
		}
		return out + ")"
	default:
		return "?"
	}
}

func TestExpressionShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"precedence", `1 + 2 * 3`, "(+ 1 (* 2 3))"},
		{"grouping", `(1 + 2) * 3`, "(* (+ 1 2) 3)"},
		{"power right assoc", `2 ^ 3 ^ 2`, "(^ 2 (^ 3 2))"},
		{"power binds over unary", `-2 ^ 2`, "(- (^ 2 2))"},
		{"unary minus", `-x`, "(- x)"},
		{"unary plus is identity", `+x`, "x"},
		{"not", `!x`, "(! x)"},
		{"comparison", `a < b`, "(< a b)"},
		{"chained comparison", `a < b < c`, "(&& (< a b) (< b c))"},
		{"triple chain", `a < b < c < d`, "(&& (&& (< a b) (< b c)) (< c d))"},
		{"boolean precedence", `a || b && c`, "(|| a (&& b c))"},
		{"call", `f(1, 2)`, "(f 1 2)"},
		{"curried call", `f(1)(2)`, "((f 1) 2)"},
		{"index", `xs[0]`, "(index xs 0)"},
		{"nested index", `xs[0][1]`, "(index (index xs 0) 1)"},
		{"pipe", `x |> f`, "(f x)"},
		{"pipe into call", `x |> f(y)`, "(f x y)"},
		{"pipe chain", `x |> f |> g`, "(g (f x))"},
		{"lambda", `{x -> x * 2}`, "(lambda (x) (* x 2))"},
		{"lambda rest", `{x, ...rest -> rest}`, "(lambda (x ...rest) rest)"},
		{"empty params", `{-> 5}`, "(lambda () 5)"},
		{"let in", `let x = 1 in x + 2`, "((lambda (x) (+ x 2)) 1)"},
		{"multi let in", `let x = 1, y = 2 in x + y`, "((lambda (x y) (+ x y)) 1 2)"},
		{"conditional", `if a then b else c`, "(if a b c)"},
		{"else extends right", `if a then b else c + 1`, "(if a b (+ c 1))"},
		{"list", `[1, 2, 3]`, "[1 2 3]"},
		{"list spread", `[1, ...xs, 3]`, "[1 (spread xs) 3]"},
		{"call spread", `f(...xs)`, "(f (spread xs))"},
		{"placeholder", `f(_, 2)`, "(f _ 2)"},
		{"qualified name", `math.floor(x)`, "(math.floor x)"},
		{"string escape", `"a\nb"`, "\"a\nb\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shape(parseOne(t, tt.src))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTopLevelStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"constant", `let x = 5`, []string{"(let x 5)"}},
		{"import", `import math`, []string{"(import math)"}},
		{"import path", `import lib/utils`, []string{"(import lib/utils)"}},
		{"from import", `from utils import a, b`, []string{"(import utils a b)"}},
		{"from import star", `from utils import *`, []string{"(import utils *)"}},
		{"export", `export a, b`, []string{"(export a b)"}},
		{"delete", `del x`, []string{"(del x)"}},
		{"semicolons", `1; 2`, []string{"1", "2"}},
		{"mixed", "let x = 1\nx + 1", []string{"(let x 1)", "(+ x 1)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.src, "test.nfu")
			require.NoError(t, err)
			got := make([]string, len(tree))
			for i, n := range tree {
				got[i] = shape(n)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopLevelIndices(t *testing.T) {
	tree, err := Parse("let a = 1\nlet b = 2\na + b", "test.nfu")
	require.NoError(t, err)
	require.Len(t, tree, 3)
	for i, n := range tree {
		assert.Equal(t, i, n.Position().Index)
	}
}

func TestConstantLambdaGetsName(t *testing.T) {
	tree, err := Parse(`let double = {x -> x * 2}`, "test.nfu")
	require.NoError(t, err)
	c := tree[0].(*ast.Constant)
	lam := c.Value.(*ast.Lambda)
	assert.Equal(t, "double", lam.Name)
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed paren", `(1 + 2`},
		{"missing then", `if a b else c`},
		{"missing in", `f(let x = 1)`},
		{"rest not last", `{...xs, y -> y}`},
		{"lone operator", `* 2`},
		{"unterminated string", `"abc`},
		{"bad index", `xs[`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, "test.nfu")
			require.Error(t, err)
			rep, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.SyntaxError, rep.Kind)
		})
	}
}

func TestPositionsAreByteOffsets(t *testing.T) {
	src := `1 + 23`
	tree, err := Parse(src, "test.nfu")
	require.NoError(t, err)
	call := tree[0].(*ast.Call)
	assert.Equal(t, 0, call.Position().Start)
	right := call.Args[1]
	assert.Equal(t, "23", src[right.Position().Start:right.Position().End])
}

func TestTreeFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/prog.nfut"

	tree, err := Parse(`let x = 1`+"\n"+`x + 2`, "prog.nfu")
	require.NoError(t, err)
	require.NoError(t, SaveTree(path, tree))

	loaded, err := LoadTree(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(tree))
	for i := range tree {
		assert.Equal(t, shape(tree[i]), shape(loaded[i]))
		assert.Equal(t, tree[i].Position(), loaded[i].Position())
	}
}

func TestLoadTreeFallsBackToSource(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/prog.nfu"
	require.NoError(t, os.WriteFile(path, []byte("1 + 2"), 0o644))

	tree, err := LoadTree(path)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "(+ 1 2)", shape(tree[0]))
}
