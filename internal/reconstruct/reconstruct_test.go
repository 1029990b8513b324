package reconstruct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/parser"
)

func body(t *testing.T, src string) ast.Node {
	t.Helper()
	tree, err := parser.Parse(src, "test.nfu")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree[0].(*ast.Lambda).Body
}

func noResolve(string) (string, bool) { return "", false }

func TestClosureRoundTrips(t *testing.T) {
	tests := []string{
		`{x -> x * 2}`,
		`{a, b -> a + b}`,
		`{x -> if x > 0 then x else -x}`,
		`{n -> n * fact(n - 1)}`,
		`{x -> [x, x * 2]}`,
		`{xs -> xs[0]}`,
		`{f, g -> {x -> g(f(x))}}`,
		`{x, ...rest -> length(rest)}`,
		`{s -> "prefix" + s}`,
		`{x -> !x}`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			tree, err := parser.Parse(src, "test.nfu")
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			lam := tree[0].(*ast.Lambda)
			got := Closure(lam.ArgNames, lam.Body, noResolve)
			assert.Equal(t, src, got)

			// The rendering reparses to an equivalent closure.
			again, err := parser.Parse(got, "test.nfu")
			if err != nil {
				t.Fatalf("reparse of %q: %v", got, err)
			}
			lam2 := again[0].(*ast.Lambda)
			assert.Equal(t, Closure(lam2.ArgNames, lam2.Body, noResolve), got)
		})
	}
}

func TestSubstitution(t *testing.T) {
	b := body(t, `{b -> a + b}`)
	got := Closure([]string{"b"}, b, func(name string) (string, bool) {
		if name == "a" {
			return "1", true
		}
		return "", false
	})
	assert.Equal(t, "{b -> 1 + b}", got)
}

func TestBoundParamsShadowResolver(t *testing.T) {
	b := body(t, `{x -> x + y}`)
	got := Closure([]string{"x"}, b, func(name string) (string, bool) {
		// Would substitute both names if shadowing were broken.
		return "9", true
	})
	assert.Equal(t, "{x -> x + 9}", got)
}

func TestInnerLambdaShadowing(t *testing.T) {
	b := body(t, `{y -> {x -> x + y}}`)
	got := Closure([]string{"y"}, b, func(name string) (string, bool) {
		return "7", true
	})
	// x is bound by the inner lambda; only free names substitute.
	assert.Equal(t, "{y -> {x -> x + y}}", got)
}

func TestParenthesization(t *testing.T) {
	src := `{a, b -> (a + b) * 2}`
	tree, err := parser.Parse(src, "test.nfu")
	if err != nil {
		t.Fatal(err)
	}
	lam := tree[0].(*ast.Lambda)
	assert.Equal(t, src, Closure(lam.ArgNames, lam.Body, noResolve))
}
