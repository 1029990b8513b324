package eval

import (
	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/builtins"
)

// registerComparison wires `==`, `!=`, `>`, `<`, `>=`, `<=`. `==`/`!=`
// are single fully-generic Any,Any overloads per SPEC_FULL.md §3 item 3
// (no numeric/string coercion); evalIn lets List comparison force lazy
// elements without the builtins package knowing about AST at all.
func registerComparison(evalIn evalInFn) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	eq := builtins.New("==").WithEvalLists()
	eq.Add([]builtins.TypeSpec{tAny(), tAny()}, tBool(), func(a []any) (any, error) {
		return BoolValue{Equal(a[0].(Value), a[1].(Value), evalIn)}, nil
	})
	out["=="] = eq

	ne := builtins.New("!=").WithEvalLists()
	ne.Add([]builtins.TypeSpec{tAny(), tAny()}, tBool(), func(a []any) (any, error) {
		return BoolValue{!Equal(a[0].(Value), a[1].(Value), evalIn)}, nil
	})
	out["!="] = ne

	mk := func(name string, cmp func(int) bool) *builtins.Builtin {
		b := builtins.New(name)
		b.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tBool(), func(a []any) (any, error) {
			x, y := a[0].(NumberValue).N, a[1].(NumberValue).N
			if x.IsNaN() || y.IsNaN() {
				return BoolValue{false}, nil
			}
			return BoolValue{cmp(x.Cmp(y))}, nil
		})
		return b
	}
	out[">"] = mk(">", func(c int) bool { return c > 0 })
	out["<"] = mk("<", func(c int) bool { return c < 0 })
	out[">="] = mk(">=", func(c int) bool { return c >= 0 })
	out["<="] = mk("<=", func(c int) bool { return c <= 0 })

	return out
}

// evalInFn evaluates a lazy List element in its curry environment and
// owning module scope; supplied by the Evaluator so builtins never need
// to know how to walk AST.
type evalInFn func(node ast.Node, env *Env, g *Globals) (Value, error)
