package eval

import (
	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/builtins"
)

// Concrete TypeSpecs for NumFu's Value variants, used when registering
// built-in overloads (spec.md §4.2's arg_types).

func tAny() builtins.TypeSpec { return builtins.Any() }

func tNumber() builtins.TypeSpec {
	return builtins.Concrete("Number", func(v any) bool { _, ok := v.(NumberValue); return ok })
}

func tBool() builtins.TypeSpec {
	return builtins.Concrete("Bool", func(v any) bool { _, ok := v.(BoolValue); return ok })
}

func tString() builtins.TypeSpec {
	return builtins.Concrete("String", func(v any) bool { _, ok := v.(StringValue); return ok })
}

func tList() builtins.TypeSpec {
	return builtins.Concrete("List", func(v any) bool { _, ok := v.(*ListValue); return ok })
}

func tClosure() builtins.TypeSpec {
	return builtins.Concrete("Closure", func(v any) bool { _, ok := v.(*ClosureValue); return ok })
}

func tCallable() builtins.TypeSpec {
	return builtins.Union("Closure|Builtin", tClosure(), builtins.Concrete("Builtin", func(v any) bool {
		_, ok := v.(BuiltinValue)
		return ok
	}))
}

func tListOrString() builtins.TypeSpec {
	return builtins.Union("List|String", tList(), tString())
}

func tBoolOrNumberOrString() builtins.TypeSpec {
	return builtins.Union("Bool|Number|String", tBool(), tNumber(), tString())
}

// tListOf matches a homogeneous list. Only meaningful on builtins that
// set eval_lists: materialization replaces every element with an
// ast.Literal-wrapped Value, which is what the element extractor hands
// to the element spec. An unevaluated element never matches.
func tListOf(elem builtins.TypeSpec) builtins.TypeSpec {
	return builtins.ListOf(elem,
		func(v any) bool { _, ok := v.(*ListValue); return ok },
		func(v any) []any {
			l := v.(*ListValue)
			out := make([]any, len(l.Elements))
			for i, e := range l.Elements {
				if lit, ok := e.(*ast.Literal); ok {
					out[i] = lit.Value
				} else {
					out[i] = e
				}
			}
			return out
		})
}

func infiniteOf(elem builtins.TypeSpec) builtins.TypeSpec { return builtins.InfiniteOf(elem) }
