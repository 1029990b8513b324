package eval

import (
	"io"

	"github.com/sunholo/numfu/internal/builtins"
)

// Registry assembles every built-in into spec.md §4.4's stdlib groups
// (`builtins`, `math`, `std`, `io`, `sys`, `random`, `types`). The
// `builtins` group — the one every module implicitly imports — spans
// the whole table, matching original_source/interpreter.py's glob,
// which preloads every Builtins member; the named groups are the
// narrower views `import math` etc. resolve to.
type Registry struct {
	Groups    map[string]map[string]*builtins.Builtin
	Constants map[string]Value
	All       map[string]*builtins.Builtin
}

// applyFn invokes a Closure or Builtin value with already-evaluated
// arguments; renderFn renders any Value to its `String()` built-in form.
// Both are supplied by the Evaluator, which alone knows how to walk AST
// and how to delegate Closure rendering to the reconstructor.
type (
	applyFn  func(callee Value, args []Value) (Value, error)
	renderFn func(v Value, precision int) (string, error)
)

// NewRegistry builds the full built-in table.
func NewRegistry(precision int, stdin io.Reader, stdout io.Writer, evalIn evalInFn, apply applyFn, render renderFn) *Registry {
	operators := map[string]*builtins.Builtin{}
	merge := func(dst, src map[string]*builtins.Builtin) {
		for k, v := range src {
			dst[k] = v
		}
	}
	merge(operators, registerArithmetic(precision))
	merge(operators, registerBoolean())
	merge(operators, registerComparison(evalIn))

	types := registerConversion(precision, render)
	math := registerMath(precision, evalIn)

	std := map[string]*builtins.Builtin{}
	merge(std, registerList(precision, evalIn, apply))
	merge(std, registerFormat())

	ioGroup := registerIO(stdin, stdout)
	sys := registerSystem(precision)
	random := registerRandom(precision)

	all := map[string]*builtins.Builtin{}
	merge(all, operators)
	merge(all, types)
	merge(all, math)
	merge(all, std)
	merge(all, ioGroup)
	merge(all, sys)
	merge(all, random)

	return &Registry{
		Groups: map[string]map[string]*builtins.Builtin{
			"builtins": all,
			"math":     math,
			"std":      std,
			"io":       ioGroup,
			"sys":      sys,
			"random":   random,
			"types":    types,
		},
		Constants: map[string]Value{
			"pi":  NumberValue{NumberPi(precision)},
			"e":   NumberValue{NumberE(precision)},
			"nan": NumberValue{NumberNaN()},
			"inf": NumberValue{NumberInf(1)},
		},
		All: all,
	}
}
