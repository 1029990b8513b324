package eval

import "github.com/sunholo/numfu/internal/builtins"

// Validators mirror original_source/typechecks.py's Validators class:
// per-position predicates with documented failure templates, consulted
// by builtins.Dispatch after a position's type has already matched
// (spec.md §4.2 step 1(b)).

func isIntegerNumber(v any) bool {
	n, ok := v.(NumberValue)
	return ok && n.N.IsInteger()
}

var vMulInteger = builtins.NewValidator(
	"argument {i} of '*' must be a whole number, got {arg}",
	isIntegerNumber,
)

var vIsInteger = builtins.NewValidator(
	"argument {i} must be a whole number, got {arg}",
	isIntegerNumber,
)

var vListIndex = builtins.NewValidator(
	"list index must be a whole number, got {arg}",
	isIntegerNumber,
)

var vStringIndex = builtins.NewValidator(
	"string index must be a whole number, got {arg}",
	isIntegerNumber,
)

var vIsNumber = builtins.NewValidator(
	"{arg} is not a valid number literal",
	func(v any) bool {
		s, ok := v.(StringValue)
		if !ok {
			return true // non-string overload positions are gated by type matching already
		}
		_, err := ParseNumber(normalizeSignChain(s.S), 15)
		return err == nil
	},
)
