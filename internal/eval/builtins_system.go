package eval

import (
	"os"
	"time"

	"github.com/sunholo/numfu/internal/builtins"
	"github.com/sunholo/numfu/internal/errors"
)

// registerSystem wires error, assert, exit, time, grounded in
// original_source/builtins.py's Builtins._error/_assert/_exit/_time and
// the nRuntimeError/nAssertionError raise sites in typechecks.py (the
// Python dispatcher special-cases these two after a normal type-match,
// rather than before it, so here they're plain Impls that return
// *UserError instead of a value, same as format's IndexError in
// builtins_string.go).
func registerSystem(precision int) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	errorB := builtins.New("error")
	errorB.Add([]builtins.TypeSpec{tString()}, tAny(), func(a []any) (any, error) {
		return nil, &UserError{Kind: errors.RuntimeError, Message: a[0].(StringValue).S}
	})
	errorB.Add([]builtins.TypeSpec{tString(), tString()}, tAny(), func(a []any) (any, error) {
		name := a[1].(StringValue).S
		return nil, &UserError{Kind: errors.Kind(name), Message: a[0].(StringValue).S}
	})
	out["error"] = errorB

	assertB := builtins.New("assert").WithEvalLists()
	assertB.Add([]builtins.TypeSpec{tBool()}, tAny(), func(a []any) (any, error) {
		if !a[0].(BoolValue).B {
			return nil, &UserError{Kind: errors.AssertionError, Message: ""}
		}
		return BoolValue{true}, nil
	})
	assertB.Add([]builtins.TypeSpec{tBool(), tAny()}, tAny(), func(a []any) (any, error) {
		if !a[0].(BoolValue).B {
			return nil, &UserError{Kind: errors.AssertionError, Message: ""}
		}
		return a[1].(Value), nil
	})
	out["assert"] = assertB

	exitB := builtins.New("exit")
	exitB.Add([]builtins.TypeSpec{}, tAny(), func(a []any) (any, error) {
		os.Exit(0)
		return nil, nil
	})
	out["exit"] = exitB

	timeB := builtins.New("time")
	timeB.Add([]builtins.TypeSpec{}, tNumber(), func(a []any) (any, error) {
		return NumberValue{NumberFromFloat(float64(time.Now().UnixNano())/1e9, precision)}, nil
	})
	out["time"] = timeB

	return out
}
