package eval

import "github.com/sunholo/numfu/internal/builtins"

// registerMath wires the trigonometric/hyperbolic/log/exp/sqrt/rounding
// family and max/min, grounded in original_source/builtins.py's
// corresponding `overload(...)` registrations (SPEC_FULL.md §3 item 7).
func registerMath(precision int, evalIn evalInEnv) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	unary := func(name string, f func(int, Number) Number) {
		b := builtins.New(name)
		b.Add([]builtins.TypeSpec{tNumber()}, tNumber(), func(a []any) (any, error) {
			return NumberValue{f(precision, a[0].(NumberValue).N)}, nil
		})
		out[name] = b
	}

	unary("sin", Sin)
	unary("cos", Cos)
	unary("tan", Tan)
	unary("asin", Asin)
	unary("acos", Acos)
	unary("atan", Atan)
	unary("sinh", Sinh)
	unary("cosh", Cosh)
	unary("tanh", Tanh)
	unary("asinh", Asinh)
	unary("acosh", Acosh)
	unary("atanh", Atanh)
	unary("exp", Exp)
	unary("log10", Log10)
	unary("sqrt", Sqrt)
	unary("ceil", Ceil)
	unary("floor", Floor)
	unary("sign", SignNum)
	unary("abs", Abs)

	atan2 := builtins.New("atan2")
	atan2.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Atan2(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	out["atan2"] = atan2

	log := builtins.New("log")
	log.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Log(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	out["log"] = log

	round := builtins.New("round")
	round.Add([]builtins.TypeSpec{tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Round(precision, a[0].(NumberValue).N)}, nil
	})
	round.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		places := int(a[1].(NumberValue).N.Int64())
		return NumberValue{Round(precision, a[0].(NumberValue).N, places)}, nil
	}, builtins.WithValidators(nil, vIsInteger))
	out["round"] = round

	maxB := builtins.New("max")
	maxB.Add([]builtins.TypeSpec{infiniteOf(tNumber())}, tNumber(), func(a []any) (any, error) {
		return minMax(a, precision, true)
	})
	maxB.Add([]builtins.TypeSpec{tList()}, tNumber(), func(a []any) (any, error) {
		return minMaxList(a[0].(*ListValue), evalIn, precision, true)
	})
	out["max"] = maxB

	minB := builtins.New("min")
	minB.Add([]builtins.TypeSpec{infiniteOf(tNumber())}, tNumber(), func(a []any) (any, error) {
		return minMax(a, precision, false)
	})
	minB.Add([]builtins.TypeSpec{tList()}, tNumber(), func(a []any) (any, error) {
		return minMaxList(a[0].(*ListValue), evalIn, precision, false)
	})
	out["min"] = minB

	return out
}

func minMax(a []any, precision int, wantMax bool) (any, error) {
	if len(a) == 0 {
		return nil, &UserError{Kind: "ValueError", Message: "at least one argument is required"}
	}
	best := a[0].(NumberValue).N
	for _, v := range a[1:] {
		n := v.(NumberValue).N
		if (wantMax && n.Cmp(best) > 0) || (!wantMax && n.Cmp(best) < 0) {
			best = n
		}
	}
	return NumberValue{best}, nil
}

func minMaxList(l *ListValue, evalIn evalInEnv, precision int, wantMax bool) (any, error) {
	if len(l.Elements) == 0 {
		return nil, &UserError{Kind: "ValueError", Message: "list must not be empty"}
	}
	vals := make([]any, len(l.Elements))
	for i, e := range l.Elements {
		v, err := evalIn(e, l.Curry, l.G)
		if err != nil {
			return nil, err
		}
		n, ok := v.(NumberValue)
		if !ok {
			return nil, &UserError{Kind: "TypeError", Message: "max/min over a List requires Numbers"}
		}
		vals[i] = n
	}
	return minMax(vals, precision, wantMax)
}
