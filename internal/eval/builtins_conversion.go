package eval

import (
	"github.com/sunholo/numfu/internal/builtins"
)

// normalizeSignChain collapses a leading run of "+"/"-" in a numeric
// string by parity, grounded in original_source/builtins.py's `Number`
// overload regex (SPEC_FULL.md §3 item 5): "--5" -> "5", "-+-5" -> "5".
func normalizeSignChain(s string) string {
	i := 0
	negatives := 0
	for i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			negatives++
		}
		i++
	}
	rest := s[i:]
	if negatives%2 == 1 {
		return "-" + rest
	}
	return rest
}

func registerConversion(precision int, render func(Value, int) (string, error)) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	boolB := builtins.New("Bool")
	boolB.Add([]builtins.TypeSpec{tAny()}, tBool(), func(a []any) (any, error) {
		return BoolValue{Truthy(a[0].(Value))}, nil
	})
	out["Bool"] = boolB

	numB := builtins.New("Number")
	numB.Add([]builtins.TypeSpec{tBoolOrNumberOrString()}, tNumber(), func(a []any) (any, error) {
		switch v := a[0].(type) {
		case NumberValue:
			return v, nil
		case BoolValue:
			if v.B {
				return NumberValue{NumberFromInt(1, precision)}, nil
			}
			return NumberValue{NumberFromInt(0, precision)}, nil
		case StringValue:
			n, err := ParseNumber(normalizeSignChain(v.S), precision)
			if err != nil {
				return nil, &UserError{Kind: "ValueError", Message: "invalid number literal: " + v.S}
			}
			return NumberValue{n}, nil
		}
		return nil, &UserError{Kind: "TypeError", Message: "cannot convert to Number"}
	}, builtins.WithValidators(vIsNumber))
	out["Number"] = numB

	listB := builtins.New("List")
	listB.Add([]builtins.TypeSpec{tListOrString()}, tList(), func(a []any) (any, error) {
		switch v := a[0].(type) {
		case *ListValue:
			return v, nil
		case StringValue:
			runes := []rune(v.S)
			nodes := make([]Value, len(runes))
			for i, r := range runes {
				nodes[i] = StringValue{string(r)}
			}
			return newLiteralList(nodes), nil
		}
		return nil, &UserError{Kind: "TypeError", Message: "value is not iterable"}
	})
	out["List"] = listB

	stringB := builtins.New("String")
	stringB.Add([]builtins.TypeSpec{tAny()}, tString(), func(a []any) (any, error) {
		s, err := render(a[0].(Value), precision)
		if err != nil {
			return nil, err
		}
		return StringValue{s}, nil
	})
	out["String"] = stringB

	return out
}
