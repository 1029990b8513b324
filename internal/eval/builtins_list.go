package eval

import (
	"sort"
	"strings"

	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/builtins"
)

// evalInEnv evaluates a List element in its curry environment; supplied
// by the Evaluator so builtins never need to know how to walk AST.
type evalInEnv = evalInFn

// registerList wires append, length, member, set, reverse, sort, slice,
// join, split, map, filter, sum, product, range — the "std"-group builtins of
// SPEC_FULL.md §3 item 7, grounded in original_source/builtins.py.
func registerList(precision int, evalIn evalInEnv, apply func(callee Value, args []Value) (Value, error)) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	appendB := builtins.New("append")
	appendB.Add([]builtins.TypeSpec{tList(), tAny()}, tList(), func(a []any) (any, error) {
		l := a[0].(*ListValue)
		elems := append(append([]ast.Node{}, l.Elements...), Literal(a[1].(Value)))
		return NewList(elems, l.Curry, l.G), nil
	})
	out["append"] = appendB

	length := builtins.New("length")
	length.Add([]builtins.TypeSpec{tListOrString()}, tNumber(), func(a []any) (any, error) {
		switch v := a[0].(type) {
		case *ListValue:
			return NumberValue{NumberFromInt(int64(len(v.Elements)), precision)}, nil
		case StringValue:
			return NumberValue{NumberFromInt(int64(len([]rune(v.S))), precision)}, nil
		}
		return nil, &UserError{Kind: "TypeError", Message: "length: unsupported type"}
	})
	out["length"] = length

	member := builtins.New("member").WithEvalLists()
	member.Add([]builtins.TypeSpec{tAny(), tList()}, tBool(), func(a []any) (any, error) {
		lst := a[1].(*ListValue)
		for _, e := range lst.Elements {
			v, err := evalIn(e, lst.Curry, lst.G)
			if err != nil {
				return nil, err
			}
			if Equal(a[0].(Value), v, evalIn) {
				return BoolValue{true}, nil
			}
		}
		return BoolValue{false}, nil
	})
	member.Add([]builtins.TypeSpec{tString(), tString()}, tBool(), func(a []any) (any, error) {
		needle, hay := a[0].(StringValue).S, a[1].(StringValue).S
		return BoolValue{containsSubstring(hay, needle)}, nil
	})
	out["member"] = member

	setB := builtins.New("set")
	setB.Add([]builtins.TypeSpec{tList(), tNumber(), tAny()}, tList(), func(a []any) (any, error) {
		l := a[0].(*ListValue)
		idx, err := normalizeIndex(a[1].(NumberValue).N, len(l.Elements))
		if err != nil {
			return nil, err
		}
		elems := append([]ast.Node{}, l.Elements...)
		elems[idx] = Literal(a[2].(Value))
		return NewList(elems, l.Curry, l.G), nil
	}, builtins.WithValidators(nil, vListIndex, nil))
	setB.Add([]builtins.TypeSpec{tString(), tNumber(), tString()}, tString(), func(a []any) (any, error) {
		s, v := []rune(a[0].(StringValue).S), a[2].(StringValue).S
		idx, err := normalizeIndex(a[1].(NumberValue).N, len(s))
		if err != nil {
			return nil, err
		}
		out := string(s[:idx]) + v + string(s[idx+1:])
		return StringValue{out}, nil
	}, builtins.WithValidators(nil, vStringIndex, nil))
	out["set"] = setB

	reverse := builtins.New("reverse")
	reverse.Add([]builtins.TypeSpec{tListOrString()}, tListOrString(), func(a []any) (any, error) {
		switch v := a[0].(type) {
		case StringValue:
			r := []rune(v.S)
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
			return StringValue{string(r)}, nil
		case *ListValue:
			elems := make([]ast.Node, len(v.Elements))
			for i, e := range v.Elements {
				elems[len(v.Elements)-1-i] = e
			}
			return NewList(elems, v.Curry, v.G), nil
		}
		return nil, &UserError{Kind: "TypeError", Message: "reverse: unsupported type"}
	})
	out["reverse"] = reverse

	sortB := builtins.New("sort").WithEvalLists()
	sortB.Add([]builtins.TypeSpec{tList()}, tList(), func(a []any) (any, error) {
		l := a[0].(*ListValue)
		vals := make([]Value, len(l.Elements))
		for i, e := range l.Elements {
			v, err := evalIn(e, l.Curry, l.G)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		sorted, err := sortValues(vals)
		if err != nil {
			return nil, err
		}
		return newLiteralList(sorted), nil
	})
	sortB.Add([]builtins.TypeSpec{tString()}, tString(), func(a []any) (any, error) {
		r := []rune(a[0].(StringValue).S)
		sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
		return StringValue{string(r)}, nil
	})
	out["sort"] = sortB

	slice := builtins.New("slice")
	slice.Add([]builtins.TypeSpec{tListOrString(), tNumber(), tNumber()}, tListOrString(), func(a []any) (any, error) {
		start := a[1].(NumberValue).N.Int64()
		end := a[2].(NumberValue).N.Int64()
		switch v := a[0].(type) {
		case StringValue:
			r := []rune(v.S)
			s, e, err := sliceBounds(start, end, len(r))
			if err != nil {
				return nil, err
			}
			return StringValue{string(r[s:e])}, nil
		case *ListValue:
			s, e, err := sliceBounds(start, end, len(v.Elements))
			if err != nil {
				return nil, err
			}
			return NewList(append([]ast.Node{}, v.Elements[s:e]...), v.Curry, v.G), nil
		}
		return nil, &UserError{Kind: "TypeError", Message: "slice: unsupported type"}
	}, builtins.WithValidators(nil, vListIndex, vListIndex))
	out["slice"] = slice

	join := builtins.New("join").WithEvalLists()
	join.Add([]builtins.TypeSpec{tList(), tString()}, tString(), func(a []any) (any, error) {
		l, sep := a[0].(*ListValue), a[1].(StringValue).S
		parts := make([]string, len(l.Elements))
		for i, e := range l.Elements {
			v, err := evalIn(e, l.Curry, l.G)
			if err != nil {
				return nil, err
			}
			s, err := renderForJoin(v)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		return StringValue{joinStrings(parts, sep)}, nil
	})
	out["join"] = join

	split := builtins.New("split")
	split.Add([]builtins.TypeSpec{tString(), tString()}, tList(), func(a []any) (any, error) {
		s, sep := a[0].(StringValue).S, a[1].(StringValue).S
		parts := splitString(s, sep)
		vals := make([]Value, len(parts))
		for i, p := range parts {
			vals[i] = StringValue{p}
		}
		return newLiteralList(vals), nil
	})
	out["split"] = split

	mapB := builtins.New("map")
	mapB.Add([]builtins.TypeSpec{tList(), tCallable()}, tList(), func(a []any) (any, error) {
		l, fn := a[0].(*ListValue), a[1].(Value)
		vals := make([]Value, len(l.Elements))
		for i, e := range l.Elements {
			v, err := evalIn(e, l.Curry, l.G)
			if err != nil {
				return nil, err
			}
			r, err := apply(fn, []Value{v})
			if err != nil {
				return nil, err
			}
			vals[i] = r
		}
		return newLiteralList(vals), nil
	})
	out["map"] = mapB

	filterB := builtins.New("filter")
	filterB.Add([]builtins.TypeSpec{tList(), tCallable()}, tList(), func(a []any) (any, error) {
		l, fn := a[0].(*ListValue), a[1].(Value)
		kept := make([]Value, 0, len(l.Elements))
		for _, e := range l.Elements {
			v, err := evalIn(e, l.Curry, l.G)
			if err != nil {
				return nil, err
			}
			r, err := apply(fn, []Value{v})
			if err != nil {
				return nil, err
			}
			if Truthy(r) {
				kept = append(kept, v)
			}
		}
		return newLiteralList(kept), nil
	})
	out["filter"] = filterB

	sum := builtins.New("sum").WithEvalLists()
	sum.Add([]builtins.TypeSpec{tListOf(tNumber())}, tNumber(), func(a []any) (any, error) {
		l := a[0].(*ListValue)
		acc := NumberFromInt(0, precision)
		for _, e := range l.Elements {
			v, err := evalIn(e, l.Curry, l.G)
			if err != nil {
				return nil, err
			}
			acc = Add(precision, acc, v.(NumberValue).N)
		}
		return NumberValue{acc}, nil
	})
	out["sum"] = sum

	product := builtins.New("product").WithEvalLists()
	product.Add([]builtins.TypeSpec{tListOf(tNumber())}, tNumber(), func(a []any) (any, error) {
		l := a[0].(*ListValue)
		acc := NumberFromInt(1, precision)
		for _, e := range l.Elements {
			v, err := evalIn(e, l.Curry, l.G)
			if err != nil {
				return nil, err
			}
			acc = Mul(precision, acc, v.(NumberValue).N)
		}
		return NumberValue{acc}, nil
	})
	out["product"] = product

	rangeB := builtins.New("range")
	rangeB.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tList(), func(a []any) (any, error) {
		start := a[0].(NumberValue).N.Int64()
		end := a[1].(NumberValue).N.Int64()
		vals := make([]Value, 0)
		for i := start; i < end; i++ {
			vals = append(vals, NumberValue{NumberFromInt(i, precision)})
		}
		return newLiteralList(vals), nil
	}, builtins.WithValidators(vListIndex, vListIndex))
	out["range"] = rangeB

	return out
}

func normalizeIndex(n Number, length int) (int, error) {
	if !n.IsInteger() {
		return 0, &UserError{Kind: "TypeError", Message: "index must be a whole number"}
	}
	i := int(n.Int64())
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, &UserError{Kind: "IndexError", Message: "index out of range"}
	}
	return i, nil
}

func sliceBounds(start, end int64, length int) (int, int, error) {
	s := int(start)
	if s < 0 {
		s += length
	}
	var e int
	if end == -1 {
		e = length
	} else {
		e = int(end) + 1
		if end < 0 {
			e = int(end) + 1 + length
		}
	}
	if s < 0 {
		s = 0
	}
	if e > length {
		e = length
	}
	if s > e {
		s = e
	}
	return s, e, nil
}

func sortValues(vals []Value) ([]Value, error) {
	out := append([]Value{}, vals...)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		ni, oki := out[i].(NumberValue)
		nj, okj := out[j].(NumberValue)
		if oki && okj {
			return ni.N.Cmp(nj.N) < 0
		}
		si, oksi := out[i].(StringValue)
		sj, oksj := out[j].(StringValue)
		if oksi && oksj {
			return si.S < sj.S
		}
		sortErr = &UserError{Kind: "TypeError", Message: "sort: elements are not comparable"}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

func renderForJoin(v Value) (string, error) {
	switch t := v.(type) {
	case StringValue:
		return t.S, nil
	case NumberValue:
		return t.N.String(15), nil
	case BoolValue:
		if t.B {
			return "true", nil
		}
		return "false", nil
	default:
		return "", &UserError{Kind: "TypeError", Message: "join: element is not a primitive value"}
	}
}

func joinStrings(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

func splitString(s, sep string) []string {
	if sep == "" {
		runes := []rune(s)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	return strings.Split(s, sep)
}

func containsSubstring(hay, needle string) bool {
	return strings.Contains(hay, needle)
}
