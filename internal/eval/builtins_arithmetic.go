package eval

import (
	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/builtins"
)

// registerArithmetic wires the numeric/string/list `+`, `-`, `*`, `/`,
// `%`, `^` operator overloads, grounded in
// original_source/builtins.py's registration block for the same names.
// precision is captured once (interpreter construction, spec.md §5) and
// closed over by every Impl.
func registerArithmetic(precision int) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	add := builtins.New("+")
	add.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Add(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	add.Add([]builtins.TypeSpec{tString(), tString()}, tString(), func(a []any) (any, error) {
		return StringValue{a[0].(StringValue).S + a[1].(StringValue).S}, nil
	})
	add.Add([]builtins.TypeSpec{tList(), tList()}, tList(), func(a []any) (any, error) {
		l1, l2 := a[0].(*ListValue), a[1].(*ListValue)
		elems := append(append([]ast.Node{}, l1.Elements...), l2.Elements...)
		return NewList(elems, l1.Curry, l1.G), nil
	})
	out["+"] = add

	sub := builtins.New("-")
	// unary minus: SPEC_FULL.md §3 item 1 — `-x` is `sub` dispatched with
	// arity 1, selected structurally alongside the binary overload.
	sub.Add([]builtins.TypeSpec{tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Neg(precision, a[0].(NumberValue).N)}, nil
	})
	sub.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Sub(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	out["-"] = sub

	mul := builtins.New("*")
	mul.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Mul(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	mul.Add([]builtins.TypeSpec{tString(), tNumber()}, tString(), func(a []any) (any, error) {
		s, n := a[0].(StringValue).S, int(a[1].(NumberValue).N.Int64())
		out := ""
		for i := 0; i < n; i++ {
			out += s
		}
		return StringValue{out}, nil
	}, builtins.WithValidators(nil, vMulInteger), builtins.Commutative())
	mul.Add([]builtins.TypeSpec{tList(), tNumber()}, tList(), func(a []any) (any, error) {
		l, n := a[0].(*ListValue), int(a[1].(NumberValue).N.Int64())
		elems := make([]ast.Node, 0, len(l.Elements)*n)
		for i := 0; i < n; i++ {
			elems = append(elems, l.Elements...)
		}
		return NewList(elems, l.Curry, l.G), nil
	}, builtins.WithValidators(nil, vMulInteger), builtins.Commutative())
	mul.Error([]builtins.TypeSpec{tString(), tString()}, "Cannot multiply two strings")
	mul.Error([]builtins.TypeSpec{tList(), tList()}, "Cannot multiply two lists")
	out["*"] = mul

	div := builtins.New("/")
	div.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Div(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	out["/"] = div

	mod := builtins.New("%")
	mod.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Mod(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	out["%"] = mod

	pow := builtins.New("^")
	pow.Add([]builtins.TypeSpec{tNumber(), tNumber()}, tNumber(), func(a []any) (any, error) {
		return NumberValue{Pow(precision, a[0].(NumberValue).N, a[1].(NumberValue).N)}, nil
	})
	out["^"] = pow

	return out
}
