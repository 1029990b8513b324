package eval

import "github.com/sunholo/numfu/internal/builtins"

// registerBoolean wires `&&`, `||`, `!`, `xor`. `&&`/`||` are additionally
// short-circuited directly in Call evaluation (spec.md §4.3 step 1);
// these registrations are what's reached when they're used as values
// rather than applied directly (partial application, `map`, etc.), and
// by `xor`, which spec.md doesn't name but original_source/builtins.py
// registers alongside them (SPEC_FULL.md §3 item 6).
func registerBoolean() map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	and := builtins.New("&&")
	and.Add([]builtins.TypeSpec{tAny(), tAny()}, tBool(), func(a []any) (any, error) {
		return BoolValue{Truthy(a[0].(Value)) && Truthy(a[1].(Value))}, nil
	})
	out["&&"] = and

	or := builtins.New("||")
	or.Add([]builtins.TypeSpec{tAny(), tAny()}, tBool(), func(a []any) (any, error) {
		return BoolValue{Truthy(a[0].(Value)) || Truthy(a[1].(Value))}, nil
	})
	out["||"] = or

	not := builtins.New("!")
	not.Add([]builtins.TypeSpec{tAny()}, tBool(), func(a []any) (any, error) {
		return BoolValue{!Truthy(a[0].(Value))}, nil
	})
	out["!"] = not

	xor := builtins.New("xor")
	xor.Add([]builtins.TypeSpec{tAny(), tAny()}, tBool(), func(a []any) (any, error) {
		return BoolValue{Truthy(a[0].(Value)) != Truthy(a[1].(Value))}, nil
	})
	out["xor"] = xor

	return out
}
