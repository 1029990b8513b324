package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The registry is generic over `any`; tests drive it with plain Go
// values and simple TypeSpecs.
func tInt() TypeSpec {
	return Concrete("Int", func(v any) bool { _, ok := v.(int); return ok })
}

func tStr() TypeSpec {
	return Concrete("Str", func(v any) bool { _, ok := v.(string); return ok })
}

func typename(v any) string {
	switch v.(type) {
	case int:
		return "Int"
	case string:
		return "Str"
	default:
		return "Unknown"
	}
}

func TestDispatchSelectsByArity(t *testing.T) {
	b := New("f")
	b.Add([]TypeSpec{tInt()}, tInt(), func(a []any) (any, error) { return -a[0].(int), nil })
	b.Add([]TypeSpec{tInt(), tInt()}, tInt(), func(a []any) (any, error) { return a[0].(int) - a[1].(int), nil })

	r, err := Dispatch(b, []any{5}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, -5, r)

	r, err = Dispatch(b, []any{5, 2}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, r)
}

func TestDispatchSelectsByType(t *testing.T) {
	b := New("g")
	b.Add([]TypeSpec{tInt()}, tInt(), func(a []any) (any, error) { return "int", nil })
	b.Add([]TypeSpec{tStr()}, tStr(), func(a []any) (any, error) { return "str", nil })

	r, err := Dispatch(b, []any{"x"}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, "str", r)
}

func TestDispatchArityError(t *testing.T) {
	b := New("h")
	b.Add([]TypeSpec{tInt()}, tInt(), func(a []any) (any, error) { return nil, nil })

	_, err := Dispatch(b, []any{1, 2, 3}, typename, nil)
	require.Error(t, err)
	de, ok := err.(*DispatchError)
	require.True(t, ok)
	assert.Equal(t, "ValueError", de.Kind)
	assert.Contains(t, de.Message, "wrong number of arguments")
}

func TestDispatchTypeErrorReportsFirst(t *testing.T) {
	b := New("k")
	b.Add([]TypeSpec{tInt()}, tInt(), func(a []any) (any, error) { return nil, nil })
	b.Add([]TypeSpec{tStr()}, tStr(), func(a []any) (any, error) { return nil, nil })

	_, err := Dispatch(b, []any{3.5}, typename, nil)
	require.Error(t, err)
	de := err.(*DispatchError)
	assert.Equal(t, "TypeError", de.Kind)
	assert.Contains(t, de.Message, "'k'")
}

func TestInfiniteOfExpansion(t *testing.T) {
	b := New("sumAll")
	b.Add([]TypeSpec{InfiniteOf(tInt())}, tInt(), func(a []any) (any, error) {
		total := 0
		for _, v := range a {
			total += v.(int)
		}
		return total, nil
	})

	r, err := Dispatch(b, []any{}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, r)

	r, err = Dispatch(b, []any{1, 2, 3, 4}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, r)
}

func TestFixedPrefixBeforeInfinite(t *testing.T) {
	b := New("fmt")
	b.Add([]TypeSpec{tStr(), InfiniteOf(tStr())}, tStr(), func(a []any) (any, error) {
		return len(a), nil
	})

	_, err := Dispatch(b, []any{}, typename, nil)
	assert.Error(t, err)

	r, err := Dispatch(b, []any{"tmpl", "a", "b"}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, r)
}

func TestValidatorFailureRaisesImmediately(t *testing.T) {
	positive := NewValidator("argument {i} must be positive, got {arg}", func(v any) bool {
		return v.(int) > 0
	})
	b := New("sqrtish")
	b.Add([]TypeSpec{tInt()}, tInt(), func(a []any) (any, error) { return a[0], nil },
		WithValidators(positive))

	_, err := Dispatch(b, []any{-3}, typename, nil)
	require.Error(t, err)
	de := err.(*DispatchError)
	assert.Equal(t, "TypeError", de.Kind)
	assert.Equal(t, "argument 1 must be positive, got -3", de.Message)
	assert.Equal(t, 0, de.ArgIndex)
}

func TestErrorCases(t *testing.T) {
	b := New("mulish")
	b.Add([]TypeSpec{tInt(), tInt()}, tInt(), func(a []any) (any, error) { return nil, nil })
	b.Error([]TypeSpec{tStr(), tStr()}, "cannot multiply two strings")

	_, err := Dispatch(b, []any{"a", "b"}, typename, nil)
	require.Error(t, err)
	assert.Equal(t, "cannot multiply two strings", err.(*DispatchError).Message)
}

func TestCommutativeGeneratesSwap(t *testing.T) {
	b := New("rep")
	b.Add([]TypeSpec{tStr(), tInt()}, tStr(), func(a []any) (any, error) {
		s, n := a[0].(string), a[1].(int)
		out := ""
		for i := 0; i < n; i++ {
			out += s
		}
		return out, nil
	}, Commutative())

	r, err := Dispatch(b, []any{"ab", 2}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, "abab", r)

	// Swapped order dispatches through the generated permutation.
	r, err = Dispatch(b, []any{2, "ab"}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, "abab", r)
}

func TestTransformer(t *testing.T) {
	b := New("unwrap")
	b.Add([]TypeSpec{tInt(), tInt()}, tInt(), func(a []any) (any, error) {
		return a[0].(int) + a[1].(int), nil
	}, WithTransformer(func(args []any) []any {
		// Split a single pair-encoded int into two.
		if len(args) == 1 {
			n := args[0].(int)
			return []any{n / 10, n % 10}
		}
		return args
	}))

	// The transformer only applies once the arity matches after
	// expansion; a 2-arg call passes through unchanged.
	r, err := Dispatch(b, []any{3, 4}, typename, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, r)
}

func TestUnionAndListOf(t *testing.T) {
	intOrStr := Union("Int|Str", tInt(), tStr())
	assert.True(t, intOrStr.Matches(1))
	assert.True(t, intOrStr.Matches("x"))
	assert.False(t, intOrStr.Matches(1.5))

	ints := ListOf(tInt(),
		func(v any) bool { _, ok := v.([]any); return ok },
		func(v any) []any { return v.([]any) })
	assert.True(t, ints.Matches([]any{1, 2}))
	assert.False(t, ints.Matches([]any{1, "x"}))
	assert.False(t, ints.Matches("nope"))
}

func TestAnyMatchesEverything(t *testing.T) {
	assert.True(t, Any().Matches(nil))
	assert.True(t, Any().Matches(42))
	assert.True(t, Any().Matches("s"))
}
