package eval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/parser"
)

// runSource parses src and evaluates its top-level nodes the way the
// driver does: constants populate globals, expressions render one line
// each. Returns rendered output lines and captured stdout.
func runSource(t *testing.T, src string, opts Options) (results []string, printed string) {
	t.Helper()
	var out bytes.Buffer
	opts.Stdout = &out
	opts.Stdin = strings.NewReader("")
	ip := New(opts)
	g := NewGlobals(ip.Registry())

	tree, err := parser.Parse(src, "test.nfu")
	require.NoError(t, err)

	for _, node := range tree {
		switch n := node.(type) {
		case *ast.Constant:
			v, err := ip.EvalNode(n.Value, g)
			require.NoError(t, err)
			g.Vars[n.Name] = v
		case *ast.Delete:
			delete(g.Vars, n.Name)
		case *ast.Import, *ast.Export:
		default:
			v, err := ip.EvalNode(node, g)
			require.NoError(t, err)
			if _, ok := v.(PrintEffectValue); ok {
				continue
			}
			s, err := ip.Render(v)
			require.NoError(t, err)
			results = append(results, s)
		}
	}
	return results, out.String()
}

// runError evaluates src expecting the first error.
func runError(t *testing.T, src string, opts Options) error {
	t.Helper()
	var out bytes.Buffer
	opts.Stdout = &out
	ip := New(opts)
	g := NewGlobals(ip.Registry())

	tree, err := parser.Parse(src, "test.nfu")
	require.NoError(t, err)

	for _, node := range tree {
		switch n := node.(type) {
		case *ast.Constant:
			v, err := ip.EvalNode(n.Value, g)
			if err != nil {
				return err
			}
			g.Vars[n.Name] = v
		default:
			if _, err := ip.EvalNode(node, g); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"factorial", `let fact = {n -> if n <= 1 then 1 else n * fact(n - 1)} in fact(10)`, []string{"3628800"}},
		{"precedence", `(1 + 2) * 3`, []string{"9"}},
		{"pipeline", `[1,2,3,4] |> map({x -> x*x}) |> sum`, []string{"30"}},
		{"placeholder", `let add = {a,b -> a+b} in add(_,5)(3)`, []string{"8"}},
		{"chained comparison", `if 0 == 0 < 1 then "ok" else "no"`, []string{"ok"}},
		{"currying", `let add = {a,b -> a+b} in add(2)(3)`, []string{"5"}},
		{"over-application", `let pair = {a -> {b -> a + b}} in pair(1, 2)`, []string{"3"}},
		{"negative index", `[10, 20, 30][-1]`, []string{"30"}},
		{"string index", `"hello"[1]`, []string{"e"}},
		{"spread in call", `let add3 = {a,b,c -> a+b+c} in add3(...[1,2,3])`, []string{"6"}},
		{"spread in list", `[0, ...[1, 2], 3]`, []string{"[0, 1, 2, 3]"}},
		{"rest parameter", `let collect = {first, ...rest -> rest} in collect(1, 2, 3)`, []string{"[2, 3]"}},
		{"let shadows", `let x = 1 in let x = 2 in x`, []string{"2"}},
		{"division by zero", `1/0`, []string{"inf"}},
		{"division zero by zero", `0/0`, []string{"nan"}},
		{"negative division by zero", `-1/0`, []string{"-inf"}},
		{"unary minus chain", `--5`, []string{"5"}},
		{"number from string sign chain", `Number("-+-5")`, []string{"5"}},
		{"xor", `xor(true, false)`, []string{"true"}},
		{"constant pi renders by name", `pi`, []string{"pi"}},
		{"string concat", `"a" + "b"`, []string{"ab"}},
		{"string repetition", `"ab" * 3`, []string{"ababab"}},
		{"format", `format("{} and {}", "a", "b")`, []string{"a and b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, _ := runSource(t, tt.src, DefaultOptions())
			assert.Equal(t, tt.want, results)
		})
	}
}

func TestTailCallsRunInConstantStack(t *testing.T) {
	src := `let loop = {n, acc -> if n == 0 then acc else loop(n-1, acc+n)} in loop(100000, 0)`
	results, _ := runSource(t, src, Options{Precision: 15, RecDepth: 200, IterDepth: 0})
	assert.Equal(t, []string{"5000050000"}, results)
}

func TestMutualTailRecursion(t *testing.T) {
	src := `
let isEven = {n -> if n == 0 then true else isOdd(n - 1)}
let isOdd = {n -> if n == 0 then false else isEven(n - 1)}
isEven(10000)
`
	results, _ := runSource(t, src, Options{Precision: 15, RecDepth: 200})
	assert.Equal(t, []string{"true"}, results)
}

func TestIterDepthExceeded(t *testing.T) {
	src := `let loop = {n -> if n == 0 then 0 else loop(n-1)} in loop(1000)`
	err := runError(t, src, Options{Precision: 15, RecDepth: 10000, IterDepth: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tail-call recursion limit exceeded")
}

func TestHostRecursionExceeded(t *testing.T) {
	// Non-tail recursion grows the host stack: n * f(n-1) is not a
	// tail call.
	src := `let f = {n -> if n == 0 then 1 else n * f(n - 1)} in f(100000)`
	err := runError(t, src, Options{Precision: 15, RecDepth: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum recursion depth exceeded")
}

func TestShortCircuit(t *testing.T) {
	// The right operand would raise NameError if evaluated.
	results, _ := runSource(t, `false && boom(1)`, DefaultOptions())
	assert.Equal(t, []string{"false"}, results)

	results, _ = runSource(t, `true || boom(1)`, DefaultOptions())
	assert.Equal(t, []string{"true"}, results)

	err := runError(t, `true && boom(1)`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPlaceholderEquivalence(t *testing.T) {
	// Property 1: filling placeholders in order equals direct
	// application.
	tests := []struct {
		direct  string
		partial string
	}{
		{`{a,b,c -> a*100 + b*10 + c}(1,2,3)`, `{a,b,c -> a*100 + b*10 + c}(_,2,_)(1,3)`},
		{`{a,b -> a-b}(7,2)`, `{a,b -> a-b}(_,2)(7)`},
		{`{a,b -> a-b}(7,2)`, `{a,b -> a-b}(7,_)(2)`},
	}
	for _, tt := range tests {
		direct, _ := runSource(t, tt.direct, DefaultOptions())
		partial, _ := runSource(t, tt.partial, DefaultOptions())
		assert.Equal(t, direct, partial, "partial %s should equal direct %s", tt.partial, tt.direct)
	}
}

func TestPartialBuiltin(t *testing.T) {
	results, _ := runSource(t, `let atLeast5 = max(_, 5) in atLeast5(12)`, DefaultOptions())
	assert.Equal(t, []string{"12"}, results)

	// Repeated partial application stays a builtin until saturated.
	results, _ = runSource(t, `let f = format(_, _, "c") in f("{}{}", _)("b")`, DefaultOptions())
	assert.Equal(t, []string{"bc"}, results)
}

func TestSpreadPlaceholderMixRejected(t *testing.T) {
	err := runError(t, `{a,b -> a+b}(_, ...[1])`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TypeError")
}

func TestListCaptureEnvironment(t *testing.T) {
	// Property 2: elements evaluate in the list's capture environment,
	// not the indexing site's.
	src := `
let makeList = {x -> [x, x * 2]}
let lst = makeList(21)
let x = 1000
lst[1]
`
	results, _ := runSource(t, src, DefaultOptions())
	assert.Equal(t, []string{"42"}, results)
}

func TestIndexErrors(t *testing.T) {
	err := runError(t, `[1,2][5]`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IndexError")

	err = runError(t, `[1,2][0.5]`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TypeError")

	err = runError(t, `5[0]`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not indexable")
}

func TestPrintEffects(t *testing.T) {
	_, printed := runSource(t, `print("hi")`, DefaultOptions())
	assert.Equal(t, "hi", printed)

	_, printed = runSource(t, `println("hi")`, DefaultOptions())
	assert.Equal(t, "hi\n", printed)

	// The effect prints exactly once even when reused.
	_, printed = runSource(t, `let x = println("once") in x`, DefaultOptions())
	assert.Equal(t, "once\n", printed)
}

func TestCrossTypeEqualityNeverCoerces(t *testing.T) {
	results, _ := runSource(t, `1 == "1"`, DefaultOptions())
	assert.Equal(t, []string{"false"}, results)

	results, _ = runSource(t, `[1, 2] == [1, 2]`, DefaultOptions())
	assert.Equal(t, []string{"true"}, results)

	results, _ = runSource(t, `nan == nan`, DefaultOptions())
	assert.Equal(t, []string{"false"}, results)
}

func TestUserErrors(t *testing.T) {
	err := runError(t, `error("boom")`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RuntimeError")
	assert.Contains(t, err.Error(), "boom")

	err = runError(t, `assert(1 > 2)`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AssertionError")

	results, _ := runSource(t, `assert(1 < 2, "fine")`, DefaultOptions())
	assert.Equal(t, []string{"fine"}, results)
}

func TestNotCallable(t *testing.T) {
	err := runError(t, `5(1)`, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not callable")
}

func TestClosureRendering(t *testing.T) {
	// A partially applied closure renders with bound values inlined.
	results, _ := runSource(t, `let add = {a, b -> a + b} in add(1)`, DefaultOptions())
	require.Len(t, results, 1)
	assert.Equal(t, "{b -> 1 + b}", results[0])

	results, _ = runSource(t, `{x -> x * 2}`, DefaultOptions())
	assert.Equal(t, []string{"{x -> x * 2}"}, results)
}

func TestPowerHonorsPrecision(t *testing.T) {
	// The `^` operator must not collapse to float64 accuracy.
	results, _ := runSource(t, `3 ^ 40`, Options{Precision: 50})
	assert.Equal(t, []string{"12157665459056928801"}, results)

	results, _ = runSource(t, `2 ^ -2`, DefaultOptions())
	assert.Equal(t, []string{"0.25"}, results)
}

func TestPrecisionThreading(t *testing.T) {
	results, _ := runSource(t, `1 / 3`, Options{Precision: 5})
	require.Len(t, results, 1)
	assert.Equal(t, "0.33333", results[0])
}
