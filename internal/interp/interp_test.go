package interp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunholo/numfu/internal/eval"
	"github.com/sunholo/numfu/testutil"
)

func init() {
	color.NoColor = true
}

// runProgram writes src to a temp file and runs it through the full
// pipeline: parse, resolve, link, evaluate, echo.
func runProgram(t *testing.T, src string, opts eval.Options) (stdout, stderr string, code int) {
	t.Helper()
	dir := t.TempDir()
	return runProgramIn(t, dir, src, opts)
}

func runProgramIn(t *testing.T, dir, src string, opts eval.Options) (stdout, stderr string, code int) {
	t.Helper()
	path := filepath.Join(dir, "main.nfu")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	var out, errBuf bytes.Buffer
	opts.Stdout = &out
	opts.Stdin = strings.NewReader("")
	in, err := New(opts, true, &errBuf)
	require.NoError(t, err)
	code = in.RunFile(path)
	return out.String(), errBuf.String(), code
}

func defaultOpts() eval.Options {
	return eval.Options{Precision: 15, RecDepth: 10000, IterDepth: 0}
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"S1 factorial", `let fact = {n -> if n <= 1 then 1 else n * fact(n - 1)} in fact(10)`, "3628800\n"},
		{"S2 precedence", `(1 + 2) * 3`, "9\n"},
		{"S3 pipeline", `[1,2,3,4] |> map({x -> x*x}) |> sum`, "30\n"},
		{"S4 placeholder", `let add = {a,b -> a+b} in add(_,5)(3)`, "8\n"},
		{"S5 chained comparison", `if 0 == 0 < 1 then "ok" else "no"`, "ok\n"},
		{"S7 print then expression", `print("hi"); 2+2`, "hi\n4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runProgram(t, tt.src, defaultOpts())
			assert.Equal(t, 0, code, "stderr: %s", stderr)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestS6TailIteration(t *testing.T) {
	src := `let loop = {n,acc -> if n == 0 then acc else loop(n-1, acc+n)} in loop(100000, 0)`
	stdout, stderr, code := runProgram(t, src, eval.Options{Precision: 15, RecDepth: 10000, IterDepth: 200000})
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, "5000050000\n", stdout)
}

func TestScenarioGoldens(t *testing.T) {
	scenarios := []struct {
		name string
		src  string
	}{
		{"factorial", `let fact = {n -> if n <= 1 then 1 else n * fact(n - 1)} in fact(10)`},
		{"pipeline", `[1,2,3,4] |> map({x -> x*x}) |> sum`},
		{"partial_closure", `let add = {a, b -> a + b} in add(1)`},
		{"list_render", `[1, "two", [true]]`},
	}
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			stdout, _, code := runProgram(t, sc.src, defaultOpts())
			require.Equal(t, 0, code)
			testutil.CompareWithGolden(t, "scenarios", sc.name, stdout)
		})
	}
}

func TestFatalErrorExitsOne(t *testing.T) {
	stdout, stderr, code := runProgram(t, `nope + 1`, defaultOpts())
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "NameError")
	assert.Contains(t, stderr, "nope")
}

func TestErrorReportsPosition(t *testing.T) {
	_, stderr, code := runProgram(t, "let x = 1\nx + nope\n", defaultOpts())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "main.nfu:2:")
	assert.Contains(t, stderr, "^")
}

func TestFileImports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.nfu"),
		[]byte("let double = {x -> x * 2}\nexport double\n"), 0o644))

	stdout, stderr, code := runProgramIn(t, dir, "from helper import double\ndouble(21)\n", defaultOpts())
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, "42\n", stdout)
}

func TestBareImportQualified(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.nfu"),
		[]byte("let answer = 42\nexport answer\n"), 0o644))

	stdout, _, code := runProgramIn(t, dir, "import helper\nhelper.answer\n", defaultOpts())
	assert.Equal(t, 0, code)
	assert.Equal(t, "42\n", stdout)
}

func TestImportCycleFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.nfu"),
		[]byte("import b\nlet x = 1\nexport x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.nfu"),
		[]byte("import a\nlet y = 2\nexport y\n"), 0o644))

	_, stderr, code := runProgramIn(t, dir, "import a\n", defaultOpts())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ImportError")
	assert.Contains(t, stderr, "Circular import")
}

func TestStdlibImports(t *testing.T) {
	stdout, stderr, code := runProgram(t, "import math\nmath.floor(3.7)\n", defaultOpts())
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, "3\n", stdout)

	stdout, stderr, code = runProgram(t, "from std import fold\nfold({acc, x -> acc + x}, 0, [1,2,3,4])\n", defaultOpts())
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, "10\n", stdout)
}

func TestStdlibCompose(t *testing.T) {
	src := "from std import compose\nlet inc = {x -> x + 1}\nlet dbl = {x -> x * 2}\ncompose(inc, dbl)(5)\n"
	stdout, stderr, code := runProgram(t, src, defaultOpts())
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, "12\n", stdout)
}

func TestDeleteRemovesBinding(t *testing.T) {
	src := "let x = 1\nx\ndel x\nx\n"
	var out, errBuf bytes.Buffer
	opts := defaultOpts()
	opts.Stdout = &out
	// Non-fatal so the run continues past the NameError.
	in, err := New(opts, false, &errBuf)
	require.NoError(t, err)
	code := in.RunSource(src, "repl-input")
	assert.Equal(t, 0, code)
	assert.Equal(t, "1\n", out.String())
	assert.Contains(t, errBuf.String(), "NameError")
}

func TestREPLStatePersistsAcrossInputs(t *testing.T) {
	var out, errBuf bytes.Buffer
	opts := defaultOpts()
	opts.Stdout = &out
	in, err := New(opts, false, &errBuf)
	require.NoError(t, err)

	assert.Equal(t, 0, in.RunSource("let x = 20", "REPL"))
	assert.Equal(t, 0, in.RunSource("let y = 22", "REPL"))
	assert.Equal(t, 0, in.RunSource("x + y", "REPL"))
	assert.Equal(t, "42\n", out.String())
	assert.Empty(t, errBuf.String())
}

func TestREPLRecoversFromErrors(t *testing.T) {
	var out, errBuf bytes.Buffer
	opts := defaultOpts()
	opts.Stdout = &out
	in, err := New(opts, false, &errBuf)
	require.NoError(t, err)

	assert.Equal(t, 0, in.RunSource("boom", "REPL"))
	assert.Contains(t, errBuf.String(), "NameError")

	// The session keeps working after the failure.
	assert.Equal(t, 0, in.RunSource("1 + 1", "REPL"))
	assert.Contains(t, out.String(), "2\n")
}

func TestModuleConstantsEvaluateOnce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noisy.nfu"),
		[]byte("let marker = println(\"loaded\")\nlet v = 7\nexport v\n"), 0o644))

	stdout, _, code := runProgramIn(t, dir, "from noisy import v\nv\nv\n", defaultOpts())
	assert.Equal(t, 0, code)
	// The imported module's print effect runs once, at load.
	assert.Equal(t, "loaded\n7\n7\n", stdout)
}

func TestPrecisionFlag(t *testing.T) {
	stdout, _, code := runProgram(t, "1 / 3", eval.Options{Precision: 5, RecDepth: 1000})
	assert.Equal(t, 0, code)
	assert.Equal(t, "0.33333\n", stdout)
}
