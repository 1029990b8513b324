package eval

import (
	"bufio"
	"io"
	"strings"

	"github.com/sunholo/numfu/internal/builtins"
)

// registerIO wires print/println/input, grounded in
// original_source/builtins.py's Builtins._print/_println: print and
// println wrap the argument in a print effect that the evaluator forces
// exactly once (spec.md §3/§4.3.4), rather than writing to stdout from
// inside the builtin itself. input is the one blocking operation of the
// whole interpreter (spec.md §5): it synchronously reads a line from
// stdin.
func registerIO(stdin io.Reader, stdout io.Writer) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	print := builtins.New("print")
	print.Add([]builtins.TypeSpec{tAny()}, tAny(), func(a []any) (any, error) {
		return PrintEffectValue{Inner: a[0].(Value), End: ""}, nil
	})
	out["print"] = print

	println := builtins.New("println")
	println.Add([]builtins.TypeSpec{tAny()}, tAny(), func(a []any) (any, error) {
		return PrintEffectValue{Inner: a[0].(Value), End: "\n"}, nil
	})
	out["println"] = println

	reader := bufio.NewReader(stdin)
	readLine := func() (any, error) {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return StringValue{""}, nil
		}
		return StringValue{strings.TrimRight(line, "\r\n")}, nil
	}

	input := builtins.New("input")
	input.Add([]builtins.TypeSpec{}, tString(), func(a []any) (any, error) {
		return readLine()
	})
	input.Add([]builtins.TypeSpec{tString()}, tString(), func(a []any) (any, error) {
		if _, err := io.WriteString(stdout, a[0].(StringValue).S); err != nil {
			return nil, err
		}
		return readLine()
	})
	out["input"] = input

	return out
}
