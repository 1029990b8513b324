package eval

import (
	"strings"

	"github.com/sunholo/numfu/internal/builtins"
)

// registerFormat wires `format`, the one remaining special-semantics
// builtin from spec.md §4.2's set (`{String, format, error, assert,
// filter, range, set}`): it raises IndexError on a placeholder-count
// mismatch rather than a generic TypeError.
func registerFormat() map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	format := builtins.New("format")
	format.Add([]builtins.TypeSpec{tString(), infiniteOf(tString())}, tString(), func(a []any) (any, error) {
		tmpl := a[0].(StringValue).S
		args := make([]string, len(a)-1)
		for i, v := range a[1:] {
			args[i] = v.(StringValue).S
		}
		result, err := applyFormat(tmpl, args)
		if err != nil {
			return nil, err
		}
		return StringValue{result}, nil
	})
	out["format"] = format

	return out
}

// applyFormat substitutes "{}" placeholders left to right, mirroring
// original_source/builtins.py's `a.format(*args)` (Python str.format with
// only positional "{}" placeholders, which is all NumFu's grammar emits).
func applyFormat(tmpl string, args []string) (string, error) {
	var b strings.Builder
	used := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '{' && i+1 < len(tmpl) && tmpl[i+1] == '}' {
			if used >= len(args) {
				return "", &UserError{Kind: "IndexError", Message: "Incorrect number of placeholders"}
			}
			b.WriteString(args[used])
			used++
			i++
			continue
		}
		b.WriteByte(tmpl[i])
	}
	if used != len(args) {
		return "", &UserError{Kind: "IndexError", Message: "Incorrect number of placeholders"}
	}
	return b.String(), nil
}
