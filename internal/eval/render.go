package eval

import (
	"strings"

	"github.com/sunholo/numfu/internal/reconstruct"
)

// renderValue renders a value per spec.md §4.3.5. asElement marks
// rendering inside a List literal, where Strings keep their quotes.
func (ip *Interp) renderValue(v Value, asElement bool) (string, error) {
	switch t := v.(type) {
	case NumberValue:
		return t.N.String(ip.opts.Precision), nil
	case BoolValue:
		return t.Render(0), nil
	case StringValue:
		if asElement {
			return t.QuotedRender(), nil
		}
		return t.S, nil
	case *ListValue:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			ev, err := ip.evalIn(e, t.Curry, t.G)
			if err != nil {
				return "", err
			}
			s, err := ip.renderValue(ev, true)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case *ClosureValue:
		return ip.renderClosure(t), nil
	case BuiltinValue:
		return "<built-in: " + t.B.Name + ">", nil
	case PrintEffectValue:
		return ip.renderValue(t.Inner, asElement)
	case Placeholder:
		return "_", nil
	case nil:
		return "", nil
	default:
		return v.Render(ip.opts.Precision), nil
	}
}

// renderClosure delegates to the reconstructor, substituting captured
// bindings for the closure's free variables (spec.md §4.3.5). Captured
// values that cannot render to source (print effects, bounces) fall
// back to their bare identifier.
func (ip *Interp) renderClosure(c *ClosureValue) string {
	params := make([]string, len(c.Params))
	copy(params, c.Params)
	if c.HasRest && len(params) > 0 {
		params[len(params)-1] = "..." + c.Rest
	}
	// The stored parse fragment drives reconstruction; a missing
	// fragment falls back to the live body.
	body := c.Tree
	if body == nil {
		body = c.Body
	}
	return reconstruct.Closure(params, body, func(name string) (string, bool) {
		v, ok := c.Curry.Get(name)
		if !ok {
			return "", false
		}
		s, err := ip.renderValue(v, true)
		if err != nil {
			return "", false
		}
		return s, true
	})
}

// renderString backs the `String` conversion builtin, which receives
// the ambient precision (spec.md §4.2 special semantics).
func (ip *Interp) renderString(v Value, precision int) (string, error) {
	return ip.renderValue(v, false)
}
