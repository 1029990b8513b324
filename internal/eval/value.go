package eval

import (
	"strings"

	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/builtins"
)

// Value is NumFu's runtime value (spec.md §3): Number, Bool, String,
// List, Closure, Builtin or PrintEffect. Modeled as small structs with a
// common interface, mirroring the teacher's internal/eval/value.go
// IntValue/FloatValue/ListValue split rather than one tagged union.
type Value interface {
	Type() string
	Render(precision int) string
}

// NumberValue wraps Number as a Value.
type NumberValue struct{ N Number }

func (NumberValue) Type() string { return "Number" }
func (v NumberValue) Render(precision int) string {
	return v.N.String(precision)
}

// String implements fmt.Stringer at the default precision, so values
// interpolated into validator templates ({arg}) read as source text.
func (v NumberValue) String() string { return v.N.String(15) }

// BoolValue wraps bool.
type BoolValue struct{ B bool }

func (BoolValue) Type() string { return "Bool" }
func (v BoolValue) Render(int) string {
	if v.B {
		return "true"
	}
	return "false"
}
func (v BoolValue) String() string { return v.Render(0) }

// StringValue wraps a code-point sequence. Go strings are UTF-8 byte
// sequences; String's spec'd semantics ("immutable sequence of code
// points") are honored by always iterating with []rune in the built-ins
// that index/slice/measure it (internal/eval/builtins_list.go), per
// SPEC_FULL.md §2's golang.org/x/text/unicode/norm normalization note.
type StringValue struct{ S string }

func (StringValue) Type() string        { return "String" }
func (v StringValue) Render(int) string { return v.S }
func (v StringValue) String() string    { return v.S }

// QuotedRender is used when a String is rendered as a List element
// (spec.md §4.3.5: "wrapped in quotes").
func (v StringValue) QuotedRender() string { return `"` + v.S + `"` }

// Placeholder is the distinguished `_` value (design note §9: modeled as
// a value kind, not a special-cased Variable, to keep partial-application
// dispatch in one place).
type Placeholder struct{}

func (Placeholder) Type() string        { return "Placeholder" }
func (Placeholder) Render(int) string   { return "_" }

// ListValue is lazy w.r.t. its elements: Elements stores unevaluated AST
// nodes (or ast.Literal wrappers around already-computed Values), Curry
// is the environment snapshot elements are evaluated against (spec.md
// §3: "curry environments are snapshots at construction"), and G is the
// module-level Globals active when the list was built, so a list built
// in one module and indexed from another still resolves its own
// top-level free variables correctly.
type ListValue struct {
	Elements []ast.Node
	Curry    *Env
	G        *Globals
}

func (ListValue) Type() string { return "List" }
func (v ListValue) Render(precision int) string {
	return "<list>" // overridden by the evaluator's renderer, which needs Eval access
}

func NewList(elements []ast.Node, curry *Env, g *Globals) *ListValue {
	return &ListValue{Elements: elements, Curry: curry, G: g}
}

// Literal builds a ListValue element from an already-evaluated Value,
// for built-ins that synthesize new lists.
func Literal(v Value) ast.Node { return ast.NewLiteral(v, ast.Pos{Index: -1}) }

// newLiteralList builds a *ListValue whose elements are all already
// fully evaluated, i.e. every element is Literal-wrapped. Curry/Globals
// are irrelevant since Literal-wrapped elements never re-evaluate.
func newLiteralList(values []Value) *ListValue {
	elems := make([]ast.Node, len(values))
	for i, v := range values {
		elems[i] = Literal(v)
	}
	return NewList(elems, NewEnv(), nil)
}

// ClosureValue is a Lambda bound to its captured environment (spec.md
// §3's Closure variant). Tree is the node used for reconstruction. G is
// the module-level Globals active at capture, mirroring ListValue.G.
type ClosureValue struct {
	Name    string
	Params  []string // already stripped of "..." prefix
	Rest    string   // "" if no rest parameter
	HasRest bool
	Body    ast.Node
	Curry   *Env
	Tree    ast.Node
	G       *Globals
}

func (ClosureValue) Type() string      { return "Closure" }
func (c *ClosureValue) Render(int) string { return "<closure>" } // reconstructor overrides
func (c *ClosureValue) Arity() int      { return len(c.Params) }

// BuiltinValue wraps a *builtins.Builtin as a Value. A partial
// application produces a new BuiltinValue whose Partial field holds the
// placeholder-substitution plan (spec.md §4.3 step 5).
type BuiltinValue struct {
	B       *builtins.Builtin
	Partial *PartialPlan
}

func (BuiltinValue) Type() string         { return "Builtin" }
func (b BuiltinValue) Render(int) string  { return "<builtin:" + b.B.Name + ">" }

// PartialPlan records a pending placeholder-filling builtin call: Bound
// holds already-supplied arguments (with gaps at placeholder positions),
// and Slots marks which indices are still open.
type PartialPlan struct {
	Bound []any // any is either a concrete Value or nil for an open slot
	Slots []int // indices into Bound that are still open, left to right
}

// PrintEffectValue wraps a value with an end-of-output suffix, printed
// exactly once (spec.md §3/§4.3.4).
type PrintEffectValue struct {
	Inner   Value
	End     string
	Printed bool
}

func (PrintEffectValue) Type() string { return "PrintEffect" }
func (p PrintEffectValue) Render(precision int) string {
	return p.Inner.Render(precision)
}

// Truthy implements NumFu's notion of boolean coercion, used by `&&`,
// `||`, `!`, `if`, and `assert`.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case BoolValue:
		return t.B
	case NumberValue:
		return t.N.Sign() != 0 || t.N.IsNaN() || t.N.IsInf()
	case StringValue:
		return t.S != ""
	case *ListValue:
		return len(t.Elements) != 0
	default:
		return true
	}
}

// Equal implements spec.md's documented cross-type equality rule
// (SPEC_FULL.md §3 item 3): structural comparison, never coercing across
// tags. Lists compare elementwise after evaluating both sides in their
// own curry environments; the caller (builtins_comparison.go) supplies
// an evaluate-in-env callback since Value alone can't walk AST.
func Equal(a, b Value, evalIn evalInFn) bool {
	switch av := a.(type) {
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.N.Equal(bv.N)
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.B == bv.B
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.S == bv.S
	case *ListValue:
		bv, ok := b.(*ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			ea, err1 := evalIn(av.Elements[i], av.Curry, av.G)
			eb, err2 := evalIn(bv.Elements[i], bv.Curry, bv.G)
			if err1 != nil || err2 != nil {
				return false
			}
			if !Equal(ea, eb, evalIn) {
				return false
			}
		}
		return true
	case Placeholder:
		_, ok := b.(Placeholder)
		return ok
	default:
		return false
	}
}

// TypeName reports the spec's user-facing type names, used in error
// messages and by the built-in dispatch's typename callback.
func TypeName(v any) string {
	switch v.(type) {
	case NumberValue:
		return "Number"
	case BoolValue:
		return "Bool"
	case StringValue:
		return "String"
	case *ListValue:
		return "List"
	case *ClosureValue:
		return "Closure"
	case BuiltinValue:
		return "Builtin"
	case Placeholder:
		return "Placeholder"
	case PrintEffectValue:
		return "PrintEffect"
	default:
		return "Unknown"
	}
}

func joinTypeNames(vs []any) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = TypeName(v)
	}
	return strings.Join(names, ", ")
}
