// Package ast defines the AST contract consumed by the NumFu evaluator
// (spec.md §6). The parser builds these nodes; the evaluator, module
// resolver and reconstructor only ever consume them.
package ast

import "fmt"

// Pos is the position of a node in its owning module's source, expressed
// as byte offsets. Index is only meaningful for top-level nodes: it is
// the declaration order assigned by the parser. Variable lookup does not
// read it; a top-level Constant becomes visible once the driver has
// evaluated it, which gives the "declared before use" order.
type Pos struct {
	Start  int
	End    int
	Module string
	Index  int // -1 for non-top-level nodes
}

func (p Pos) String() string {
	return fmt.Sprintf("%s@%d:%d", p.Module, p.Start, p.End)
}

// Node is the common interface implemented by every AST variant.
type Node interface {
	Position() Pos
	String() string
}

type Base struct {
	Pos Pos
}

func (b Base) Position() Pos { return b.Pos }

// SetIndex stamps the parser-assigned top-level declaration order onto
// the node (spec.md §6).
func (b *Base) SetIndex(i int) { b.Pos.Index = i }

// Indexed is implemented by every node; the parser uses it to assign
// declaration order to top-level nodes.
type Indexed interface {
	SetIndex(i int)
}

// Number is a literal numeric token; its text is parsed lazily by the
// evaluator so that precision-dependent rendering stays in one place.
type Number struct {
	Base
	Text string
}

func NewNumber(text string, pos Pos) *Number { return &Number{Base{pos}, text} }
func (n *Number) String() string             { return n.Text }

// String is a literal string token; Text is the already-unescaped content.
type String struct {
	Base
	Text string
}

func NewString(text string, pos Pos) *String { return &String{Base{pos}, text} }
func (s *String) String() string             { return fmt.Sprintf("%q", s.Text) }

// Bool is a literal boolean.
type Bool struct {
	Base
	Value bool
}

func NewBool(v bool, pos Pos) *Bool { return &Bool{Base{pos}, v} }
func (b *Bool) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// Variable is an identifier reference, including the placeholder "_" and
// qualified names produced by `import foo` (rendered as "foo.bar").
type Variable struct {
	Base
	Name string
}

func NewVariable(name string, pos Pos) *Variable { return &Variable{Base{pos}, name} }
func (v *Variable) String() string               { return v.Name }

// IsPlaceholder reports whether this variable is the argument placeholder.
func (v *Variable) IsPlaceholder() bool { return v.Name == "_" }

// List is a list literal. Spreads inside the literal are expanded by the
// evaluator at construction time, not here.
type List struct {
	Base
	Elements []Node
}

func NewList(elements []Node, pos Pos) *List { return &List{Base{pos}, elements} }
func (l *List) String() string               { return "[list]" }

// Spread is the `...expr` syntax, valid only inside a List literal or a
// Call's argument list.
type Spread struct {
	Base
	Expr Node
}

func NewSpread(expr Node, pos Pos) *Spread { return &Spread{Base{pos}, expr} }
func (s *Spread) String() string           { return "..." + s.Expr.String() }

// Lambda is a closure literal. ArgNames carries a "..." prefix on a
// trailing rest parameter. Tree is the opaque serialized parse fragment
// consumed solely by the reconstructor (see internal/reconstruct). The
// captured environment is not stored here: the evaluator attaches it to
// the ClosureValue it builds from this node.
type Lambda struct {
	Base
	Name     string // non-empty for a top-level named Constant closure
	ArgNames []string
	Body     Node
	Tree     Node // the original parse fragment (the same node as Body, not a copy), for reconstruction
}

func NewLambda(argNames []string, body Node, pos Pos) *Lambda {
	return &Lambda{Base: Base{pos}, ArgNames: argNames, Body: body, Tree: body}
}
func (l *Lambda) String() string { return "{lambda}" }

// RestParam returns the trailing rest parameter's bare name (without the
// "..." prefix) and true, or "", false if this lambda has no rest param.
func (l *Lambda) RestParam() (string, bool) {
	if len(l.ArgNames) == 0 {
		return "", false
	}
	last := l.ArgNames[len(l.ArgNames)-1]
	if len(last) >= 3 && last[:3] == "..." {
		return last[3:], true
	}
	return "", false
}

// ParamNames returns the formal parameter names with any "..." prefix
// stripped.
func (l *Lambda) ParamNames() []string {
	out := make([]string, len(l.ArgNames))
	for i, a := range l.ArgNames {
		if len(a) >= 3 && a[:3] == "..." {
			out[i] = a[3:]
		} else {
			out[i] = a
		}
	}
	return out
}

// Call is function application, `func(args...)`.
type Call struct {
	Base
	Func Node
	Args []Node
	Tail bool // not set by the parser or the evaluator; the evaluator passes tail position as an argument instead
}

func NewCall(fn Node, args []Node, pos Pos) *Call { return &Call{Base: Base{pos}, Func: fn, Args: args} }
func (c *Call) String() string                    { return "call(...)" }

// Index is `target[index]`.
type Index struct {
	Base
	Target Node
	Index  Node
}

func NewIndex(target, index Node, pos Pos) *Index { return &Index{Base{pos}, target, index} }
func (i *Index) String() string                   { return "index(...)" }

// Conditional is `if test then thenBody else elseBody`.
type Conditional struct {
	Base
	Test, Then, Else Node
}

func NewConditional(test, then, els Node, pos Pos) *Conditional {
	return &Conditional{Base{pos}, test, then, els}
}
func (c *Conditional) String() string { return "if(...)" }

// Constant is a top-level `let name = value` declaration.
type Constant struct {
	Base
	Name  string
	Value Node
}

func NewConstant(name string, value Node, pos Pos) *Constant { return &Constant{Base{pos}, name, value} }
func (c *Constant) String() string                           { return "let " + c.Name + " = ..." }

// Delete removes a binding from a module's globals; top-level only.
type Delete struct {
	Base
	Name string
}

func NewDelete(name string, pos Pos) *Delete { return &Delete{Base{pos}, name} }
func (d *Delete) String() string             { return "delete " + d.Name }

// ImportName is one entry of an `from <module> import n1, n2` clause, or
// the bare `*` wildcard.
type ImportName struct {
	Name string
	Pos  Pos
}

// Import is a top-level import declaration. Names is empty for the bare
// `import foo` form (whole-module import under the `foo.` prefix).
type Import struct {
	Base
	Module string
	Names  []ImportName
}

func NewImport(module string, names []ImportName, pos Pos) *Import {
	return &Import{Base{pos}, module, names}
}
func (i *Import) String() string { return "import " + i.Module }

// Export is a top-level `export n1, n2, ...` declaration.
type Export struct {
	Base
	Names []ImportName
}

func NewExport(names []ImportName, pos Pos) *Export { return &Export{Base{pos}, names} }
func (e *Export) String() string                    { return "export ..." }

// Assertion is an assertion-statement node: evaluating it raises
// AssertionError when Test is falsy and yields true otherwise. The parser
// never builds one (`assert` in source is always the built-in function);
// Assertion exists for parity with the AST contract of spec.md §6.
type Assertion struct {
	Base
	Test Node
}

func NewAssertion(test Node, pos Pos) *Assertion { return &Assertion{Base{pos}, test} }
func (a *Assertion) String() string              { return "assert(...)" }

// Literal wraps an already-evaluated value (opaque `any`, concretely an
// eval.Value) so built-ins that synthesize new lists (map, filter, set,
// append, sort, split, range) can produce List
// elements without re-parsing source. ast stays independent of the eval
// package; eval type-asserts Value back out when it encounters one.
type Literal struct {
	Base
	Value any
}

func NewLiteral(v any, pos Pos) *Literal { return &Literal{Base{pos}, v} }
func (l *Literal) String() string        { return "<literal>" }

