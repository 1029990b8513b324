// Package reconstruct renders closures back to NumFu source text: the
// Reconstructor contract of spec.md §6. Free variables in the stored
// parse fragment are substituted from the closure's capture environment
// so a partially-applied closure prints with its bound values inlined,
// the way original_source/reconstruct.py resolves each variable against
// the curry before reassembly.
package reconstruct

import (
	"strings"

	"github.com/sunholo/numfu/internal/ast"
)

// Resolve maps a free variable name to its source rendering. The second
// return is false when the name should stay a bare identifier (not
// captured, or a global/built-in).
type Resolve func(name string) (string, bool)

// Closure renders `{params -> body}` with free variables substituted.
// params carry their "..." rest prefix. bound names — the formal
// parameters — shadow the resolver.
func Closure(params []string, body ast.Node, resolve Resolve) string {
	bound := map[string]bool{}
	for _, p := range params {
		bound[strings.TrimPrefix(p, "...")] = true
	}
	var b strings.Builder
	b.WriteString("{")
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(" -> ")
	b.WriteString(expr(body, bound, resolve, 0))
	b.WriteString("}")
	return b.String()
}

// binding tightness for parenthesization, mirroring the parser's
// precedence ladder.
const (
	precLowest = iota
	precPipe
	precOr
	precAnd
	precCmp
	precAdd
	precMul
	precUnary
	precPow
	precCall
)

var infixPrec = map[string]int{
	"|>": precPipe,
	"||": precOr, "&&": precAnd,
	"==": precCmp, "!=": precCmp, "<": precCmp, ">": precCmp, "<=": precCmp, ">=": precCmp,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "%": precMul,
	"^": precPow,
}

func expr(n ast.Node, bound map[string]bool, resolve Resolve, parent int) string {
	switch t := n.(type) {
	case *ast.Number:
		return strings.TrimSuffix(t.Text, ".0")
	case *ast.String:
		return "\"" + t.Text + "\""
	case *ast.Bool:
		if t.Value {
			return "true"
		}
		return "false"
	case *ast.Variable:
		if !bound[t.Name] {
			if s, ok := resolve(t.Name); ok {
				return s
			}
		}
		return t.Name
	case *ast.List:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = expr(e, bound, resolve, precLowest)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.Spread:
		return "..." + expr(t.Expr, bound, resolve, precCall)
	case *ast.Lambda:
		inner := map[string]bool{}
		for k := range bound {
			inner[k] = true
		}
		for _, p := range t.ArgNames {
			inner[strings.TrimPrefix(p, "...")] = true
		}
		return "{" + strings.Join(t.ArgNames, ", ") + " -> " + expr(t.Body, inner, resolve, precLowest) + "}"
	case *ast.Call:
		return call(t, bound, resolve, parent)
	case *ast.Index:
		return expr(t.Target, bound, resolve, precCall) + "[" + expr(t.Index, bound, resolve, precLowest) + "]"
	case *ast.Conditional:
		s := "if " + expr(t.Test, bound, resolve, precLowest) +
			" then " + expr(t.Then, bound, resolve, precLowest) +
			" else " + expr(t.Else, bound, resolve, precLowest)
		if parent > precLowest {
			return "(" + s + ")"
		}
		return s
	case *ast.Literal:
		// Already-evaluated values carry their own rendering; the
		// evaluator substitutes them before handing the tree over.
		if s, ok := t.Value.(interface{ Render(int) string }); ok {
			return s.Render(15)
		}
		return "_"
	default:
		return n.String()
	}
}

func call(c *ast.Call, bound map[string]bool, resolve Resolve, parent int) string {
	if v, ok := c.Func.(*ast.Variable); ok {
		if p, isInfix := infixPrec[v.Name]; isInfix && len(c.Args) == 2 {
			left := expr(c.Args[0], bound, resolve, p)
			right := expr(c.Args[1], bound, resolve, p+1)
			s := left + " " + v.Name + " " + right
			if p < parent {
				return "(" + s + ")"
			}
			return s
		}
		if v.Name == "!" && len(c.Args) == 1 {
			return "!" + expr(c.Args[0], bound, resolve, precUnary)
		}
		if v.Name == "-" && len(c.Args) == 1 {
			return "-" + expr(c.Args[0], bound, resolve, precUnary)
		}
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = expr(a, bound, resolve, precLowest)
	}
	return expr(c.Func, bound, resolve, precCall) + "(" + strings.Join(parts, ", ") + ")"
}
