package ast

import (
	"fmt"
	"strings"
)

// Pretty renders nodes as an indented constructor-style tree, the
// output of `numfu parse -p` and the AST REPL. maxDepth caps nesting;
// deeper structure collapses to "...".
func Pretty(nodes []Node, maxDepth, indent int) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		writeNode(&b, n, 0, maxDepth, indent)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n Node, depth, maxDepth, indent int) {
	pad := strings.Repeat(" ", depth*indent)
	if depth > maxDepth {
		b.WriteString(pad + "...")
		return
	}
	child := func(label string, c Node) {
		b.WriteString(pad + strings.Repeat(" ", indent) + label + "=\n")
		writeNode(b, c, depth+2, maxDepth, indent)
		b.WriteString("\n")
	}
	switch t := n.(type) {
	case *Number:
		b.WriteString(pad + "Number(" + t.Text + ")")
	case *String:
		fmt.Fprintf(b, "%sString(%q)", pad, t.Text)
	case *Bool:
		fmt.Fprintf(b, "%sBool(%v)", pad, t.Value)
	case *Variable:
		b.WriteString(pad + "Variable(" + t.Name + ")")
	case *List:
		b.WriteString(pad + "List(\n")
		for _, e := range t.Elements {
			writeNode(b, e, depth+1, maxDepth, indent)
			b.WriteString(",\n")
		}
		b.WriteString(pad + ")")
	case *Spread:
		b.WriteString(pad + "Spread(\n")
		writeNode(b, t.Expr, depth+1, maxDepth, indent)
		b.WriteString("\n" + pad + ")")
	case *Lambda:
		fmt.Fprintf(b, "%sLambda(arg_names=%v,\n", pad, t.ArgNames)
		child("body", t.Body)
		b.WriteString(pad + ")")
	case *Call:
		b.WriteString(pad + "Call(\n")
		child("func", t.Func)
		for _, a := range t.Args {
			writeNode(b, a, depth+1, maxDepth, indent)
			b.WriteString(",\n")
		}
		b.WriteString(pad + ")")
	case *Index:
		b.WriteString(pad + "Index(\n")
		child("target", t.Target)
		child("index", t.Index)
		b.WriteString(pad + ")")
	case *Conditional:
		b.WriteString(pad + "Conditional(\n")
		child("test", t.Test)
		child("then", t.Then)
		child("else", t.Else)
		b.WriteString(pad + ")")
	case *Constant:
		fmt.Fprintf(b, "%sConstant(name=%s,\n", pad, t.Name)
		child("value", t.Value)
		b.WriteString(pad + ")")
	case *Delete:
		b.WriteString(pad + "Delete(" + t.Name + ")")
	case *Import:
		names := make([]string, len(t.Names))
		for i, in := range t.Names {
			names[i] = in.Name
		}
		fmt.Fprintf(b, "%sImport(module=%s, names=%v)", pad, t.Module, names)
	case *Export:
		names := make([]string, len(t.Names))
		for i, in := range t.Names {
			names[i] = in.Name
		}
		fmt.Fprintf(b, "%sExport(names=%v)", pad, names)
	case *Assertion:
		b.WriteString(pad + "Assertion(\n")
		writeNode(b, t.Test, depth+1, maxDepth, indent)
		b.WriteString("\n" + pad + ")")
	default:
		b.WriteString(pad + n.String())
	}
}
