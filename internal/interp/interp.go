// Package interp is the top-level driver: it stitches parser, module
// resolver and evaluator together, owns the fatality policy of spec.md
// §7, and echoes top-level results to the output stream.
package interp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/errors"
	"github.com/sunholo/numfu/internal/eval"
	"github.com/sunholo/numfu/internal/module"
	"github.com/sunholo/numfu/internal/parser"
	"github.com/sunholo/numfu/internal/stdlib"
)

// Interpreter drives one interpreter instance: a module table, one
// evaluator, and per-module globals.
type Interpreter struct {
	ev       *eval.Interp
	resolver *module.Resolver
	globals  map[string]*eval.Globals
	ran      map[string]bool
	fatal    bool
	stdout   io.Writer
	stderr   io.Writer
}

// New builds an interpreter. fatal selects spec.md §7's policy: a
// raised error aborts the run (file mode) instead of continuing with
// the next top-level node (REPL mode).
func New(opts eval.Options, fatal bool, stderr io.Writer) (*Interpreter, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	ev := eval.New(opts)

	manifest, err := stdlib.Load()
	if err != nil {
		return nil, err
	}
	reg := ev.Registry()

	builtinNames := make([]string, 0, len(reg.All)+len(reg.Constants))
	for name := range reg.All {
		builtinNames = append(builtinNames, name)
	}
	for name := range reg.Constants {
		builtinNames = append(builtinNames, name)
	}

	resolver := module.NewResolver(module.Config{
		Parse:        parser.Parse,
		StdlibTags:   manifest.Tags(),
		StdlibBundle: manifest.Bundle,
		GroupNames: func(tag string) []string {
			group, ok := reg.Groups[tag]
			if !ok {
				return nil
			}
			names := make([]string, 0, len(group))
			for name := range group {
				names = append(names, name)
			}
			return names
		},
		BuiltinNames: builtinNames,
	})

	in := &Interpreter{
		ev:       ev,
		resolver: resolver,
		globals:  map[string]*eval.Globals{},
		ran:      map[string]bool{},
		fatal:    fatal,
		stdout:   opts.Stdout,
		stderr:   stderr,
	}
	if in.stdout == nil {
		in.stdout = os.Stdout
	}
	return in, nil
}

// RunFile loads, links and runs a program from path (source or a
// persisted parse-tree file). Returns the process exit code.
func (in *Interpreter) RunFile(path string) int {
	var tree []ast.Node
	var code string

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(in.stderr, "cannot read %s: %v\n", path, err)
		return 1
	}
	if strings.HasPrefix(string(data), string(parser.TreeMagic)) {
		tree, err = parser.LoadTree(path)
	} else {
		code = string(data)
		tree, err = parser.Parse(code, absPath(path))
	}
	if err != nil {
		return in.report(err)
	}
	return in.run(tree, absPath(path), code, true)
}

// RunSource parses and runs one chunk of source against a persistent
// module at path; the REPL calls this per input line so constants and
// imports accumulate.
func (in *Interpreter) RunSource(src, path string) int {
	tree, err := parser.Parse(src, path)
	if err != nil {
		return in.report(err)
	}
	// Re-resolution of the same path needs a clean registration, but
	// keeps the existing globals so earlier bindings persist.
	in.resolver.Forget(module.ID(path))
	return in.run(tree, path, src, true)
}

func (in *Interpreter) run(tree []ast.Node, path, code string, echo bool) int {
	main, err := in.resolver.Resolve(tree, path, code)
	if err != nil {
		return in.report(err)
	}
	in.link()

	for _, id := range in.resolver.Order {
		m := in.resolver.Modules[id]
		if in.ran[id] && m != main {
			continue
		}
		if m.Stdlib != "" && len(m.FullTree) == 0 {
			in.ran[id] = true
			continue
		}
		if code := in.runModule(m, echo && m == main); code != 0 {
			return code
		}
	}
	return 0
}

// link creates or refreshes the evaluator scope of every registered
// module: stdlib groups populate built-in values, import entries become
// live references into their source module's scope.
func (in *Interpreter) link() {
	reg := in.ev.Registry()
	for _, id := range in.resolver.Order {
		m := in.resolver.Modules[id]
		g, ok := in.globals[id]
		if !ok {
			g = eval.NewGlobals(reg)
			in.globals[id] = g
			if m.Stdlib != "" {
				for name, b := range reg.Groups[m.Stdlib] {
					g.Vars[name] = eval.BuiltinValue{B: b}
				}
			}
		}
		for name, entry := range m.Imports {
			target, ok := in.globals[entry.ModuleID]
			if !ok {
				target = eval.NewGlobals(reg)
				in.globals[entry.ModuleID] = target
			}
			g.Imports[name] = eval.ImportRef{G: target, Name: entry.Name}
		}
	}
}

// runModule executes one module's top-level nodes in declaration
// order; declarations populate globals, expressions evaluate and (for
// the main module) echo. Non-fatal errors continue with the next node.
func (in *Interpreter) runModule(m *module.Module, echo bool) int {
	g := in.globals[m.ID]
	defer func() { in.ran[m.ID] = true }()

	for _, node := range m.FullTree {
		switch n := node.(type) {
		case *ast.Import, *ast.Export:
			continue
		case *ast.Constant:
			v, err := in.ev.EvalNode(n.Value, g)
			if err != nil {
				if code := in.report(err); code != 0 {
					return code
				}
				continue
			}
			g.Vars[n.Name] = v
		case *ast.Delete:
			delete(g.Vars, n.Name)
		default:
			v, err := in.ev.EvalNode(node, g)
			if err != nil {
				if code := in.report(err); code != 0 {
					return code
				}
				continue
			}
			if echo {
				in.echo(v)
			}
		}
	}
	return 0
}

// echo prints one top-level result. Print effects already emitted
// during evaluation only get a terminating newline; everything else
// renders on its own line.
func (in *Interpreter) echo(v eval.Value) {
	if pe, ok := v.(eval.PrintEffectValue); ok {
		if !strings.HasSuffix(pe.End, "\n") {
			fmt.Fprintln(in.stdout)
		}
		return
	}
	s, err := in.ev.Render(v)
	if err != nil {
		_ = in.report(err)
		return
	}
	fmt.Fprintln(in.stdout, s)
}

// report renders a diagnostic. Returns the exit code the caller should
// propagate: 1 under the fatal policy, 0 to continue.
func (in *Interpreter) report(err error) int {
	rep, ok := errors.As(err)
	if !ok {
		rep = errors.New(errors.RuntimeError, err.Error(), nil, "", "", false)
	}
	if rep.Source == "" && rep.Pos != nil && rep.Pos.Module != "" {
		if m, ok := in.resolver.Modules[module.ID(rep.Pos.Module)]; ok {
			rep.Source = m.Source()
			rep.Module = m.Path
		}
	}
	fmt.Fprint(in.stderr, errors.Render(rep))
	if in.fatal {
		return 1
	}
	return 0
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
