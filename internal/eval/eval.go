// Package eval implements NumFu's tree-walking evaluator (spec.md §4.3):
// closures with captured environments, currying and placeholder partial
// application, spread expansion, short-circuit operators, lazy list
// elements, print effects, and a trampolined tail-call loop at the
// closure boundary.
package eval

import (
	"fmt"
	"io"
	"os"

	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/builtins"
	"github.com/sunholo/numfu/internal/errors"
)

// Options are the process-wide knobs of spec.md §5, set once at
// interpreter construction.
type Options struct {
	Precision int // decimal digits for Number operations
	RecDepth  int // host call-stack bound
	IterDepth int // tail-call trampoline bound; 0 means unbounded
	Stdin     io.Reader
	Stdout    io.Writer
}

// DefaultOptions mirrors the CLI defaults (spec.md §6).
func DefaultOptions() Options {
	return Options{Precision: 15, RecDepth: 10000, IterDepth: 0}
}

// state is the evaluation context threaded through the walker: the
// lexical environment plus the module scope (classes.py's State dataclass,
// whose `module` field plays the role Globals plays here).
type state struct {
	env *Env
	g   *Globals
}

// bounceValue is the Step of the tail-call design note (§9): returned
// from a tail-position Call whose callee is a Closure, consumed by the
// trampoline in applyClosure instead of growing the host stack.
type bounceValue struct {
	fn   *ClosureValue
	args []Value
	st   state
}

func (*bounceValue) Type() string      { return "Bounce" }
func (*bounceValue) Render(int) string { return "<bounce>" }

// Interp is a single-threaded NumFu interpreter instance.
type Interp struct {
	opts     Options
	registry *Registry
	stdout   io.Writer
	depth    int // current host recursion depth
}

// New constructs an interpreter. The registry's callbacks close over
// the instance so built-ins can force lazy list elements, apply
// callables and render values without a package cycle.
func New(opts Options) *Interp {
	if opts.Precision <= 0 {
		opts.Precision = 15
	}
	if opts.RecDepth <= 0 {
		opts.RecDepth = 10000
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	ip := &Interp{opts: opts, stdout: opts.Stdout}
	ip.registry = NewRegistry(opts.Precision, opts.Stdin, opts.Stdout, ip.evalIn, ip.applyValue, ip.renderString)
	return ip
}

// Registry exposes the built-in table, used by the module resolver
// wiring to enumerate stdlib group exports.
func (ip *Interp) Registry() *Registry { return ip.registry }

// EvalNode evaluates one top-level node against module scope g.
func (ip *Interp) EvalNode(node ast.Node, g *Globals) (Value, error) {
	return ip.eval(node, state{env: NewEnv(), g: g}, false)
}

// Render renders a result value for top-level echo.
func (ip *Interp) Render(v Value) (string, error) {
	return ip.renderValue(v, false)
}

// Precision reports the ambient decimal-digit precision.
func (ip *Interp) Precision() int { return ip.opts.Precision }

// evalIn is the registry's evaluate-in-environment callback: it forces
// one lazy List element against the list's curry snapshot and owning
// module scope.
func (ip *Interp) evalIn(node ast.Node, env *Env, g *Globals) (Value, error) {
	if env == nil {
		env = NewEnv()
	}
	return ip.eval(node, state{env: env, g: g}, false)
}

// applyValue is the registry's apply callback: map/filter invoke user
// callables through it with already-evaluated arguments.
func (ip *Interp) applyValue(callee Value, args []Value) (Value, error) {
	switch fn := callee.(type) {
	case *ClosureValue:
		return ip.applyClosure(fn, args, state{env: fn.Curry, g: fn.G})
	case BuiltinValue:
		return ip.applyBuiltin(fn, args, nil, nil)
	default:
		return nil, &UserError{Kind: errors.TypeError, Message: TypeName(callee) + " is not callable"}
	}
}

// eval walks one AST node. tail marks the node as being in tail
// position (the body of a closure, or a branch of a Conditional that is
// itself in tail position); only Call nodes act on it.
func (ip *Interp) eval(node ast.Node, st state, tail bool) (Value, error) {
	ip.depth++
	defer func() { ip.depth-- }()
	if ip.depth > ip.opts.RecDepth {
		return nil, ip.raise(errors.RecursionError, "maximum recursion depth exceeded", node)
	}

	switch n := node.(type) {
	case *ast.Number:
		num, err := ParseNumber(n.Text, ip.opts.Precision)
		if err != nil {
			return nil, ip.raise(errors.ValueError, err.Error(), n)
		}
		return NumberValue{num}, nil

	case *ast.String:
		return StringValue{n.Text}, nil

	case *ast.Bool:
		return BoolValue{n.Value}, nil

	case *ast.Literal:
		v, ok := n.Value.(Value)
		if !ok {
			return nil, ip.raise(errors.RuntimeError, "corrupt literal element", n)
		}
		return v, nil

	case *ast.Variable:
		return ip.evalVariable(n, st)

	case *ast.List:
		elems, err := ip.expandSpreads(n.Elements, st)
		if err != nil {
			return nil, err
		}
		return NewList(elems, st.env, st.g), nil

	case *ast.Spread:
		return nil, ip.raise(errors.SyntaxError, "spread is only valid inside a call or list literal", n)

	case *ast.Lambda:
		rest, hasRest := n.RestParam()
		return &ClosureValue{
			Name:    n.Name,
			Params:  n.ParamNames(),
			Rest:    rest,
			HasRest: hasRest,
			Body:    n.Body,
			Curry:   st.env,
			Tree:    n.Tree,
			G:       st.g,
		}, nil

	case *ast.Call:
		return ip.evalCall(n, st, tail)

	case *ast.Index:
		return ip.evalIndex(n, st)

	case *ast.Conditional:
		test, err := ip.eval(n.Test, st, false)
		if err != nil {
			return nil, err
		}
		if Truthy(test) {
			return ip.eval(n.Then, st, tail)
		}
		return ip.eval(n.Else, st, tail)

	case *ast.Assertion:
		test, err := ip.eval(n.Test, st, false)
		if err != nil {
			return nil, err
		}
		if !Truthy(test) {
			return nil, ip.raise(errors.AssertionError, "", n)
		}
		return BoolValue{true}, nil

	case *ast.Constant:
		return nil, ip.raise(errors.SyntaxError, "constant definitions must be placed at the top level of the module", n)

	case *ast.Delete:
		return nil, ip.raise(errors.SyntaxError, "del must be placed at the top level of the module", n)

	case *ast.Import, *ast.Export:
		return nil, ip.raise(errors.SyntaxError, "declarations must be placed at the top level of the module", node)

	default:
		return nil, ip.raise(errors.RuntimeError, fmt.Sprintf("cannot evaluate %T", node), node)
	}
}

// evalVariable implements the lookup order of spec.md §4.3: lexical
// environment, module globals/imports, built-in registry. The
// placeholder `_` evaluates to itself when unbound.
func (ip *Interp) evalVariable(n *ast.Variable, st state) (Value, error) {
	if v, ok := st.env.Get(n.Name); ok {
		return v, nil
	}
	if v, ok := st.g.Lookup(n.Name); ok {
		return v, nil
	}
	if n.IsPlaceholder() {
		return Placeholder{}, nil
	}
	return nil, ip.raise(errors.NameError, fmt.Sprintf("'%s' is not defined in the current scope", n.Name), n)
}

// expandSpreads splices `...expr` elements in place (spec.md §4.3 step
// 3 and §4.3.3). Spliced elements stay unevaluated AST so list literals
// remain lazy; the spread source's own elements are carried over as-is,
// which is sound because they are evaluated against the curry snapshot
// captured by the receiving list.
func (ip *Interp) expandSpreads(nodes []ast.Node, st state) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		sp, ok := n.(*ast.Spread)
		if !ok {
			out = append(out, n)
			continue
		}
		v, err := ip.eval(sp.Expr, st, false)
		if err != nil {
			return nil, err
		}
		lst, ok := v.(*ListValue)
		if !ok {
			return nil, ip.raise(errors.TypeError, fmt.Sprintf("type '%s' is not iterable", TypeName(v)), sp)
		}
		for _, e := range lst.Elements {
			val, err := ip.evalIn(e, lst.Curry, lst.G)
			if err != nil {
				return nil, err
			}
			out = append(out, Literal(val))
		}
	}
	return out, nil
}

// evalCall implements spec.md §4.3's Call algorithm.
func (ip *Interp) evalCall(call *ast.Call, st state, tail bool) (Value, error) {
	// Step 1: short-circuit forms never evaluate their right operand
	// unless the left leaves the result undetermined.
	if v, ok := call.Func.(*ast.Variable); ok && (v.Name == "&&" || v.Name == "||") && len(call.Args) == 2 {
		if _, shadowed := st.env.Get(v.Name); !shadowed {
			return ip.evalShortCircuit(v.Name, call, st)
		}
	}

	fn, err := ip.eval(call.Func, st, false)
	if err != nil {
		return nil, err
	}

	// Steps 3-4: expand spreads, then evaluate arguments left to right.
	hasSpread := false
	for _, a := range call.Args {
		if _, ok := a.(*ast.Spread); ok {
			hasSpread = true
			break
		}
	}
	expanded, err := ip.expandSpreads(call.Args, st)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(expanded))
	hasPlaceholder := false
	for i, a := range expanded {
		v, err := ip.eval(a, st, false)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(Placeholder); ok {
			hasPlaceholder = true
		}
		args[i] = v
	}
	if hasSpread && hasPlaceholder {
		return nil, ip.raise(errors.TypeError, "cannot mix spread arguments with the argument placeholder", call)
	}

	// Step 5: any placeholder turns the call into partial application.
	if hasPlaceholder {
		switch f := fn.(type) {
		case BuiltinValue:
			if f.Partial != nil {
				// Repeated partial application folds into the
				// existing plan; a placeholder fills a slot with
				// itself, leaving it open.
				args = fillPartial(f.Partial, args)
			}
			return ip.partialBuiltin(BuiltinValue{B: f.B}, args), nil
		case *ClosureValue:
			return ip.partialLambda(f, args, st)
		default:
			return nil, ip.raiseCallable(fn, call)
		}
	}

	// Step 6: dispatch by callee kind.
	switch f := fn.(type) {
	case BuiltinValue:
		return ip.applyBuiltin(f, args, call, &st)
	case *ClosureValue:
		if tail {
			return &bounceValue{fn: f, args: args, st: st}, nil
		}
		return ip.applyClosure(f, args, st)
	default:
		return nil, ip.raiseCallable(fn, call)
	}
}

func (ip *Interp) raiseCallable(fn Value, call *ast.Call) error {
	return ip.raise(errors.TypeError, fmt.Sprintf("%s is not callable", TypeName(fn)), call.Func)
}

func (ip *Interp) evalShortCircuit(op string, call *ast.Call, st state) (Value, error) {
	left, err := ip.eval(call.Args[0], st, false)
	if err != nil {
		return nil, err
	}
	if op == "&&" {
		if !Truthy(left) {
			return BoolValue{false}, nil
		}
	} else {
		if Truthy(left) {
			return BoolValue{true}, nil
		}
	}
	right, err := ip.eval(call.Args[1], st, false)
	if err != nil {
		return nil, err
	}
	return BoolValue{Truthy(right)}, nil
}

// partialBuiltin substitutes already-supplied arguments into a plan and
// returns a new partial Builtin (spec.md §4.3 step 5). Open slots are
// the placeholder positions, filled left to right on the next call.
func (ip *Interp) partialBuiltin(b BuiltinValue, args []Value) Value {
	bound := make([]any, len(args))
	var slots []int
	for i, a := range args {
		if _, ok := a.(Placeholder); ok {
			bound[i] = nil
			slots = append(slots, i)
		} else {
			bound[i] = a
		}
	}
	return BuiltinValue{B: b.B, Partial: &PartialPlan{Bound: bound, Slots: slots}}
}

// fillPartial merges a later call's arguments into a partial plan:
// each open slot is filled left to right, surplus arguments append.
// A placeholder supplied for an open slot leaves it open, so repeated
// partial application stays idempotent.
func fillPartial(plan *PartialPlan, args []Value) []Value {
	merged := make([]Value, 0, len(plan.Bound)+len(args))
	for _, b := range plan.Bound {
		if b == nil {
			merged = append(merged, Placeholder{})
		} else {
			merged = append(merged, b.(Value))
		}
	}
	next := 0
	for _, slot := range plan.Slots {
		if next >= len(args) {
			break
		}
		merged[slot] = args[next]
		next++
	}
	merged = append(merged, args[next:]...)
	return merged
}

// applyBuiltin implements spec.md §4.3 step 6 for Builtin callees:
// partial-plan filling, eval_lists materialization, PrintEffect
// unwrapping, then overload dispatch (§4.2). call/st are nil when the
// application comes from another built-in (map, filter).
func (ip *Interp) applyBuiltin(b BuiltinValue, args []Value, call *ast.Call, st *state) (Value, error) {
	if b.Partial != nil {
		args = fillPartial(b.Partial, args)
		hasPlaceholder := false
		for _, a := range args {
			if _, ok := a.(Placeholder); ok {
				hasPlaceholder = true
				break
			}
		}
		if hasPlaceholder {
			return ip.partialBuiltin(BuiltinValue{B: b.B}, args), nil
		}
	}

	anyArgs := make([]any, len(args))
	for i, a := range args {
		if pe, ok := a.(PrintEffectValue); ok {
			a = pe.Inner
		}
		if b.B.EvalLists {
			m, err := ip.materialize(a)
			if err != nil {
				return nil, err
			}
			a = m
		}
		anyArgs[i] = a
	}

	result, err := builtins.Dispatch(b.B, anyArgs, func(v any) string { return TypeName(v) }, nil)
	if err != nil {
		return nil, ip.builtinError(err, b.B, call)
	}
	if result == nil {
		return BoolValue{true}, nil
	}
	if pe, ok := result.(PrintEffectValue); ok {
		return ip.emitEffect(pe)
	}
	return result.(Value), nil
}

// builtinError converts a dispatch failure into a positioned report:
// operator-named built-ins highlight the function position, everything
// else the arguments span (spec.md §4.2).
func (ip *Interp) builtinError(err error, b *builtins.Builtin, call *ast.Call) error {
	var pos *ast.Pos
	if call != nil {
		if isOperator(b.Name) {
			p := call.Func.Position()
			pos = &p
		} else {
			p := argsSpan(call)
			pos = &p
		}
	}
	switch e := err.(type) {
	case *builtins.DispatchError:
		return errors.Wrap(errors.New(errors.Kind(e.Kind), e.Message, pos, posModule(pos), "", false))
	case *UserError:
		return errors.Wrap(errors.New(e.Kind, e.Message, pos, posModule(pos), "", false))
	default:
		return err
	}
}

// operatorNames is the fixed operator set whose dispatch errors report
// the function position rather than the arguments span.
var operatorNames = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "^": true, "%": true,
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
	"&&": true, "||": true, "!": true,
}

func isOperator(name string) bool { return operatorNames[name] }

func argsSpan(call *ast.Call) ast.Pos {
	if len(call.Args) == 0 {
		return call.Position()
	}
	first := call.Args[0].Position()
	last := call.Args[len(call.Args)-1].Position()
	return ast.Pos{Start: first.Start, End: last.End, Module: first.Module, Index: -1}
}

func posModule(pos *ast.Pos) string {
	if pos == nil {
		return ""
	}
	return pos.Module
}

// materialize fully evaluates a value for an eval_lists builtin: lazy
// list elements are forced (recursively for nested lists) and print
// effects unwrap to their inner value.
func (ip *Interp) materialize(v Value) (Value, error) {
	switch t := v.(type) {
	case *ListValue:
		vals := make([]Value, len(t.Elements))
		for i, e := range t.Elements {
			ev, err := ip.evalIn(e, t.Curry, t.G)
			if err != nil {
				return nil, err
			}
			m, err := ip.materialize(ev)
			if err != nil {
				return nil, err
			}
			vals[i] = m
		}
		return newLiteralList(vals), nil
	case PrintEffectValue:
		return ip.materialize(t.Inner)
	default:
		return v, nil
	}
}

// applyClosure is the trampoline of spec.md §4.3.2. It loops on Bounce
// results instead of recursing, so mutually tail-recursive closures run
// in constant host stack.
func (ip *Interp) applyClosure(fn *ClosureValue, args []Value, st state) (Value, error) {
	iters := 0
	for {
		iters++
		if ip.opts.IterDepth > 0 && iters > ip.opts.IterDepth {
			return nil, ip.raise(errors.RecursionError, "tail-call recursion limit exceeded", fn.Body)
		}

		arity := fn.Arity()
		fixed := arity
		if fn.HasRest {
			fixed = arity - 1
		}

		switch {
		case !fn.HasRest && len(args) < arity:
			return ip.partialLambda(fn, args, st)

		case fn.HasRest && len(args) < fixed:
			return ip.partialLambda(fn, args, st)

		case !fn.HasRest && len(args) > arity:
			// Over-application: saturate, then apply the surplus to the
			// result (spec.md §4.3.2's third case).
			env := ip.closureEnv(fn, st, args[:arity])
			result, err := ip.eval(fn.Body, state{env: env, g: fn.G}, false)
			if err != nil {
				return nil, err
			}
			surplus := args[arity:]
			switch r := result.(type) {
			case *ClosureValue:
				fn, args, st = r, surplus, state{env: env, g: r.G}
				continue
			case BuiltinValue:
				return ip.applyBuiltin(r, surplus, nil, nil)
			default:
				return nil, ip.raise(errors.TypeError,
					fmt.Sprintf("cannot apply %d more argument(s) to non-callable result", len(surplus)), fn.Body)
			}

		default:
			env := ip.closureEnv(fn, st, args)
			result, err := ip.eval(fn.Body, state{env: env, g: fn.G}, true)
			if err != nil {
				return nil, err
			}
			if b, ok := result.(*bounceValue); ok {
				fn, args, st = b.fn, b.args, b.st
				continue
			}
			return result, nil
		}
	}
}

// closureEnv builds the application environment: caller env as the
// base, self-name (lowest precedence), captured curry, then formal
// parameters (spec.md §4.1/§4.3.2). A rest parameter absorbs the
// argument tail as a List.
func (ip *Interp) closureEnv(fn *ClosureValue, st state, args []Value) *Env {
	env := st.env
	if env == nil {
		env = NewEnv()
	}
	if fn.Name != "" {
		env = env.With(fn.Name, fn)
	}
	env = env.Merge(fn.Curry)

	bindings := map[string]Value{}
	if fn.HasRest {
		fixed := fn.Arity() - 1
		for i := 0; i < fixed && i < len(args); i++ {
			bindings[fn.Params[i]] = args[i]
		}
		rest := args
		if len(args) > fixed {
			rest = args[fixed:]
		} else {
			rest = nil
		}
		vals := append([]Value{}, rest...)
		bindings[fn.Rest] = newLiteralList(vals)
	} else {
		for i, p := range fn.Params {
			if i < len(args) {
				bindings[p] = args[i]
			}
		}
	}
	return env.WithAll(bindings)
}

// partialLambda implements spec.md §4.3.1: bind the supplied
// non-placeholder arguments into a fresh curry layer and return a new
// closure over the still-unbound formals.
func (ip *Interp) partialLambda(fn *ClosureValue, args []Value, st state) (Value, error) {
	base := st.env
	if base == nil {
		base = NewEnv()
	}
	env := base.Merge(fn.Curry)

	bound := map[string]Value{}
	var remaining []string
	restStillOpen := fn.HasRest

	fixed := fn.Arity()
	if fn.HasRest {
		fixed = fn.Arity() - 1
	}

	for i, p := range fn.Params {
		isRest := fn.HasRest && i == fn.Arity()-1
		if isRest {
			if i < len(args) {
				// Collect all remaining non-placeholder args into the
				// rest List and stop.
				var vals []Value
				for _, a := range args[i:] {
					if _, ok := a.(Placeholder); !ok {
						vals = append(vals, a)
					}
				}
				bound[fn.Rest] = newLiteralList(vals)
				restStillOpen = false
			}
			break
		}
		if i >= len(args) {
			remaining = append(remaining, p)
			continue
		}
		if _, ok := args[i].(Placeholder); ok {
			remaining = append(remaining, p)
			continue
		}
		bound[p] = args[i]
	}

	// Surplus args with a rest parameter extend the rest List even when
	// every fixed formal was already bound above.
	if fn.HasRest && restStillOpen && len(args) > fixed {
		var vals []Value
		for _, a := range args[fixed:] {
			if _, ok := a.(Placeholder); !ok {
				vals = append(vals, a)
			}
		}
		bound[fn.Rest] = newLiteralList(vals)
		restStillOpen = false
	}

	params := append([]string{}, remaining...)
	rest, hasRest := "", false
	if fn.HasRest && restStillOpen {
		params = append(params, "..."+fn.Rest)
		rest, hasRest = fn.Rest, true
	}

	stripped := make([]string, 0, len(params))
	for _, p := range params {
		if len(p) > 3 && p[:3] == "..." {
			stripped = append(stripped, p[3:])
		} else {
			stripped = append(stripped, p)
		}
	}

	return &ClosureValue{
		Params:  stripped,
		Rest:    rest,
		HasRest: hasRest,
		Body:    fn.Body,
		Curry:   env.WithAll(bound),
		Tree:    fn.Tree,
		G:       fn.G,
	}, nil
}

// evalIndex implements spec.md §4.3.3: integer indexing of Lists and
// Strings, negative indices from the end, element evaluation in the
// list's curry environment.
func (ip *Interp) evalIndex(n *ast.Index, st state) (Value, error) {
	target, err := ip.eval(n.Target, st, false)
	if err != nil {
		return nil, err
	}
	idxVal, err := ip.eval(n.Index, st, false)
	if err != nil {
		return nil, err
	}
	num, ok := idxVal.(NumberValue)
	if !ok {
		return nil, ip.raise(errors.TypeError,
			fmt.Sprintf("index must be a Number, not '%s'", TypeName(idxVal)), n.Index)
	}
	if !num.N.IsInteger() {
		return nil, ip.raise(errors.TypeError, "index must be a whole number, not a floating-point number", n.Index)
	}
	i := int(num.N.Int64())

	switch t := target.(type) {
	case *ListValue:
		if i < 0 {
			i += len(t.Elements)
		}
		if i < 0 || i >= len(t.Elements) {
			return nil, ip.raise(errors.IndexError, "List index out of range", n)
		}
		return ip.evalIn(t.Elements[i], t.Curry, t.G)
	case StringValue:
		r := []rune(t.S)
		if i < 0 {
			i += len(r)
		}
		if i < 0 || i >= len(r) {
			return nil, ip.raise(errors.IndexError, "String index out of range", n)
		}
		return StringValue{string(r[i])}, nil
	default:
		return nil, ip.raise(errors.TypeError,
			fmt.Sprintf("type '%s' is not indexable", TypeName(target)), n.Target)
	}
}

// emitEffect prints a not-yet-printed effect value and returns it
// marked printed. The top-level driver and call evaluation both route
// builtin-produced effects through here so each prints exactly once.
func (ip *Interp) emitEffect(pe PrintEffectValue) (PrintEffectValue, error) {
	if pe.Printed {
		return pe, nil
	}
	s, err := ip.renderValue(pe.Inner, false)
	if err != nil {
		return pe, err
	}
	fmt.Fprint(ip.stdout, s+pe.End)
	pe.Printed = true
	return pe, nil
}

// raise builds a positioned, non-fatal report; fatality is top-level
// policy (spec.md §7).
func (ip *Interp) raise(kind errors.Kind, msg string, node ast.Node) error {
	var pos *ast.Pos
	if node != nil {
		p := node.Position()
		pos = &p
	}
	return errors.Wrap(errors.New(kind, msg, pos, posModule(pos), "", false))
}
