package eval

// Env is an immutable-by-convention binding frame chain. Extending an
// Env never mutates it, so capturing an environment for a closure or a
// list's curry is an O(1) pointer copy and outer mutation after
// capture can never be observed through it (spec.md §3 invariant).
//
// Closure entry flattens the caller/curry/parameter merge into a
// single frame (see Merge): the chain therefore stays a handful of
// frames deep no matter how long a tail-call sequence runs, keeping
// lookups O(1)-ish the same way original_source/interpreter.py's
// env.copy()/update() dicts do.
type Env struct {
	bindings map[string]Value
	parent   *Env
}

// NewEnv returns an empty root environment.
func NewEnv() *Env {
	return &Env{bindings: map[string]Value{}}
}

// Get looks up name in this frame, then each parent in turn.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// With returns a new environment with name bound to v, shadowing any
// existing binding of that name without mutating the receiver.
func (e *Env) With(name string, v Value) *Env {
	return &Env{bindings: map[string]Value{name: v}, parent: e}
}

// WithAll returns a new environment with every entry of bindings bound,
// all shadowing the receiver at equal precedence (used for applying a
// closure's formal parameters).
func (e *Env) WithAll(bindings map[string]Value) *Env {
	if len(bindings) == 0 {
		return e
	}
	cp := make(map[string]Value, len(bindings))
	for k, v := range bindings {
		cp[k] = v
	}
	return &Env{bindings: cp, parent: e}
}

// Merge flattens the receiver's visible bindings and then `over`'s
// into one fresh root frame, `over` winning name clashes. This is the
// caller-env ∪ curry merge of spec.md §4.1 at closure entry; the
// result shares nothing with either input.
func (e *Env) Merge(over *Env) *Env {
	merged := map[string]Value{}
	flattenInto(merged, e)
	flattenInto(merged, over)
	return &Env{bindings: merged}
}

// flattenInto copies a chain's visible bindings into dst, inner frames
// overwriting outer ones.
func flattenInto(dst map[string]Value, e *Env) {
	var frames []*Env
	for f := e; f != nil; f = f.parent {
		frames = append(frames, f)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		for k, v := range frames[i].bindings {
			dst[k] = v
		}
	}
}
