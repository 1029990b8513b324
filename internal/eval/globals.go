package eval

// Globals is the module-scoped lookup chain for a Variable that isn't
// found in the lexical Env (spec.md §4.3's steps 2-4): top-level
// Constants declared earlier in the same module, names pulled in by its
// Imports, and finally the process-wide built-in registry. A List or
// Closure captures a pointer to the Globals active at its construction
// so a value built in one module and later forced or called from
// another still resolves its own module-level free variables — the
// "rebind the module context" step of spec.md §4.3.
type Globals struct {
	Vars     map[string]Value
	Imports  map[string]ImportRef
	Registry *Registry
}

// ImportRef points one imported name at the Globals of the module that
// declared it. Name is the identifier inside the source module, which
// differs from the import-map key for `import foo`-style qualified
// entries ("foo.bar" -> bar in foo's globals).
type ImportRef struct {
	G    *Globals
	Name string
}

// NewGlobals returns an empty module scope backed by reg.
func NewGlobals(reg *Registry) *Globals {
	return &Globals{
		Vars:     map[string]Value{},
		Imports:  map[string]ImportRef{},
		Registry: reg,
	}
}

// Lookup implements spec.md §4.3 steps 2-4: own constants, then
// imports (following the reference into the source module's scope),
// then the built-in registry's constants and functions.
func (g *Globals) Lookup(name string) (Value, bool) {
	if g == nil {
		return nil, false
	}
	if v, ok := g.Vars[name]; ok {
		return v, true
	}
	if ref, ok := g.Imports[name]; ok {
		if v, ok := ref.G.Vars[ref.Name]; ok {
			return v, true
		}
		if v, ok := ref.G.lookupBuiltin(ref.Name); ok {
			return v, true
		}
	}
	return g.lookupBuiltin(name)
}

func (g *Globals) lookupBuiltin(name string) (Value, bool) {
	if g.Registry == nil {
		return nil, false
	}
	if v, ok := g.Registry.Constants[name]; ok {
		return v, true
	}
	if b, ok := g.Registry.All[name]; ok {
		return BuiltinValue{B: b}, true
	}
	return nil, false
}
