// Package builtins implements the overloaded built-in registry and
// dispatch algorithm of spec.md §4.2: a data-driven table of overloads
// (not closures carrying dispatch logic, per the teacher's "Built-in
// overload table" design note), parameterized over plain `any` values so
// it has no dependency on the concrete Value representation — package
// internal/eval supplies the concrete TypeSpecs, validators and impls.
package builtins

import (
	"fmt"
	"strings"
)

// TypeSpec classifies an argument position. It is intentionally opaque
// over the concrete value type: eval constructs TypeSpecs with closures
// that know how to recognize its own Value variants.
type TypeSpec struct {
	name    string
	match   func(v any) bool
	isList  bool     // true for ListOf(T)
	elem    *TypeSpec // element spec for ListOf(T) / InfiniteOf(T)
	infinite bool    // true for InfiniteOf(T): trailing "zero or more"
}

func (t TypeSpec) String() string { return t.name }

// Any matches every value.
func Any() TypeSpec {
	return TypeSpec{name: "Any", match: func(any) bool { return true }}
}

// Concrete builds a TypeSpec recognizing exactly the values for which
// match returns true.
func Concrete(name string, match func(v any) bool) TypeSpec {
	return TypeSpec{name: name, match: match}
}

// Union matches if any of specs matches.
func Union(name string, specs ...TypeSpec) TypeSpec {
	return TypeSpec{name: name, match: func(v any) bool {
		for _, s := range specs {
			if s.match(v) {
				return true
			}
		}
		return false
	}}
}

// ListOf matches a homogeneous list whose elements all satisfy elem.
// elements is supplied by eval via a function since builtins doesn't know
// the concrete List representation.
func ListOf(elem TypeSpec, isList func(v any) bool, elements func(v any) []any) TypeSpec {
	return TypeSpec{
		name:   "ListOf(" + elem.name + ")",
		isList: true,
		elem:   &elem,
		match: func(v any) bool {
			if !isList(v) {
				return false
			}
			for _, e := range elements(v) {
				if !elem.match(e) {
					return false
				}
			}
			return true
		},
	}
}

// InfiniteOf marks the trailing "zero or more T" terminator of an
// overload's arg_types (spec.md §4.2).
func InfiniteOf(elem TypeSpec) TypeSpec {
	return TypeSpec{name: elem.name + "...", elem: &elem, infinite: true, match: elem.match}
}

func (t TypeSpec) Matches(v any) bool {
	if t.match == nil {
		return false
	}
	return t.match(v)
}

// expandInfinite expands a trailing InfiniteOf(T) arg_types list to match
// n arguments, or returns the list unchanged if it has no trailing
// InfiniteOf. Returns ok=false if n doesn't fit the fixed-arity prefix.
func expandInfinite(argTypes []TypeSpec, n int) (expanded []TypeSpec, ok bool) {
	if len(argTypes) == 0 {
		return argTypes, n == 0
	}
	last := argTypes[len(argTypes)-1]
	if !last.infinite {
		return argTypes, len(argTypes) == n
	}
	fixed := argTypes[:len(argTypes)-1]
	if n < len(fixed) {
		return argTypes, false
	}
	out := make([]TypeSpec, 0, n)
	out = append(out, fixed...)
	for len(out) < n {
		out = append(out, *last.elem)
	}
	return out, true
}

// Validator checks a single argument after its type has matched and
// reports a documented failure message on rejection. Template supports
// "{i}" (1-based position), "{typename}" and "{arg}" substitutions.
type Validator struct {
	Check    func(v any) bool
	Template string
}

// NewValidator builds a Validator from a predicate and a message
// template supporting {i}/{typename}/{arg} substitutions.
func NewValidator(template string, check func(v any) bool) *Validator {
	return &Validator{Check: check, Template: template}
}

func (v Validator) Message(i int, typename string, arg any) string {
	s := v.Template
	s = strings.ReplaceAll(s, "{i}", fmt.Sprintf("%d", i+1))
	s = strings.ReplaceAll(s, "{typename}", typename)
	s = strings.ReplaceAll(s, "{arg}", fmt.Sprintf("%v", arg))
	return s
}
