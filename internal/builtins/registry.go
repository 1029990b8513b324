package builtins

import (
	"fmt"
)

// Impl is a registered overload's implementation. args has already been
// validated against ArgTypes and, if a Transformer is set, replaced by
// its result.
type Impl func(args []any) (any, error)

// Overload is one registered implementation of a Builtin, selected by
// argument kind per spec.md §4.2.
type Overload struct {
	ArgTypes    []TypeSpec
	ReturnType  TypeSpec
	Impl        Impl
	Validators  []*Validator // nil entries mean "no validator for this position"
	Transformer func(args []any) []any
	Commutative bool
}

// ErrorCase is one of a Builtin's explicit `.error(arg_types, message)`
// registrations: structurally-matching input that is always invalid.
type ErrorCase struct {
	ArgTypes []TypeSpec
	Message  string
}

// DispatchError carries a failure message and the position of the
// argument (if any) responsible, so the caller can report a TypeError at
// the right span.
type DispatchError struct {
	Message  string
	ArgIndex int // -1 when the error isn't attributable to one argument
	Kind     string
}

func (e *DispatchError) Error() string { return e.Message }

// Special names spec.md §4.2 step 1 calls out for bespoke semantics
// instead of a plain impl(*args) call.
var SpecialNames = map[string]bool{
	"String": true, "format": true, "error": true, "assert": true,
	"filter": true, "range": true, "set": true,
}

// Builtin is a named primitive with its registered overloads (spec.md
// §3's Builtin variant).
type Builtin struct {
	Name       string
	Overloads  []Overload
	ErrorCases []ErrorCase
	EvalLists  bool
	Partial    bool
	Help       string
}

// New creates an empty Builtin ready for Add/Error registrations.
func New(name string) *Builtin {
	return &Builtin{Name: name}
}

// WithEvalLists marks a builtin as requiring fully-materialized List
// arguments (spec.md §4.3 step 6: Builtin dispatch, eval_lists flag).
func (b *Builtin) WithEvalLists() *Builtin {
	b.EvalLists = true
	return b
}

// WithHelp attaches a help message (spec.md §3: "optional help message").
func (b *Builtin) WithHelp(msg string) *Builtin {
	b.Help = msg
	return b
}

// Add registers an overload. A commutative overload additionally
// registers the reverse-argument-order permutation wrapped around impl,
// per spec.md §4.2 ("A commutative add generates all argument
// permutations with a permuting wrapper around impl"). NumFu's overloads
// are unary or binary, so "all permutations" of a 2-ary commutative
// overload is exactly the swap.
func (b *Builtin) Add(argTypes []TypeSpec, ret TypeSpec, impl Impl, opts ...OverloadOption) *Builtin {
	ov := Overload{ArgTypes: argTypes, ReturnType: ret, Impl: impl}
	for _, opt := range opts {
		opt(&ov)
	}
	b.Overloads = append(b.Overloads, ov)
	if ov.Commutative && len(argTypes) == 2 {
		reversed := Overload{
			ArgTypes:   []TypeSpec{argTypes[1], argTypes[0]},
			ReturnType: ret,
			Impl: func(args []any) (any, error) {
				return impl([]any{args[1], args[0]})
			},
		}
		if len(ov.Validators) == 2 {
			reversed.Validators = []*Validator{ov.Validators[1], ov.Validators[0]}
		}
		b.Overloads = append(b.Overloads, reversed)
	}
	return b
}

// Error registers an explicit always-invalid overload shape (spec.md
// §4.2 step 2).
func (b *Builtin) Error(argTypes []TypeSpec, message string) *Builtin {
	b.ErrorCases = append(b.ErrorCases, ErrorCase{ArgTypes: argTypes, Message: message})
	return b
}

// OverloadOption configures an Add call.
type OverloadOption func(*Overload)

func WithValidators(v ...*Validator) OverloadOption {
	return func(o *Overload) { o.Validators = v }
}

func WithTransformer(t func(args []any) []any) OverloadOption {
	return func(o *Overload) { o.Transformer = t }
}

func Commutative() OverloadOption {
	return func(o *Overload) { o.Commutative = true }
}

// Typename reports a human name for an argument, used in error messages.
// eval supplies this since only it knows how to name its Value variants.
type Typename func(v any) string

// Dispatch implements spec.md §4.2's algorithm. special, when non-nil, is
// consulted first for names in SpecialNames; it returns (result, handled).
func Dispatch(b *Builtin, args []any, typename Typename, special func(name string, args []any) (any, bool, error)) (any, error) {
	if special != nil && SpecialNames[b.Name] {
		if result, handled, err := special(b.Name, args); handled {
			return result, err
		}
	}

	var firstTypeErr string
	sawTypeErr := false

	for _, ov := range b.Overloads {
		argTypes, ok := expandInfinite(ov.ArgTypes, len(args))
		if !ok {
			continue
		}
		work := args
		if ov.Transformer != nil {
			work = ov.Transformer(work)
			if len(work) != len(argTypes) {
				continue
			}
		}

		matched := true
		var typeErrMsg string
		for i := len(argTypes) - 1; i >= 0; i-- {
			if !argTypes[i].Matches(work[i]) {
				typeErrMsg = fmt.Sprintf("invalid argument type %q for '%s'", typename(work[i]), b.Name)
				matched = false
				break
			}
			if i < len(ov.Validators) && ov.Validators[i] != nil {
				v := ov.Validators[i]
				if !v.Check(work[i]) {
					return nil, &DispatchError{
						Message:  v.Message(i, typename(work[i]), work[i]),
						ArgIndex: i,
						Kind:     "TypeError",
					}
				}
			}
		}
		if !matched {
			if !sawTypeErr {
				firstTypeErr = typeErrMsg
				sawTypeErr = true
			}
			continue
		}

		result, err := ov.Impl(work)
		return result, err
	}

	for _, ec := range b.ErrorCases {
		argTypes, ok := expandInfinite(ec.ArgTypes, len(args))
		if !ok {
			continue
		}
		allMatch := true
		for i, t := range argTypes {
			if !t.Matches(args[i]) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return nil, &DispatchError{Message: ec.Message, ArgIndex: -1, Kind: "TypeError"}
		}
	}

	if sawTypeErr {
		return nil, &DispatchError{Message: firstTypeErr, ArgIndex: -1, Kind: "TypeError"}
	}

	expected := -1
	if len(b.Overloads) > 0 {
		expected = len(b.Overloads[0].ArgTypes)
	}
	return nil, &DispatchError{
		Message:  fmt.Sprintf("wrong number of arguments for '%s': got %d, expected %d", b.Name, len(args), expected),
		ArgIndex: -1,
		Kind:     "ValueError",
	}
}
