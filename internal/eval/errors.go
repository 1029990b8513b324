package eval

import "github.com/sunholo/numfu/internal/errors"

// UserError is returned by built-in implementations for failures that
// dispatch itself does not detect: `error(...)`/`assert` (spec.md §4.2's
// special semantics), format's IndexError, index and conversion
// failures. builtinError turns it into a positioned report of its own
// Kind, as it does for a *builtins.DispatchError.
type UserError struct {
	Kind    errors.Kind
	Message string
}

func (e *UserError) Error() string { return string(e.Kind) + ": " + e.Message }
