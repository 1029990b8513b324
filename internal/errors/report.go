// Package errors implements NumFu's structured diagnostic reporter
// (spec.md §4.5, §7), generalized from the teacher's
// internal/errors/report.go and grounded in original_source/errors.py's
// CPos/Error console logic.
package errors

import (
	"errors"
	"fmt"

	"github.com/sunholo/numfu/internal/ast"
)

// Kind is one of NumFu's user-facing error taxonomy entries.
type Kind string

const (
	SyntaxError    Kind = "SyntaxError"
	NameError      Kind = "NameError"
	TypeError      Kind = "TypeError"
	ValueError     Kind = "ValueError"
	IndexError     Kind = "IndexError"
	RuntimeError   Kind = "RuntimeError"
	AssertionError Kind = "AssertionError"
	RecursionError Kind = "RecursionError"
	ImportError    Kind = "ImportError"
)

// Report is the canonical structured error produced by every layer of the
// interpreter: parser, module resolver, evaluator, built-in dispatch.
type Report struct {
	Kind    Kind
	Message string
	Pos     *ast.Pos // nil when the error has no useful source position
	Module  string   // module path the error occurred in, for the excerpt
	Source  string   // that module's source text, for the excerpt
	Fatal   bool
}

// Error implements the error interface so a *Report survives errors.As.
func (r *Report) Error() string {
	if r == nil {
		return "unknown error"
	}
	return string(r.Kind) + ": " + r.Message
}

// ReportError wraps a *Report so it can travel through error-wrapping
// middleware (fmt.Errorf("%w", ...)) and still be recovered with As.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string { return e.Rep.Error() }
func (e *ReportError) Unwrap() error { return nil }

// Wrap returns r as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// As extracts a *Report from an error chain.
func As(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// New builds a Report. fatal mirrors spec.md §7: a caller-supplied policy
// flag, never baked into the raise site.
func New(kind Kind, message string, pos *ast.Pos, module, source string, fatal bool) *Report {
	return &Report{Kind: kind, Message: message, Pos: pos, Module: module, Source: source, Fatal: fatal}
}

// Newf is New with fmt.Sprintf-style formatting of the message.
func Newf(kind Kind, pos *ast.Pos, module, source string, fatal bool, format string, args ...any) *Report {
	return New(kind, fmt.Sprintf(format, args...), pos, module, source, fatal)
}
