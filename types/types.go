// Package types defines the shared data structures for the prologot binding.
// This package contains only type definitions and error kinds, no logic.
package types

import "errors"

// Error kinds. Every failure inside the binding wraps exactly one of these,
// so callers can classify the last error with errors.Is.
var (
	ErrNotInitialized = errors.New("engine not initialized")
	ErrEmptyInput     = errors.New("empty input")
	ErrParse          = errors.New("parse failure")
	ErrEngine         = errors.New("engine exception")
	ErrConversion     = errors.New("conversion failure")
	ErrBusy           = errors.New("another query is still open")
)

// ErrorPolicy selects how errors and warnings are presented when they occur.
type ErrorPolicy string

const (
	PolicyPrint  ErrorPolicy = "print"  // log immediately and store
	PolicyStatus ErrorPolicy = "status" // store only
	PolicyHalt   ErrorPolicy = "halt"   // accepted; logged like print, never exits
)

// Severity distinguishes errors from warnings for policy selection.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Indicator names a predicate by functor and arity (name/arity).
type Indicator struct {
	Name  string `json:"name"`
	Arity int    `json:"arity"`
}
