// Package apperr defines the error taxonomy shared by the index and
// query layers. Callers branch on the sentinel errors with errors.Is
// and recover structured detail with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an unknown document path on a targeted operation.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery is the class of all query-validation failures.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrIndex is the class of corpus-enumeration failures during a build.
	ErrIndex = errors.New("index error")

	// ErrParse is the class of boolean-syntax parse failures.
	ErrParse = errors.New("parse error")
)

// InvalidQueryError rejects a query before any scan, naming the
// offending field.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

func (e *InvalidQueryError) Is(target error) bool { return target == ErrInvalidQuery }

// InvalidQuery builds an InvalidQueryError for field.
func InvalidQuery(field, reason string) error {
	return &InvalidQueryError{Field: field, Reason: reason}
}

// IndexError wraps the cause of a failed corpus enumeration.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string { return fmt.Sprintf("index error: %s: %v", e.Op, e.Err) }

func (e *IndexError) Unwrap() error { return e.Err }

func (e *IndexError) Is(target error) bool { return target == ErrIndex }

// Index wraps err as an IndexError for operation op.
func Index(op string, err error) error {
	return &IndexError{Op: op, Err: err}
}

// ParseError reports a boolean-syntax error at a token position. The
// whole parse aborts; no partial tree is returned alongside it.
type ParseError struct {
	Position int
	Token    string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at token %d (%q): %s", e.Position, e.Token, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parse builds a ParseError at position pos.
func Parse(pos int, token, reason string) error {
	return &ParseError{Position: pos, Token: token, Reason: reason}
}
