package expr

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when an expression contains no tokens.
var ErrEmpty = errors.New("empty expression")

// ParseError describes a malformed expression.
type ParseError struct {
	// Pos is the byte offset of the offending token, or the input length
	// when the expression ended early.
	Pos int
	// Token is the offending token text; empty at end of input.
	Token string
	Msg   string
	cause error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error at offset %d near %q: %s", e.Pos, e.Token, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.cause }

// ValueError reports a row field that cannot be read as the type a leaf
// test demands.
type ValueError struct {
	Column string
	Value  string
	Want   string
	cause  error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("column %q: cannot use %q as %s", e.Column, e.Value, e.Want)
}

func (e *ValueError) Unwrap() error { return e.cause }
