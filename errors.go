package qsql

import (
	"errors"
	"fmt"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/expr"
	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/scoring"
	"github.com/hupe1980/qsql/table"
)

var (
	// ErrParse matches every malformed-condition error.
	ErrParse = errors.New("parse error")
	// ErrSchema matches every column schema error.
	ErrSchema = errors.New("schema error")
	// ErrInput matches every invalid-row error.
	ErrInput = errors.New("input error")
	// ErrResource matches every admission or capacity error.
	ErrResource = errors.New("resource error")
	// ErrConfig matches every invalid engine option.
	ErrConfig = errors.New("config error")
	// ErrClosed is returned by queries on a closed Engine.
	ErrClosed = errors.New("engine closed")
)

// ParseError reports a malformed filter condition.
//
// The original underlying error can be accessed via errors.Unwrap.
type ParseError struct {
	// Pos is the byte offset in the normalized condition.
	Pos   int
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

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// SchemaError reports an unknown, empty or duplicated column.
type SchemaError struct {
	Column string
	cause  error
}

func (e *SchemaError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("schema error: column %q", e.Column)
	}
	return fmt.Sprintf("schema error: %v", e.cause)
}

func (e *SchemaError) Unwrap() error { return e.cause }

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// InputError reports rows that cannot be evaluated.
type InputError struct {
	// Row is the index of the offending row, or -1 when the input as a
	// whole is invalid.
	Row    int
	Column string
	Value  string
	Msg    string
	cause  error
}

func (e *InputError) Error() string {
	switch {
	case e.Row < 0:
		return "input error: " + e.Msg
	case e.Column != "":
		return fmt.Sprintf("input error: row %d column %q value %q: %s", e.Row, e.Column, e.Value, e.Msg)
	default:
		return fmt.Sprintf("input error: row %d: %s", e.Row, e.Msg)
	}
}

func (e *InputError) Unwrap() error { return e.cause }

// Is reports whether target is ErrInput.
func (e *InputError) Is(target error) bool { return target == ErrInput }

// ResourceError reports a query that could not be admitted or executed
// within the configured limits.
type ResourceError struct {
	Msg   string
	cause error
}

func (e *ResourceError) Error() string { return "resource error: " + e.Msg }

func (e *ResourceError) Unwrap() error { return e.cause }

// Is reports whether target is ErrResource.
func (e *ResourceError) Is(target error) bool { return target == ErrResource }

// ConfigError reports an engine option that New cannot honour.
type ConfigError struct {
	Option string
	cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Option, e.cause)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already public.
	var (
		pe  *ParseError
		se  *SchemaError
		ie  *InputError
		rse *ResourceError
		cfe *ConfigError
	)
	if errors.As(err, &pe) || errors.As(err, &se) || errors.As(err, &ie) || errors.As(err, &rse) || errors.As(err, &cfe) {
		return err
	}

	var epe *expr.ParseError
	if errors.As(err, &epe) {
		return &ParseError{Pos: epe.Pos, Token: epe.Token, Msg: epe.Msg, cause: err}
	}

	var ce *table.ColumnError
	if errors.As(err, &ce) {
		return &SchemaError{Column: ce.Column, cause: err}
	}

	var re *scoring.RowError
	if errors.As(err, &re) {
		ie := &InputError{Row: re.Row, Msg: re.Err.Error(), cause: err}
		var ve *expr.ValueError
		if errors.As(err, &ve) {
			ie.Column, ie.Value, ie.Msg = ve.Column, ve.Value, "expected "+ve.Want
		}
		return ie
	}

	if errors.Is(err, table.ErrRowWidth) {
		return &InputError{Row: -1, Msg: err.Error(), cause: err}
	}

	switch {
	case errors.Is(err, scoring.ErrTooWide),
		errors.Is(err, resource.ErrOverLimit),
		errors.Is(err, cluster.ErrPoolClosed):
		return &ResourceError{Msg: err.Error(), cause: err}
	}

	return err
}
