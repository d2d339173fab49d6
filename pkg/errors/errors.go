// Package errors provides guisu's structured error type: a stable code,
// a human message, an optional wrapped cause, and a details map for the
// offending path and operation. Every error the core surfaces carries one
// of the ErrorCode values below so callers can branch on kind rather than
// string-matching messages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable, testable discriminant for an error's kind.
type ErrorCode string

const (
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// PathError
	ErrPathNotAbsolute   ErrorCode = "PATH_NOT_ABSOLUTE"
	ErrPathNotRelative   ErrorCode = "PATH_NOT_RELATIVE"
	ErrInvalidPathPrefix ErrorCode = "INVALID_PATH_PREFIX"
	ErrDuplicateTarget   ErrorCode = "DUPLICATE_TARGET"
	ErrUnsupportedFile   ErrorCode = "UNSUPPORTED_FILE_TYPE"

	// DecodeError
	ErrDecodeAmbiguous ErrorCode = "DECODE_AMBIGUOUS"

	// TransformError
	ErrDecryption ErrorCode = "DECRYPTION_FAILED"
	ErrRender     ErrorCode = "RENDER_FAILED"

	// IOError
	ErrIORead     ErrorCode = "IO_READ"
	ErrIOWrite    ErrorCode = "IO_WRITE"
	ErrIOMetadata ErrorCode = "IO_METADATA"
	ErrIOSymlink  ErrorCode = "IO_SYMLINK"
	ErrIORename   ErrorCode = "IO_RENAME"

	// LedgerError
	ErrLedgerOpen       ErrorCode = "LEDGER_OPEN"
	ErrLedgerRead       ErrorCode = "LEDGER_READ"
	ErrLedgerWrite      ErrorCode = "LEDGER_WRITE"
	ErrLedgerCorruption ErrorCode = "LEDGER_CORRUPTION"

	// ReconcileError
	ErrReconcileKindMismatch ErrorCode = "RECONCILE_KIND_MISMATCH"

	// Aggregate
	ErrAggregate ErrorCode = "AGGREGATE"
)

// GuisuError is the structured error type used throughout the module.
type GuisuError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *GuisuError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GuisuError) Unwrap() error {
	return e.Wrapped
}

func (e *GuisuError) Is(target error) bool {
	var t *GuisuError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a new GuisuError with the given code and message.
func New(code ErrorCode, message string) *GuisuError {
	return &GuisuError{Code: code, Message: message, Details: make(map[string]interface{})}
}

// Newf creates a new GuisuError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *GuisuError {
	return &GuisuError{Code: code, Message: fmt.Sprintf(format, args...), Details: make(map[string]interface{})}
}

// Wrap wraps an existing error with a code and message. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *GuisuError {
	if err == nil {
		return nil
	}
	return &GuisuError{Code: code, Message: message, Details: make(map[string]interface{}), Wrapped: err}
}

// Wrapf wraps an existing error with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GuisuError {
	if err == nil {
		return nil
	}
	return &GuisuError{Code: code, Message: fmt.Sprintf(format, args...), Details: make(map[string]interface{}), Wrapped: err}
}

// WithDetail attaches a single detail (e.g. "path", "operation") and returns e for chaining.
func (e *GuisuError) WithDetail(key string, value interface{}) *GuisuError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails merges multiple details and returns e for chaining.
func (e *GuisuError) WithDetails(details map[string]interface{}) *GuisuError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithPath is shorthand for WithDetail("path", path).
func (e *GuisuError) WithPath(path string) *GuisuError {
	return e.WithDetail("path", path)
}

// WithOp is shorthand for WithDetail("operation", op).
func (e *GuisuError) WithOp(op string) *GuisuError {
	return e.WithDetail("operation", op)
}

// IsCode reports whether err (or something it wraps) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCode returns the error code carried by err, or ErrUnknown. An
// *Aggregate always reports ErrAggregate, regardless of the codes of its
// members.
func GetCode(err error) ErrorCode {
	var agg *Aggregate
	if errors.As(err, &agg) {
		return ErrAggregate
	}
	var ge *GuisuError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ErrUnknown
}

// GetDetails returns the details map carried by err, or nil.
func GetDetails(err error) map[string]interface{} {
	var ge *GuisuError
	if errors.As(err, &ge) {
		return ge.Details
	}
	return nil
}

// Aggregate collects one or more per-path errors produced by a parallel phase
// (Source Reader enumeration, Target State construction). It always reports
// ErrAggregate from GetCode/IsCode, regardless of the codes of its members.
type Aggregate struct {
	Errors []error
}

func (a *Aggregate) Error() string {
	if len(a.Errors) == 1 {
		return fmt.Sprintf("1 error occurred: %v", a.Errors[0])
	}
	return fmt.Sprintf("%d errors occurred, first: %v", len(a.Errors), a.Errors[0])
}

func (a *Aggregate) Is(target error) bool {
	var t *GuisuError
	if errors.As(target, &t) {
		return t.Code == ErrAggregate
	}
	var ta *Aggregate
	return errors.As(target, &ta)
}

// NewAggregate builds an *Aggregate from a slice of errors, dropping nils.
// Returns nil if no non-nil errors remain.
func NewAggregate(errs []error) error {
	var nonNil []error
	for _, e := range errs {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	return &Aggregate{Errors: nonNil}
}
