package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error types for the symbol object system
type ErrorType string

const (
	// Construction errors
	ErrorTypeFormat ErrorType = "format"
	ErrorTypeAlloc  ErrorType = "alloc"

	// Interning errors
	ErrorTypeCollision ErrorType = "collision"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// ErrMalformedTemplate is the underlying cause reported for templates the
// formatter rejects during its dry run.
var ErrMalformedTemplate = errors.New("malformed template")

// FormatError reports a formatted construction whose dry run failed
type FormatError struct {
	Type       ErrorType
	Template   string
	Offset     int // byte offset of the offending verb, -1 when not positional
	Underlying error
	Timestamp  time.Time
}

// NewFormatError creates a new format error
func NewFormatError(template string, offset int, err error) *FormatError {
	return &FormatError{
		Type:       ErrorTypeFormat,
		Template:   template,
		Offset:     offset,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("format %q failed at offset %d: %v", e.Template, e.Offset, e.Underlying)
	}
	return fmt.Sprintf("format %q failed: %v", e.Template, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *FormatError) Unwrap() error {
	return e.Underlying
}

// AllocError represents an allocation request the allocator refused
type AllocError struct {
	Type       ErrorType
	Kind       string
	Requested  int
	Limit      int
	Underlying error
	Timestamp  time.Time
}

// NewAllocError creates a new allocation error
func NewAllocError(kind string, requested, limit int, err error) *AllocError {
	return &AllocError{
		Type:       ErrorTypeAlloc,
		Kind:       kind,
		Requested:  requested,
		Limit:      limit,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *AllocError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("alloc %s of %d bytes failed (limit %d): %v", e.Kind, e.Requested, e.Limit, e.Underlying)
	}
	return fmt.Sprintf("alloc %s of %d bytes failed: %v", e.Kind, e.Requested, e.Underlying)
}

// Unwrap returns the underlying error
func (e *AllocError) Unwrap() error {
	return e.Underlying
}

// CollisionError reports two distinct contents sharing one fingerprint.
// Symbols with equal fingerprints compare equal regardless; this error is
// diagnostic only.
type CollisionError struct {
	Type        ErrorType
	Fingerprint uint64
	Existing    []byte
	Incoming    []byte
	Timestamp   time.Time
}

// NewCollisionError creates a new collision error
func NewCollisionError(fp uint64, existing, incoming []byte) *CollisionError {
	return &CollisionError{
		Type:        ErrorTypeCollision,
		Fingerprint: fp,
		Existing:    existing,
		Incoming:    incoming,
		Timestamp:   time.Now(),
	}
}

// Error implements the error interface
func (e *CollisionError) Error() string {
	return fmt.Sprintf("fingerprint %016x collision: %q vs %q", e.Fingerprint, e.Existing, e.Incoming)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
