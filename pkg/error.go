package pkg

import (
	"fmt"
	"log/slog"
	"strings"
)

// Sentinel errors. Errors returned by this module wrap at least one of these,
// so callers can classify failures with [errors.Is].
var (
	ErrUnexpectedType        = NewError("Unexpected type %s, expected %s")
	ErrCouldNotDetermineName = NewError("Could not determine entity name from path")
	ErrLoad                  = NewError("Error loading")
	ErrParse                 = NewError("Error parsing")
	ErrToComponent           = NewError("Error creating component")
	ErrUndefinedFunction     = NewError("Function `%s` not defined")
	ErrUnknownComponent      = NewError("Unknown component `%s`")

	ErrMaxDepthExceeded   = NewError("maximum nesting depth exceeded")
	ErrUnsupportedShape   = NewError("unsupported value shape")
	ErrDuplicateComponent = NewError("component already registered")
	ErrInvalidArgument    = NewError("invalid argument")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.Args], [Error.Wrap] or
// [Error.With] keep a reference to it, so errors.Is(err, sentinel) holds for
// every derived value.
type Error struct {
	kind  *Error
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new sentinel Error with a message.
//
// The message may contain fmt verbs that are filled in by [Error.Args].
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError returns err itself if it is an *Error, or wraps it in a new
// Error with no message otherwise.
func WrapError(err error) *Error {
	if ee, ok := err.(*Error); ok {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.kind != nil && e.kind == t.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Args returns a copy of e with its message formatted using args.
func (e *Error) Args(args ...any) *Error {
	c := e.clone()
	c.msg = fmt.Sprintf(e.msg, args...)

	return c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

func (e *Error) clone() *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs, // Share attrs
	}
}
