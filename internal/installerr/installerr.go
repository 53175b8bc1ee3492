package installerr

import (
	"errors"
	"fmt"
)

// Kind classifies why an install operation failed
type Kind int

const (
	NotFound Kind = iota + 1
	Download
	Archive
	Process
	Timeout
	Filesystem
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Download:
		return "download"
	case Archive:
		return "archive"
	case Process:
		return "process"
	case Timeout:
		return "timeout"
	case Filesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Error is a typed failure raised by the fetcher, runner, reconciler or a step
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error for op
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates a typed error with a formatted cause
func Errorf(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is reports whether any error in err's chain is an *Error of the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or 0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
