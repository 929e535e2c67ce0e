package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrHeaderMismatch     = errors.New("header mismatch")
	ErrTruncatedBuffer    = errors.New("truncated buffer")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrCorruptString      = errors.New("corrupt string")
)

// FormatError is returned for every fatal decode failure.
// Kind is one of the Err* sentinels above, so errors.Is works on it.
type FormatError struct {
	Kind   error
	Record string
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	s := e.Kind.Error()
	if e.Record != "" {
		s += fmt.Sprintf(" in %s", e.Record)
	}
	s += fmt.Sprintf(" at 0x%x", e.Offset)
	if e.Reason != "" {
		s += ": " + e.Reason
	}
	return s
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

func NewFormatError(kind error, record string, offset int, format string, a ...interface{}) *FormatError {
	return &FormatError{
		Kind:   kind,
		Record: record,
		Offset: offset,
		Reason: fmt.Sprintf(format, a...),
	}
}
