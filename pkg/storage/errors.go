package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrIO        = errors.New("io error")
	ErrParse     = errors.New("parse error")
	ErrSerialize = errors.New("serialization error")
	ErrNetwork   = errors.New("network error")
)

// Error carries the kind of failure and where it happened: a file path, a
// url, or "<string>" for in-memory input.
type Error struct {
	Kind   error
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// NewError wraps err as a kind failure at source, with a stack trace.
func NewError(kind error, source string, err error) error {
	return errors.WithStack(&Error{Kind: kind, Source: source, Err: err})
}
