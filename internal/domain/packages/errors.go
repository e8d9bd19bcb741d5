package packages

import (
	"errors"
	"fmt"
)

// Kind classifies a package operation failure.
type Kind string

const (
	KindInvalid     Kind = "invalid"
	KindConflict    Kind = "conflict"
	KindNotFound    Kind = "not_found"
	KindUnsupported Kind = "unsupported"
	KindUpstream    Kind = "upstream"
	KindInternal    Kind = "internal"
)

// Client reports whether the failure was caused by the request rather than
// the server or a remote it talks to.
func (k Kind) Client() bool {
	switch k {
	case KindInvalid, KindConflict, KindNotFound, KindUnsupported:
		return true
	}
	return false
}

var (
	ErrTargetExists   = errors.New("target already exists")
	ErrInvalidPackage = errors.New("invalid package")
	ErrSystemInstall  = errors.New("system packages are not supported")
	ErrInvalidURL     = errors.New("invalid package url")
	ErrInvalidRoot    = errors.New("invalid package root")
)

// Error is returned by every Manager operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
