// Package stageerr defines the failure taxonomy shared by every pipeline
// stage. Each failure names the stage that produced it so that a change in
// the upstream bundle format can be located from the error text alone.
package stageerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNetwork Kind = iota + 1
	KindNotFound
	KindParse
	KindStructuralMismatch
	KindUnexpectedShape
	KindMalformedType
)

var (
	ErrNetwork            = errors.New("network error")
	ErrNotFound           = errors.New("not found")
	ErrParse              = errors.New("parse error")
	ErrStructuralMismatch = errors.New("structural mismatch")
	ErrUnexpectedShape    = errors.New("unexpected shape")
	ErrMalformedType      = errors.New("malformed type")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindNotFound:
		return ErrNotFound
	case KindParse:
		return ErrParse
	case KindStructuralMismatch:
		return ErrStructuralMismatch
	case KindUnexpectedShape:
		return ErrUnexpectedShape
	case KindMalformedType:
		return ErrMalformedType
	default:
		return nil
	}
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a stage failure. Err, when set, is the underlying cause.
type Error struct {
	Stage  string
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error { return e.Err }

func New(stage string, kind Kind, format string, args ...any) *Error {
	return &Error{Stage: stage, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Wrap(stage string, kind Kind, err error, format string, args ...any) *Error {
	return &Error{Stage: stage, Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first stage error in err's chain.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
