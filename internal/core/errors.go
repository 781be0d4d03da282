// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Define custom errors for better error handling and classification
var (
	ErrInvalidTarget     = errors.New("invalid target")
	ErrMissingCredential = errors.New("missing credential")
	ErrTransport         = errors.New("transport error")
	ErrInvalidResponse   = errors.New("invalid response")
	ErrFileWrite         = errors.New("failed to write to file")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrNotApplicable     = errors.New("provider not applicable to target")
)

// ErrorKind classifies a QueryError.
type ErrorKind int

const (
	InvalidTarget ErrorKind = iota
	MissingCredential
	Transport
	InvalidResponse
	Io
	UnknownProvider
	NotApplicable
)

func (k ErrorKind) sentinel() error {
	switch k {
	case InvalidTarget:
		return ErrInvalidTarget
	case MissingCredential:
		return ErrMissingCredential
	case Transport:
		return ErrTransport
	case InvalidResponse:
		return ErrInvalidResponse
	case Io:
		return ErrFileWrite
	case UnknownProvider:
		return ErrUnknownProvider
	default:
		return ErrNotApplicable
	}
}

func (k ErrorKind) String() string {
	return k.sentinel().Error()
}

// QueryError is the one error type every provider and the dispatcher report.
// Body keeps the raw response for InvalidResponse errors.
type QueryError struct {
	Kind     ErrorKind
	Provider string
	Target   string
	Body     string
	Err      error
}

// NewQueryError wraps err with a kind and the provider/target it concerns.
func NewQueryError(kind ErrorKind, provider, target string, err error) *QueryError {
	return &QueryError{
		Kind:     kind,
		Provider: provider,
		Target:   target,
		Err:      err,
	}
}

func (e *QueryError) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Target != "" {
		msg = fmt.Sprintf("%s (target %s)", msg, e.Target)
	}
	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a QueryError against the sentinel for its kind.
func (e *QueryError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf extracts the ErrorKind of err, reporting false when err is not a QueryError.
func KindOf(err error) (ErrorKind, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind, true
	}
	return 0, false
}
