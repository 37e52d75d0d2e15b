package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies completion failures so the orchestrator can decide
// how to surface them.
type ErrorKind string

const (
	// ErrorKindConfiguration means no call was made: the client is missing
	// an API key or is otherwise unusable.
	ErrorKindConfiguration ErrorKind = "configuration"
	// ErrorKindNetwork means no response was received.
	ErrorKindNetwork ErrorKind = "network"
	// ErrorKindAPI means the provider answered with a non-2xx response,
	// including rate limiting.
	ErrorKindAPI ErrorKind = "api"
)

// Error wraps a completion failure with its kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewConfigurationError(msg string) *Error {
	return &Error{Kind: ErrorKindConfiguration, Err: errors.New(msg)}
}

// KindOf returns the kind of err if it is (or wraps) an engine Error,
// defaulting to the network kind for untyped transport failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorKindNetwork
}
