package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBookmark is returned when a draft or a decoded record breaks the Bookmark invariants.
	ErrInvalidBookmark = errors.New("invalid bookmark")

	// ErrNotFound is returned by the remote store when a row is absent or owned by someone else.
	ErrNotFound = errors.New("bookmark not found")

	// ErrNoSession is returned when a mutation is attempted before a user is initialized.
	ErrNoSession = errors.New("no active session")
)

// TransportError wraps any failure of a RemoteStore call.
// It is surfaced to the caller and logged; it is never retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err, or returns nil when err is nil.
func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err came from the remote store.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
