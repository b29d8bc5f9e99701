// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

import (
	"github.com/pkg/errors"
)

var (
	// ErrQueueFull is returned by Enqueue, when the port already holds
	// Cap() messages. It is a temporary error, the caller may retry.
	ErrQueueFull = newTemporaryError(errors.New("the queue is full"))
	// ErrQueueEmpty is returned by Dequeue, when the port holds no messages.
	// It is a temporary error, the caller may retry.
	ErrQueueEmpty = newTemporaryError(errors.New("the queue is empty"))
	// ErrInvalidMessageSize is returned, when a payload length
	// does not match the message size of the port.
	ErrInvalidMessageSize = errors.New("invalid message size")
	// ErrStoreUnavailable is returned by port constructors, when the backing
	// store cannot be obtained, or is smaller, than the port needs.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// temporaryError is an expected, recoverable outcome of a non-blocking
// operation, as opposed to an actual failure.
type temporaryError struct {
	inner error
}

func newTemporaryError(inner error) *temporaryError {
	return &temporaryError{inner: inner}
}

func (e *temporaryError) Error() string {
	return e.inner.Error()
}

func (e *temporaryError) Temporary() bool {
	return true
}

// IsTemporary returns true, if the given error is an expected recoverable
// condition, such as ErrQueueFull or ErrQueueEmpty, and the operation
// can be retried by the caller.
func IsTemporary(err error) bool {
	type temporary interface {
		Temporary() bool
	}
	if tmp, ok := err.(temporary); ok {
		return tmp.Temporary()
	}
	return false
}
