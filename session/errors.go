package session

import "errors"

var (
	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNilConn indicates New was given no connection.
	ErrNilConn = errors.New("connection is nil")

	// ErrNilSink indicates New was given no audio sink.
	ErrNilSink = errors.New("audio sink is nil")
)
