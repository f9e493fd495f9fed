package transport

import "errors"

// Framing faults. These are reported through the framer's fault callback and
// never returned from Feed.
var (
	// ErrBufferOverflow indicates the accumulation buffer grew past MaxFrameLength.
	ErrBufferOverflow = errors.New("frame buffer overflow")

	// ErrFrameTooLarge indicates a length prefix larger than MaxFrameLength.
	ErrFrameTooLarge = errors.New("frame length exceeds limit")

	// ErrNegativeLength indicates a length prefix that decodes to a negative value.
	ErrNegativeLength = errors.New("negative frame length")

	// ErrHandlerPanic indicates the message callback panicked while a frame was delivered.
	ErrHandlerPanic = errors.New("frame handler panicked")
)

// Stream errors.
var (
	// ErrStreamClosed indicates the stream was closed locally or by the peer.
	ErrStreamClosed = errors.New("stream closed")

	// ErrStreamAlreadyStarted indicates Start was called twice.
	ErrStreamAlreadyStarted = errors.New("stream already started")
)
