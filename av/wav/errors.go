package wav

import "errors"

var (
	// ErrInvalidFile indicates the input is not a readable PCM WAV file.
	ErrInvalidFile = errors.New("invalid wav file")

	// ErrSinkClosed indicates a write to a closed sink.
	ErrSinkClosed = errors.New("wav sink closed")
)
