package rtp

import "errors"

// Packet codec errors.
var (
	// ErrHeaderTooShort indicates fewer than 12 bytes were supplied to Parse.
	ErrHeaderTooShort = errors.New("rtp header too short")

	// ErrHeaderTruncated indicates the CSRC list or extension header runs past the buffer.
	ErrHeaderTruncated = errors.New("rtp header truncated")
)

// Jitter buffer errors.
var (
	// ErrTooFewPackets indicates a jitter buffer capacity below limits.MinJitterPackets.
	ErrTooFewPackets = errors.New("jitter buffer capacity too small")

	// ErrAlreadyRunning indicates Start was called on a running buffer or tick source.
	ErrAlreadyRunning = errors.New("already running")

	// ErrInvalidInterval indicates a non-positive tick interval.
	ErrInvalidInterval = errors.New("invalid tick interval")
)

// Packetizer errors.
var (
	// ErrInvalidClockRate indicates a zero clock rate.
	ErrInvalidClockRate = errors.New("clock rate cannot be zero")
)
