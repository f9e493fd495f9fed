// Package limits provides centralized wire limits for the intercom transport.
// This ensures consistent validation across framing, RTP and pacing components.
package limits

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxFrameLength caps a framed message, length prefix included, and is also
	// the cap on the receive-side accumulation buffer.
	MaxFrameLength = 10000

	// FrameHeaderLength is the size of the little-endian int32 length prefix.
	FrameHeaderLength = 4

	// MinRTPHeaderLength is the fixed RTP header size without CSRCs or extension.
	MinRTPHeaderLength = 12

	// MaxFramePayload is the largest payload a sender may frame. The receiver
	// caps its accumulation buffer, prefix included, at MaxFrameLength.
	MaxFramePayload = MaxFrameLength - FrameHeaderLength

	// MaxRTPPayload is the largest RTP payload that still fits in one frame.
	MaxRTPPayload = MaxFramePayload - MinRTPHeaderLength

	// MinJitterPackets is the smallest capacity a jitter buffer accepts.
	MinJitterPackets = 2

	// DefaultJitterPackets is the jitter buffer capacity used when none is configured.
	DefaultJitterPackets = 10

	// DefaultTickInterval is the pacing interval of the jitter buffer clock.
	DefaultTickInterval = 20 * time.Millisecond
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")
)

// ValidateFramePayload checks an outgoing frame payload against MaxFramePayload.
// A peer resets its receive buffer on larger frames, so senders check first.
func ValidateFramePayload(payload []byte) error {
	return checkSize("frame payload", payload, MaxFramePayload)
}

// ValidateRTPPayload checks media bytes before they are wrapped in an RTP header.
func ValidateRTPPayload(payload []byte) error {
	return checkSize("rtp payload", payload, MaxRTPPayload)
}

func checkSize(what string, b []byte, limit int) error {
	switch {
	case len(b) == 0:
		return ErrMessageEmpty
	case len(b) > limit:
		return fmt.Errorf("%w: %s %d exceeds limit %d", ErrMessageTooLarge, what, len(b), limit)
	}
	return nil
}
