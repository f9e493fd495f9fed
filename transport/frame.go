package transport

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/opd-ai/intercom/limits"
	"github.com/sirupsen/logrus"
)

// MessageHandler receives one complete frame payload. The slice is owned by the handler.
type MessageHandler func(payload []byte)

// FaultHandler receives framing faults. Faults are informational; the framer has
// already discarded its buffer and stays usable.
type FaultHandler func(err error)

// FramerStats counts framer activity for diagnostics.
type FramerStats struct {
	Messages uint64
	Resets   uint64
	Faults   uint64
}

// Framer splits a continuous byte stream into length-prefixed messages.
//
// Each frame on the wire is a little-endian int32 length L followed by L payload
// bytes. Incoming bytes accumulate until complete frames are available. When the
// buffer or a length prefix exceeds limits.MaxFrameLength the buffer is dropped
// entirely and parsing resumes with the next byte fed, which makes corruption
// self-healing at the cost of any partial frame.
//
// A Framer is meant for a single producer. Feed must not be called from inside
// the message handler.
type Framer struct {
	mu        sync.Mutex
	buf       []byte
	maxLength int
	onMessage MessageHandler
	onFault   FaultHandler
	stats     FramerStats
}

// NewFramer creates a framer that delivers complete payloads to onMessage.
// onFault may be nil.
func NewFramer(onMessage MessageHandler, onFault FaultHandler) *Framer {
	return &Framer{
		buf:       make([]byte, 0, 1024),
		maxLength: limits.MaxFrameLength,
		onMessage: onMessage,
		onFault:   onFault,
	}
}

// Frame prefixes payload with its little-endian int32 length.
func Frame(payload []byte) []byte {
	out := make([]byte, limits.FrameHeaderLength+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(int32(len(payload))))
	copy(out[limits.FrameHeaderLength:], payload)
	return out
}

// Feed appends data to the accumulation buffer and emits every frame that is now complete.
func (f *Framer) Feed(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			f.faultLocked(fmt.Errorf("%w: %v", ErrHandlerPanic, r))
		}
	}()

	f.buf = append(f.buf, data...)

	if len(f.buf) > f.maxLength {
		f.faultLocked(fmt.Errorf("%w: %d bytes buffered", ErrBufferOverflow, len(f.buf)))
		return
	}

	for len(f.buf) >= limits.FrameHeaderLength {
		length := int(int32(binary.LittleEndian.Uint32(f.buf)))
		if length < 0 {
			f.faultLocked(fmt.Errorf("%w: %d", ErrNegativeLength, length))
			return
		}
		if length > f.maxLength {
			f.faultLocked(fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, f.maxLength))
			return
		}

		total := limits.FrameHeaderLength + length
		if len(f.buf) < total {
			return
		}

		message := make([]byte, length)
		copy(message, f.buf[limits.FrameHeaderLength:total])

		// Compact before delivery so a panicking handler leaves no stale frame behind.
		remaining := copy(f.buf, f.buf[total:])
		f.buf = f.buf[:remaining]
		f.stats.Messages++

		if f.onMessage != nil {
			f.onMessage(message)
		}
	}
}

// Buffered returns the number of bytes waiting for a complete frame.
func (f *Framer) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buf)
}

// Stats returns a snapshot of the framer counters.
func (f *Framer) Stats() FramerStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// Reset discards any partially received frame.
func (f *Framer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf = f.buf[:0]
	f.stats.Resets++
}

// faultLocked clears the buffer and reports err. Caller holds f.mu.
func (f *Framer) faultLocked(err error) {
	dropped := len(f.buf)
	f.buf = f.buf[:0]
	f.stats.Resets++
	f.stats.Faults++

	logrus.WithFields(logrus.Fields{
		"function":      "Framer.Feed",
		"dropped_bytes": dropped,
		"error":         err.Error(),
	}).Warn("Framing fault, buffer reset")

	if f.onFault != nil {
		f.onFault(err)
	}
}
