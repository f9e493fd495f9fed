// Package limits provides centralized size and timing constants for the intercom
// transport core, together with the validation helpers that enforce them.
//
// # Size Hierarchy
//
//   - MaxFrameLength (10000 bytes): the largest framed message, prefix included. The
//     receiving framer discards its whole accumulation buffer when either a length
//     prefix or the buffer itself exceeds this value.
//
//   - MinRTPHeaderLength (12 bytes): the fixed RTP header. Shorter datagrams cannot
//     be parsed.
//
//   - MaxFramePayload: MaxFrameLength minus the 4-byte prefix, the largest payload a
//     sender may frame. A longer payload overflows the receiver's buffer.
//
//   - MaxRTPPayload: MaxFramePayload minus the fixed RTP header, the most media that
//     fits in one frame.
//
// # Pacing
//
// DefaultTickInterval (20ms) and DefaultJitterPackets (10) are the jitter buffer
// defaults. MinJitterPackets (2) is the smallest capacity that still has a
// meaningful half-full threshold.
//
// # Validation Functions
//
//	err := limits.ValidateFramePayload(payload)
//	if errors.Is(err, limits.ErrMessageTooLarge) {
//	    // split or drop
//	}
package limits
