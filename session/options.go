package session

import (
	"github.com/opd-ai/intercom/av/rtp"
	"github.com/opd-ai/intercom/transport"
)

// Option configures a Session.
type Option func(*Session)

// WithTickSourceFactory sets the constructor for each jitter buffer's tick
// source. Tests pass a factory returning rtp.ManualTicker values.
func WithTickSourceFactory(f func() rtp.TickSource) Option {
	return func(s *Session) {
		if f != nil {
			s.newTickSource = f
		}
	}
}

// WithMixTickSource sets the tick source that drives mixing and playback.
func WithMixTickSource(t rtp.TickSource) Option {
	return func(s *Session) {
		if t != nil {
			s.mixTicker = t
		}
	}
}

// WithPacketizer replaces the send-path packetizer, for a fixed SSRC or
// sequence start.
func WithPacketizer(p *rtp.Packetizer) Option {
	return func(s *Session) {
		if p != nil {
			s.packetizer = p
		}
	}
}

// WithStreamOptions passes extra options to the underlying transport.Stream.
func WithStreamOptions(opts ...transport.StreamOption) Option {
	return func(s *Session) {
		s.streamOpts = append(s.streamOpts, opts...)
	}
}
