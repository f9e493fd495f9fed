package session

import "github.com/opd-ai/intercom/av/rtp"

// Stats is a snapshot of session counters.
type Stats struct {
	ID              string
	SSRC            uint32
	Muted           bool
	PacketsSent     uint64
	PacketsReceived uint64
	ParseErrors     uint64
	FramingFaults   uint64
	FramesMixed     uint64
	FramesMuted     uint64
	PendingDropped  uint64

	// LastPeak is the largest running sum of the last mix, on the 16-bit scale
	// whatever the output depth.
	LastPeak int32

	// Sources holds jitter buffer counters keyed by received source identifier.
	Sources map[uint32]rtp.JitterStats
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	st := Stats{
		ID:              s.id,
		SSRC:            s.packetizer.SSRC(),
		Muted:           s.muted.Load(),
		PacketsSent:     s.packetsSent.Load(),
		PacketsReceived: s.packetsReceived.Load(),
		ParseErrors:     s.parseErrors.Load(),
		FramingFaults:   s.framingFaults.Load(),
		FramesMixed:     s.framesMixed.Load(),
		FramesMuted:     s.framesMuted.Load(),
		PendingDropped:  s.pendingDropped.Load(),
		LastPeak:        s.lastPeak.Load(),
	}

	s.mu.Lock()
	sources := make([]*source, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, src)
	}
	s.mu.Unlock()

	st.Sources = make(map[uint32]rtp.JitterStats, len(sources))
	for _, src := range sources {
		st.Sources[src.id] = src.buffer.Stats()
	}
	return st
}
