package rtp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/opd-ai/intercom/limits"
	pionrtp "github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// Packetizer turns encoded audio frames into RTP packets for one outgoing stream.
//
// It owns the stream's SSRC, sequence numbering and media clock. The first packet,
// and the first packet after MarkTalkspurt, carries the marker bit.
type Packetizer struct {
	mu          sync.Mutex
	ssrc        uint32
	payloadType uint8
	clockRate   uint32
	timestamp   uint32
	sequencer   pionrtp.Sequencer
	marker      bool
}

// NewPacketizer creates a packetizer with a random SSRC and random initial sequence number.
//
// Parameters:
//   - clockRate: Media clock rate in Hz (8000 for G.711)
//   - payloadType: RTP payload type (0 for PCMU)
//
// Returns:
//   - *Packetizer: New packetizer instance
//   - error: Any error that occurred during setup
func NewPacketizer(clockRate uint32, payloadType uint8) (*Packetizer, error) {
	ssrcBytes := make([]byte, 4)
	if _, err := rand.Read(ssrcBytes); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewPacketizer",
			"error":    err.Error(),
		}).Error("Failed to generate SSRC")
		return nil, fmt.Errorf("failed to generate SSRC: %w", err)
	}
	return NewPacketizerWithSequencer(clockRate, payloadType, binary.BigEndian.Uint32(ssrcBytes), pionrtp.NewRandomSequencer())
}

// NewPacketizerWithSequencer creates a packetizer with a fixed SSRC and caller supplied
// sequencer, for deterministic tests and for resuming a stream.
func NewPacketizerWithSequencer(clockRate uint32, payloadType uint8, ssrc uint32, sequencer pionrtp.Sequencer) (*Packetizer, error) {
	if clockRate == 0 {
		return nil, ErrInvalidClockRate
	}
	if sequencer == nil {
		sequencer = pionrtp.NewRandomSequencer()
	}

	p := &Packetizer{
		ssrc:        ssrc,
		payloadType: payloadType & 0x7F,
		clockRate:   clockRate,
		sequencer:   sequencer,
		marker:      true,
	}

	logrus.WithFields(logrus.Fields{
		"function":     "NewPacketizer",
		"ssrc":         ssrc,
		"clock_rate":   clockRate,
		"payload_type": p.payloadType,
	}).Info("Packetizer created")

	return p, nil
}

// SSRC returns the synchronization source written into every packet.
func (p *Packetizer) SSRC() uint32 {
	return p.ssrc
}

// ClockRate returns the media clock rate in Hz.
func (p *Packetizer) ClockRate() uint32 {
	return p.clockRate
}

// MarkTalkspurt sets the marker bit on the next packet.
func (p *Packetizer) MarkTalkspurt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marker = true
}

// Packetize wraps payload in the next RTP packet of the stream and advances the
// media clock by sampleCount.
func (p *Packetizer) Packetize(payload []byte, sampleCount uint32) (Packet, error) {
	if err := limits.ValidateRTPPayload(payload); err != nil {
		return Packet{}, fmt.Errorf("invalid audio payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data := make([]byte, len(payload))
	copy(data, payload)

	pkt := Packet{
		Version:        2,
		Marker:         p.marker,
		PayloadType:    p.payloadType,
		SequenceNumber: p.sequencer.NextSequenceNumber(),
		Timestamp:      p.timestamp,
		SourceID:       p.ssrc,
		HeaderLength:   limits.MinRTPHeaderLength,
		Payload:        data,
	}

	p.marker = false
	p.timestamp += sampleCount

	logrus.WithFields(logrus.Fields{
		"function":        "Packetizer.Packetize",
		"sequence_number": pkt.SequenceNumber,
		"timestamp":       pkt.Timestamp,
		"payload_size":    len(data),
	}).Debug("Created RTP packet")

	return pkt, nil
}
