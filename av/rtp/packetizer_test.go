package rtp

import (
	"errors"
	"testing"

	"github.com/opd-ai/intercom/limits"
	pionrtp "github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPacketizer(t *testing.T) {
	p, err := NewPacketizer(8000, 0)
	require.NoError(t, err)

	assert.Equal(t, uint32(8000), p.ClockRate())

	_, err = NewPacketizerWithSequencer(0, 0, 1, nil)
	assert.True(t, errors.Is(err, ErrInvalidClockRate))
}

func TestPacketizer_Sequence(t *testing.T) {
	p, err := NewPacketizerWithSequencer(8000, 0, 0xABCD, pionrtp.NewFixedSequencer(65534))
	require.NoError(t, err)

	frame := make([]byte, 160)

	first, err := p.Packetize(frame, 160)
	require.NoError(t, err)
	second, err := p.Packetize(frame, 160)
	require.NoError(t, err)
	third, err := p.Packetize(frame, 160)
	require.NoError(t, err)

	assert.Equal(t, uint16(65534), first.SequenceNumber)
	assert.Equal(t, uint16(65535), second.SequenceNumber)
	assert.Equal(t, uint16(0), third.SequenceNumber, "sequence number wraps")

	assert.Equal(t, uint32(0), first.Timestamp)
	assert.Equal(t, uint32(160), second.Timestamp)
	assert.Equal(t, uint32(320), third.Timestamp)

	for _, pkt := range []Packet{first, second, third} {
		assert.Equal(t, uint8(2), pkt.Version)
		assert.Equal(t, uint32(0xABCD), pkt.SourceID)
		assert.Equal(t, limits.MinRTPHeaderLength, pkt.HeaderLength)
	}
}

func TestPacketizer_Marker(t *testing.T) {
	p, err := NewPacketizerWithSequencer(8000, 0, 1, pionrtp.NewFixedSequencer(1))
	require.NoError(t, err)

	first, _ := p.Packetize([]byte{1}, 1)
	second, _ := p.Packetize([]byte{1}, 1)
	p.MarkTalkspurt()
	third, _ := p.Packetize([]byte{1}, 1)

	assert.True(t, first.Marker)
	assert.False(t, second.Marker)
	assert.True(t, third.Marker)
}

func TestPacketizer_PayloadValidation(t *testing.T) {
	p, err := NewPacketizerWithSequencer(8000, 0, 1, pionrtp.NewFixedSequencer(1))
	require.NoError(t, err)

	_, err = p.Packetize(nil, 160)
	assert.True(t, errors.Is(err, limits.ErrMessageEmpty))

	_, err = p.Packetize(make([]byte, limits.MaxRTPPayload+1), 160)
	assert.True(t, errors.Is(err, limits.ErrMessageTooLarge))

	// Rejected payloads do not consume sequence numbers.
	pkt, err := p.Packetize([]byte{7}, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), pkt.SequenceNumber)
}

func TestPacketizer_CopiesPayload(t *testing.T) {
	p, err := NewPacketizerWithSequencer(8000, 0, 1, nil)
	require.NoError(t, err)

	payload := []byte{1, 2, 3}
	pkt, err := p.Packetize(payload, 3)
	require.NoError(t, err)

	payload[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, pkt.Payload)
}
