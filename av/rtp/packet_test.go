package rtp

import (
	"errors"
	"math/bits"
	"testing"

	"github.com/opd-ai/intercom/limits"
	pionrtp "github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TooShort(t *testing.T) {
	for _, size := range []int{0, 1, 11} {
		pkt, err := Parse(make([]byte, size))

		assert.True(t, errors.Is(err, ErrHeaderTooShort), "size %d", size)
		assert.True(t, pkt.IsZero(), "size %d", size)
	}
}

func TestParse_HeaderLayout(t *testing.T) {
	data := []byte{
		0x80 | 0x20 | 0x02, // version 2, padding, 2 CSRCs
		0x80 | 0x00,        // marker, PCMU
		0x12, 0x34,         // sequence number
		0xDE, 0xAD, 0xBE, 0xEF, // timestamp
		0x01, 0x02, 0x03, 0x04, // source id
		0, 0, 0, 1, // CSRC 1
		0, 0, 0, 2, // CSRC 2
		0xAA, 0xBB, 0xCC,
	}

	pkt, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, uint8(2), pkt.Version)
	assert.True(t, pkt.Padding)
	assert.False(t, pkt.Extension)
	assert.Equal(t, uint8(2), pkt.CSRCCount)
	assert.True(t, pkt.Marker)
	assert.Equal(t, uint8(0), pkt.PayloadType)
	assert.Equal(t, uint16(0x1234), pkt.SequenceNumber, "sequence number is big-endian")
	assert.Equal(t, uint32(0xDEADBEEF), pkt.Timestamp, "timestamp is big-endian")
	assert.Equal(t, uint32(0x04030201), pkt.SourceID, "source id is read little-endian")
	assert.Equal(t, 20, pkt.HeaderLength)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, pkt.Payload)
	assert.Equal(t, len(data), pkt.TotalLength())
}

func TestParse_PayloadTypeBits(t *testing.T) {
	data := make([]byte, 12)
	data[0] = 0x80
	data[1] = 0x7F

	pkt, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(127), pkt.PayloadType)
	assert.False(t, pkt.Marker)
	assert.NotNil(t, pkt.Payload)
	assert.Empty(t, pkt.Payload)
}

func TestParse_Extension(t *testing.T) {
	data := []byte{
		0x90, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x03,
		0xBE, 0xDE, 0x00, 0x02, // extension id, 2 words
		0x11, 0x11, 0x11, 0x11,
		0x22, 0x22, 0x22, 0x22,
		0x7F, 0x7E,
	}

	pkt, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, pkt.Extension)
	assert.Equal(t, uint16(0xBEDE), pkt.ExtensionHeaderID)
	assert.Equal(t, uint16(2), pkt.ExtensionLengthInWords)
	assert.Equal(t, 12+4+8, pkt.HeaderLength)
	assert.Equal(t, []byte{0x7F, 0x7E}, pkt.Payload)
	assert.Equal(t, len(data), pkt.TotalLength())
}

func TestParse_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "CSRC list past end",
			data: append([]byte{0x83, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, make([]byte, 8)...),
		},
		{
			name: "Extension header missing",
			data: []byte{0x90, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xBE},
		},
		{
			name: "Extension body past end",
			data: []byte{0x90, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xBE, 0xDE, 0x00, 0x04, 1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt, err := Parse(tt.data)
			assert.True(t, errors.Is(err, ErrHeaderTruncated))
			assert.True(t, pkt.IsZero())
		})
	}
}

func TestParse_CopiesPayload(t *testing.T) {
	data := append(make([]byte, 12), 1, 2, 3)
	data[0] = 0x80

	pkt, err := Parse(data)
	require.NoError(t, err)

	data[12] = 0xFF
	assert.Equal(t, byte(1), pkt.Payload[0])
}

func TestSerialize_Layout(t *testing.T) {
	pkt := Packet{
		Version:        2,
		Marker:         true,
		PayloadType:    8,
		SequenceNumber: 0xA1B2,
		Timestamp:      0x01020304,
		SourceID:       0x0A0B0C0D,
		Payload:        []byte{0x55},
	}

	out := pkt.Serialize()

	require.Len(t, out, 13)
	assert.Equal(t, byte(0x80), out[0])
	assert.Equal(t, byte(0x88), out[1])
	assert.Equal(t, []byte{0xA1, 0xB2}, out[2:4])
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, out[4:8])
	assert.Equal(t, []byte{0x0A, 0x0B, 0x0C, 0x0D}, out[8:12], "source id is written big-endian")
	assert.Equal(t, byte(0x55), out[12])
}

func TestSerialize_CSRCAreaZeroFilled(t *testing.T) {
	pkt := Packet{Version: 2, CSRCCount: 2, Payload: []byte{9}}

	out := pkt.Serialize()

	require.Len(t, out, limits.MinRTPHeaderLength+8+1)
	assert.Equal(t, byte(0x82), out[0])
	assert.Equal(t, make([]byte, 8), out[12:20])
	assert.Equal(t, byte(9), out[20])
}

func TestPacket_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pkt  Packet
	}{
		{
			name: "PCMU frame",
			pkt: Packet{
				Version: 2, PayloadType: 0, SequenceNumber: 1, Timestamp: 160,
				SourceID: 0x12345678, Payload: []byte{0xFF, 0x7F, 0x00},
			},
		},
		{
			name: "Marker and padding flags",
			pkt: Packet{
				Version: 2, Padding: true, Marker: true, PayloadType: 96, SequenceNumber: 65535,
				Timestamp: 0xFFFFFFFF, SourceID: 0xCAFEBABE, Payload: []byte{1},
			},
		},
		{
			name: "Empty payload",
			pkt: Packet{
				Version: 2, SequenceNumber: 42, Timestamp: 7, SourceID: 1, Payload: []byte{},
			},
		},
		{
			name: "Outer octets only",
			pkt: Packet{
				Version: 2, SourceID: 0xA55AA55A & 0xFF0000FF, Payload: []byte{3, 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pkt.HeaderLength = limits.MinRTPHeaderLength

			parsed, err := Parse(tt.pkt.Serialize())
			require.NoError(t, err)

			expected := tt.pkt
			expected.SourceID = bits.ReverseBytes32(tt.pkt.SourceID)
			assert.Equal(t, expected, parsed)
		})
	}
}

func TestPacket_SourceIDAsymmetry(t *testing.T) {
	pkt := Packet{Version: 2, SourceID: 0x11223344, Payload: []byte{0}}

	parsed, err := Parse(pkt.Serialize())
	require.NoError(t, err)
	assert.Equal(t, uint32(0x44332211), parsed.SourceID)

	// Reversing twice restores the original identifier.
	again, err := Parse(parsed.Serialize())
	require.NoError(t, err)
	assert.Equal(t, uint32(0x11223344), again.SourceID)
}

func TestSerialize_MatchesPion(t *testing.T) {
	pkt := Packet{
		Version:        2,
		Marker:         true,
		PayloadType:    0,
		SequenceNumber: 4242,
		Timestamp:      123456789,
		SourceID:       0xDEADBEEF,
		Payload:        []byte{0x10, 0x20, 0x30, 0x40},
	}

	expected, err := pkt.ToPion().Marshal()
	require.NoError(t, err)

	assert.Equal(t, expected, pkt.Serialize())
}

func TestParse_AgainstPion(t *testing.T) {
	reference := &pionrtp.Packet{
		Header: pionrtp.Header{
			Version:        2,
			Marker:         true,
			PayloadType:    0,
			SequenceNumber: 777,
			Timestamp:      160 * 50,
			SSRC:           0x01020304,
		},
		Payload: []byte{0xAA, 0xBB},
	}
	wire, err := reference.Marshal()
	require.NoError(t, err)

	pkt, err := Parse(wire)
	require.NoError(t, err)

	assert.Equal(t, reference.Version, pkt.Version)
	assert.Equal(t, reference.Marker, pkt.Marker)
	assert.Equal(t, reference.PayloadType, pkt.PayloadType)
	assert.Equal(t, reference.SequenceNumber, pkt.SequenceNumber)
	assert.Equal(t, reference.Timestamp, pkt.Timestamp)
	assert.Equal(t, bits.ReverseBytes32(reference.SSRC), pkt.SourceID)
	assert.Equal(t, reference.Payload, pkt.Payload)
}

func TestFromPion(t *testing.T) {
	reference := &pionrtp.Packet{
		Header: pionrtp.Header{
			Version:        2,
			PayloadType:    0,
			SequenceNumber: 9,
			Timestamp:      1440,
			SSRC:           99,
			CSRC:           []uint32{1, 2},
		},
		Payload: []byte{1, 2, 3},
	}

	pkt := FromPion(reference)

	assert.Equal(t, uint16(9), pkt.SequenceNumber)
	assert.Equal(t, uint32(1440), pkt.Timestamp)
	assert.Equal(t, uint32(99), pkt.SourceID)
	assert.Equal(t, uint8(0), pkt.CSRCCount)
	assert.Equal(t, limits.MinRTPHeaderLength, pkt.HeaderLength)
	assert.Equal(t, []byte{1, 2, 3}, pkt.Payload)

	reference.Payload[0] = 0xFF
	assert.Equal(t, byte(1), pkt.Payload[0], "payload is copied")
}
