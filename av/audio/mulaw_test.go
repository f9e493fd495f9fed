package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearToMuLaw_KnownValues(t *testing.T) {
	tests := []struct {
		name   string
		sample int16
		code   byte
	}{
		{"Zero", 0, 0xFF},
		{"Positive full scale", math.MaxInt16, 0x80},
		{"Negative full scale", math.MinInt16, 0x00},
		{"Small negative", -4, 0x7E},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, LinearToMuLaw(tt.sample))
		})
	}
}

func TestMuLawToLinear_KnownValues(t *testing.T) {
	assert.Equal(t, int16(0), MuLawToLinear(0xFF))
	assert.Equal(t, int16(0), MuLawToLinear(0x7F))
	assert.Equal(t, int16(32124), MuLawToLinear(0x80))
	assert.Equal(t, int16(-32124), MuLawToLinear(0x00))
}

func TestMuLaw_Symmetry(t *testing.T) {
	for code := 0; code < 128; code++ {
		positive := MuLawToLinear(byte(code | 0x80))
		negative := MuLawToLinear(byte(code))
		assert.Equal(t, positive, -negative, "code %#x", code)
	}
}

func TestMuLaw_Monotonic(t *testing.T) {
	prev := MuLawToLinear(LinearToMuLaw(math.MinInt16))
	for x := math.MinInt16 + 1; x <= math.MaxInt16; x++ {
		cur := MuLawToLinear(LinearToMuLaw(int16(x)))
		if cur < prev {
			t.Fatalf("decode(encode(%d)) = %d is below decode(encode(%d)) = %d", x, cur, x-1, prev)
		}
		prev = cur
	}
}

func TestMuLaw_RoundTripWithinSegmentStep(t *testing.T) {
	for x := math.MinInt16; x <= math.MaxInt16; x++ {
		code := LinearToMuLaw(int16(x))
		segment := (^code & 0x70) >> 4
		step := 8 << segment

		diff := int(MuLawToLinear(code)) - x
		if diff < 0 {
			diff = -diff
		}
		if diff > step {
			t.Fatalf("sample %d: round trip error %d exceeds segment %d step %d", x, diff, segment, step)
		}
	}
}

func TestMuLawToLinearBytes(t *testing.T) {
	mu := []byte{LinearToMuLaw(1000), LinearToMuLaw(-1000)}
	first := MuLawToLinear(mu[0])
	second := MuLawToLinear(mu[1])

	t.Run("16-bit mono", func(t *testing.T) {
		out, err := MuLawToLinearBytes(mu, 16, 1)
		require.NoError(t, err)
		require.Len(t, out, 4)
		assert.Equal(t, first, int16(binary.LittleEndian.Uint16(out[0:])))
		assert.Equal(t, second, int16(binary.LittleEndian.Uint16(out[2:])))
	})

	t.Run("16-bit stereo replicates", func(t *testing.T) {
		out, err := MuLawToLinearBytes(mu, 16, 2)
		require.NoError(t, err)
		require.Len(t, out, 8)
		assert.Equal(t, out[0:2], out[2:4])
		assert.Equal(t, out[4:6], out[6:8])
		assert.Equal(t, second, int16(binary.LittleEndian.Uint16(out[4:])))
	})

	t.Run("8-bit mono", func(t *testing.T) {
		out, err := MuLawToLinearBytes([]byte{0xFF, 0x80, 0x00}, 8, 1)
		require.NoError(t, err)
		assert.Equal(t, []byte{128, 128 + 125, 128 - 126}, out)
	})

	t.Run("8-bit stereo", func(t *testing.T) {
		out, err := MuLawToLinearBytes([]byte{0xFF}, 8, 2)
		require.NoError(t, err)
		assert.Equal(t, []byte{128, 128}, out)
	})

	t.Run("Empty input", func(t *testing.T) {
		out, err := MuLawToLinearBytes(nil, 16, 1)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestLinearToMuLawBytes(t *testing.T) {
	t.Run("16-bit mono", func(t *testing.T) {
		pcm := make([]byte, 6)
		binary.LittleEndian.PutUint16(pcm[0:], uint16(0))
		binary.LittleEndian.PutUint16(pcm[2:], uint16(int16(12000)))
		neg12000 := int16(-12000)
		binary.LittleEndian.PutUint16(pcm[4:], uint16(neg12000))

		out, err := LinearToMuLawBytes(pcm, 16, 1)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xFF, LinearToMuLaw(12000), LinearToMuLaw(-12000)}, out)
	})

	t.Run("16-bit stereo takes first channel", func(t *testing.T) {
		pcm := make([]byte, 8)
		binary.LittleEndian.PutUint16(pcm[0:], uint16(int16(500)))
		neg30000, neg500 := int16(-30000), int16(-500)
		binary.LittleEndian.PutUint16(pcm[2:], uint16(neg30000))
		binary.LittleEndian.PutUint16(pcm[4:], uint16(neg500))
		binary.LittleEndian.PutUint16(pcm[6:], uint16(int16(30000)))

		out, err := LinearToMuLawBytes(pcm, 16, 2)
		require.NoError(t, err)
		assert.Equal(t, []byte{LinearToMuLaw(500), LinearToMuLaw(-500)}, out)
	})

	t.Run("8-bit unsigned", func(t *testing.T) {
		out, err := LinearToMuLawBytes([]byte{128, 255, 0}, 8, 1)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xFF, LinearToMuLaw(127 << 8), LinearToMuLaw(math.MinInt16)}, out)
	})

	t.Run("Partial frame ignored", func(t *testing.T) {
		out, err := LinearToMuLawBytes([]byte{1, 2, 3}, 16, 1)
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})
}

func TestMuLaw_ByteStreamRoundTrip(t *testing.T) {
	mu := make([]byte, 256)
	for i := range mu {
		mu[i] = byte(i)
	}

	pcm, err := MuLawToLinearBytes(mu, 16, 1)
	require.NoError(t, err)

	back, err := LinearToMuLawBytes(pcm, 16, 1)
	require.NoError(t, err)

	for i := range mu {
		// 0x7F and 0xFF both decode to zero, which encodes as 0xFF.
		if mu[i] == 0x7F {
			assert.Equal(t, byte(0xFF), back[i])
			continue
		}
		assert.Equal(t, mu[i], back[i], "code %#x", mu[i])
	}
}

func TestMuLawToLinear32(t *testing.T) {
	out, err := MuLawToLinear32([]byte{0x80, 0x00}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int32{32124, 32124, -32124, -32124}, out)

	_, err = MuLawToLinear32([]byte{0}, 3)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestMuLaw_UnsupportedFormat(t *testing.T) {
	_, err := MuLawToLinearBytes([]byte{0}, 24, 1)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = LinearToMuLawBytes([]byte{0, 0}, 16, 0)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
