package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func samples16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestMix16(t *testing.T) {
	tests := []struct {
		name    string
		streams [][]byte
		mixed   []int16
		abs     []int32
		peak    int32
	}{
		{
			name:    "Two streams",
			streams: [][]byte{pcm16(100, -100), pcm16(50, 50)},
			mixed:   []int16{150, -50},
			abs:     []int32{150, 50},
			peak:    150,
		},
		{
			name:    "Positive saturation",
			streams: [][]byte{pcm16(30000), pcm16(10000)},
			mixed:   []int16{math.MaxInt16},
			abs:     []int32{math.MaxInt16},
			peak:    math.MaxInt16,
		},
		{
			name:    "Negative saturation",
			streams: [][]byte{pcm16(-30000), pcm16(-10000)},
			mixed:   []int16{math.MinInt16},
			abs:     []int32{-math.MinInt16},
			peak:    0,
		},
		{
			name:    "Clamp applies after each addition",
			streams: [][]byte{pcm16(30000), pcm16(10000), pcm16(-10000)},
			mixed:   []int16{22767},
			abs:     []int32{22767},
			peak:    math.MaxInt16,
		},
		{
			name:    "Shorter stream contributes silence",
			streams: [][]byte{pcm16(1, 2, 3), pcm16(10)},
			mixed:   []int16{11, 2, 3},
			abs:     []int32{11, 2, 3},
			peak:    11,
		},
		{
			name:    "Single stream passes through",
			streams: [][]byte{pcm16(-7, 7)},
			mixed:   []int16{-7, 7},
			abs:     []int32{7, 7},
			peak:    7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Mix(tt.streams, 16)
			require.NoError(t, err)

			assert.Equal(t, tt.mixed, samples16(res.Mixed))
			assert.Equal(t, tt.abs, res.Abs)
			assert.Equal(t, tt.peak, res.Peak)
			assert.Len(t, res.Linear, len(tt.mixed))
		})
	}
}

func TestMix16_DoesNotModifyInputs(t *testing.T) {
	a := pcm16(1000, 2000)
	b := pcm16(3000)
	origA := append([]byte(nil), a...)
	origB := append([]byte(nil), b...)

	_, err := Mix([][]byte{a, b}, 16)
	require.NoError(t, err)

	assert.Equal(t, origA, a)
	assert.Equal(t, origB, b)
}

func TestMix16_OddLength(t *testing.T) {
	res, err := Mix([][]byte{{0x01, 0x00, 0x7F}}, 16)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x01, 0x00, 0x00}, res.Mixed)
	assert.Equal(t, []int32{1}, res.Linear)
}

func TestMix8(t *testing.T) {
	res, err := Mix([][]byte{{100, 200, 5}, {100, 100}}, 8)
	require.NoError(t, err)

	assert.Equal(t, []byte{200, 255, 5}, res.Mixed)
	assert.Equal(t, []int32{200, 255, 5}, res.Linear)
	assert.Nil(t, res.Abs)
	assert.Equal(t, int32(255), res.Peak)
}

func TestMix_Empty(t *testing.T) {
	for _, streams := range [][][]byte{nil, {}, {{}, nil}} {
		res, err := Mix(streams, 16)
		require.NoError(t, err)
		assert.Empty(t, res.Mixed)
		assert.Equal(t, int32(0), res.Peak)
	}
}

func TestMix_UnsupportedBits(t *testing.T) {
	_, err := Mix([][]byte{{1}}, 24)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestSubtract16(t *testing.T) {
	tests := []struct {
		name       string
		source     []byte
		toSubtract []byte
		expected   []int16
	}{
		{"Equal length", pcm16(150, -50), pcm16(50, 50), []int16{100, -100}},
		{"Removes identical signal", pcm16(1234, -4321), pcm16(1234, -4321), []int16{0, 0}},
		{"Clamps high", pcm16(30000), pcm16(-10000), []int16{math.MaxInt16}},
		{"Clamps low", pcm16(-30000), pcm16(10000), []int16{math.MinInt16}},
		{"Short reference zero-extended", pcm16(5, 6, 7), pcm16(1), []int16{4, 6, 7}},
		{"Nil reference", pcm16(5), nil, []int16{5}},
		{"Longer reference truncated", pcm16(5), pcm16(1, 2, 3), []int16{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Subtract16(tt.source, tt.toSubtract)
			assert.Len(t, out, len(tt.source))
			assert.Equal(t, tt.expected, samples16(out))
		})
	}
}

func TestSubtract16_UndoesMix(t *testing.T) {
	voice := pcm16(1200, -800, 400)
	echo := pcm16(-300, 250, 90)

	res, err := Mix([][]byte{voice, echo}, 16)
	require.NoError(t, err)

	assert.Equal(t, voice, Subtract16(res.Mixed, echo))
}
