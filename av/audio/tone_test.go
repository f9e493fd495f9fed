package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToneSource_Validation(t *testing.T) {
	_, err := NewToneSource(DefaultFormat, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidFrequency))

	_, err = NewToneSource(DefaultFormat, 4000, 0)
	assert.True(t, errors.Is(err, ErrInvalidFrequency), "Nyquist is rejected")

	_, err = NewToneSource(Format{SampleRate: 8000, BitsPerSample: 24, Channels: 1}, 440, 0)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestToneSource_Capture(t *testing.T) {
	src, err := NewToneSource(DefaultFormat, 1000, 20*time.Millisecond)
	require.NoError(t, err)

	first, err := src.Capture()
	require.NoError(t, err)
	second, err := src.Capture()
	require.NoError(t, err)

	require.Len(t, first, 320)
	require.Len(t, second, 320)

	s1 := samples16(first)
	s2 := samples16(second)

	assert.Equal(t, int16(0), s1[0], "phase starts at zero")
	// 1 kHz at 8 kHz sampling repeats every 8 samples, so the wave is continuous across frames.
	for i := 0; i < 8; i++ {
		assert.InDelta(t, s1[i], s2[i], 1, "sample %d", i)
	}

	peak := int16(0)
	for _, s := range s1 {
		if s > peak {
			peak = s
		}
	}
	assert.InDelta(t, 30000, int(peak), 10)
}

func TestToneSource_StereoEightBit(t *testing.T) {
	src, err := NewToneSource(Format{SampleRate: 8000, BitsPerSample: 8, Channels: 2}, 1000, 10*time.Millisecond)
	require.NoError(t, err)

	pcm, err := src.Capture()
	require.NoError(t, err)
	require.Len(t, pcm, 160)

	assert.Equal(t, byte(128), pcm[0])
	for i := 0; i < len(pcm); i += 2 {
		assert.Equal(t, pcm[i], pcm[i+1])
	}
}
