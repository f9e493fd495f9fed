package audio

import (
	"fmt"
	"time"

	"github.com/opd-ai/intercom/limits"
)

// Format describes interleaved linear PCM.
type Format struct {
	SampleRate    uint32 `yaml:"sample_rate"`
	BitsPerSample int    `yaml:"bits_per_sample"`
	Channels      int    `yaml:"channels"`
}

// DefaultFormat is narrowband telephony audio: 8 kHz, 16-bit, mono.
var DefaultFormat = Format{SampleRate: 8000, BitsPerSample: 16, Channels: 1}

// Validate checks that the mu-law codecs and mixer support f.
func (f Format) Validate() error {
	if f.SampleRate == 0 {
		return fmt.Errorf("%w: sample rate 0", ErrUnsupportedFormat)
	}
	return checkFormat(f.BitsPerSample, f.Channels)
}

// BlockAlign is the size of one sample frame in bytes.
func (f Format) BlockAlign() int {
	return f.BitsPerSample * f.Channels / 8
}

// BytesPerSecond is the PCM data rate.
func (f Format) BytesPerSecond() int {
	return f.BlockAlign() * int(f.SampleRate)
}

// BytesPerInterval is the PCM size of one interval of audio.
func (f Format) BytesPerInterval(interval time.Duration) int {
	return BytesPerInterval(f.SampleRate, f.BitsPerSample, f.Channels, interval)
}

// SamplesPerInterval is the number of sample frames in one interval, which is
// also the RTP timestamp increment per packet and the mu-law payload size.
func (f Format) SamplesPerInterval(interval time.Duration) int {
	return int(int64(f.SampleRate) * int64(interval) / int64(time.Second))
}

// BytesPerInterval returns the PCM size of interval at the given format. A zero
// interval selects limits.DefaultTickInterval.
func BytesPerInterval(sampleRate uint32, bitsPerSample, channels int, interval time.Duration) int {
	if interval == 0 {
		interval = limits.DefaultTickInterval
	}
	blockAlign := bitsPerSample * channels / 8
	bytesPerSecond := int64(blockAlign) * int64(sampleRate)
	return int(bytesPerSecond * int64(interval) / int64(time.Second))
}
