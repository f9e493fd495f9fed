package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/intercom/limits"
	"github.com/sirupsen/logrus"
)

// ToneSource generates a continuous sine wave, one interval per Capture call.
// It stands in for a microphone when testing a link.
type ToneSource struct {
	mu        sync.Mutex
	format    Format
	frequency float64
	amplitude float64
	frameSize int
	position  int
}

// NewToneSource creates a sine generator.
//
// Parameters:
//   - format: Output PCM format
//   - frequency: Tone frequency in Hz, below half the sample rate
//   - interval: Audio duration returned by each Capture; zero selects limits.DefaultTickInterval
func NewToneSource(format Format, frequency float64, interval time.Duration) (*ToneSource, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if frequency <= 0 || frequency >= float64(format.SampleRate)/2 {
		return nil, fmt.Errorf("%w: %.1f Hz at %d Hz", ErrInvalidFrequency, frequency, format.SampleRate)
	}
	if interval == 0 {
		interval = limits.DefaultTickInterval
	}

	src := &ToneSource{
		format:    format,
		frequency: frequency,
		// Below full scale to leave headroom for mixing.
		amplitude: 30000,
		frameSize: format.SamplesPerInterval(interval),
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewToneSource",
		"frequency":  frequency,
		"frame_size": src.frameSize,
	}).Info("Tone source created")

	return src, nil
}

// Capture returns the next interval of the tone as interleaved PCM.
func (s *ToneSource) Capture() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blockAlign := s.format.BlockAlign()
	out := make([]byte, s.frameSize*blockAlign)

	for i := 0; i < s.frameSize; i++ {
		t := float64(s.position+i) / float64(s.format.SampleRate)
		sample := int16(s.amplitude * math.Sin(2*math.Pi*s.frequency*t))

		frame := out[i*blockAlign:]
		for ch := 0; ch < s.format.Channels; ch++ {
			if s.format.BitsPerSample == 16 {
				binary.LittleEndian.PutUint16(frame[ch*2:], uint16(sample))
			} else {
				frame[ch] = linear16To8(sample)
			}
		}
	}
	s.position += s.frameSize

	return out, nil
}

// Format returns the output format.
func (s *ToneSource) Format() Format {
	return s.format
}
