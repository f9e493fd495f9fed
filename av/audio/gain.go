package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// MaxGain is the largest accepted linear gain (+12 dB).
const MaxGain = 4.0

// Gain scales PCM volume with clipping protection.
//
// Gain values: 0.0 = silence, 1.0 = no change, >1.0 = amplification.
// A Gain is safe for concurrent use.
type Gain struct {
	mu   sync.RWMutex
	gain float64
}

// NewGain creates a gain stage.
//
// Parameters:
//   - gain: Linear gain multiplier (0.0 = silence, 1.0 = unity, 2.0 = +6dB)
//
// Returns:
//   - *Gain: New gain stage
//   - error: ErrInvalidGain if gain is outside 0..MaxGain
func NewGain(gain float64) (*Gain, error) {
	if err := validateGain(gain); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewGain",
			"gain":     gain,
			"error":    err.Error(),
		}).Error("Gain validation failed")
		return nil, err
	}
	return &Gain{gain: gain}, nil
}

// Set updates the gain.
func (g *Gain) Set(gain float64) error {
	if err := validateGain(gain); err != nil {
		return err
	}

	g.mu.Lock()
	old := g.gain
	g.gain = gain
	g.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Gain.Set",
		"old_gain": old,
		"new_gain": gain,
	}).Info("Gain updated")

	return nil
}

// Value returns the current gain.
func (g *Gain) Value() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gain
}

// Apply scales pcm in place and returns the number of clipped samples. Unity
// gain leaves pcm untouched.
func (g *Gain) Apply(pcm []byte, bitsPerSample int) (int, error) {
	gain := g.Value()

	switch bitsPerSample {
	case 16:
		if gain == 1.0 {
			return 0, nil
		}
		return apply16(pcm, gain), nil
	case 8:
		if gain == 1.0 {
			return 0, nil
		}
		return apply8(pcm, gain), nil
	default:
		return 0, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, bitsPerSample)
	}
}

func apply16(pcm []byte, gain float64) int {
	clipped := 0
	for a := 0; a+1 < len(pcm); a += 2 {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[a:]))) * gain
		if v > math.MaxInt16 {
			v = math.MaxInt16
			clipped++
		} else if v < math.MinInt16 {
			v = math.MinInt16
			clipped++
		}
		binary.LittleEndian.PutUint16(pcm[a:], uint16(int16(v)))
	}

	if clipped > 0 {
		logrus.WithFields(logrus.Fields{
			"function":      "Gain.Apply",
			"clipped_count": clipped,
			"total_samples": len(pcm) / 2,
			"gain":          gain,
		}).Debug("Audio clipping during gain")
	}
	return clipped
}

func apply8(pcm []byte, gain float64) int {
	clipped := 0
	for i, b := range pcm {
		v := float64(int(b)-128)*gain + 128
		if v > math.MaxUint8 {
			v = math.MaxUint8
			clipped++
		} else if v < 0 {
			v = 0
			clipped++
		}
		pcm[i] = byte(v)
	}
	return clipped
}

func validateGain(gain float64) error {
	if gain < 0 || gain > MaxGain || math.IsNaN(gain) {
		return fmt.Errorf("%w: %f (want 0..%.1f)", ErrInvalidGain, gain, MaxGain)
	}
	return nil
}
