package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MixResult holds the output of Mix.
type MixResult struct {
	// Mixed is the combined PCM, as long as the longest input.
	Mixed []byte

	// Linear holds the mixed value of every sample position.
	Linear []int32

	// Abs holds the magnitude of every Linear value. It is nil for 8-bit audio.
	Abs []int32

	// Peak is the largest running sum seen while mixing, never below zero.
	Peak int32
}

// Mix sums PCM streams sample by sample.
//
// Inputs may differ in length; a stream contributes silence past its end.
// For 16-bit audio samples are signed little-endian and every running sum is
// clamped to the int16 range after each addition. For 8-bit audio samples are
// unsigned bytes clamped to 0..255. The inputs are not modified.
func Mix(streams [][]byte, bitsPerSample int) (MixResult, error) {
	if bitsPerSample != 8 && bitsPerSample != 16 {
		return MixResult{}, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, bitsPerSample)
	}

	longest := 0
	for _, s := range streams {
		if len(s) > longest {
			longest = len(s)
		}
	}
	if longest == 0 {
		return MixResult{Mixed: []byte{}}, nil
	}

	if bitsPerSample == 8 {
		return mix8(streams, longest), nil
	}
	return mix16(streams, longest), nil
}

func mix16(streams [][]byte, longest int) MixResult {
	count := longest / 2
	res := MixResult{
		Mixed:  make([]byte, longest),
		Linear: make([]int32, count),
		Abs:    make([]int32, count),
	}

	for _, s := range streams {
		n := len(s) / 2
		for i := 0; i < n; i++ {
			sum := clamp(res.Linear[i]+int32(int16(binary.LittleEndian.Uint16(s[i*2:]))), math.MinInt16, math.MaxInt16)
			res.Linear[i] = sum
			if sum < 0 {
				res.Abs[i] = -sum
			} else {
				res.Abs[i] = sum
			}
			if sum > res.Peak {
				res.Peak = sum
			}
		}
	}

	for i, v := range res.Linear {
		binary.LittleEndian.PutUint16(res.Mixed[i*2:], uint16(int16(v)))
	}
	return res
}

func mix8(streams [][]byte, longest int) MixResult {
	res := MixResult{
		Mixed:  make([]byte, longest),
		Linear: make([]int32, longest),
	}

	for _, s := range streams {
		for i, b := range s {
			sum := clamp(res.Linear[i]+int32(b), 0, math.MaxUint8)
			res.Linear[i] = sum
			if sum > res.Peak {
				res.Peak = sum
			}
		}
	}

	for i, v := range res.Linear {
		res.Mixed[i] = byte(v)
	}
	return res
}

// Subtract16 subtracts toSubtract from source, sample by sample, clamping to
// the int16 range. Both are 16-bit signed little-endian PCM. The result has the
// length of source; positions past the end of toSubtract subtract zero.
func Subtract16(source, toSubtract []byte) []byte {
	out := make([]byte, len(source))

	for a := 0; a+1 < len(source); a += 2 {
		v := int32(int16(binary.LittleEndian.Uint16(source[a:])))
		if a+1 < len(toSubtract) {
			v -= int32(int16(binary.LittleEndian.Uint16(toSubtract[a:])))
		}
		binary.LittleEndian.PutUint16(out[a:], uint16(int16(clamp(v, math.MinInt16, math.MaxInt16))))
	}
	return out
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
