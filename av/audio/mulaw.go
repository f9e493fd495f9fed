package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	muLawBias = 0x84
	muLawClip = 8159
)

// Upper bounds of the eight mu-law segments in the 14-bit magnitude domain.
var muLawSegmentEnds = [8]int{0x3F, 0x7F, 0xFF, 0x1FF, 0x3FF, 0x7FF, 0xFFF, 0x1FFF}

// LinearToMuLaw compresses one 16-bit linear sample to G.711 mu-law.
func LinearToMuLaw(sample int16) byte {
	v := int(sample) >> 2

	mask := 0xFF
	if v < 0 {
		v = -v
		mask = 0x7F
	}
	if v > muLawClip {
		v = muLawClip
	}
	v += muLawBias >> 2

	seg := 0
	for seg < len(muLawSegmentEnds) && v > muLawSegmentEnds[seg] {
		seg++
	}
	if seg >= len(muLawSegmentEnds) {
		return byte(0x7F ^ mask)
	}

	return byte(((seg << 4) | ((v >> (seg + 1)) & 0x0F)) ^ mask)
}

// MuLawToLinear expands one mu-law byte to a 16-bit linear sample.
func MuLawToLinear(u byte) int16 {
	u = ^u
	t := (int(u&0x0F) << 3) + muLawBias
	t <<= (u & 0x70) >> 4

	if u&0x80 != 0 {
		return int16(muLawBias - t)
	}
	return int16(t - muLawBias)
}

// MuLawToLinearBytes expands a mu-law byte stream to interleaved PCM.
//
// Every mu-law byte becomes one sample frame: the decoded sample is written
// once per channel. 16-bit output is signed little-endian, 8-bit output is
// unsigned with a 128 offset.
func MuLawToLinearBytes(mu []byte, bitsPerSample, channels int) ([]byte, error) {
	if err := checkFormat(bitsPerSample, channels); err != nil {
		return nil, err
	}

	blockAlign := bitsPerSample / 8 * channels
	out := make([]byte, len(mu)*blockAlign)

	for i, u := range mu {
		sample := MuLawToLinear(u)
		frame := out[i*blockAlign : (i+1)*blockAlign]

		for ch := 0; ch < channels; ch++ {
			if bitsPerSample == 16 {
				binary.LittleEndian.PutUint16(frame[ch*2:], uint16(sample))
			} else {
				frame[ch] = linear16To8(sample)
			}
		}
	}

	return out, nil
}

// MuLawToLinear32 expands a mu-law byte stream to one int32 sample per channel.
func MuLawToLinear32(mu []byte, channels int) ([]int32, error) {
	if err := checkFormat(16, channels); err != nil {
		return nil, err
	}

	out := make([]int32, len(mu)*channels)
	for i, u := range mu {
		sample := int32(MuLawToLinear(u))
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = sample
		}
	}
	return out, nil
}

// LinearToMuLawBytes compresses interleaved PCM to mu-law.
//
// One mu-law byte is produced per complete sample frame, taken from the first
// channel. A trailing partial frame is ignored.
func LinearToMuLawBytes(pcm []byte, bitsPerSample, channels int) ([]byte, error) {
	if err := checkFormat(bitsPerSample, channels); err != nil {
		return nil, err
	}

	blockAlign := bitsPerSample / 8 * channels
	out := make([]byte, len(pcm)/blockAlign)

	for i := range out {
		frame := pcm[i*blockAlign:]
		if bitsPerSample == 16 {
			out[i] = LinearToMuLaw(int16(binary.LittleEndian.Uint16(frame)))
		} else {
			out[i] = LinearToMuLaw(linear8To16(frame[0]))
		}
	}

	return out, nil
}

func linear16To8(sample int16) byte {
	return byte((int(sample) >> 8) + 128)
}

func linear8To16(b byte) int16 {
	return int16((int(b) - 128) << 8)
}

func checkFormat(bitsPerSample, channels int) error {
	if bitsPerSample != 8 && bitsPerSample != 16 {
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, bitsPerSample)
	}
	if channels != 1 && channels != 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	return nil
}
