package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/opd-ai/intercom/av/audio"
	"github.com/sirupsen/logrus"
)

// Source reads PCM from a WAV file one interval at a time. It implements
// interfaces.AudioSource.
type Source struct {
	mu      sync.Mutex
	decoder *gowav.Decoder
	closer  io.Closer
	format  audio.Format
	buf     *goaudio.IntBuffer
	eof     bool
}

// Open opens a WAV file for capture.
func Open(path string, interval time.Duration) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	src, err := NewSource(f, interval)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f

	logrus.WithFields(logrus.Fields{
		"function":    "wav.Open",
		"path":        path,
		"sample_rate": src.format.SampleRate,
		"bits":        src.format.BitsPerSample,
		"channels":    src.format.Channels,
	}).Info("Opened WAV source")

	return src, nil
}

// NewSource reads WAV data from r. A zero interval selects 20 ms frames.
func NewSource(r io.ReadSeeker, interval time.Duration) (*Source, error) {
	decoder := gowav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}
	if decoder.WavAudioFormat != pcmAudioFormat {
		return nil, fmt.Errorf("%w: audio format %d is not PCM", ErrInvalidFile, decoder.WavAudioFormat)
	}

	format := audio.Format{
		SampleRate:    decoder.SampleRate,
		BitsPerSample: int(decoder.BitDepth),
		Channels:      int(decoder.NumChans),
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	if interval == 0 {
		interval = 20 * time.Millisecond
	}
	frameSize := format.SamplesPerInterval(interval) * format.Channels

	return &Source{
		decoder: decoder,
		format:  format,
		buf: &goaudio.IntBuffer{
			Format:         decoder.Format(),
			Data:           make([]int, frameSize),
			SourceBitDepth: format.BitsPerSample,
		},
	}, nil
}

// Format returns the file's PCM format.
func (s *Source) Format() audio.Format {
	return s.format
}

// Capture returns the next interval of PCM. The last frame may be short; after
// it Capture returns io.EOF.
func (s *Source) Capture() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eof {
		return nil, io.EOF
	}

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read wav data: %w", err)
	}
	if n == 0 {
		s.eof = true
		return nil, io.EOF
	}

	return intsToPCM(s.buf.Data[:n], s.format.BitsPerSample), nil
}

// Close closes the file opened by Open.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func intsToPCM(samples []int, bitsPerSample int) []byte {
	if bitsPerSample == 8 {
		out := make([]byte, len(samples))
		for i, v := range samples {
			out[i] = byte(v)
		}
		return out
	}

	out := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}
