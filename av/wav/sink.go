package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/opd-ai/intercom/av/audio"
	"github.com/sirupsen/logrus"
)

const pcmAudioFormat = 1

// Sink writes received PCM to a WAV file. It implements interfaces.AudioSink.
type Sink struct {
	mu      sync.Mutex
	format  audio.Format
	encoder *gowav.Encoder
	closer  io.Closer
	frames  int
	err     error
	closed  bool
}

// Create creates path and returns a sink writing format to it.
func Create(path string, format audio.Format) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	sink, err := NewSink(f, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	sink.closer = f

	logrus.WithFields(logrus.Fields{
		"function":    "wav.Create",
		"path":        path,
		"sample_rate": format.SampleRate,
		"bits":        format.BitsPerSample,
		"channels":    format.Channels,
	}).Info("Recording to WAV file")

	return sink, nil
}

// NewSink returns a sink writing to w. Close finalizes the header but does not
// close w.
func NewSink(w io.WriteSeeker, format audio.Format) (*Sink, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Sink{
		format:  format,
		encoder: gowav.NewEncoder(w, int(format.SampleRate), format.BitsPerSample, format.Channels, pcmAudioFormat),
	}, nil
}

// OnDataAvailable appends pcm to the file. Write errors are kept and returned
// by Err and Close.
func (s *Sink) OnDataAvailable(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.err != nil {
		return
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: s.format.Channels, SampleRate: int(s.format.SampleRate)},
		Data:           pcmToInts(pcm, s.format.BitsPerSample),
		SourceBitDepth: s.format.BitsPerSample,
	}
	if err := s.encoder.Write(buf); err != nil {
		s.err = fmt.Errorf("failed to write wav data: %w", err)
		logrus.WithFields(logrus.Fields{
			"function": "Sink.OnDataAvailable",
			"error":    err.Error(),
		}).Error("WAV write failed")
		return
	}
	s.frames++
}

// Frames returns the number of PCM buffers written.
func (s *Sink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Err returns the first write error.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close finalizes the WAV header and closes the file opened by Create.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true

	err := s.encoder.Close()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return s.err
}

func pcmToInts(pcm []byte, bitsPerSample int) []int {
	if bitsPerSample == 8 {
		out := make([]int, len(pcm))
		for i, b := range pcm {
			out[i] = int(b)
		}
		return out
	}

	out := make([]int, len(pcm)/2)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	return out
}
