package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/pool/pbytes"
	"github.com/google/uuid"
	"github.com/opd-ai/intercom/limits"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultReadSize is the chunk size requested from the connection per read.
	DefaultReadSize = 1024

	// DefaultWriteTimeout bounds a single frame write on deadline-capable connections.
	DefaultWriteTimeout = 5 * time.Second
)

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithWriteTimeout sets the per-frame write deadline. Zero disables deadlines.
func WithWriteTimeout(d time.Duration) StreamOption {
	return func(s *Stream) {
		s.writeTimeout = d
	}
}

// WithReadSize sets the size of each read from the underlying connection.
func WithReadSize(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.readSize = n
		}
	}
}

// WithFaultHandler receives framing faults from the inbound direction.
func WithFaultHandler(h FaultHandler) StreamOption {
	return func(s *Stream) {
		s.onFault = h
	}
}

// Stream runs a length-prefixed message exchange over a duplex byte stream.
//
// Inbound bytes are read on a dedicated goroutine and fed to a Framer; complete
// messages reach the handler on that goroutine. Outbound messages are framed and
// written under a write lock so concurrent senders never interleave frames.
type Stream struct {
	id           string
	conn         io.ReadWriteCloser
	framer       *Framer
	onFault      FaultHandler
	readSize     int
	writeTimeout time.Duration

	writeMu sync.Mutex

	// stateMu orders Start against Close so exactly one of them closes done.
	stateMu   sync.Mutex
	started   bool
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}

	errMu   sync.Mutex
	readErr error
}

// NewStream wraps conn. onMessage receives every complete inbound frame payload.
func NewStream(conn io.ReadWriteCloser, onMessage MessageHandler, opts ...StreamOption) *Stream {
	s := &Stream{
		id:           uuid.NewString(),
		conn:         conn,
		readSize:     DefaultReadSize,
		writeTimeout: DefaultWriteTimeout,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.framer = NewFramer(onMessage, s.handleFault)

	logrus.WithFields(logrus.Fields{
		"function":  "NewStream",
		"stream_id": s.id,
		"read_size": s.readSize,
	}).Info("Created framed stream")

	return s
}

// ID returns the identifier used for this stream in logs.
func (s *Stream) ID() string {
	return s.id
}

// Start launches the inbound read loop.
func (s *Stream) Start() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.closed.Load() {
		return ErrStreamClosed
	}
	if s.started {
		return ErrStreamAlreadyStarted
	}
	s.started = true
	go s.readLoop()
	return nil
}

// Done is closed once the read loop has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the read loop, if any.
func (s *Stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.readErr
}

// FramerStats exposes the inbound framer counters.
func (s *Stream) FramerStats() FramerStats {
	return s.framer.Stats()
}

// Write frames payload and writes it to the connection.
func (s *Stream) Write(payload []byte) error {
	if s.closed.Load() {
		return ErrStreamClosed
	}
	if err := limits.ValidateFramePayload(payload); err != nil {
		return fmt.Errorf("invalid frame payload: %w", err)
	}

	framed := Frame(payload)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTimeout > 0 {
		if d, ok := s.conn.(writeDeadliner); ok {
			if err := d.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				return fmt.Errorf("failed to set write deadline: %w", err)
			}
		}
	}

	if _, err := s.conn.Write(framed); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "Stream.Write",
			"stream_id": s.id,
			"size":      len(framed),
			"error":     err.Error(),
		}).Error("Failed to write frame")
		return fmt.Errorf("failed to write frame: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Stream.Write",
		"stream_id": s.id,
		"size":      len(framed),
	}).Debug("Frame written")

	return nil
}

// Close closes the connection and waits for the read loop to exit.
// It must not be called from the message handler.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.stateMu.Lock()
		s.closed.Store(true)
		started := s.started
		s.stateMu.Unlock()

		err = s.conn.Close()
		if started {
			<-s.done
		} else {
			close(s.done)
		}

		logrus.WithFields(logrus.Fields{
			"function":  "Stream.Close",
			"stream_id": s.id,
		}).Info("Stream closed")
	})
	return err
}

func (s *Stream) readLoop() {
	defer close(s.done)

	for {
		buf := pbytes.GetLen(s.readSize)
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.framer.Feed(buf[:n])
		}
		pbytes.Put(buf)

		if err != nil {
			s.finishRead(err)
			return
		}
	}
}

func (s *Stream) finishRead(err error) {
	if errors.Is(err, io.EOF) || s.closed.Load() {
		err = fmt.Errorf("%w: %v", ErrStreamClosed, err)
		logrus.WithFields(logrus.Fields{
			"function":  "Stream.readLoop",
			"stream_id": s.id,
		}).Info("Stream read loop finished")
	} else {
		logrus.WithFields(logrus.Fields{
			"function":  "Stream.readLoop",
			"stream_id": s.id,
			"error":     err.Error(),
		}).Error("Stream read failed")
	}

	s.errMu.Lock()
	s.readErr = err
	s.errMu.Unlock()
}

func (s *Stream) handleFault(err error) {
	logrus.WithFields(logrus.Fields{
		"function":  "Stream.handleFault",
		"stream_id": s.id,
		"error":     err.Error(),
	}).Debug("Inbound framing fault")

	if s.onFault != nil {
		s.onFault(err)
	}
}
