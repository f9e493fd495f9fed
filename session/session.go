package session

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/opd-ai/intercom/av/audio"
	"github.com/opd-ai/intercom/av/rtp"
	"github.com/opd-ai/intercom/config"
	"github.com/opd-ai/intercom/interfaces"
	"github.com/opd-ai/intercom/transport"
	"github.com/sirupsen/logrus"
)

// source is the receive state of one remote RTP source.
type source struct {
	id      uint32
	buffer  *rtp.JitterBuffer
	ticker  rtp.TickSource
	pending [][]byte
}

// Session is one intercom link to a peer.
//
// Receive path: framed messages from the stream are parsed as RTP and queued
// in a jitter buffer per source identifier. Each buffer releases one packet
// per tick, which is decoded from mu-law into the pending frames of its
// source. A separate mix tick combines one pending frame from every source and
// hands the result to the sink.
//
// Send path: SendPCM encodes captured PCM to mu-law, wraps it in the next RTP
// packet and writes it as one frame.
type Session struct {
	id         string
	cfg        config.Config
	sink       interfaces.AudioSink
	stream     interfaces.DuplexStream
	packetizer *rtp.Packetizer
	gain       *audio.Gain

	newTickSource func() rtp.TickSource
	mixTicker     rtp.TickSource
	streamOpts    []transport.StreamOption

	mu           sync.Mutex
	sources      map[uint32]*source
	lastCaptured []byte
	started      bool
	closed       bool
	closing      chan struct{}
	closeOnce    sync.Once

	muted atomic.Bool

	packetsSent     atomic.Uint64
	packetsReceived atomic.Uint64
	parseErrors     atomic.Uint64
	framingFaults   atomic.Uint64
	framesMixed     atomic.Uint64
	framesMuted     atomic.Uint64
	pendingDropped  atomic.Uint64
	lastPeak        atomic.Int32
}

// New creates a session over conn. Received audio is delivered to sink in
// cfg.Audio format, one tick interval per call.
//
// Parameters:
//   - cfg: Validated endpoint configuration; it is copied
//   - conn: Connected duplex byte stream, owned by the session from now on
//   - sink: Playback collaborator
//   - opts: Optional tick sources, packetizer and stream options
//
// Returns:
//   - *Session: New session, not yet started
//   - error: Validation or setup error
func New(cfg *config.Config, conn io.ReadWriteCloser, sink interfaces.AudioSink, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrNilConn
	}
	if sink == nil {
		return nil, ErrNilSink
	}

	gain, err := audio.NewGain(cfg.PlaybackGain)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:            uuid.NewString(),
		cfg:           *cfg,
		sink:          sink,
		gain:          gain,
		newTickSource: func() rtp.TickSource { return rtp.NewTickerSource() },
		mixTicker:     rtp.NewTickerSource(),
		sources:       make(map[uint32]*source),
		closing:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.packetizer == nil {
		s.packetizer, err = rtp.NewPacketizer(cfg.Audio.SampleRate, cfg.PayloadType)
		if err != nil {
			return nil, fmt.Errorf("failed to create packetizer: %w", err)
		}
	}

	streamOpts := append([]transport.StreamOption{
		transport.WithWriteTimeout(cfg.WriteTimeout()),
		transport.WithFaultHandler(s.handleFault),
	}, s.streamOpts...)
	s.stream = transport.NewStream(conn, s.handleMessage, streamOpts...)

	logrus.WithFields(logrus.Fields{
		"function":       "session.New",
		"session_id":     s.id,
		"ssrc":           s.packetizer.SSRC(),
		"jitter_packets": cfg.JitterPackets,
		"tick_interval":  cfg.TickInterval().String(),
		"echo_cancel":    cfg.EchoCancel,
	}).Info("Session created")

	return s, nil
}

// ID returns the identifier used for this session in logs.
func (s *Session) ID() string {
	return s.id
}

// Start begins receiving and mixing. Cancelling ctx closes the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	if err := s.mixTicker.Start(s.cfg.TickInterval(), s.mixTick); err != nil {
		s.resetStarted()
		return fmt.Errorf("failed to start mix ticker: %w", err)
	}
	if err := s.stream.Start(); err != nil {
		s.mixTicker.Stop()
		s.resetStarted()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	go s.watch(ctx)

	logrus.WithFields(logrus.Fields{
		"function":   "Session.Start",
		"session_id": s.id,
	}).Info("Session started")

	return nil
}

// resetStarted lets Start be retried after a failed attempt.
func (s *Session) resetStarted() {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}

// Done is closed when the peer stops sending, because it hung up or the
// session was closed.
func (s *Session) Done() <-chan struct{} {
	return s.stream.Done()
}

// Err returns the reason the inbound stream ended, if it has.
func (s *Session) Err() error {
	return s.stream.Err()
}

func (s *Session) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		logrus.WithFields(logrus.Fields{
			"function":   "Session.watch",
			"session_id": s.id,
		}).Info("Context cancelled, closing session")
		s.Close()
	case <-s.closing:
	}
}

// Close stops the stream, every jitter buffer and the mix ticker. When it
// returns no sink or stream callback is running or will run.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.closing)
		s.mu.Unlock()

		// Stop the producer first so no new sources appear.
		err = s.stream.Close()

		s.mu.Lock()
		sources := make([]*source, 0, len(s.sources))
		for _, src := range s.sources {
			sources = append(sources, src)
		}
		s.mu.Unlock()

		for _, src := range sources {
			src.buffer.Stop()
		}
		s.mixTicker.Stop()

		logrus.WithFields(logrus.Fields{
			"function":   "Session.Close",
			"session_id": s.id,
			"sources":    len(sources),
		}).Info("Session closed")
	})
	return err
}

// SendPCM sends one frame of captured PCM in cfg.Audio format.
func (s *Session) SendPCM(pcm []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.cfg.EchoCancel {
		s.lastCaptured = append(s.lastCaptured[:0], pcm...)
	}
	s.mu.Unlock()

	if s.muted.Load() {
		s.framesMuted.Add(1)
		return nil
	}

	payload, err := audio.LinearToMuLawBytes(pcm, s.cfg.Audio.BitsPerSample, s.cfg.Audio.Channels)
	if err != nil {
		return fmt.Errorf("failed to encode audio: %w", err)
	}

	pkt, err := s.packetizer.Packetize(payload, uint32(len(payload)))
	if err != nil {
		return fmt.Errorf("failed to packetize audio: %w", err)
	}

	if err := s.stream.Write(pkt.Serialize()); err != nil {
		return fmt.Errorf("failed to send packet: %w", err)
	}
	s.packetsSent.Add(1)

	return nil
}

// SetMuted stops or resumes sending. Captured frames are dropped while muted.
// The first packet after unmuting carries the RTP marker bit.
func (s *Session) SetMuted(muted bool) {
	if s.muted.Swap(muted) == muted {
		return
	}
	if !muted {
		s.packetizer.MarkTalkspurt()
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Session.SetMuted",
		"session_id": s.id,
		"muted":      muted,
	}).Info("Mute state changed")
}

// Muted reports whether sending is muted.
func (s *Session) Muted() bool {
	return s.muted.Load()
}

// SetPlaybackGain changes the gain applied to received audio.
func (s *Session) SetPlaybackGain(gain float64) error {
	return s.gain.Set(gain)
}

// handleMessage runs on the stream's read goroutine.
func (s *Session) handleMessage(msg []byte) {
	pkt, err := rtp.Parse(msg)
	if err != nil {
		s.parseErrors.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":   "Session.handleMessage",
			"session_id": s.id,
			"size":       len(msg),
			"error":      err.Error(),
		}).Warn("Dropping malformed RTP packet")
		return
	}
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"function":   "Session.handleMessage",
			"session_id": s.id,
			"packet":     pkt.ToPion().String(),
		}).Trace("Received packet")
	}
	s.packetsReceived.Add(1)

	src, err := s.sourceFor(pkt.SourceID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "Session.handleMessage",
			"session_id": s.id,
			"source_id":  pkt.SourceID,
			"error":      err.Error(),
		}).Error("Failed to set up receive source")
		return
	}
	if src != nil {
		src.buffer.AddData(pkt)
	}
}

// sourceFor returns the receive state for id, creating and starting its jitter
// buffer on first use. It returns nil once the session is closed.
func (s *Session) sourceFor(id uint32) (*source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil
	}
	if src, ok := s.sources[id]; ok {
		return src, nil
	}

	src := &source{id: id, ticker: s.newTickSource()}
	buffer, err := rtp.NewJitterBuffer(s.cfg.JitterPackets, s.cfg.TickInterval(), src.ticker, func(p rtp.Packet) {
		s.onPacket(src, p)
	})
	if err != nil {
		return nil, err
	}
	if err := buffer.Start(); err != nil {
		return nil, err
	}
	src.buffer = buffer
	s.sources[id] = src

	logrus.WithFields(logrus.Fields{
		"function":   "Session.sourceFor",
		"session_id": s.id,
		"source_id":  id,
		"sources":    len(s.sources),
	}).Info("New remote source")

	return src, nil
}

// onPacket runs on a jitter buffer's tick goroutine. Pending audio is always
// 16-bit; 8-bit output is narrowed after mixing so silence stays at zero.
func (s *Session) onPacket(src *source, pkt rtp.Packet) {
	pcm, err := audio.MuLawToLinearBytes(pkt.Payload, 16, s.cfg.Audio.Channels)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "Session.onPacket",
			"session_id": s.id,
			"error":      err.Error(),
		}).Error("Failed to decode audio")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep at most one jitter buffer's worth of decoded audio per source.
	if len(src.pending) >= s.cfg.JitterPackets {
		src.pending = src.pending[1:]
		s.pendingDropped.Add(1)
	}
	src.pending = append(src.pending, pcm)
}

// mixTick runs on the mix ticker's goroutine.
func (s *Session) mixTick() {
	s.mu.Lock()
	ids := make([]uint32, 0, len(s.sources))
	for id, src := range s.sources {
		if len(src.pending) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	frames := make([][]byte, 0, len(ids))
	for _, id := range ids {
		src := s.sources[id]
		frames = append(frames, src.pending[0])
		src.pending[0] = nil
		src.pending = src.pending[1:]
	}

	var reference []byte
	if s.cfg.EchoCancel && len(s.lastCaptured) > 0 {
		reference = slices.Clone(s.lastCaptured)
	}
	s.mu.Unlock()

	if len(frames) == 0 {
		return
	}

	res, err := audio.Mix(frames, 16)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "Session.mixTick",
			"session_id": s.id,
			"error":      err.Error(),
		}).Error("Failed to mix audio")
		return
	}

	out := res.Mixed
	if reference != nil {
		if s.cfg.Audio.BitsPerSample == 8 {
			reference = audio.PCM8To16(reference)
		}
		out = audio.Subtract16(out, reference)
	}
	if _, err := s.gain.Apply(out, 16); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "Session.mixTick",
			"session_id": s.id,
			"error":      err.Error(),
		}).Error("Failed to apply playback gain")
	}

	if s.cfg.Audio.BitsPerSample == 8 {
		out = audio.PCM16To8(out)
	}

	s.lastPeak.Store(res.Peak)
	s.framesMixed.Add(1)
	s.sink.OnDataAvailable(out)
}

func (s *Session) handleFault(err error) {
	s.framingFaults.Add(1)
	logrus.WithFields(logrus.Fields{
		"function":   "Session.handleFault",
		"session_id": s.id,
		"error":      err.Error(),
	}).Warn("Inbound stream resynchronized")
}
