package rtp

import (
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/intercom/limits"
	"github.com/sirupsen/logrus"
)

// JitterBuffer paces received packets onto a fixed clock.
//
// Packets are queued in arrival order and released one per tick. After Start,
// and again whenever the queue runs dry after emitting media, the buffer is
// filling: nothing is released until the queue holds at least half its capacity.
// When the queue grows past capacity the buffer is overflowing and drops every
// incoming packet until a tick sees the queue back at or below half capacity.
//
// The buffer does not reorder by sequence number and does not drop duplicates;
// every accepted packet is emitted exactly once, in the order it was added.
type JitterBuffer struct {
	mu          sync.Mutex
	maxPackets  int
	interval    time.Duration
	ticker      TickSource
	onData      func(Packet)
	queue       []Packet
	lastPacket  *Packet
	filling     bool
	overflowing bool
	running     bool
	stats       JitterStats
}

// JitterStats counts jitter buffer activity.
type JitterStats struct {
	Accepted   uint64
	Dropped    uint64
	Emitted    uint64
	Underflows uint64
	Overflows  uint64
}

// NewJitterBuffer creates a stopped jitter buffer.
//
// Parameters:
//   - maxPackets: Queue capacity, at least limits.MinJitterPackets
//   - interval: Pacing interval; zero selects limits.DefaultTickInterval
//   - ticker: Tick source driving emission; nil selects a wall-clock TickerSource
//   - onData: Receives each emitted packet on the tick goroutine
//
// Returns:
//   - *JitterBuffer: New jitter buffer instance
//   - error: ErrTooFewPackets or ErrInvalidInterval
func NewJitterBuffer(maxPackets int, interval time.Duration, ticker TickSource, onData func(Packet)) (*JitterBuffer, error) {
	if maxPackets < limits.MinJitterPackets {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooFewPackets, maxPackets, limits.MinJitterPackets)
	}
	if interval < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	if interval == 0 {
		interval = limits.DefaultTickInterval
	}
	if ticker == nil {
		ticker = NewTickerSource()
	}

	jb := &JitterBuffer{
		maxPackets: maxPackets,
		interval:   interval,
		ticker:     ticker,
		onData:     onData,
		queue:      make([]Packet, 0, maxPackets+1),
		filling:    true,
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewJitterBuffer",
		"max_packets": maxPackets,
		"interval":    interval.String(),
	}).Info("Jitter buffer created")

	return jb, nil
}

// Start arms the tick source and returns the buffer to the filling state.
func (jb *JitterBuffer) Start() error {
	jb.mu.Lock()
	if jb.running {
		jb.mu.Unlock()
		return ErrAlreadyRunning
	}
	jb.running = true
	jb.filling = true
	jb.mu.Unlock()

	if err := jb.ticker.Start(jb.interval, jb.tick); err != nil {
		jb.mu.Lock()
		jb.running = false
		jb.mu.Unlock()
		return fmt.Errorf("failed to start tick source: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "JitterBuffer.Start",
		"interval": jb.interval.String(),
	}).Info("Jitter buffer started")

	return nil
}

// Stop disarms the tick source and discards queued packets. No packet is
// emitted after Stop returns. Stop must not be called from onData.
func (jb *JitterBuffer) Stop() {
	jb.mu.Lock()
	wasRunning := jb.running
	jb.running = false
	jb.mu.Unlock()

	if wasRunning {
		jb.ticker.Stop()
	}

	jb.mu.Lock()
	discarded := len(jb.queue)
	jb.queue = jb.queue[:0]
	jb.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":  "JitterBuffer.Stop",
		"discarded": discarded,
	}).Info("Jitter buffer stopped")
}

// AddData queues a packet, or drops it while the buffer is overflowing.
//
// Admission checks the queue length before the insert, so a buffer of capacity
// N holds up to N+1 packets; the next packet sets the overflow state.
func (jb *JitterBuffer) AddData(packet Packet) {
	jb.mu.Lock()
	defer jb.mu.Unlock()

	if !jb.overflowing && len(jb.queue) <= jb.maxPackets {
		jb.queue = append(jb.queue, packet)
		jb.stats.Accepted++

		logrus.WithFields(logrus.Fields{
			"function":        "JitterBuffer.AddData",
			"sequence_number": packet.SequenceNumber,
			"queue_length":    len(jb.queue),
		}).Debug("Packet queued")
		return
	}

	if !jb.overflowing {
		jb.overflowing = true
		jb.stats.Overflows++

		logrus.WithFields(logrus.Fields{
			"function":     "JitterBuffer.AddData",
			"queue_length": len(jb.queue),
			"max_packets":  jb.maxPackets,
		}).Warn("Jitter buffer overflow, dropping packets")
	}
	jb.stats.Dropped++
}

// tick runs one step of the pacing state machine.
func (jb *JitterBuffer) tick() {
	jb.mu.Lock()

	if !jb.running {
		jb.mu.Unlock()
		return
	}

	half := jb.maxPackets / 2

	if jb.overflowing && len(jb.queue) <= half {
		jb.overflowing = false
	}

	if len(jb.queue) == 0 {
		jb.overflowing = false
		if !jb.filling && jb.lastPacket != nil && jb.lastPacket.Payload != nil {
			jb.filling = true
			jb.stats.Underflows++

			logrus.WithFields(logrus.Fields{
				"function": "JitterBuffer.tick",
			}).Debug("Jitter buffer drained, refilling")
		}
		jb.mu.Unlock()
		return
	}

	if jb.filling {
		if len(jb.queue) < half {
			jb.mu.Unlock()
			return
		}
		jb.filling = false
	}

	packet := jb.queue[0]
	last := len(jb.queue) - 1
	copy(jb.queue, jb.queue[1:])
	jb.queue[last] = Packet{}
	jb.queue = jb.queue[:last]
	jb.lastPacket = &packet
	jb.stats.Emitted++
	onData := jb.onData
	jb.mu.Unlock()

	if onData != nil {
		onData(packet)
	}
}

// Len returns the number of queued packets.
func (jb *JitterBuffer) Len() int {
	jb.mu.Lock()
	defer jb.mu.Unlock()
	return len(jb.queue)
}

// Max returns the configured capacity.
func (jb *JitterBuffer) Max() int {
	return jb.maxPackets
}

// Interval returns the pacing interval.
func (jb *JitterBuffer) Interval() time.Duration {
	return jb.interval
}

// Filling reports whether the buffer is waiting to reach half capacity.
func (jb *JitterBuffer) Filling() bool {
	jb.mu.Lock()
	defer jb.mu.Unlock()
	return jb.filling
}

// Overflowing reports whether incoming packets are being dropped.
func (jb *JitterBuffer) Overflowing() bool {
	jb.mu.Lock()
	defer jb.mu.Unlock()
	return jb.overflowing
}

// Running reports whether the tick source is armed.
func (jb *JitterBuffer) Running() bool {
	jb.mu.Lock()
	defer jb.mu.Unlock()
	return jb.running
}

// Stats returns a snapshot of the buffer counters.
func (jb *JitterBuffer) Stats() JitterStats {
	jb.mu.Lock()
	defer jb.mu.Unlock()
	return jb.stats
}
