package rtp

import (
	"sync"
	"time"
)

// TickSource drives a periodic callback. Implementations guarantee that once
// Stop returns no tick callback is running or will run. Stop must not be called
// from inside the tick callback.
type TickSource interface {
	Start(interval time.Duration, tick func()) error
	Stop()
}

// TimeProvider creates tickers. It allows injecting a fake clock for testing.
type TimeProvider interface {
	NewTicker(d time.Duration) *time.Ticker
}

// RealTimeProvider implements TimeProvider using the standard library.
type RealTimeProvider struct{}

// NewTicker creates a new ticker using the standard library.
func (RealTimeProvider) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// TickerSource is a wall-clock TickSource running ticks on its own goroutine.
type TickerSource struct {
	mu       sync.Mutex
	provider TimeProvider
	running  bool
	stop     chan struct{}
	done     chan struct{}
}

// NewTickerSource creates a TickSource backed by time.Ticker.
func NewTickerSource() *TickerSource {
	return NewTickerSourceWithProvider(RealTimeProvider{})
}

// NewTickerSourceWithProvider creates a TickSource using tp for tickers.
func NewTickerSourceWithProvider(tp TimeProvider) *TickerSource {
	if tp == nil {
		tp = RealTimeProvider{}
	}
	return &TickerSource{provider: tp}
}

// Start begins calling tick every interval.
func (s *TickerSource) Start(interval time.Duration, tick func()) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	ticker := s.provider.NewTicker(interval)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ticker, s.stop, s.done, tick)
	return nil
}

// Stop halts the ticker and waits for an in-flight tick to return.
func (s *TickerSource) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
}

func (s *TickerSource) loop(ticker *time.Ticker, stop, done chan struct{}, tick func()) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A tick and a stop can be ready together; stop wins.
			select {
			case <-stop:
				return
			default:
			}
			tick()
		}
	}
}

// ManualTicker is a TickSource advanced explicitly by calling Tick.
type ManualTicker struct {
	fireMu sync.Mutex

	mu       sync.Mutex
	tick     func()
	interval time.Duration
	running  bool
	fired    uint64
}

// NewManualTicker creates a stopped manual tick source.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{}
}

// Start arms the ticker. The interval is recorded but not used for timing.
func (m *ManualTicker) Start(interval time.Duration, tick func()) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}
	m.tick = tick
	m.interval = interval
	m.running = true
	return nil
}

// Stop disarms the ticker and waits for a concurrent Tick to return.
func (m *ManualTicker) Stop() {
	m.mu.Lock()
	m.running = false
	m.tick = nil
	m.mu.Unlock()

	m.fireMu.Lock()
	m.fireMu.Unlock()
}

// Tick invokes the callback once. It reports false when the ticker is stopped.
func (m *ManualTicker) Tick() bool {
	m.fireMu.Lock()
	defer m.fireMu.Unlock()

	m.mu.Lock()
	tick, running := m.tick, m.running
	if running {
		m.fired++
	}
	m.mu.Unlock()

	if !running || tick == nil {
		return false
	}
	tick()
	return true
}

// TickN calls Tick n times and returns how many ticks fired.
func (m *ManualTicker) TickN(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		if m.Tick() {
			fired++
		}
	}
	return fired
}

// Running reports whether the ticker is armed.
func (m *ManualTicker) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Interval returns the interval passed to the last Start.
func (m *ManualTicker) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// Fired returns the number of ticks delivered since creation.
func (m *ManualTicker) Fired() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired
}
