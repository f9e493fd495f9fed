package interfaces

// AudioSink receives decoded PCM for playback. Implementations are called
// from a pacing goroutine and must not block on device I/O for longer than
// one interval.
type AudioSink interface {
	// OnDataAvailable delivers one interval of interleaved PCM. The slice is
	// owned by the sink after the call.
	OnDataAvailable(pcm []byte)
}

// AudioSource produces captured PCM for sending.
type AudioSource interface {
	// Capture returns the next interval of interleaved PCM. io.EOF signals
	// that the source is exhausted.
	Capture() ([]byte, error)
}

// DuplexStream carries length-prefixed messages in both directions.
// Inbound messages are delivered to the callback the stream was built with.
type DuplexStream interface {
	// Start begins delivering inbound messages.
	Start() error

	// Write sends one message.
	Write(payload []byte) error

	// Done is closed when the inbound side has stopped.
	Done() <-chan struct{}

	// Err returns the reason the inbound side stopped, if any.
	Err() error

	// Close releases the stream and waits for inbound delivery to stop.
	Close() error
}

// SinkFunc adapts a function to AudioSink.
type SinkFunc func(pcm []byte)

// OnDataAvailable calls f(pcm).
func (f SinkFunc) OnDataAvailable(pcm []byte) {
	f(pcm)
}

// SourceFunc adapts a function to AudioSource.
type SourceFunc func() ([]byte, error)

// Capture calls f().
func (f SourceFunc) Capture() ([]byte, error) {
	return f()
}
