// Package interfaces defines the collaborator contracts of an intercom link.
//
// The transport core never touches an audio device or a socket directly. It
// consumes these abstractions instead, which the surrounding application
// implements:
//
//   - [AudioSink] plays decoded PCM (a sound card, a WAV file, a test recorder)
//   - [AudioSource] captures PCM (a microphone, a WAV file, a tone generator)
//   - [DuplexStream] moves framed messages over a TCP or WebSocket connection
//
// Function adapters make ad-hoc implementations short:
//
//	sink := interfaces.SinkFunc(func(pcm []byte) {
//	    player.Write(pcm)
//	})
//
// The periodic timer abstraction lives with its only consumer, the jitter
// buffer, as rtp.TickSource.
package interfaces
