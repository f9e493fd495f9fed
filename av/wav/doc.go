// Package wav connects WAV files to the intercom audio interfaces.
//
// A [Sink] records received audio and a [Source] plays a file into a call,
// one pacing interval per Capture:
//
//	src, err := wav.Open("greeting.wav", 20*time.Millisecond)
//	sink, err := wav.Create("call.wav", audio.DefaultFormat)
//	defer sink.Close()
//
// Only uncompressed 8-bit and 16-bit PCM with one or two channels is supported.
package wav
