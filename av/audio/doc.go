// Package audio provides the sample-level audio processing of an intercom link.
//
// The package is stateless apart from the Gain and ToneSource helpers; every
// function copies into an owned result and never aliases its inputs.
//
// # Mu-law
//
// G.711 mu-law companding between 16-bit linear samples and 8-bit codes:
//
//	code := audio.LinearToMuLaw(sample)
//	sample := audio.MuLawToLinear(code)
//
// The byte-stream helpers convert whole frames. Channel count and bit depth
// are explicit parameters; decoding replicates each sample to every channel
// and encoding reads the first channel of each frame:
//
//	payload, err := audio.LinearToMuLawBytes(pcm, 16, 1)
//	pcm, err := audio.MuLawToLinearBytes(payload, 16, 2)
//
// 8-bit PCM is unsigned with silence at 128.
//
// # Mixer
//
// Mix sums several PCM streams with saturation and reports the per-position
// linear values and peak:
//
//	res, err := audio.Mix([][]byte{a, b}, 16)
//	play(res.Mixed)
//
// Subtract16 removes a reference signal, such as local echo, from a mix.
//
// # Format
//
// Format carries sample rate, bit depth and channel count, and derives frame
// sizes for a pacing interval:
//
//	audio.DefaultFormat.BytesPerInterval(20 * time.Millisecond) // 320
package audio
