package audio

import "errors"

// Sentinel errors for audio package operations.
var (
	// ErrUnsupportedFormat indicates a bit depth or channel count the codecs cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidGain indicates a gain outside the accepted range.
	ErrInvalidGain = errors.New("invalid gain")

	// ErrInvalidFrequency indicates a tone frequency at or above Nyquist, or not positive.
	ErrInvalidFrequency = errors.New("invalid tone frequency")
)
