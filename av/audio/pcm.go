package audio

import "encoding/binary"

// PCM8To16 widens unsigned 8-bit PCM to signed 16-bit little-endian PCM.
func PCM8To16(pcm []byte) []byte {
	out := make([]byte, len(pcm)*2)
	for i, b := range pcm {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(linear8To16(b)))
	}
	return out
}

// PCM16To8 narrows signed 16-bit little-endian PCM to unsigned 8-bit PCM,
// keeping the high byte. A trailing odd byte is ignored.
func PCM16To8(pcm []byte) []byte {
	out := make([]byte, len(pcm)/2)
	for i := range out {
		out[i] = linear16To8(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	return out
}
