package audio

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrDecode is returned for payloads that are not playable mp3 audio
var ErrDecode = errors.New("invalid audio payload")

// MIMEType is the implicit type of binary replies
const MIMEType = "audio/mpeg"

// ValidateMP3 checks that data starts with an MPEG audio frame, optionally
// preceded by an ID3v2 tag
func ValidateMP3(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrDecode)
	}

	if bytes.HasPrefix(data, []byte("ID3")) {
		if len(data) < 10 {
			return fmt.Errorf("%w: truncated ID3 header", ErrDecode)
		}
		// Tag size is a 28 bit syncsafe integer
		size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
		offset := 10 + size
		if data[5]&0x10 != 0 {
			offset += 10 // footer
		}
		if offset >= len(data) {
			return fmt.Errorf("%w: no audio after ID3 tag", ErrDecode)
		}
		data = data[offset:]
	}

	if len(data) < 4 {
		return fmt.Errorf("%w: payload too short (%d bytes)", ErrDecode, len(data))
	}
	if !isFrameHeader(data[:4]) {
		return fmt.Errorf("%w: missing MPEG frame sync", ErrDecode)
	}

	return nil
}

// isFrameHeader reports whether h is a plausible MPEG audio frame header
func isFrameHeader(h []byte) bool {
	if h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return false
	}

	version := (h[1] >> 3) & 0x03
	layer := (h[1] >> 1) & 0x03
	bitrate := h[2] >> 4
	sampleRate := (h[2] >> 2) & 0x03

	return version != 0x01 && layer != 0x00 && bitrate != 0x0F && sampleRate != 0x03
}
