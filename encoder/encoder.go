package encoder

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}

// Samples decodes little-endian PCM16 bytes. A trailing odd byte is dropped.
func Samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

// Duration is the playback length of mono PCM16 at SampleRate.
func Duration(pcm []byte) time.Duration {
	frames := len(pcm) / 2
	return time.Duration(frames) * time.Second / SampleRate
}

// Encode feeds pcm to enc in BlockSize blocks, closes it and returns the
// encoded bytes.
func Encode(enc Encoder, pcm []byte) ([]byte, error) {
	samples := Samples(pcm)
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			return nil, fmt.Errorf("encoding block at %d: %w", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
