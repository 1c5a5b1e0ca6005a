package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"polyglot/encoder"
)

const WAVHeaderSize = 44

var (
	ErrNoDevice         = errors.New("audio: no capture device available")
	ErrPermissionDenied = errors.New("audio: capture permission denied")
)

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

// DefaultCaptureConfig is 16 kHz mono, the format every recognizer accepts.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{SampleRate: encoder.SampleRate, Channels: encoder.Channels}
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// Opener creates a capture context. The recorder opens one per recording
// and closes it on stop.
type Opener func() (Context, error)

// FindDevice returns the device with the given name. An empty name selects
// the system default (nil).
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoDevice, name)
}

// Level returns the RMS of little-endian PCM16 samples, normalised to 0..1.
func Level(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sumSquares float64
	for i := 0; i+1 < len(pcm); i += 2 {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i:]))) / 32768.0
		sumSquares += s * s
	}
	return math.Sqrt(sumSquares / float64(n))
}
