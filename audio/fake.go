package audio

import (
	"os"
	"sync"
	"time"

	"polyglot/encoder"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// FakeContext replays PCM from a WAV file instead of a microphone. It is
// used by the headless driver and in tests. One FakeContext can back any
// number of Opener calls; it counts captures and closes so tests can check
// the recorder's resource discipline.
type FakeContext struct {
	pcm      []byte
	realtime bool

	mu       sync.Mutex
	captures int
	closes   int
	last     *FakeCapture
}

func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}
	return NewFakeContextPCM(data, realtime), nil
}

// NewFakeContextPCM replays raw little-endian PCM16 mono samples.
func NewFakeContextPCM(pcm []byte, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, realtime: realtime}
}

// Opener returns an Opener that always hands out f.
func (f *FakeContext) Opener() Opener {
	return func() (Context, error) { return f, nil }
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
}

// Captures reports how many capture devices have been created.
func (f *FakeContext) Captures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captures
}

// Closes reports how many times the context has been closed.
func (f *FakeContext) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	c := &FakeCapture{pcm: f.pcm, realtime: f.realtime, audioDone: make(chan struct{})}
	f.mu.Lock()
	f.captures++
	f.last = c
	f.mu.Unlock()
	return c, nil
}

// Last returns the most recently created capture device, or nil.
func (f *FakeContext) Last() *FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Denied returns an Opener that always fails with err, simulating a refused
// microphone permission or a machine without audio hardware.
func Denied(err error) Opener {
	if err == nil {
		err = ErrPermissionDenied
	}
	return func() (Context, error) { return nil, err }
}

type FakeCapture struct {
	pcm       []byte
	realtime  bool
	audioDone chan struct{}
	doneOnce  sync.Once

	mu       sync.Mutex
	cb       DataCallback
	running  bool
	closed   bool
	stopCh   chan struct{}
	feedDone chan struct{}
}

// AudioDone is closed once the whole recording has been fed.
func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	stop, done := f.stopCh, f.feedDone
	f.mu.Unlock()

	chunkBytes := fakeFrameSize * fakeBytesPerFrame
	var interval time.Duration
	if f.realtime {
		interval = time.Duration(fakeFrameSize) * time.Second / time.Duration(encoder.SampleRate)
	}

	go func() {
		defer close(done)
		for pos := 0; pos < len(f.pcm); {
			select {
			case <-stop:
				return
			default:
			}
			end := min(pos+chunkBytes, len(f.pcm))
			if cb := f.callback(); cb != nil {
				chunk := make([]byte, end-pos)
				copy(chunk, f.pcm[pos:end])
				cb(chunk, uint32(len(chunk)/fakeBytesPerFrame))
			}
			pos = end
			if interval > 0 {
				select {
				case <-stop:
					return
				case <-time.After(interval):
				}
			}
		}
		f.doneOnce.Do(func() { close(f.audioDone) })
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	close(f.stopCh)
	done := f.feedDone
	f.mu.Unlock()
	<-done
}

func (f *FakeCapture) Close() {
	f.Stop()
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// Closed reports whether Close has been called.
func (f *FakeCapture) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
