package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"
)

func TestLevel(t *testing.T) {
	if got := Level(nil); got != 0 {
		t.Errorf("Level(nil) = %v, want 0", got)
	}

	silence := make([]byte, 64)
	if got := Level(silence); got != 0 {
		t.Errorf("Level(silence) = %v, want 0", got)
	}

	full := make([]byte, 64)
	for i := 0; i < len(full); i += 2 {
		binary.LittleEndian.PutUint16(full[i:], uint16(0x4000)) // 0.5
	}
	if got := Level(full); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Level(half scale) = %v, want 0.5", got)
	}
}

func TestFindDevice(t *testing.T) {
	ctx := NewFakeContextPCM(nil, false)

	dev, err := FindDevice(ctx, "")
	if err != nil || dev != nil {
		t.Fatalf("FindDevice(\"\") = %v, %v; want nil, nil", dev, err)
	}

	dev, err = FindDevice(ctx, "fake")
	if err != nil {
		t.Fatalf("FindDevice(fake): %v", err)
	}
	if dev.Name != "fake" {
		t.Errorf("Name = %q, want fake", dev.Name)
	}

	if _, err := FindDevice(ctx, "usb mic"); !errors.Is(err, ErrNoDevice) {
		t.Errorf("FindDevice(missing) error = %v, want ErrNoDevice", err)
	}
}

func TestFakeCaptureFeedsAllAudio(t *testing.T) {
	pcm := make([]byte, fakeFrameSize*fakeBytesPerFrame*3+10)
	ctx := NewFakeContextPCM(pcm, false)

	capture, err := ctx.NewCapture(nil, DefaultCaptureConfig())
	if err != nil {
		t.Fatal(err)
	}
	fake := capture.(*FakeCapture)

	var mu sync.Mutex
	var got int
	capture.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		got += len(data)
		mu.Unlock()
	})
	if err := capture.Start(); err != nil {
		t.Fatal(err)
	}
	<-fake.AudioDone()
	capture.Stop()
	capture.Close()
	capture.Close()

	mu.Lock()
	defer mu.Unlock()
	if got != len(pcm) {
		t.Errorf("fed %d bytes, want %d", got, len(pcm))
	}
	if !fake.Closed() {
		t.Error("capture should report closed")
	}
	if ctx.Captures() != 1 {
		t.Errorf("Captures = %d, want 1", ctx.Captures())
	}
}

func TestDeniedOpener(t *testing.T) {
	open := Denied(nil)
	ctx, err := open()
	if ctx != nil {
		t.Error("expected nil context")
	}
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestPickerKeys(t *testing.T) {
	p := picker{names: []string{"a", "b", "c"}}
	p.key([]byte{'j'})
	p.key([]byte{0x1b, '[', 'B'})
	p.key([]byte{'j'})
	if p.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", p.cursor)
	}
	p.key([]byte{0x1b, '[', 'A'})
	if p.cursor != 1 {
		t.Errorf("cursor = %d, want 1", p.cursor)
	}
	if r := p.key([]byte{'\r'}); r != pickerDone {
		t.Errorf("enter = %v, want pickerDone", r)
	}
	if r := p.key([]byte{3}); r != pickerCancel {
		t.Errorf("ctrl+c = %v, want pickerCancel", r)
	}
}
