package transcriber

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"polyglot/transcript"
)

const DefaultFallbackDelay = time.Second

// Script is the batch the fallback source emits when no microphone is
// available.
var Script = Batch{
	{Speaker: "Speaker 1", Timestamp: "09:00:12", Text: "Welcome to our quarterly review meeting."},
	{Speaker: "Speaker 2", Timestamp: "09:00:45", Text: "Thank you for joining us today."},
	{Speaker: "Speaker 3", Timestamp: "09:01:22", Text: "The results look very promising."},
}

// FallbackSource emits Script once per activation after a simulated
// processing delay.
type FallbackSource struct {
	delay  time.Duration
	script Batch

	mu         sync.Mutex
	done       chan struct{}
	processing atomic.Bool
}

func NewFallback(delay time.Duration) *FallbackSource {
	return NewFallbackScript(delay, Script)
}

func NewFallbackScript(delay time.Duration, script []transcript.Segment) *FallbackSource {
	if delay < 0 {
		delay = 0
	}
	return &FallbackSource{delay: delay, script: clone(script)}
}

func (f *FallbackSource) Name() string { return "fallback" }

func (f *FallbackSource) Start(ctx context.Context, emit Emit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done != nil {
		return ErrAlreadyStarted
	}
	done := make(chan struct{})
	f.done = done
	f.processing.Store(true)

	go func() {
		defer close(done)
		defer f.processing.Store(false)
		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
		if len(f.script) > 0 {
			emit(clone(f.script))
		}
	}()
	return nil
}

func (f *FallbackSource) Feed([]byte) {}

// Stop waits for the scripted batch if it has not been emitted yet.
func (f *FallbackSource) Stop(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FallbackSource) Processing() bool { return f.processing.Load() }
