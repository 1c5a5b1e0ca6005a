package recorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"polyglot/audio"
	"polyglot/log"
	"polyglot/transcriber"
)

const settlePoll = 10 * time.Millisecond

type State int

const (
	Idle State = iota
	Acquiring
	Recording
	Stopping
	Fallback
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring"
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	case Fallback:
		return "fallback"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Config struct {
	// Open creates the capture context for one recording.
	Open       audio.Opener
	DeviceName string
	Capture    audio.CaptureConfig

	Live     transcriber.Source
	Fallback transcriber.Source

	// Deliver receives every batch in emission order. Calls are serialized.
	Deliver func(transcriber.Batch)
	// OnStart runs on every entry into Recording. The session uses it to
	// set the clock's start epoch.
	OnStart func()
	// OnStateChange observes every transition.
	OnStateChange func(from, to State)
	// OnLevel receives the RMS of each captured chunk.
	OnLevel func(float64)
	// OnAcquireError is told why the live path was abandoned.
	OnAcquireError func(error)
}

// Controller owns the capture device and drives one transcription source at
// a time. Its state is never held locked across acquisition, a flush or the
// fallback delay; toggles arriving in the middle of a transition are
// dropped.
type Controller struct {
	cfg Config

	mu     sync.Mutex
	state  State
	active transcriber.Source
	res    *resources
	// cancelRun ends the context sources run under. It fires only after
	// Stop returns, so a cancelled caller never cuts off the final flush.
	cancelRun context.CancelFunc

	deliverMu sync.Mutex
}

func New(cfg Config) *Controller {
	if cfg.Capture.SampleRate == 0 {
		cfg.Capture = audio.DefaultCaptureConfig()
	}
	if cfg.Fallback == nil {
		cfg.Fallback = transcriber.NewFallback(transcriber.DefaultFallbackDelay)
	}
	return &Controller{cfg: cfg}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Recording is true while a source is active and the user has not asked to
// stop.
func (c *Controller) Recording() bool {
	return c.State() == Recording
}

// Processing reports whether the active source has a flush in flight.
func (c *Controller) Processing() bool {
	c.mu.Lock()
	src := c.active
	c.mu.Unlock()
	return src != nil && src.Processing()
}

// SourceName names the source of the current or most recent recording.
func (c *Controller) SourceName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ""
	}
	return c.active.Name()
}

// Toggle starts a recording from Idle or stops one from Recording. It
// returns false when the call was ignored because a transition is under
// way. Starting returns once the source is running; stopping returns once
// the last batch has been delivered.
func (c *Controller) Toggle(ctx context.Context) bool {
	c.mu.Lock()
	switch c.state {
	case Idle:
		c.state = Acquiring
		c.mu.Unlock()
		c.notify(Idle, Acquiring)
		c.start(ctx)
		return true
	case Recording:
		c.state = Stopping
		c.mu.Unlock()
		c.notify(Recording, Stopping)
		c.stop(ctx)
		return true
	default:
		c.mu.Unlock()
		return false
	}
}

// Close stops any active recording and releases the capture device. A
// transition already under way on another goroutine is waited for.
func (c *Controller) Close(ctx context.Context) {
	for {
		c.mu.Lock()
		st := c.state
		if st == Recording {
			c.state = Stopping
			c.mu.Unlock()
			c.notify(Recording, Stopping)
			c.stop(ctx)
			return
		}
		c.mu.Unlock()
		if st == Idle {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(settlePoll):
		}
	}
}

// set moves to the given state and notifies observers outside the lock.
func (c *Controller) set(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()
	c.notify(from, to)
}

func (c *Controller) notify(from, to State) {
	if from == to {
		return
	}
	log.StateChange(from.String(), to.String())
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(from, to)
	}
}

func (c *Controller) deliver(b transcriber.Batch) {
	if len(b) == 0 || c.cfg.Deliver == nil {
		return
	}
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.cfg.Deliver(b)
}

func (c *Controller) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Lock()
	c.cancelRun = cancel
	c.mu.Unlock()

	if c.cfg.Live != nil && c.cfg.Open != nil {
		res, err := c.acquire(runCtx)
		if err == nil {
			c.mu.Lock()
			c.res = res
			c.active = c.cfg.Live
			c.mu.Unlock()
			c.set(Recording)
			c.started()
			return
		}
		log.Fallback(err)
		if c.cfg.OnAcquireError != nil {
			c.cfg.OnAcquireError(err)
		}
	} else {
		log.Fallback(audio.ErrNoDevice)
	}

	c.set(Fallback)
	if err := c.cfg.Fallback.Start(runCtx, c.deliver); err != nil {
		log.Errorf("fallback source: %v", err)
	}
	c.mu.Lock()
	c.active = c.cfg.Fallback
	c.mu.Unlock()
	c.set(Recording)
	c.started()
}

func (c *Controller) started() {
	if c.cfg.OnStart != nil {
		c.cfg.OnStart()
	}
}

// acquire opens the capture context and device and starts the live source.
// On any failure everything acquired so far is released.
func (c *Controller) acquire(ctx context.Context) (*resources, error) {
	res := &resources{}
	fail := func(err error) (*resources, error) {
		res.release()
		return nil, err
	}

	actx, err := c.cfg.Open()
	if err != nil {
		return fail(fmt.Errorf("opening capture context: %w", err))
	}
	res.ctx = actx

	dev, err := audio.FindDevice(actx, c.cfg.DeviceName)
	if err != nil {
		return fail(err)
	}
	capture, err := actx.NewCapture(dev, c.cfg.Capture)
	if err != nil {
		return fail(fmt.Errorf("creating capture device: %w", err))
	}
	res.capture = capture

	live := c.cfg.Live
	if err := live.Start(ctx, c.deliver); err != nil {
		return fail(fmt.Errorf("starting %s: %w", live.Name(), err))
	}
	res.source = live

	onLevel := c.cfg.OnLevel
	capture.SetCallback(func(data []byte, frameCount uint32) {
		if len(data) == 0 {
			return
		}
		pcm := make([]byte, len(data))
		copy(pcm, data)
		live.Feed(pcm)
		if onLevel != nil {
			onLevel(audio.Level(pcm))
		}
	})
	if err := capture.Start(); err != nil {
		return fail(fmt.Errorf("starting capture: %w", err))
	}
	res.started = true
	return res, nil
}

func (c *Controller) stop(ctx context.Context) {
	c.mu.Lock()
	res := c.res
	src := c.active
	cancel := c.cancelRun
	c.res = nil
	c.cancelRun = nil
	c.mu.Unlock()

	if res != nil {
		res.halt()
	}
	if src != nil {
		if err := src.Stop(ctx); err != nil {
			log.Errorf("stopping %s: %v", src.Name(), err)
		}
	}
	if cancel != nil {
		cancel()
	}
	if res != nil {
		res.release()
	}
	c.set(Idle)
}

// resources is everything the live path holds. release is safe to call on
// every exit path and any number of times.
type resources struct {
	ctx     audio.Context
	capture audio.CaptureDevice
	source  transcriber.Source
	started bool

	haltOnce    sync.Once
	releaseOnce sync.Once
}

// halt stops the capture device so no more audio reaches the source.
func (r *resources) halt() {
	r.haltOnce.Do(func() {
		if r.capture == nil {
			return
		}
		if r.started {
			r.capture.Stop()
		}
		r.capture.ClearCallback()
	})
}

func (r *resources) release() {
	r.releaseOnce.Do(func() {
		r.halt()
		if r.source != nil && !r.started {
			// capture never ran; discard the source's empty session
			r.source.Stop(context.Background())
		}
		if r.capture != nil {
			r.capture.Close()
		}
		if r.ctx != nil {
			r.ctx.Close()
		}
	})
}
