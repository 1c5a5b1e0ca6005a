package transcriber

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"polyglot/encoder"
	"polyglot/transcript"
)

const DefaultFlushWindow = 15 * time.Second

var ErrAlreadyStarted = errors.New("transcriber: source already started")

type LiveConfig struct {
	Recognizer Recognizer
	// FlushWindow is the amount of buffered audio that triggers a flush
	// while still recording.
	FlushWindow time.Duration
	// OnError is called when the recognizer fails. The chunk is dropped.
	OnError func(error)
	Now     func() time.Time
}

// LiveSource buffers microphone audio and runs it through a Recognizer on
// every flush boundary and on stop. Chunks are recognized one at a time in
// capture order by a single worker.
//
// Feed never blocks on the recognizer: flushed chunks wait in an unbounded
// queue, so a stalled recognizer costs one FlushWindow of PCM per pending
// chunk (about 480 KiB at the default window) instead of stalling capture.
type LiveSource struct {
	cfg LiveConfig

	mu         sync.Mutex
	wake       *sync.Cond
	buf        []byte
	chunkStart time.Time
	running    bool
	queue      *chunkQueue
	done       chan struct{}

	pending atomic.Int32
}

// chunkQueue belongs to one recording so a worker left over from a timed
// out Stop never takes chunks from the next one.
type chunkQueue struct {
	items  []Chunk
	closed bool
}

func NewLiveSource(cfg LiveConfig) *LiveSource {
	if cfg.FlushWindow <= 0 {
		cfg.FlushWindow = DefaultFlushWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &LiveSource{cfg: cfg}
	s.wake = sync.NewCond(&s.mu)
	return s
}

func (s *LiveSource) Name() string { return "live:" + s.cfg.Recognizer.Name() }

func (s *LiveSource) Start(ctx context.Context, emit Emit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyStarted
	}
	s.running = true
	s.buf = nil
	s.queue = &chunkQueue{}
	s.done = make(chan struct{})
	go s.work(ctx, s.queue, s.done, emit)
	return nil
}

func (s *LiveSource) Feed(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if len(s.buf) == 0 {
		s.chunkStart = s.cfg.Now()
	}
	s.buf = append(s.buf, pcm...)
	if encoder.Duration(s.buf) >= s.cfg.FlushWindow {
		s.flushLocked(false)
	}
}

// flushLocked queues the buffer for the worker and clears it.
func (s *LiveSource) flushLocked(final bool) {
	if len(s.buf) == 0 {
		return
	}
	s.pending.Add(1)
	s.queue.items = append(s.queue.items, Chunk{PCM: s.buf, StartedAt: s.chunkStart, Final: final})
	s.buf = nil
	s.wake.Broadcast()
}

func (s *LiveSource) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.flushLocked(true)
	s.queue.closed = true
	s.wake.Broadcast()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LiveSource) Processing() bool { return s.pending.Load() > 0 }

func (s *LiveSource) work(ctx context.Context, q *chunkQueue, done chan<- struct{}, emit Emit) {
	defer close(done)
	for {
		chunk, ok := s.next(q)
		if !ok {
			return
		}
		segments, err := s.cfg.Recognizer.Recognize(ctx, chunk)
		if err != nil {
			if s.cfg.OnError != nil {
				s.cfg.OnError(err)
			}
		} else if batch := s.attribute(chunk, segments); len(batch) > 0 {
			emit(batch)
		}
		s.pending.Add(-1)
	}
}

// next blocks until q has a chunk or is closed and drained.
func (s *LiveSource) next(q *chunkQueue) (Chunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		s.wake.Wait()
	}
	if len(q.items) == 0 {
		return Chunk{}, false
	}
	chunk := q.items[0]
	q.items[0] = Chunk{}
	q.items = q.items[1:]
	return chunk, true
}

// attribute fills in speaker and timestamp when the recognizer left them
// empty and drops blank segments.
func (s *LiveSource) attribute(chunk Chunk, segments []transcript.Segment) Batch {
	batch := make(Batch, 0, len(segments))
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		if seg.Speaker == "" {
			seg.Speaker = DefaultSpeaker
		}
		if seg.Timestamp == "" {
			seg.Timestamp = chunk.StartedAt.Format(TimestampLayout)
		}
		batch = append(batch, seg)
	}
	return batch
}
