package transcriber

import (
	"context"
	"sync"

	"polyglot/transcript"
)

// FakeRecognizer replays scripted results, one per call. Once the script
// is exhausted it returns nothing. Err, when set, is returned by every call.
type FakeRecognizer struct {
	mu      sync.Mutex
	results [][]transcript.Segment
	err     error
	chunks  []Chunk
	block   chan struct{}
}

func NewFakeRecognizer(results ...[]transcript.Segment) *FakeRecognizer {
	return &FakeRecognizer{results: results}
}

// NewFailingRecognizer returns a recognizer whose every call fails with err.
func NewFailingRecognizer(err error) *FakeRecognizer {
	return &FakeRecognizer{err: err}
}

// Hold makes Recognize wait until Release is called.
func (f *FakeRecognizer) Hold() {
	f.mu.Lock()
	f.block = make(chan struct{})
	f.mu.Unlock()
}

func (f *FakeRecognizer) Release() {
	f.mu.Lock()
	if f.block != nil {
		close(f.block)
		f.block = nil
	}
	f.mu.Unlock()
}

func (f *FakeRecognizer) Name() string { return "fake" }

func (f *FakeRecognizer) Recognize(ctx context.Context, chunk Chunk) ([]transcript.Segment, error) {
	f.mu.Lock()
	block := f.block
	f.chunks = append(f.chunks, chunk)
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return nil, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

// Chunks returns every chunk seen so far.
func (f *FakeRecognizer) Chunks() []Chunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Chunk, len(f.chunks))
	copy(out, f.chunks)
	return out
}
