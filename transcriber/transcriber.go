package transcriber

import (
	"context"
	"fmt"
	"time"

	"polyglot/transcript"
)

const (
	// TimestampLayout formats the wall-clock time attached to each segment.
	TimestampLayout = "15:04:05"
	DefaultSpeaker  = "Speaker 1"
)

// Batch is a non-empty group of segments produced by one flush.
type Batch []transcript.Segment

// Emit receives batches in the order a Source produces them.
type Emit func(Batch)

// Source produces transcript batches for one recording at a time. Start may
// be called again after Stop.
type Source interface {
	Name() string
	Start(ctx context.Context, emit Emit) error
	// Feed hands over captured PCM16 mono audio. Sources that do not use
	// audio ignore it.
	Feed(pcm []byte)
	// Stop flushes whatever is pending and returns once the last batch has
	// been emitted, or when ctx is done.
	Stop(ctx context.Context) error
	// Processing is true between the start of a flush and the emission of
	// its batch.
	Processing() bool
}

// Chunk is a span of captured audio handed to a Recognizer.
type Chunk struct {
	PCM       []byte
	StartedAt time.Time
	Final     bool
}

// Recognizer turns captured audio into segments. An empty result is valid.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, chunk Chunk) ([]transcript.Segment, error)
}

type RecognizerConfig struct {
	Kind     string // placeholder|openai|groq
	APIKey   string
	BaseURL  string
	Model    string
	Language string // spoken language hint, ISO 639-1; empty = auto
}

// NewRecognizer builds the recognizer named by cfg.Kind.
func NewRecognizer(cfg RecognizerConfig) (Recognizer, error) {
	switch cfg.Kind {
	case "", "placeholder":
		return &Placeholder{Delay: time.Second}, nil
	case "openai", "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("recognizer %s: API key not set", cfg.Kind)
		}
		if cfg.Kind == "groq" {
			return NewGroq(cfg), nil
		}
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown recognizer %q (use placeholder, openai or groq)", cfg.Kind)
	}
}

func clone(b Batch) Batch {
	out := make(Batch, len(b))
	copy(out, b)
	return out
}
