package transcriber

import (
	"context"
	"time"

	"polyglot/transcript"
)

// Placeholder stands in for a speech recognizer when none is configured.
// Every non-empty chunk becomes a single "Meeting in progress..." line
// stamped with the chunk's capture time.
type Placeholder struct {
	Delay time.Duration
}

func (p *Placeholder) Name() string { return "placeholder" }

func (p *Placeholder) Recognize(ctx context.Context, chunk Chunk) ([]transcript.Segment, error) {
	if len(chunk.PCM) == 0 {
		return nil, nil
	}
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []transcript.Segment{{
		Speaker:   DefaultSpeaker,
		Timestamp: chunk.StartedAt.Format(TimestampLayout),
		Text:      "Meeting in progress...",
	}}, nil
}
