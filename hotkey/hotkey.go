package hotkey

import (
	"context"
	"time"
)

// Chord is the global shortcut that toggles recording.
const Chord = "Ctrl+Shift+Space"

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// DefaultDebounce swallows presses that follow the previous one too closely
// to be deliberate.
const DefaultDebounce = 250 * time.Millisecond

// Toggles turns key presses into toggle requests. Releases are drained and
// ignored; a press within debounce of the previous accepted press is
// dropped. The channel is closed when ctx is done.
func Toggles(ctx context.Context, hk Hotkey, debounce time.Duration) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		var last time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case <-hk.Keyup():
			case <-hk.Keydown():
				now := time.Now()
				if !last.IsZero() && now.Sub(last) < debounce {
					continue
				}
				last = now
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
