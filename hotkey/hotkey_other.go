//go:build !linux

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// xHotkey forwards the OS-level hotkey events until Unregister.
type xHotkey struct {
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}

	stopOnce sync.Once
	stop     chan struct{}
}

func New() Hotkey {
	return &xHotkey{
		hk:      newChord(),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func newChord() *hotkey.Hotkey {
	return hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace)
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return fmt.Errorf("registering %s: %w", Chord, err)
	}
	go h.forward()
	return nil
}

func (h *xHotkey) forward() {
	for {
		select {
		case <-h.stop:
			return
		case <-h.hk.Keydown():
			send(h.keydown)
		case <-h.hk.Keyup():
			send(h.keyup)
		}
	}
}

// send never blocks: a press nobody consumed yet is not queued twice.
func send(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (h *xHotkey) Unregister() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.hk.Unregister()
	})
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

// Diagnose registers and releases the chord once, which fails when another
// application already owns it.
func Diagnose() (string, error) {
	hk := newChord()
	if err := hk.Register(); err != nil {
		return "", fmt.Errorf("cannot register %s: %w", Chord, err)
	}
	if err := hk.Unregister(); err != nil {
		return "", fmt.Errorf("cannot release %s: %w", Chord, err)
	}
	return Chord + " is available", nil
}
