//go:build !linux

package beep

import (
	"sync"

	"github.com/gen2brain/malgo"

	"polyglot/log"
)

// player owns one miniaudio playback device. The data callback reads the
// current cue under mu; output swaps cues and restarts the device.
type player struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	cues   map[cue][]byte

	mu      sync.Mutex
	current []byte
	pos     int
}

var (
	out       *player
	soundOnce sync.Once
)

func initSound() {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		log.Warnf("malgo playback init: %v", err)
		return
	}
	p := &player{ctx: ctx, cues: make(map[cue][]byte, len(tones))}
	for c := range tones {
		p.cues[c] = le16(render(c, 1, 0))
	}
	if err := p.open(); err != nil {
		log.Warnf("playback device: %v", err)
		ctx.Uninit()
		return
	}
	out = p
}

func (p *player) open() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate

	device, err := malgo.InitDevice(p.ctx.Context, cfg, malgo.DeviceCallbacks{Data: p.data})
	if err != nil {
		return err
	}
	p.device = device
	return nil
}

func (p *player) data(output, _ []byte, frameCount uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = fill(output[:frameCount*2], p.current, p.pos)
}

func (p *player) play(buf []byte) {
	if p.device == nil {
		return
	}
	p.device.Stop()
	p.mu.Lock()
	p.current, p.pos = buf, 0
	p.mu.Unlock()

	if err := p.device.Start(); err == nil {
		return
	}
	// The device can go stale across sleep/wake; rebuild it once.
	p.device.Uninit()
	p.device = nil
	if err := p.open(); err != nil {
		log.Warnf("playback device: %v", err)
		return
	}
	if err := p.device.Start(); err != nil {
		log.Warnf("playback start: %v", err)
	}
}

func Init() {
	soundOnce.Do(initSound)
}

var playMu sync.Mutex

func output(c cue) {
	soundOnce.Do(initSound)
	if out == nil {
		return
	}
	playMu.Lock()
	defer playMu.Unlock()
	out.play(out.cues[c])
}
