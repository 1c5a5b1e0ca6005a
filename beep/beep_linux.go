//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"polyglot/log"
)

var (
	samples   map[cue][]int16
	soundOnce sync.Once
)

func initSound() {
	samples = make(map[cue][]int16, len(tones))
	for c := range tones {
		// 200ms tails give PulseAudio time to fill its buffer
		samples[c] = render(c, 2, 0.2)
	}
}

func Init() {
	soundOnce.Do(initSound)
}

func output(c cue) {
	soundOnce.Do(initSound)
	go playPulse(samples[c])
}

// playPulse opens a short-lived client per cue; cues are rare enough that
// keeping a connection open is not worth it.
func playPulse(buf []int16) {
	if len(buf) == 0 {
		return
	}
	client, err := pulse.NewClient(pulse.ClientApplicationName("polyglot"))
	if err != nil {
		log.Warnf("pulse playback error: %v", err)
		return
	}
	defer client.Close()

	pos := 0
	reader := pulse.Int16Reader(func(out []int16) (int, error) {
		if pos >= len(buf) {
			return 0, pulse.EndOfData
		}
		n := copy(out, buf[pos:])
		pos += n
		return n, nil
	})
	stream, err := client.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		log.Warnf("pulse playback error: %v", err)
		return
	}
	defer stream.Close()
	stream.Start()
	stream.Drain()
	stream.Stop()
}
