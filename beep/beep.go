package beep

import "math"

var disabled bool

func Disable() { disabled = true }

const sampleRate = 44100

type cue int

const (
	cueStart cue = iota
	cueStop
	cueError
)

// tone describes one cue. Error cues repeat the tone after gap.
type tone struct {
	freq, duration, volume, decay float64
	gap                           float64
}

var tones = map[cue]tone{
	// high and short
	cueStart: {freq: 1200, duration: 0.03, volume: 0.5, decay: 60},
	// lower, slightly longer
	cueStop: {freq: 900, duration: 0.05, volume: 0.5, decay: 40},
	// low double beep, also played when the microphone is unavailable and
	// the demo transcript takes over
	cueError: {freq: 350, duration: 0.08, volume: 0.6, decay: 30, gap: 0.05},
}

// render produces the interleaved samples for c. minDuration pads single
// tones with their own decaying tail, which some backends need to fill
// their buffers.
func render(c cue, channels int, minDuration float64) []int16 {
	t := tones[c]
	if t.gap > 0 {
		return generateDoubleBeep(sampleRate, t.freq, t.duration, t.gap, t.volume, t.decay, channels)
	}
	d := math.Max(t.duration, minDuration)
	return generateTick(sampleRate, t.freq, d, t.volume, t.decay, channels)
}

// Cues plays the recording cues. The zero value is ready to use.
type Cues struct{}

func (Cues) Start() { play(cueStart) }
func (Cues) Stop()  { play(cueStop) }
func (Cues) Error() { play(cueError) }

func play(c cue) {
	if disabled {
		return
	}
	output(c)
}

// generateTick renders a decaying sine with the given number of interleaved
// channels.
func generateTick(rate int, freq, duration, volume, decay float64, channels int) []int16 {
	n := int(float64(rate) * duration)
	samples := make([]int16, n*channels)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(rate)
		envelope := math.Exp(-t * decay)
		s := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = s
		}
	}
	return samples
}

func generateDoubleBeep(rate int, freq, beepDur, gapDur, volume, decay float64, channels int) []int16 {
	beep := generateTick(rate, freq, beepDur, volume, decay, channels)
	gap := make([]int16, int(float64(rate)*gapDur)*channels)
	result := make([]int16, 0, len(beep)*2+len(gap))
	result = append(result, beep...)
	result = append(result, gap...)
	result = append(result, beep...)
	return result
}

// le16 packs samples as little-endian bytes.
func le16(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// fill copies src[pos:] into out, zero-fills whatever is left of out and
// returns the new position in src.
func fill(out, src []byte, pos int) int {
	n := 0
	if pos < len(src) {
		n = copy(out, src[pos:])
	}
	clear(out[n:])
	return pos + n
}
