// Package audio produces the hum of the spinning wheel. Sound is best
// effort: without an output device the session carries on silently.
package audio

import (
	"math"
	"sync/atomic"

	"github.com/faiface/beep"
)

// DefaultSampleRate is the output rate used when none is configured.
const DefaultSampleRate beep.SampleRate = 44100

// Tone is a sine wave streamer whose frequency can be changed while the
// speaker is pulling samples from it.
type Tone struct {
	sampleRate beep.SampleRate
	gain       float64
	freq       atomic.Uint64 // math.Float64bits
	stopped    atomic.Bool
	phase      float64
}

var _ beep.Streamer = (*Tone)(nil)

// NewTone returns a tone at hz with the given amplitude.
func NewTone(sr beep.SampleRate, hz, gain float64) *Tone {
	if sr <= 0 {
		sr = DefaultSampleRate
	}
	t := &Tone{sampleRate: sr, gain: gain}
	t.SetFrequency(hz)
	return t
}

// SetFrequency retunes the tone. Negative values are treated as silence.
func (t *Tone) SetFrequency(hz float64) {
	if hz < 0 || math.IsNaN(hz) {
		hz = 0
	}
	t.freq.Store(math.Float64bits(hz))
}

// Frequency returns the current pitch in Hz.
func (t *Tone) Frequency() float64 {
	return math.Float64frombits(t.freq.Load())
}

// Stop ends the stream; the speaker drops it on its next pull.
func (t *Tone) Stop() {
	t.stopped.Store(true)
}

// Stopped reports whether Stop was called.
func (t *Tone) Stopped() bool {
	return t.stopped.Load()
}

// Stream fills samples with the sine wave, the same value on both channels.
func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.stopped.Load() {
		return 0, false
	}
	step := 2 * math.Pi * t.Frequency() / float64(t.sampleRate)
	for i := range samples {
		v := math.Sin(t.phase) * t.gain
		samples[i][0] = v
		samples[i][1] = v
		t.phase += step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	return len(samples), true
}

// Err always returns nil.
func (t *Tone) Err() error { return nil }
