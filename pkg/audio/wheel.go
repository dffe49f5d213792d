package audio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Player sends a streamer to an output device.
type Player interface {
	Play(s beep.Streamer)
}

// Speaker plays through the system audio device.
type Speaker struct{}

// OpenSpeaker initialises the audio device at sr with a 100ms buffer.
func OpenSpeaker(sr beep.SampleRate) (*Speaker, error) {
	if sr <= 0 {
		sr = DefaultSampleRate
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("audio: init speaker: %w", err)
	}
	return &Speaker{}, nil
}

// Play starts s on the device.
func (*Speaker) Play(s beep.Streamer) {
	speaker.Play(s)
}

// Wheel is the hum of the wheel head: it starts when the wheel is set
// up, rises in pitch as the wheel turns and stops on teardown. With a nil
// Player it keeps its state but makes no sound.
type Wheel struct {
	player     Player
	sampleRate beep.SampleRate
	gain       float64
	tone       *Tone
	logger     *slog.Logger
}

// NewWheel returns a silent, stopped hum.
func NewWheel(p Player, sr beep.SampleRate, gain float64, logger *slog.Logger) *Wheel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Wheel{player: p, sampleRate: sr, gain: gain, logger: logger}
}

// Play starts a fresh hum at hz, replacing any hum already playing.
func (w *Wheel) Play(hz float64) {
	w.Stop()
	w.tone = NewTone(w.sampleRate, hz, w.gain)
	if w.player == nil {
		w.logger.Debug("wheel hum muted, no audio output")
		return
	}
	w.player.Play(w.tone)
}

// SetFrequency retunes the hum if it is playing.
func (w *Wheel) SetFrequency(hz float64) {
	if w.tone != nil {
		w.tone.SetFrequency(hz)
	}
}

// Stop silences the hum.
func (w *Wheel) Stop() {
	if w.tone != nil {
		w.tone.Stop()
		w.tone = nil
	}
}

// Playing reports whether a hum is active.
func (w *Wheel) Playing() bool {
	return w.tone != nil
}

// Frequency returns the pitch of the active hum, or 0.
func (w *Wheel) Frequency() float64 {
	if w.tone == nil {
		return 0
	}
	return w.tone.Frequency()
}
