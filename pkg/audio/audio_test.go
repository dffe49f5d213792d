package audio

import (
	"math"
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlayer struct {
	played []beep.Streamer
}

func (p *recordingPlayer) Play(s beep.Streamer) { p.played = append(p.played, s) }

func TestToneIsSine(t *testing.T) {
	tone := NewTone(44100, 50, 0.1)
	buf := make([][2]float64, 44100)
	n, ok := tone.Stream(buf)
	require.True(t, ok)
	require.Equal(t, len(buf), n)

	crossings := 0
	peak := 0.0
	for i := 1; i < len(buf); i++ {
		if (buf[i-1][0] < 0) != (buf[i][0] < 0) {
			crossings++
		}
		peak = math.Max(peak, math.Abs(buf[i][0]))
		assert.Equal(t, buf[i][0], buf[i][1], "mono on both channels")
	}
	// 50 Hz over one second: two crossings per cycle.
	assert.InDelta(t, 100, crossings, 2)
	assert.InDelta(t, 0.1, peak, 1e-3)
}

func TestToneRetunes(t *testing.T) {
	tone := NewTone(0, 50, 1)
	tone.SetFrequency(70)
	assert.Equal(t, 70.0, tone.Frequency())
	tone.SetFrequency(-3)
	assert.Equal(t, 0.0, tone.Frequency())

	buf := make([][2]float64, 64)
	tone.Stream(buf)
	for _, s := range buf {
		assert.Zero(t, s[0], "0 Hz is silence")
	}
}

func TestToneStops(t *testing.T) {
	tone := NewTone(44100, 50, 0.1)
	tone.Stop()
	n, ok := tone.Stream(make([][2]float64, 16))
	assert.False(t, ok)
	assert.Zero(t, n)
	assert.NoError(t, tone.Err())
	assert.True(t, tone.Stopped())
}

func TestWheelLifecycle(t *testing.T) {
	p := &recordingPlayer{}
	w := NewWheel(p, DefaultSampleRate, 0.1, nil)
	assert.False(t, w.Playing())
	w.SetFrequency(99)
	assert.Zero(t, w.Frequency())

	w.Play(50)
	require.Len(t, p.played, 1)
	first := p.played[0].(*Tone)
	w.SetFrequency(60)
	assert.Equal(t, 60.0, first.Frequency())

	w.Play(50)
	assert.True(t, first.Stopped(), "replaying stops the old hum")
	require.Len(t, p.played, 2)

	w.Stop()
	assert.False(t, w.Playing())
	assert.True(t, p.played[1].(*Tone).Stopped())
}

func TestWheelWithoutPlayer(t *testing.T) {
	w := NewWheel(nil, 0, 0.1, nil)
	w.Play(50)
	assert.True(t, w.Playing())
	w.SetFrequency(80)
	assert.Equal(t, 80.0, w.Frequency())
	w.Stop()
	assert.False(t, w.Playing())
}
