package pottery

import (
	"log/slog"

	"github.com/chazu/kiln/pkg/config"
	"github.com/chazu/kiln/pkg/kernel"
)

// Rand is the randomness a session draws from: firing outcomes and the
// scatter of trimming shavings. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Tone is the wheel hum. *audio.Wheel satisfies it. Sessions built
// without one are silent.
type Tone interface {
	Play(hz float64)
	SetFrequency(hz float64)
	Stop()
}

// silentTone is the hum of a session with no audio output.
type silentTone struct{}

func (silentTone) Play(float64)         {}
func (silentTone) SetFrequency(float64) {}
func (silentTone) Stop()                {}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRand sets the randomness source.
func WithRand(r Rand) Option {
	return func(c *Controller) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithTone sets the wheel hum.
func WithTone(t Tone) Option {
	return func(c *Controller) {
		if t != nil {
			c.tone = t
		}
	}
}

// WithKernel sets the geometry kernel used for the wheel head and shavings.
func WithKernel(k kernel.Kernel) Option {
	return func(c *Controller) {
		if k != nil {
			c.kernel = k
		}
	}
}

// WithSettings sets the tuning values.
func WithSettings(s *config.Settings) Option {
	return func(c *Controller) {
		if s != nil {
			c.settings = s
		}
	}
}
