// Package firing runs the kiln: a fixed temperature ramp advanced one step
// per frame, followed by a single stochastic resolution of how the piece
// came out.
package firing

import (
	"math"

	"github.com/chazu/kiln/pkg/vessel"
)

// DefaultStep is the progress added per frame; a full firing takes 200 frames.
const DefaultStep = 0.005

// Outcome thresholds on a uniform sample in [0,1).
const (
	successBelow       = 0.7
	transmutationBelow = 0.9
)

// Outcome is how a firing ended.
type Outcome int

const (
	OutcomeSuccess       Outcome = iota // fired as intended
	OutcomeTransmutation                // rare kiln transformation, still a success
	OutcomeCracked                      // the body failed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransmutation:
		return "transmutation"
	case OutcomeCracked:
		return "cracked"
	default:
		return "unknown"
	}
}

// Message is the user-facing announcement of the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeSuccess:
		return "Fired successfully!"
	case OutcomeTransmutation:
		return "Kiln transformation: a striking result!"
	case OutcomeCracked:
		return "Firing failed, the body cracked."
	default:
		return ""
	}
}

// Success reports whether the piece survived.
func (o Outcome) Success() bool {
	return o != OutcomeCracked
}

// Rand is the randomness the resolver draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Result is a resolved firing.
type Result struct {
	Outcome Outcome    `json:"outcome"`
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Color   vessel.RGB `json:"color"`
}

// EaseInOutCubic eases t in [0,1]: slow start, fast middle, slow finish.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Classify maps a uniform sample r in [0,1) to an outcome.
func Classify(r float64) Outcome {
	switch {
	case r < successBelow:
		return OutcomeSuccess
	case r < transmutationBelow:
		return OutcomeTransmutation
	default:
		return OutcomeCracked
	}
}

// FiredColor shifts a glaze color by the kiln atmosphere: reduction greens
// and darkens it, oxidation warms it. Channels are clamped to [0,1].
func FiredColor(base vessel.RGB, a vessel.Atmosphere) vessel.RGB {
	if a == vessel.Reduction {
		return base.Scale(0.9, 1.1, 0.8)
	}
	return base.Scale(1.1, 0.9, 1.1)
}

// Resolve draws one sample from rng and computes the outcome. A cracked
// piece keeps its glaze color.
func Resolve(rng Rand, glaze vessel.RGB, a vessel.Atmosphere) Result {
	o := Classify(rng.Float64())
	res := Result{Outcome: o, Success: o.Success(), Message: o.Message(), Color: glaze}
	if res.Success {
		res.Color = FiredColor(glaze, a)
	}
	return res
}
