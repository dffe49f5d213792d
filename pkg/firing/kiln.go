package firing

import "github.com/chazu/kiln/pkg/vessel"

// Phase is where the kiln is in its cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFiring
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFiring:
		return "firing"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Kiln drives a vessel.Firing through idle -> firing -> resolved.
type Kiln struct {
	state  *vessel.Firing
	step   float64
	steps  int
	phase  Phase
	result *Result
}

// NewKiln wraps state. A non-positive step falls back to DefaultStep.
func NewKiln(state *vessel.Firing, step float64) *Kiln {
	if step <= 0 {
		step = DefaultStep
	}
	if state.MaxTemperature <= 0 {
		state.MaxTemperature = vessel.MaxTemperature
	}
	return &Kiln{state: state, step: step}
}

// State returns the underlying firing state.
func (k *Kiln) State() *vessel.Firing { return k.state }

// Phase returns the current phase.
func (k *Kiln) Phase() Phase { return k.phase }

// Result returns the outcome once resolved, or nil.
func (k *Kiln) Result() *Result { return k.result }

// Start lights the kiln from cold. Starting again after a resolution is an
// explicit re-fire; starting while already firing is ignored.
func (k *Kiln) Start() bool {
	if k.phase == PhaseFiring {
		return false
	}
	k.phase = PhaseFiring
	k.steps = 0
	k.result = nil
	k.state.IsFiring = true
	k.state.Progress = 0
	k.state.Temperature = 0
	return true
}

// Step advances one frame. It returns true on the frame the ramp
// completes; the caller resolves exactly then.
func (k *Kiln) Step() bool {
	if k.phase != PhaseFiring {
		return false
	}
	k.steps++
	p := float64(k.steps) * k.step
	if p > 1 {
		p = 1
	}
	k.state.Progress = p
	k.state.Temperature = k.state.MaxTemperature * EaseInOutCubic(p)
	if p < 1 {
		return false
	}
	k.state.IsFiring = false
	return true
}

// Finish resolves a completed ramp. It does nothing unless the ramp has
// just completed, so it can never run twice for one firing.
func (k *Kiln) Finish(rng Rand, glaze vessel.RGB) *Result {
	if k.phase != PhaseFiring || k.state.IsFiring || k.state.Progress < 1 {
		return nil
	}
	res := Resolve(rng, glaze, k.state.Atmosphere)
	k.result = &res
	k.phase = PhaseResolved
	return k.result
}
