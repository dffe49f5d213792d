package stage

import (
	"errors"
	"fmt"
	"time"
)

// DefaultLoadingDelay is how long the intro lingers before pulling starts.
const DefaultLoadingDelay = 2 * time.Second

var (
	// ErrTerminal is returned when advancing past the firing stage.
	ErrTerminal = errors.New("stage: no stage after firing")
	// ErrInvalidTransition is returned for any transition other than to the
	// immediate successor.
	ErrInvalidTransition = errors.New("stage: invalid transition")
)

// Hook runs after every transition.
type Hook func(from, to Stage)

// Machine holds the active stage. Transitions only ever move forward by
// one; the sole automatic one is intro to pulling after the loading delay,
// measured on the frame clock passed to Tick.
type Machine struct {
	current Stage
	delay   time.Duration
	waited  time.Duration
	hooks   []Hook
}

// NewMachine starts a session in the intro stage. A zero delay leaves the
// intro on the first tick; a negative one falls back to DefaultLoadingDelay.
func NewMachine(delay time.Duration) *Machine {
	if delay < 0 {
		delay = DefaultLoadingDelay
	}
	return &Machine{current: Intro, delay: delay}
}

// Current returns the active stage.
func (m *Machine) Current() Stage { return m.current }

// LoadingDelay returns the intro auto-advance delay.
func (m *Machine) LoadingDelay() time.Duration { return m.delay }

// OnTransition registers h to run after every transition.
func (m *Machine) OnTransition(h Hook) {
	m.hooks = append(m.hooks, h)
}

// Next advances to the successor stage.
func (m *Machine) Next() (Stage, error) {
	to, ok := m.current.Next()
	if !ok {
		return m.current, ErrTerminal
	}
	m.transition(to)
	return to, nil
}

// Enter moves to s, which must be the successor of the current stage.
func (m *Machine) Enter(s Stage) error {
	if m.current.Terminal() {
		return fmt.Errorf("enter %s: %w", s, ErrTerminal)
	}
	want, _ := m.current.Next()
	if s != want {
		return fmt.Errorf("enter %s from %s: %w", s, m.current, ErrInvalidTransition)
	}
	m.transition(s)
	return nil
}

// Tick accumulates frame time while in the intro stage and advances to
// pulling once the loading delay has elapsed. It reports whether it
// advanced. A user who already left the intro is not moved again.
func (m *Machine) Tick(dt time.Duration) bool {
	if m.current != Intro || dt <= 0 {
		return false
	}
	m.waited += dt
	if m.waited < m.delay {
		return false
	}
	m.transition(Pulling)
	return true
}

func (m *Machine) transition(to Stage) {
	from := m.current
	m.current = to
	m.waited = 0
	for _, h := range m.hooks {
		h(from, to)
	}
}
