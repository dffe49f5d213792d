// Package stage sequences a pottery session: intro, pulling, trimming,
// glazing and firing, strictly in that order. It also describes what each
// stage's control surface offers, without knowing how it is drawn.
package stage

import (
	"fmt"
	"strings"
)

// Stage is one step of a session. Exactly one is active at a time.
type Stage int

const (
	Intro Stage = iota
	Pulling
	Trimming
	Glazing
	Firing
)

// All lists the stages in session order.
var All = []Stage{Intro, Pulling, Trimming, Glazing, Firing}

func (s Stage) String() string {
	switch s {
	case Intro:
		return "intro"
	case Pulling:
		return "pulling"
	case Trimming:
		return "trimming"
	case Glazing:
		return "glazing"
	case Firing:
		return "firing"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Valid reports whether s is one of the five stages.
func (s Stage) Valid() bool {
	return s >= Intro && s <= Firing
}

// Terminal reports whether s has no successor.
func (s Stage) Terminal() bool {
	return s == Firing
}

// Next returns the successor of s. ok is false for the terminal stage.
func (s Stage) Next() (Stage, bool) {
	if !s.Valid() || s.Terminal() {
		return s, false
	}
	return s + 1, true
}

// Parse maps a stage name back to its Stage.
func Parse(name string) (Stage, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range All {
		if s.String() == n {
			return s, nil
		}
	}
	return Intro, fmt.Errorf("unknown stage %q", name)
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage name.
func (s *Stage) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
