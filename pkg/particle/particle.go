// Package particle simulates the clay shavings thrown off by the trimming
// tool. Particles are spawned in small bursts, fall under a constant pull,
// shrink every frame and expire once they are too small to see.
package particle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// BurstSize is the number of shavings per trimming contact.
	BurstSize = 5
	// BeadRadius is the radius of a shaving mesh.
	BeadRadius = 0.02
	// Gravity is subtracted from the vertical velocity every frame.
	Gravity = 0.005
	// Decay multiplies the scale every frame.
	Decay = 0.98
	// MinScale is the scale below which a particle expires.
	MinScale = 0.1

	spread = 0.1
	lift   = 0.05
)

// Rand is the randomness bursts draw from.
type Rand interface {
	Float64() float64
}

// Particle is a single shaving in world space.
type Particle struct {
	ID       string
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Scale    float32
}

// System owns the live particles. It is not safe for concurrent use.
type System struct {
	live []*Particle
	next uint64
}

// NewSystem returns an empty system.
func NewSystem() *System {
	return &System{}
}

// Burst spawns BurstSize particles at p, each thrown outward and upward.
func (s *System) Burst(p mgl32.Vec3, rng Rand) []*Particle {
	spawned := make([]*Particle, 0, BurstSize)
	for i := 0; i < BurstSize; i++ {
		s.next++
		v := mgl32.Vec3{
			float32((rng.Float64() - 0.5) * spread),
			float32(rng.Float64()*spread + lift),
			float32((rng.Float64() - 0.5) * spread),
		}
		pt := &Particle{
			ID:       fmt.Sprintf("particle-%d", s.next),
			Position: p,
			Velocity: v,
			Scale:    1,
		}
		s.live = append(s.live, pt)
		spawned = append(spawned, pt)
	}
	return spawned
}

// Update advances every particle one frame. It returns the survivors that
// moved and the IDs of those that expired this frame.
func (s *System) Update() (moved []*Particle, expired []string) {
	kept := s.live[:0]
	for _, p := range s.live {
		p.Position = p.Position.Add(p.Velocity)
		p.Velocity[1] -= Gravity
		p.Scale *= Decay
		if p.Scale < MinScale {
			expired = append(expired, p.ID)
			continue
		}
		kept = append(kept, p)
		moved = append(moved, p)
	}
	for i := len(kept); i < len(s.live); i++ {
		s.live[i] = nil
	}
	s.live = kept
	return moved, expired
}

// Live returns the particles currently alive.
func (s *System) Live() []*Particle {
	return s.live
}

// Len returns the number of live particles.
func (s *System) Len() int {
	return len(s.live)
}

// Clear drops every particle and returns their IDs.
func (s *System) Clear() []string {
	ids := make([]string, 0, len(s.live))
	for _, p := range s.live {
		ids = append(ids, p.ID)
	}
	s.live = nil
	return ids
}
