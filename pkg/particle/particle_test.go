package particle

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurstSpawnsOutwardAndUp(t *testing.T) {
	s := NewSystem()
	rng := rand.New(rand.NewPCG(1, 1))
	at := mgl32.Vec3{0.4, 1, 0.2}

	spawned := s.Burst(at, rng)
	require.Len(t, spawned, BurstSize)
	assert.Equal(t, BurstSize, s.Len())

	ids := map[string]bool{}
	for _, p := range spawned {
		assert.Equal(t, at, p.Position)
		assert.Equal(t, float32(1), p.Scale)
		assert.GreaterOrEqual(t, p.Velocity.Y(), float32(lift))
		assert.LessOrEqual(t, p.Velocity.Y(), float32(lift+spread))
		assert.LessOrEqual(t, p.Velocity.X(), float32(spread/2))
		assert.GreaterOrEqual(t, p.Velocity.Z(), float32(-spread/2))
		ids[p.ID] = true
	}
	assert.Len(t, ids, BurstSize, "IDs are unique")
}

func TestUpdateMovesAndDecays(t *testing.T) {
	s := NewSystem()
	s.Burst(mgl32.Vec3{}, rand.New(rand.NewPCG(2, 2)))
	v0 := s.Live()[0].Velocity

	moved, expired := s.Update()
	assert.Len(t, moved, BurstSize)
	assert.Empty(t, expired)

	p := s.Live()[0]
	assert.Equal(t, v0, p.Position)
	assert.InDelta(t, v0.Y()-Gravity, p.Velocity.Y(), 1e-6)
	assert.InDelta(t, Decay, p.Scale, 1e-6)
}

func TestParticlesExpire(t *testing.T) {
	s := NewSystem()
	s.Burst(mgl32.Vec3{}, rand.New(rand.NewPCG(3, 3)))

	// 0.98^n < 0.1 first holds at n = 114.
	var expired []string
	frames := 0
	for s.Len() > 0 {
		_, e := s.Update()
		expired = append(expired, e...)
		frames++
		require.Less(t, frames, 500)
	}
	assert.Equal(t, 114, frames)
	assert.Len(t, expired, BurstSize)
}

func TestClear(t *testing.T) {
	s := NewSystem()
	rng := rand.New(rand.NewPCG(4, 4))
	s.Burst(mgl32.Vec3{}, rng)
	s.Burst(mgl32.Vec3{}, rng)

	ids := s.Clear()
	assert.Len(t, ids, 2*BurstSize)
	assert.Zero(t, s.Len())
	moved, expired := s.Update()
	assert.Empty(t, moved)
	assert.Empty(t, expired)
}
