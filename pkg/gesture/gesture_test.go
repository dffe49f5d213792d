package gesture

import (
	"image/color"
	"testing"

	"github.com/chazu/kiln/pkg/glaze"
	"github.com/chazu/kiln/pkg/scene"
	"github.com/chazu/kiln/pkg/stage"
	"github.com/chazu/kiln/pkg/tessellate"
	"github.com/chazu/kiln/pkg/vessel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStage stage.Stage

func (f fixedStage) Current() stage.Stage { return stage.Stage(f) }

type bench struct {
	v     *vessel.Vessel
	g     *vessel.Glaze
	sc    *scene.Graph
	stage *fixedStage
	in    *Interpreter
}

// newBench puts a default vessel on an 800x600 scene, dropped by one unit
// so the centre of the screen lands on its upper wall.
func newBench(s stage.Stage) *bench {
	b := &bench{v: vessel.New(), g: vessel.NewGlaze(), sc: scene.New(800, 600)}
	st := fixedStage(s)
	b.stage = &st
	b.sc.Insert(&scene.Node{
		ID:        scene.VesselID,
		Kind:      scene.KindVessel,
		Mesh:      tessellate.Vessel(b.v.Shape()),
		Transform: scene.Transform{Position: mgl32.Vec3{0, -1, 0}, Scale: 1},
	})
	b.in = New(b.stage, b.v, b.g, b.sc, 0)
	return b
}

func TestInertStages(t *testing.T) {
	for _, s := range []stage.Stage{stage.Intro, stage.Firing} {
		b := newBench(s)
		before := *b.v
		b.in.PointerDown(400, 300)
		eff := b.in.PointerMove(400, 100)
		assert.True(t, eff.Empty(), s.String())
		assert.Equal(t, before, *b.v, s.String())
	}
}

func TestMoveWithoutPressIsIgnored(t *testing.T) {
	b := newBench(stage.Pulling)
	h := b.v.Height()
	assert.True(t, b.in.PointerMove(400, 100).Empty())
	assert.Equal(t, h, b.v.Height())
}

func TestPullRaisesWall(t *testing.T) {
	b := newBench(stage.Pulling)
	b.in.PointerDown(400, 300)
	eff := b.in.PointerMove(400, 250)

	require.True(t, eff.Regenerate)
	assert.Equal(t, vessel.SignalNone, eff.Signal)
	// dy=-50 over 600px at velocity 0.5: 50/600 * 0.01 * 3.5.
	assert.InDelta(t, vessel.DefaultHeight+50.0/600*0.01*3.5, b.v.Height(), 1e-12)
	assert.InDelta(t, 0.5, b.in.Touch().Velocity, 1e-12)
	assert.Equal(t, vessel.Point{X: 400, Y: 250}, b.in.Touch().Last)
}

func TestFastPullWarns(t *testing.T) {
	b := newBench(stage.Pulling)
	b.in.PointerDown(400, 300)
	var last Effect
	y := 300.0
	for i := 0; i < 15; i++ {
		y -= 100
		last = b.in.PointerMove(400, y)
	}
	assert.Equal(t, vessel.SignalNearCollapse, last.Signal)
	assert.Less(t, b.v.Smoothness(), vessel.CollapseThreshold)
}

func TestPointerUpResetsTouch(t *testing.T) {
	b := newBench(stage.Pulling)
	b.in.PointerDown(400, 300)
	b.in.PointerMove(400, 200)
	b.in.PointerUp()
	assert.Equal(t, vessel.Touch{}, b.in.Touch())
}

func TestPinchWidensOpening(t *testing.T) {
	b := newBench(stage.Pulling)
	b.in.TouchStart([]vessel.Point{{X: 300, Y: 300}, {X: 400, Y: 300}})
	eff := b.in.TouchMove([]vessel.Point{{X: 250, Y: 300}, {X: 450, Y: 300}})

	assert.False(t, eff.Regenerate, "opening does not change the lathe profile")
	assert.InDelta(t, vessel.DefaultOpening+100.0/800*0.5, b.v.Opening(), 1e-12)
	assert.Equal(t, 200.0, b.in.Touch().LastPinchDistance)

	// Pinching far beyond the limit clamps.
	b.in.TouchMove([]vessel.Point{{X: 0, Y: 300}, {X: 800, Y: 300}})
	b.in.TouchMove([]vessel.Point{{X: -5000, Y: 300}, {X: 5000, Y: 300}})
	assert.Equal(t, b.v.MaxOpening(), b.v.Opening())

	b.in.TouchEnd()
	assert.False(t, b.in.Touch().IsTouching)
}

func TestPointerStreamsDuringPinchAreIgnored(t *testing.T) {
	b := newBench(stage.Pulling)
	b.in.TouchStart([]vessel.Point{{X: 300, Y: 300}, {X: 500, Y: 300}})

	// Each finger also reports as its own pointer; alternating them must
	// not read as a 200px drag.
	b.in.PointerDown(300, 300)
	b.in.PointerDown(500, 300)
	for i := 0; i < 10; i++ {
		assert.True(t, b.in.PointerMove(300, 300+float64(i)).Empty())
		assert.True(t, b.in.PointerMove(500, 300-float64(i)).Empty())
	}
	assert.Equal(t, vessel.DefaultHeight, b.v.Height())
	assert.Equal(t, vessel.DefaultSmoothness, b.v.Smoothness())

	b.in.PointerUp()
	assert.True(t, b.in.Touch().Pinching, "a lifted pointer does not end the pinch")
	b.in.TouchMove([]vessel.Point{{X: 280, Y: 300}, {X: 520, Y: 300}})
	assert.Greater(t, b.v.Opening(), vessel.DefaultOpening)

	b.in.TouchEnd()
	assert.False(t, b.in.Touch().Pinching)
	b.in.PointerDown(400, 300)
	assert.False(t, b.in.PointerMove(400, 250).Empty(), "pointer drags resume after the pinch")
}

func TestPinchOutsidePullingIsIgnored(t *testing.T) {
	b := newBench(stage.Trimming)
	b.in.TouchStart([]vessel.Point{{X: 300, Y: 300}, {X: 400, Y: 300}})
	b.in.TouchMove([]vessel.Point{{X: 200, Y: 300}, {X: 500, Y: 300}})
	assert.Equal(t, vessel.DefaultOpening, b.v.Opening())
}

func TestSingleTouchPulls(t *testing.T) {
	b := newBench(stage.Pulling)
	b.in.TouchStart([]vessel.Point{{X: 400, Y: 300}})
	eff := b.in.TouchMove([]vessel.Point{{X: 400, Y: 320}})
	assert.True(t, eff.Regenerate)
	assert.Less(t, b.v.Height(), vessel.DefaultHeight)
}

func TestTrimHitShavesAndBursts(t *testing.T) {
	b := newBench(stage.Trimming)
	b.in.PointerDown(405, 290)
	eff := b.in.PointerMove(405, 300)

	require.NotNil(t, eff.Burst)
	assert.False(t, eff.Regenerate)
	assert.InDelta(t, vessel.DefaultThickness-vessel.TrimStep, b.v.Thickness(), 1e-12)

	hit, ok := b.sc.Pick(405, 300, scene.VesselID)
	require.True(t, ok)
	assert.Equal(t, hit.World, *eff.Burst)
}

func TestTrimMissIsNoop(t *testing.T) {
	b := newBench(stage.Trimming)
	b.in.PointerDown(10, 10)
	eff := b.in.PointerMove(20, 10)
	assert.True(t, eff.Empty())
	assert.Equal(t, vessel.DefaultThickness, b.v.Thickness())
}

func TestTrimWarnsWhenThin(t *testing.T) {
	b := newBench(stage.Trimming)
	b.in.PointerDown(405, 300)
	var sig vessel.Signal
	for i := 0; i < 30; i++ {
		sig = b.in.PointerMove(405, 300).Signal
	}
	assert.Equal(t, vessel.SignalTooThin, sig)
	assert.Equal(t, vessel.MinThickness, b.v.Thickness())
}

func TestGlazeStampsAtHitUV(t *testing.T) {
	b := newBench(stage.Glazing)
	canvas := b.g.EnsureCanvas(glaze.DefaultSize)
	require.NoError(t, b.g.Select(2))
	v0 := canvas.Version()

	b.in.PointerDown(430, 300)
	eff := b.in.PointerMove(430, 300)
	require.True(t, eff.Stamped)
	assert.Greater(t, canvas.Version(), v0)

	hit, ok := b.sc.Pick(430, 300, scene.VesselID)
	require.True(t, ok)
	x, y := canvas.PixelAt(float64(hit.UV.X()), float64(hit.UV.Y()))
	assert.Equal(t, color.RGBAModel.Convert(b.g.Current), canvas.At(x, y))
}

func TestGlazeWithoutCanvasIsNoop(t *testing.T) {
	b := newBench(stage.Glazing)
	b.in.PointerDown(430, 300)
	assert.True(t, b.in.PointerMove(430, 300).Empty())
}

func TestStageFollowsStager(t *testing.T) {
	b := newBench(stage.Intro)
	b.in.PointerDown(400, 300)
	assert.True(t, b.in.PointerMove(400, 280).Empty())

	*b.stage = fixedStage(stage.Pulling)
	assert.True(t, b.in.PointerMove(400, 260).Regenerate)
}
