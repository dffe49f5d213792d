package vessel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape bounds and tuning constants.
const (
	MinHeight     = 0.5
	MaxHeight     = 3.0
	MinThickness  = 0.02
	MinSmoothness = 0.8
	MaxSmoothness = 0.99

	// MaxOpeningRatio bounds the opening as a fraction of the radius.
	MaxOpeningRatio = 0.8

	DefaultHeight           = 2.0
	DefaultRadius           = 0.5
	DefaultThickness        = 0.1
	DefaultOpening          = 0.2
	DefaultSmoothness       = 0.95
	DefaultDeformationSpeed = 0.01

	// VelocityGain amplifies a pull by (1 + velocity*VelocityGain).
	VelocityGain = 5.0
	// StabilityThreshold is the normalized velocity above which the
	// clay starts losing smoothness.
	StabilityThreshold = 0.5
	SmoothnessLoss     = 0.01
	SmoothnessRecovery = 0.005
	// CollapseThreshold: smoothness below this warns of a collapse.
	CollapseThreshold = 0.85

	// PinchGain scales a width-normalized pinch delta into an opening change.
	PinchGain = 0.5

	// TrimReach is the fraction of the radius a trimming tool must be
	// inside of to shave the wall.
	TrimReach    = 0.9
	TrimStep     = 0.005
	TooThinBelow = 0.03
)

// Shape is the subset of vessel state the lathe depends on. Two equal
// shapes produce identical geometry.
type Shape struct {
	Height     float64
	Radius     float64
	Smoothness float64
}

// Vessel is the deformable clay body. The zero value is not usable; call New.
type Vessel struct {
	height           float64
	radius           float64
	thickness        float64
	opening          float64
	rotation         float64
	smoothness       float64
	deformationSpeed float64
}

// Option configures a Vessel at construction.
type Option func(*Vessel)

// WithHeight sets the starting height (clamped).
func WithHeight(h float64) Option {
	return func(v *Vessel) { v.height = h }
}

// WithThickness sets the starting wall thickness (clamped).
func WithThickness(t float64) Option {
	return func(v *Vessel) { v.thickness = t }
}

// WithOpening sets the starting opening (clamped).
func WithOpening(o float64) Option {
	return func(v *Vessel) { v.opening = o }
}

// WithSmoothness sets the starting smoothness (clamped).
func WithSmoothness(s float64) Option {
	return func(v *Vessel) { v.smoothness = s }
}

// WithDeformationSpeed overrides the pull tuning coefficient.
func WithDeformationSpeed(s float64) Option {
	return func(v *Vessel) { v.deformationSpeed = s }
}

// New returns a freshly wedged lump with the default proportions.
func New(opts ...Option) *Vessel {
	v := &Vessel{
		height:           DefaultHeight,
		radius:           DefaultRadius,
		thickness:        DefaultThickness,
		opening:          DefaultOpening,
		smoothness:       DefaultSmoothness,
		deformationSpeed: DefaultDeformationSpeed,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.clamp()
	return v
}

func (v *Vessel) Height() float64           { return v.height }
func (v *Vessel) Radius() float64           { return v.radius }
func (v *Vessel) Thickness() float64        { return v.thickness }
func (v *Vessel) Opening() float64          { return v.opening }
func (v *Vessel) Rotation() float64         { return v.rotation }
func (v *Vessel) Smoothness() float64       { return v.smoothness }
func (v *Vessel) DeformationSpeed() float64 { return v.deformationSpeed }

// MaxOpening is the widest the opening may get for this radius.
func (v *Vessel) MaxOpening() float64 { return v.radius * MaxOpeningRatio }

// Shape returns the lathe inputs.
func (v *Vessel) Shape() Shape {
	return Shape{Height: v.height, Radius: v.radius, Smoothness: v.smoothness}
}

// ApplyPullDelta raises or lowers the wall from a vertical drag of dy pixels
// in a viewport viewportHeight pixels tall. Dragging up (negative dy) pulls
// the clay taller. Fast drags roughen the surface; slow ones let it recover.
func (v *Vessel) ApplyPullDelta(dy, viewportHeight, velocity float64) Signal {
	if viewportHeight <= 0 || anyNaN(dy, viewportHeight, velocity) {
		return SignalNone
	}
	normalized := dy / viewportHeight
	amount := normalized * v.deformationSpeed * (1 + velocity*VelocityGain)
	v.height = clamp(v.height-amount, MinHeight, MaxHeight)

	if velocity > StabilityThreshold {
		v.smoothness = clamp(v.smoothness-SmoothnessLoss, MinSmoothness, MaxSmoothness)
		if v.smoothness < CollapseThreshold {
			return SignalNearCollapse
		}
		return SignalNone
	}
	v.smoothness = clamp(v.smoothness+SmoothnessRecovery, MinSmoothness, MaxSmoothness)
	return SignalNone
}

// ApplyPinchDelta widens or narrows the opening from a change of delta
// pixels in two-finger distance on a viewport viewportWidth pixels wide.
func (v *Vessel) ApplyPinchDelta(delta, viewportWidth float64) {
	if viewportWidth <= 0 || anyNaN(delta, viewportWidth) {
		return
	}
	change := delta / viewportWidth * PinchGain
	v.opening = clamp(v.opening+change, 0, v.MaxOpening())
}

// ApplyTrimAt shaves the wall when the tool touches the vessel at local,
// a point in the vessel's own frame. Touches outside the trimming reach
// of the axis leave the wall alone.
func (v *Vessel) ApplyTrimAt(local mgl32.Vec3) Signal {
	x, z := float64(local.X()), float64(local.Z())
	if anyNaN(x, z) || math.Sqrt(x*x+z*z) >= v.radius*TrimReach {
		return SignalNone
	}
	v.thickness = math.Max(MinThickness, v.thickness-TrimStep)
	if v.thickness < TooThinBelow {
		return SignalTooThin
	}
	return SignalNone
}

// Spin advances the wheel angle. Negative deltas are ignored so the
// rotation only ever grows.
func (v *Vessel) Spin(delta float64) {
	if delta > 0 {
		v.rotation += delta
	}
}

func (v *Vessel) clamp() {
	if v.radius <= 0 {
		v.radius = DefaultRadius
	}
	v.height = clamp(v.height, MinHeight, MaxHeight)
	v.thickness = math.Max(MinThickness, v.thickness)
	v.opening = clamp(v.opening, 0, v.MaxOpening())
	v.smoothness = clamp(v.smoothness, MinSmoothness, MaxSmoothness)
}

// anyNaN reports whether a mutation input is undefined. Such mutations are
// dropped and the vessel keeps its previous shape.
func anyNaN(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}
