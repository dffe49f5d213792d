package vessel

import (
	"fmt"
	"image/color"
	"math"

	"github.com/chazu/kiln/pkg/glaze"
)

// RGB is a linear color with channels in [0,1]. It satisfies color.Color
// so it can be handed straight to the glaze canvas.
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

var _ color.Color = RGB{}

// RGBA implements color.Color (alpha is always opaque).
func (c RGB) RGBA() (r, g, b, a uint32) {
	return channel16(c.R), channel16(c.G), channel16(c.B), 0xffff
}

// Clamp returns c with every channel clamped into [0,1].
func (c RGB) Clamp() RGB {
	return RGB{R: clamp(c.R, 0, 1), G: clamp(c.G, 0, 1), B: clamp(c.B, 0, 1)}
}

// Scale multiplies each channel by the matching factor and clamps.
func (c RGB) Scale(r, g, b float64) RGB {
	return RGB{R: c.R * r, G: c.G * g, B: c.B * b}.Clamp()
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	c = c.Clamp()
	return fmt.Sprintf("#%02x%02x%02x", channel8(c.R), channel8(c.G), channel8(c.B))
}

func channel16(v float64) uint32 {
	return uint32(math.Round(clamp(v, 0, 1) * 0xffff))
}

func channel8(v float64) uint8 {
	return uint8(math.Floor(clamp(v, 0, 1) * 255))
}

// Swatch is a named glaze in the palette.
type Swatch struct {
	Label string `json:"label"`
	Color RGB    `json:"color"`
}

// DefaultPalette is the fixed, ordered set of glazes offered at the glazing bench.
var DefaultPalette = []Swatch{
	{Label: "Sky celadon", Color: RGB{R: 0.5, G: 0.7, B: 0.9}},
	{Label: "Plum green", Color: RGB{R: 0.3, G: 0.8, B: 0.6}},
	{Label: "Underglaze red", Color: RGB{R: 0.9, G: 0.3, B: 0.4}},
	{Label: "Pea green", Color: RGB{R: 0.7, G: 0.8, B: 0.6}},
	{Label: "White", Color: RGB{R: 0.9, G: 0.9, B: 0.9}},
}

// ClayColor is the bisque tan of unglazed clay.
var ClayColor = RGB{R: 210.0 / 255, G: 180.0 / 255, B: 140.0 / 255}

// Glaze is the glazing bench: the chosen color, the palette and the
// color map painted onto the piece.
type Glaze struct {
	Current RGB
	Palette []Swatch
	// Canvas is created the first time the piece reaches the glazing bench
	// and kept through firing.
	Canvas *glaze.Canvas
}

// NewGlaze returns a bench with the default palette and its first color selected.
func NewGlaze() *Glaze {
	palette := make([]Swatch, len(DefaultPalette))
	copy(palette, DefaultPalette)
	return &Glaze{Current: palette[0].Color, Palette: palette}
}

// Select picks palette entry i as the current color.
func (g *Glaze) Select(i int) error {
	if i < 0 || i >= len(g.Palette) {
		return fmt.Errorf("glaze: palette index %d out of range [0,%d)", i, len(g.Palette))
	}
	g.Current = g.Palette[i].Color
	return nil
}

// EnsureCanvas creates the color map on first use, filled with bare clay.
func (g *Glaze) EnsureCanvas(size int) *glaze.Canvas {
	if g.Canvas == nil {
		g.Canvas = glaze.NewCanvas(size, size, ClayColor)
	}
	return g.Canvas
}

// Atmosphere is the kiln atmosphere chosen before firing.
type Atmosphere int

const (
	Reduction Atmosphere = iota
	Oxidation
)

func (a Atmosphere) String() string {
	switch a {
	case Reduction:
		return "reduction"
	case Oxidation:
		return "oxidation"
	default:
		return "unknown"
	}
}

// ParseAtmosphere maps "reduction" or "oxidation" to an Atmosphere.
func ParseAtmosphere(s string) (Atmosphere, error) {
	switch s {
	case "reduction":
		return Reduction, nil
	case "oxidation":
		return Oxidation, nil
	}
	return 0, fmt.Errorf("invalid atmosphere %q, expected reduction or oxidation", s)
}

// MaxTemperature is the peak kiln temperature in °C.
const MaxTemperature = 1300.0

// Firing is the kiln state.
type Firing struct {
	Temperature    float64
	MaxTemperature float64
	Atmosphere     Atmosphere
	IsFiring       bool
	Progress       float64
}

// NewFiring returns a cold kiln set for reduction.
func NewFiring() *Firing {
	return &Firing{MaxTemperature: MaxTemperature, Atmosphere: Reduction}
}

// Point is a screen position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// VelocityScale converts pixels moved per event into normalized velocity.
const VelocityScale = 0.01

// Touch tracks the gesture in progress. It is reset when the gesture ends.
type Touch struct {
	IsTouching        bool
	Pinching          bool
	Last              Point
	Current           Point
	Velocity          float64
	PinchDistance     float64
	LastPinchDistance float64
}

// Begin starts a single-pointer gesture at p.
func (t *Touch) Begin(p Point) {
	t.IsTouching = true
	t.Pinching = false
	t.Last = p
	t.Current = p
}

// Move records a new pointer sample and updates the velocity. It returns
// the displacement since the previous sample.
func (t *Touch) Move(p Point) (dx, dy float64) {
	t.Current = p
	dx = t.Current.X - t.Last.X
	dy = t.Current.Y - t.Last.Y
	t.Velocity = math.Hypot(dx, dy) * VelocityScale
	return dx, dy
}

// Settle makes the current sample the reference for the next move.
func (t *Touch) Settle() {
	t.Last = t.Current
}

// BeginPinch starts a two-finger gesture with the fingers d pixels apart.
func (t *Touch) BeginPinch(d float64) {
	t.IsTouching = true
	t.Pinching = true
	t.LastPinchDistance = d
	t.PinchDistance = d
}

// Pinch records a new finger distance and returns the change since the
// previous sample.
func (t *Touch) Pinch(d float64) float64 {
	t.PinchDistance = d
	delta := t.PinchDistance - t.LastPinchDistance
	t.LastPinchDistance = t.PinchDistance
	return delta
}

// End finishes the gesture and clears all tracking.
func (t *Touch) End() {
	*t = Touch{}
}
