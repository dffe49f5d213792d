package scene

import "github.com/go-gl/mathgl/mgl32"

// Viewport is the output surface size in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns width/height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width / v.Height)
}

// Camera is a perspective camera looking at a target.
type Camera struct {
	Eye    mgl32.Vec3 `json:"eye"`
	Target mgl32.Vec3 `json:"target"`
	Up     mgl32.Vec3 `json:"up"`
	FovY   float32    `json:"fovY"` // degrees
	Near   float32    `json:"near"`
	Far    float32    `json:"far"`
}

// DefaultCamera sits above and in front of the wheel.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl32.Vec3{0, 2, 5},
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   60,
		Near:   0.1,
		Far:    1000,
	}
}

// View returns the world-to-camera matrix.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the perspective matrix for the given viewport.
func (c Camera) Projection(vp Viewport) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), vp.Aspect(), c.Near, c.Far)
}

// Ray is a half-line in world space.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // unit length
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Ray returns the world ray through screen pixel (x, y), with y growing
// downwards as pointer events report it.
func (c Camera) Ray(vp Viewport, x, y float64) (Ray, bool) {
	w, h := int(vp.Width), int(vp.Height)
	if w <= 0 || h <= 0 {
		return Ray{}, false
	}
	view := c.View()
	proj := c.Projection(vp)
	winY := float32(vp.Height - y)

	near, err := mgl32.UnProject(mgl32.Vec3{float32(x), winY, 0}, view, proj, 0, 0, w, h)
	if err != nil {
		return Ray{}, false
	}
	far, err := mgl32.UnProject(mgl32.Vec3{float32(x), winY, 1}, view, proj, 0, 0, w, h)
	if err != nil {
		return Ray{}, false
	}
	dir := far.Sub(near)
	if dir.Len() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: near, Direction: dir.Normalize()}, true
}
