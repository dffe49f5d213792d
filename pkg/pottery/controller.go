// Package pottery wires a whole throwing session together: the stage
// sequence, gesture handling, the vessel and its mesh, glazing, the kiln,
// shavings and the wheel hum. A Controller is single-threaded. Callers
// feed it input events and a frame clock and read back its state.
package pottery

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/chazu/kiln/pkg/config"
	"github.com/chazu/kiln/pkg/firing"
	"github.com/chazu/kiln/pkg/gesture"
	"github.com/chazu/kiln/pkg/glaze"
	"github.com/chazu/kiln/pkg/kernel"
	"github.com/chazu/kiln/pkg/kernel/sdfx"
	"github.com/chazu/kiln/pkg/particle"
	"github.com/chazu/kiln/pkg/scene"
	"github.com/chazu/kiln/pkg/stage"
	"github.com/chazu/kiln/pkg/tessellate"
	"github.com/chazu/kiln/pkg/vessel"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNoSuchColor is returned for a palette index outside the palette.
	ErrNoSuchColor = errors.New("pottery: no such glaze color")
	// ErrNotFiringStage is returned when lighting the kiln outside the
	// firing stage.
	ErrNotFiringStage = errors.New("pottery: kiln can only be lit in the firing stage")
)

const (
	wheelRadius   = 2.0
	wheelHeight   = 0.2
	wheelY        = -1.0
	wheelSegments = 32
	trimAngle     = math.Pi / 4
	wheelColor    = "#8b4513"
)

// Controller is a single pottery session.
type Controller struct {
	logger   *slog.Logger
	settings *config.Settings
	rng      Rand
	tone     Tone
	kernel   kernel.Kernel

	scene     scene.Scene
	stages    *stage.Machine
	vessel    *vessel.Vessel
	glaze     *vessel.Glaze
	firing    *vessel.Firing
	kiln      *firing.Kiln
	gestures  *gesture.Interpreter
	particles *particle.System
	feedback  Feedback

	vesselColor vessel.RGB
	wheelAngle  float64
	wheelMesh   *kernel.Mesh
	beadMesh    *kernel.Mesh
	frames      uint64
}

// New starts a session in the intro stage, rendering into sc.
func New(sc scene.Scene, opts ...Option) *Controller {
	c := &Controller{
		logger:      slog.Default(),
		settings:    config.Default(),
		scene:       sc,
		vessel:      vessel.New(),
		glaze:       vessel.NewGlaze(),
		firing:      vessel.NewFiring(),
		particles:   particle.NewSystem(),
		vesselColor: vessel.ClayColor,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6b696c6e))
	}
	if c.kernel == nil {
		c.kernel = sdfx.New()
	}
	if c.tone == nil {
		c.tone = silentTone{}
	}

	c.firing.MaxTemperature = c.settings.Firing.MaxTemperature
	c.kiln = firing.NewKiln(c.firing, c.settings.Firing.Step)
	c.stages = stage.NewMachine(c.settings.LoadingDelay())
	c.stages.OnTransition(c.transition)
	c.gestures = gesture.New(c.stages, c.vessel, c.glaze, c.scene, c.settings.Glaze.StampRadius)
	return c
}

// NewScene builds the in-memory scene graph with the configured camera.
func NewScene(s *config.Settings, width, height float64) *scene.Graph {
	g := scene.New(width, height)
	if s != nil {
		g.Camera.FovY = float32(s.Camera.FovY)
		g.Camera.Eye = mgl32.Vec3{float32(s.Camera.Eye[0]), float32(s.Camera.Eye[1]), float32(s.Camera.Eye[2])}
	}
	return g
}

func (c *Controller) Stage() stage.Stage          { return c.stages.Current() }
func (c *Controller) Vessel() *vessel.Vessel      { return c.vessel }
func (c *Controller) Glaze() *vessel.Glaze        { return c.glaze }
func (c *Controller) Firing() *vessel.Firing      { return c.firing }
func (c *Controller) Kiln() *firing.Kiln          { return c.kiln }
func (c *Controller) Scene() scene.Scene          { return c.scene }
func (c *Controller) Settings() *config.Settings  { return c.settings }
func (c *Controller) Particles() *particle.System { return c.particles }
func (c *Controller) Feedback() Feedback          { return c.feedback }

// Canvas returns the glaze color map, or nil before the glazing stage.
func (c *Controller) Canvas() *glaze.Canvas { return c.glaze.Canvas }

// View describes the active stage's control surface.
func (c *Controller) View() stage.View {
	return stage.ViewOf(c.stages.Current(), c.glaze.Palette)
}

// Next confirms the current stage and moves on.
func (c *Controller) Next() (stage.Stage, error) {
	s, err := c.stages.Next()
	if err != nil {
		return s, fmt.Errorf("next stage: %w", err)
	}
	return s, nil
}

// Enter moves to s, which must follow the current stage.
func (c *Controller) Enter(s stage.Stage) error {
	return c.stages.Enter(s)
}

// Perform carries out a control-surface action.
func (c *Controller) Perform(a stage.Action) error {
	switch a.Kind {
	case stage.ActionNext:
		_, err := c.Next()
		return err
	case stage.ActionSelectGlaze:
		return c.SelectGlaze(a.Index)
	case stage.ActionSetAtmosphere:
		return c.SetAtmosphere(a.Atmosphere)
	case stage.ActionStartFiring:
		return c.StartFiring()
	}
	return fmt.Errorf("unknown action %d", int(a.Kind))
}

// SelectGlaze makes palette entry i the current glaze.
func (c *Controller) SelectGlaze(i int) error {
	if i < 0 || i >= len(c.glaze.Palette) {
		return fmt.Errorf("select glaze %d: %w", i, ErrNoSuchColor)
	}
	if err := c.glaze.Select(i); err != nil {
		return err
	}
	c.logger.Debug("glaze selected", "index", i, "label", c.glaze.Palette[i].Label)
	return nil
}

// SetAtmosphere chooses the kiln atmosphere. It applies to the next
// resolution, even one already ramping.
func (c *Controller) SetAtmosphere(a vessel.Atmosphere) error {
	if a != vessel.Reduction && a != vessel.Oxidation {
		return fmt.Errorf("set atmosphere: invalid value %d", int(a))
	}
	c.firing.Atmosphere = a
	return nil
}

// StartFiring lights the kiln. Lighting it while it ramps is ignored;
// lighting it after a result re-fires the piece.
func (c *Controller) StartFiring() error {
	if c.stages.Current() != stage.Firing {
		return fmt.Errorf("start firing in %s: %w", c.stages.Current(), ErrNotFiringStage)
	}
	if !c.kiln.Start() {
		c.logger.Debug("kiln already firing")
		return nil
	}
	c.logger.Info("kiln lit", "atmosphere", c.firing.Atmosphere)
	return nil
}

// Resize propagates a new output size to the scene.
func (c *Controller) Resize(width, height float64) {
	c.scene.Resize(width, height)
}

// PointerDown starts a pointer drag.
func (c *Controller) PointerDown(x, y float64) { c.gestures.PointerDown(x, y) }

// PointerMove continues a pointer drag.
func (c *Controller) PointerMove(x, y float64) { c.apply(c.gestures.PointerMove(x, y)) }

// PointerUp ends a pointer drag.
func (c *Controller) PointerUp() { c.gestures.PointerUp() }

// TouchStart begins a touch gesture.
func (c *Controller) TouchStart(points []vessel.Point) { c.gestures.TouchStart(points) }

// TouchMove continues a touch gesture.
func (c *Controller) TouchMove(points []vessel.Point) { c.apply(c.gestures.TouchMove(points)) }

// TouchEnd finishes a touch gesture.
func (c *Controller) TouchEnd() { c.gestures.TouchEnd() }

func (c *Controller) apply(e gesture.Effect) {
	if e.Regenerate {
		c.regenerate()
	}
	if e.Burst != nil {
		c.burst(*e.Burst)
	}
	if e.Signal != vessel.SignalNone {
		c.logger.Info("clay warning", "signal", e.Signal, "stage", c.stages.Current())
		c.showFeedback(e.Signal.Message())
	}
}

// Tick advances the session by one frame of duration dt.
func (c *Controller) Tick(dt time.Duration) {
	c.frames++
	c.stages.Tick(dt)

	switch c.stages.Current() {
	case stage.Pulling:
		c.spin()
	case stage.Firing:
		if c.kiln.Step() {
			c.resolve()
		}
	}

	moved, expired := c.particles.Update()
	for _, p := range moved {
		c.scene.SetTransform(scene.NodeID(p.ID), scene.Transform{Position: p.Position, Scale: p.Scale})
	}
	for _, id := range expired {
		c.scene.Remove(scene.NodeID(id))
	}

	c.feedback.tick(dt)
}

// Frames returns the number of ticks so far.
func (c *Controller) Frames() uint64 { return c.frames }

// Close silences the session.
func (c *Controller) Close() {
	c.tone.Stop()
}

func (c *Controller) spin() {
	step := c.settings.Wheel.SpinPerFrame
	c.wheelAngle += step
	c.scene.SetTransform(scene.WheelID, scene.Transform{RotationY: float32(c.wheelAngle), Scale: 1})
	c.vessel.Spin(step)
	c.scene.SetTransform(scene.VesselID, c.vesselTransform(float32(c.vessel.Rotation())))
	c.tone.SetFrequency(c.humFrequency())
}

func (c *Controller) humFrequency() float64 {
	a := c.settings.Audio
	return a.BaseFrequency + c.vessel.Rotation()*a.PerRadian
}

func (c *Controller) resolve() {
	res := c.kiln.Finish(c.rng, c.glaze.Current)
	if res == nil {
		return
	}
	c.logger.Info("firing resolved",
		"outcome", res.Outcome,
		"atmosphere", c.firing.Atmosphere,
		"temperature", int(c.firing.Temperature))
	c.showFeedback(res.Message)
	if res.Success {
		c.vesselColor = res.Color
		if n := c.scene.Get(scene.VesselID); n != nil {
			c.scene.SetMaterial(scene.VesselID, scene.Material{Color: res.Color.Hex(), Textured: n.Material.Textured})
		}
	}
}

func (c *Controller) showFeedback(msg string) {
	if msg == "" {
		return
	}
	c.feedback.show(msg, c.settings.FeedbackDuration())
}

func (c *Controller) transition(from, to stage.Stage) {
	c.logger.Info("stage transition", "from", from, "to", to)
	c.teardown()
	c.setup(to)
}

// teardown drops every stage object: wheel, vessel, shavings and hum.
func (c *Controller) teardown() {
	c.scene.Remove(scene.WheelID)
	c.scene.Remove(scene.VesselID)
	for _, id := range c.particles.Clear() {
		c.scene.Remove(scene.NodeID(id))
	}
	c.tone.Stop()
}

func (c *Controller) setup(s stage.Stage) {
	switch s {
	case stage.Pulling:
		c.insertWheel()
		c.insertVessel(float32(c.vessel.Rotation()), false)
		c.tone.Play(c.humFrequency())
	case stage.Trimming:
		c.insertVessel(trimAngle, false)
	case stage.Glazing:
		c.glaze.EnsureCanvas(c.settings.Glaze.CanvasSize)
		c.insertVessel(0, true)
	case stage.Firing:
		c.insertVessel(0, c.glaze.Canvas != nil)
	}
}

func (c *Controller) vesselTransform(rotY float32) scene.Transform {
	h := float32(c.vessel.Height())
	return scene.Transform{Position: mgl32.Vec3{0, h/2 - 0.5, 0}, RotationY: rotY, Scale: 1}
}

func (c *Controller) insertVessel(rotY float32, textured bool) {
	c.scene.Insert(&scene.Node{
		ID:        scene.VesselID,
		Kind:      scene.KindVessel,
		Name:      "vessel",
		Mesh:      tessellate.Vessel(c.vessel.Shape()),
		Transform: c.vesselTransform(rotY),
		Material:  scene.Material{Color: c.vesselColor.Hex(), Textured: textured},
	})
}

// regenerate rebuilds the vessel mesh from the current shape and keeps
// the foot on the wheel.
func (c *Controller) regenerate() {
	n := c.scene.Get(scene.VesselID)
	if n == nil {
		return
	}
	c.scene.Replace(scene.VesselID, tessellate.Vessel(c.vessel.Shape()))
	c.scene.SetTransform(scene.VesselID, c.vesselTransform(n.Transform.RotationY))
}

func (c *Controller) insertWheel() {
	if c.wheelMesh == nil {
		// Kernel cylinders run along Z; stand the disc on the Y axis and
		// sink it under the foot of the vessel. The node then only spins.
		disc := c.kernel.Rotate(c.kernel.Cylinder(wheelHeight, wheelRadius, wheelSegments), 90, 0, 0)
		disc = c.kernel.Translate(disc, 0, wheelY, 0)
		m, err := c.kernel.ToMesh(disc)
		if err != nil {
			c.logger.Warn("wheel mesh failed", "err", err)
		} else {
			m.PartName = "wheel"
			c.wheelMesh = m
		}
	}
	c.scene.Insert(&scene.Node{
		ID:        scene.WheelID,
		Kind:      scene.KindWheel,
		Name:      "wheel",
		Mesh:      c.wheelMesh,
		Transform: scene.Transform{RotationY: float32(c.wheelAngle), Scale: 1},
		Material:  scene.Material{Color: wheelColor},
	})
}

func (c *Controller) burst(at mgl32.Vec3) {
	if c.beadMesh == nil {
		m, err := c.kernel.ToMesh(c.kernel.Sphere(particle.BeadRadius))
		if err != nil {
			c.logger.Warn("shaving mesh failed", "err", err)
		} else {
			m.PartName = "shaving"
			c.beadMesh = m
		}
	}
	for _, p := range c.particles.Burst(at, c.rng) {
		c.scene.Insert(&scene.Node{
			ID:        scene.NodeID(p.ID),
			Kind:      scene.KindParticle,
			Mesh:      c.beadMesh,
			Transform: scene.Transform{Position: p.Position, Scale: p.Scale},
			Material:  scene.Material{Color: vessel.ClayColor.Hex()},
		})
	}
}
