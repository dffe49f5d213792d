// Package gesture turns raw pointer and touch samples into clay mutations.
// What a drag means depends on the active stage: it pulls the wall while
// throwing, scrapes it while trimming and paints it while glazing. In the
// intro and at the kiln gestures are ignored.
//
// The interpreter never touches the renderer or the clock. Every entry
// point returns an Effect describing what the caller must do next, so one
// event can request at most one geometry regeneration.
package gesture

import (
	"github.com/chazu/kiln/pkg/glaze"
	"github.com/chazu/kiln/pkg/scene"
	"github.com/chazu/kiln/pkg/stage"
	"github.com/chazu/kiln/pkg/vessel"
	"github.com/go-gl/mathgl/mgl32"
)

// Stager reports the active stage. *stage.Machine satisfies it.
type Stager interface {
	Current() stage.Stage
}

// Effect is the follow-up an event requires from the caller.
type Effect struct {
	// Regenerate is set when the vessel's shape changed and its mesh must
	// be rebuilt.
	Regenerate bool
	// Burst, when non-nil, is the world point where trimming shavings fly off.
	Burst *mgl32.Vec3
	// Stamped is set when the glaze color map changed.
	Stamped bool
	// Signal is a warning for the potter, if any.
	Signal vessel.Signal
}

// Empty reports whether the event changed nothing.
func (e Effect) Empty() bool {
	return !e.Regenerate && e.Burst == nil && !e.Stamped && e.Signal == vessel.SignalNone
}

// Interpreter is the stage-aware gesture state machine.
type Interpreter struct {
	stages      Stager
	vessel      *vessel.Vessel
	glaze       *vessel.Glaze
	scene       scene.Scene
	touch       vessel.Touch
	stampRadius float64
}

// New creates an interpreter over the given session state. A non-positive
// stampRadius falls back to glaze.DefaultStampRadius.
func New(stages Stager, v *vessel.Vessel, g *vessel.Glaze, sc scene.Scene, stampRadius float64) *Interpreter {
	if stampRadius <= 0 {
		stampRadius = glaze.DefaultStampRadius
	}
	return &Interpreter{stages: stages, vessel: v, glaze: g, scene: sc, stampRadius: stampRadius}
}

// Touch returns the gesture tracking state.
func (in *Interpreter) Touch() vessel.Touch { return in.touch }

// PointerDown starts a pointer drag. While two fingers pinch, pointer
// samples belong to the pinch and are ignored.
func (in *Interpreter) PointerDown(x, y float64) {
	if in.touch.Pinching {
		return
	}
	in.touch.Begin(vessel.Point{X: x, Y: y})
}

// PointerMove continues a pointer drag. Moves without a press, or during
// a pinch, are ignored.
func (in *Interpreter) PointerMove(x, y float64) Effect {
	if !in.touch.IsTouching || in.touch.Pinching {
		return Effect{}
	}
	return in.drag(vessel.Point{X: x, Y: y})
}

// PointerUp ends the drag. A pinch only ends with TouchEnd.
func (in *Interpreter) PointerUp() {
	if in.touch.Pinching {
		return
	}
	in.touch.End()
}

// TouchStart begins a one- or two-finger gesture.
func (in *Interpreter) TouchStart(points []vessel.Point) {
	switch len(points) {
	case 1:
		in.touch.Begin(points[0])
	case 2:
		in.touch.BeginPinch(points[0].Distance(points[1]))
	}
}

// TouchMove continues a touch gesture. One finger drags, two fingers pinch.
func (in *Interpreter) TouchMove(points []vessel.Point) Effect {
	if !in.touch.IsTouching {
		return Effect{}
	}
	switch len(points) {
	case 1:
		return in.drag(points[0])
	case 2:
		return in.pinch(points[0].Distance(points[1]))
	}
	return Effect{}
}

// TouchEnd finishes the gesture and resets the tracking state.
func (in *Interpreter) TouchEnd() {
	in.touch.End()
}

func (in *Interpreter) drag(p vessel.Point) Effect {
	_, dy := in.touch.Move(p)
	defer in.touch.Settle()

	switch in.stages.Current() {
	case stage.Pulling:
		return in.pull(dy)
	case stage.Trimming:
		return in.trim(p)
	case stage.Glazing:
		return in.paint(p)
	}
	return Effect{}
}

func (in *Interpreter) pull(dy float64) Effect {
	before := in.vessel.Shape()
	sig := in.vessel.ApplyPullDelta(dy, in.scene.Viewport().Height, in.touch.Velocity)
	return Effect{Regenerate: in.vessel.Shape() != before, Signal: sig}
}

func (in *Interpreter) pinch(d float64) Effect {
	delta := in.touch.Pinch(d)
	if in.stages.Current() != stage.Pulling {
		return Effect{}
	}
	before := in.vessel.Shape()
	in.vessel.ApplyPinchDelta(delta, in.scene.Viewport().Width)
	return Effect{Regenerate: in.vessel.Shape() != before}
}

func (in *Interpreter) trim(p vessel.Point) Effect {
	hit, ok := in.scene.Pick(p.X, p.Y, scene.VesselID)
	if !ok {
		return Effect{}
	}
	at := hit.World
	return Effect{Burst: &at, Signal: in.vessel.ApplyTrimAt(hit.Local)}
}

func (in *Interpreter) paint(p vessel.Point) Effect {
	if in.glaze == nil || in.glaze.Canvas == nil {
		return Effect{}
	}
	hit, ok := in.scene.Pick(p.X, p.Y, scene.VesselID)
	if !ok {
		return Effect{}
	}
	in.glaze.Canvas.Stamp(float64(hit.UV.X()), float64(hit.UV.Y()), in.stampRadius, in.glaze.Current)
	return Effect{Stamped: true}
}
