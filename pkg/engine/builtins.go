package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/kiln/pkg/pottery"
	"github.com/chazu/kiln/pkg/scene"
	"github.com/chazu/kiln/pkg/stage"
	"github.com/chazu/kiln/pkg/vessel"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"
)

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword is a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// intKW returns the integer keyword name, or def when absent.
func (a kwArgs) intKW(name string, def int) (int, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return int(f), nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toFloats extracts every element of args as a number.
func toFloats(args []zygo.Sexp) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoints reads screen points either as flat numbers (x1 y1 x2 y2 ...)
// or as [x y] arrays such as those returned by screen.
func toPoints(args []zygo.Sexp) ([]vessel.Point, error) {
	var flat []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpArray, *zygo.SexpPair:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			flat = append(flat, items...)
		default:
			flat = append(flat, a)
		}
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("expected x y pairs, got %d numbers", len(flat))
	}
	fs, err := toFloats(flat)
	if err != nil {
		return nil, err
	}
	pts := make([]vessel.Point, 0, len(fs)/2)
	for i := 0; i < len(fs); i += 2 {
		pts = append(pts, vessel.Point{X: fs[i], Y: fs[i+1]})
	}
	return pts, nil
}

func num(f float64) zygo.Sexp           { return &zygo.SexpFloat{Val: f} }
func integer(n int) zygo.Sexp           { return &zygo.SexpInt{Val: int64(n)} }
func text(s string) zygo.Sexp           { return &zygo.SexpStr{S: s} }
func stageName(s stage.Stage) zygo.Sexp { return text(s.String()) }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtin is the zygomys native function signature.
type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// query wraps a read-only numeric accessor.
func query(f func() float64) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return num(f()), nil
	}
}

// registerBuiltins installs the session builtins into a zygomys environment.
// Every builtin acts on c. Clock builtins give up with ErrAbandoned once
// stop reports true.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, c *pottery.Controller, stop func() bool) {
	frame := c.Settings().FrameInterval()

	advance := func(n int) error {
		if n > MaxTicks {
			return fmt.Errorf("%d frames exceeds the limit of %d", n, MaxTicks)
		}
		for i := 0; i < n; i++ {
			if stop() {
				return ErrAbandoned
			}
			c.Tick(frame)
		}
		return nil
	}

	// center is the middle of the viewport, where hands rest on the clay.
	center := func() vessel.Point {
		vp := c.Scene().Viewport()
		return vessel.Point{X: vp.Width / 2, Y: vp.Height / 2}
	}

	// -----------------------------------------------------------------------
	// Stages
	// -----------------------------------------------------------------------

	// (next) confirms the stage and returns the new one.
	env.AddFunction("next", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s, err := c.Next()
		if err != nil {
			return zygo.SexpNull, err
		}
		return stageName(s), nil
	})

	// (enter :trimming)
	env.AddFunction("enter", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("enter requires a stage")
		}
		n, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("enter: %w", err)
		}
		s, err := stage.Parse(n)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("enter: %w", err)
		}
		if err := c.Enter(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("enter: %w", err)
		}
		return stageName(s), nil
	})

	env.AddFunction("stage", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return stageName(c.Stage()), nil
	})

	// -----------------------------------------------------------------------
	// Clock
	// -----------------------------------------------------------------------

	// (tick) or (tick 120) advances whole frames and returns the frame count.
	env.AddFunction("tick", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n := 1
		if len(args) > 0 {
			f, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tick: %w", err)
			}
			if f < 0 {
				return zygo.SexpNull, fmt.Errorf("tick: negative frame count %v", f)
			}
			n = int(f)
		}
		if err := advance(n); err != nil {
			return zygo.SexpNull, fmt.Errorf("tick: %w", err)
		}
		return integer(int(c.Frames())), nil
	})

	// (wait 2.5) advances enough frames to cover the given seconds.
	env.AddFunction("wait", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("wait requires a duration in seconds")
		}
		secs, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wait: %w", err)
		}
		if secs < 0 {
			return zygo.SexpNull, fmt.Errorf("wait: negative duration %v", secs)
		}
		if err := advance(int(math.Ceil(secs / frame.Seconds()))); err != nil {
			return zygo.SexpNull, fmt.Errorf("wait: %w", err)
		}
		return integer(int(c.Frames())), nil
	})

	// -----------------------------------------------------------------------
	// Raw input
	// -----------------------------------------------------------------------

	env.AddFunction("pointer_down", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil || len(pts) != 1 {
			return zygo.SexpNull, fmt.Errorf("pointer-down requires x y")
		}
		c.PointerDown(pts[0].X, pts[0].Y)
		return zygo.SexpNull, nil
	})

	pointerMove := func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil || len(pts) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires x y", name)
		}
		c.PointerMove(pts[0].X, pts[0].Y)
		return zygo.SexpNull, nil
	}
	env.AddFunction("pointer_move", pointerMove)
	env.AddFunction("drag", pointerMove)

	env.AddFunction("pointer_up", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c.PointerUp()
		return zygo.SexpNull, nil
	})

	// (touch-start x1 y1 x2 y2) with one or two fingers.
	env.AddFunction("touch_start", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("touch-start: %w", err)
		}
		c.TouchStart(pts)
		return zygo.SexpNull, nil
	})

	env.AddFunction("touch_move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("touch-move: %w", err)
		}
		c.TouchMove(pts)
		return zygo.SexpNull, nil
	})

	env.AddFunction("touch_end", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c.TouchEnd()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// Gestures
	// -----------------------------------------------------------------------

	// (stroke x0 y0 x1 y1 :steps 8) presses at the first point, drags to
	// the second in equal steps and lets go.
	env.AddFunction("stroke", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pts, err := toPoints(pa.positional)
		if err != nil || len(pts) != 2 {
			return zygo.SexpNull, fmt.Errorf("stroke requires a start and an end point")
		}
		steps, err := pa.intKW("steps", 1)
		if err != nil || steps < 1 {
			return zygo.SexpNull, fmt.Errorf("stroke: steps must be a positive number")
		}
		from, to := pts[0], pts[1]
		c.PointerDown(from.X, from.Y)
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps)
			c.PointerMove(from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t)
		}
		c.PointerUp()
		return zygo.SexpNull, nil
	})

	// (pull -120 :steps 4) drags vertically through the middle of the
	// view. Upward (negative) pulls raise the wall. Returns the height.
	env.AddFunction("pull", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("pull requires a distance in pixels")
		}
		dy, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pull: %w", err)
		}
		steps, err := pa.intKW("steps", 1)
		if err != nil || steps < 1 {
			return zygo.SexpNull, fmt.Errorf("pull: steps must be a positive number")
		}
		p := center()
		c.PointerDown(p.X, p.Y)
		for i := 1; i <= steps; i++ {
			c.PointerMove(p.X, p.Y+dy*float64(i)/float64(steps))
		}
		c.PointerUp()
		return num(c.Vessel().Height()), nil
	})

	// (pinch 80) spreads two fingers by 80 pixels. Returns the opening.
	env.AddFunction("pinch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("pinch requires a distance in pixels")
		}
		delta, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pinch: %w", err)
		}
		p := center()
		// Start wide enough that a negative pinch never crosses the fingers.
		spread := 100 + math.Abs(delta)
		c.TouchStart([]vessel.Point{{X: p.X - spread/2, Y: p.Y}, {X: p.X + spread/2, Y: p.Y}})
		end := spread + delta
		c.TouchMove([]vessel.Point{{X: p.X - end/2, Y: p.Y}, {X: p.X + end/2, Y: p.Y}})
		c.TouchEnd()
		return num(c.Vessel().Opening()), nil
	})

	// (screen x y z) projects a world point to pointer coordinates [x y].
	env.AddFunction("screen", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		fs, err := toFloats(args)
		if err != nil || len(fs) != 3 {
			return zygo.SexpNull, fmt.Errorf("screen requires x y z")
		}
		g, ok := c.Scene().(*scene.Graph)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("screen: scene has no camera")
		}
		vp := g.Viewport()
		win := mgl32.Project(mgl32.Vec3{float32(fs[0]), float32(fs[1]), float32(fs[2])},
			g.Camera.View(), g.Camera.Projection(vp), 0, 0, int(vp.Width), int(vp.Height))
		return &zygo.SexpArray{Val: []zygo.Sexp{num(float64(win.X())), num(vp.Height - float64(win.Y()))}}, nil
	})

	// -----------------------------------------------------------------------
	// Controls
	// -----------------------------------------------------------------------

	// (glaze 2) selects a palette entry.
	env.AddFunction("glaze", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("glaze requires a palette index")
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glaze: %w", err)
		}
		if err := c.SelectGlaze(int(f)); err != nil {
			return zygo.SexpNull, err
		}
		return text(c.Glaze().Current.Hex()), nil
	})

	// (atmosphere :oxidation)
	env.AddFunction("atmosphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return text(c.Firing().Atmosphere.String()), nil
		}
		n, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("atmosphere: %w", err)
		}
		a, err := vessel.ParseAtmosphere(n)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("atmosphere: %w", err)
		}
		if err := c.SetAtmosphere(a); err != nil {
			return zygo.SexpNull, err
		}
		return text(a.String()), nil
	})

	// (fire) lights the kiln. (fire :wait) also ticks until it resolves
	// and returns the outcome.
	env.AddFunction("fire", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := c.StartFiring(); err != nil {
			return zygo.SexpNull, err
		}
		if _, ok := pa.kw["wait"]; !ok {
			return zygo.SexpNull, nil
		}
		for n := 0; c.Firing().IsFiring; n++ {
			if n >= MaxTicks {
				return zygo.SexpNull, fmt.Errorf("fire: kiln still ramping after %d frames", MaxTicks)
			}
			if stop() {
				return zygo.SexpNull, fmt.Errorf("fire: %w", ErrAbandoned)
			}
			c.Tick(frame)
		}
		if r := c.Kiln().Result(); r != nil {
			return text(r.Outcome.String()), nil
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("resize", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		fs, err := toFloats(args)
		if err != nil || len(fs) != 2 {
			return zygo.SexpNull, fmt.Errorf("resize requires width and height")
		}
		c.Resize(fs[0], fs[1])
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// Queries
	// -----------------------------------------------------------------------

	v := c.Vessel()
	env.AddFunction("height", query(v.Height))
	env.AddFunction("radius", query(v.Radius))
	env.AddFunction("thickness", query(v.Thickness))
	env.AddFunction("opening", query(v.Opening))
	env.AddFunction("rotation", query(v.Rotation))
	env.AddFunction("smoothness", query(v.Smoothness))
	env.AddFunction("temperature", query(func() float64 { return c.Firing().Temperature }))
	env.AddFunction("progress", query(func() float64 { return c.Firing().Progress }))

	env.AddFunction("particles", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return integer(c.Particles().Len()), nil
	})

	env.AddFunction("frames", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return integer(int(c.Frames())), nil
	})

	// (outcome) is the firing outcome name, or nil before the kiln resolves.
	env.AddFunction("outcome", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if r := c.Kiln().Result(); r != nil {
			return text(r.Outcome.String()), nil
		}
		return zygo.SexpNull, nil
	})

	// (feedback) is the message on screen, or "".
	env.AddFunction("feedback", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if f := c.Feedback(); f.Active() {
			return text(f.Message), nil
		}
		return text(""), nil
	})

	env.AddFunction("color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return text(c.Status().VesselColor), nil
	})
}
