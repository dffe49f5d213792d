package main

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/kiln/pkg/config"
	"github.com/chazu/kiln/pkg/kernel"
	"github.com/chazu/kiln/pkg/scene"
	"github.com/chazu/kiln/pkg/stage"
	"github.com/go-gl/mathgl/mgl32"
)

// stubKernel hands out a single-triangle mesh for every prop.
type stubKernel struct{}

type stubSolid struct{}

func (stubSolid) BoundingBox() (min, max [3]float64) { return }

func (stubKernel) Cylinder(h, r float64, seg int) kernel.Solid            { return stubSolid{} }
func (stubKernel) Sphere(r float64) kernel.Solid                          { return stubSolid{} }
func (stubKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }
func (stubKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid    { return s }
func (stubKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return &kernel.Mesh{Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []uint32{0, 1, 2}}, nil
}

type event struct {
	name string
	data []interface{}
}

// recorder stands in for the Wails event bus.
type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) emit(name string, data ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name: name, data: data})
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

// scene returns the scene events matching op, in order.
func (r *recorder) scene(op string) []SceneEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SceneEvent
	for _, e := range r.events {
		if e.name != EventScene || len(e.data) != 1 {
			continue
		}
		if ev, ok := e.data[0].(SceneEvent); ok && ev.Op == op {
			out = append(out, ev)
		}
	}
	return out
}

func newTestApp(t *testing.T) (*App, *recorder) {
	t.Helper()
	app := newApp(config.Default(), stubKernel{})
	rec := &recorder{}
	app.emit = rec.emit
	return app, rec
}

func advance(t *testing.T, app *App, want stage.Stage) {
	t.Helper()
	for app.Status().Stage != want {
		if _, err := app.Next(); err != nil {
			t.Fatalf("advancing to %s: %v", want, err)
		}
	}
}

// upperWall projects a point on the front wall to pointer coordinates.
func upperWall(app *App) (x, y float64) {
	app.mu.Lock()
	defer app.mu.Unlock()
	g := app.graph
	vp := g.Viewport()
	win := mgl32.Project(mgl32.Vec3{0.05, 1.6, 0.42}, g.Camera.View(), g.Camera.Projection(vp), 0, 0, int(vp.Width), int(vp.Height))
	return float64(win.X()), vp.Height - float64(win.Y())
}

// TestE2ESessionExample plays the bundled example script through the same
// binding the webview uses.
func TestE2ESessionExample(t *testing.T) {
	app, _ := newTestApp(t)

	source, err := os.ReadFile("examples/session.kiln")
	if err != nil {
		t.Fatalf("failed to read session.kiln: %v", err)
	}

	result := app.RunScript(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if result.Status == nil {
		t.Fatal("expected a final status")
	}
	if result.Status.Stage != stage.Firing {
		t.Errorf("expected the piece in the kiln, got %s", result.Status.Stage)
	}
	if result.Status.Result == nil {
		t.Error("expected the firing to resolve")
	}
	if result.Status.Height <= 2 {
		t.Errorf("expected the pull to raise the wall, got height %f", result.Status.Height)
	}
	if result.Frames <= 121 {
		t.Errorf("expected the script to run the clock, got %d frames", result.Frames)
	}

	// Rehearsals never touch the live session.
	if st := app.Status().Stage; st != stage.Intro {
		t.Errorf("live session moved to %s", st)
	}
}

// TestE2EEmptyScript ensures the pipeline handles empty input gracefully.
func TestE2EEmptyScript(t *testing.T) {
	app, _ := newTestApp(t)
	result := app.RunScript("")
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %d", len(result.Errors))
	}
	if result.Status == nil || result.Status.Stage != stage.Intro {
		t.Errorf("expected an untouched session, got %+v", result.Status)
	}
}

// TestE2EScriptSyntaxError ensures syntax errors are returned, not panicked.
func TestE2EScriptSyntaxError(t *testing.T) {
	app, _ := newTestApp(t)
	result := app.RunScript("(next")
	if len(result.Errors) == 0 {
		t.Fatal("expected errors for syntax error")
	}
	if result.Status != nil {
		t.Error("expected no status on error")
	}
}

func TestE2EClockRunsIntro(t *testing.T) {
	app, rec := newTestApp(t)

	for i := 0; i < 121; i++ {
		app.step()
	}
	if st := app.Status().Stage; st != stage.Pulling {
		t.Fatalf("expected pulling after the loading delay, got %s", st)
	}
	if n := rec.count(EventStatus); n != 121 {
		t.Errorf("expected one status per frame, got %d", n)
	}

	inserts := rec.scene("insert")
	kinds := map[string]bool{}
	for _, ev := range inserts {
		kinds[ev.Kind] = true
		if ev.Mesh == nil || len(ev.Mesh.Vertices) == 0 {
			t.Errorf("insert of %s carried no geometry", ev.ID)
		}
		if ev.Transform == nil || ev.Material == nil {
			t.Errorf("insert of %s lacks transform or material", ev.ID)
		}
	}
	if names := []string{inserts[0].Name, inserts[1].Name}; names[0] != "wheel" || names[1] != "vessel" {
		t.Errorf("expected wheel then vessel by name, got %v", names)
	}
	if !kinds["wheel"] || !kinds["vessel"] {
		t.Errorf("expected wheel and vessel inserts, got %v", kinds)
	}
	if len(rec.scene("transform")) == 0 {
		t.Error("expected the spinning wheel to emit transforms")
	}
}

func TestE2EPullShipsNewVessel(t *testing.T) {
	app, rec := newTestApp(t)
	advance(t, app, stage.Pulling)

	app.PointerDown(400, 300)
	app.PointerMove(400, 200)
	app.PointerUp()

	replaces := rec.scene("replace")
	if len(replaces) != 1 {
		t.Fatalf("expected one vessel replace, got %d", len(replaces))
	}
	ev := replaces[0]
	if ev.ID != string(scene.VesselID) {
		t.Errorf("replace targeted %q", ev.ID)
	}
	if ev.Mesh == nil || len(ev.Mesh.Vertices) == 0 || len(ev.Mesh.UVs) == 0 {
		t.Error("vessel meshes always travel in full, with UVs")
	}
	if h := app.Status().Height; h <= 2 {
		t.Errorf("expected an upward pull to raise the wall, got %f", h)
	}
}

func TestE2ESharedMeshSentOnce(t *testing.T) {
	app, rec := newTestApp(t)
	advance(t, app, stage.Trimming)

	x, y := upperWall(app)
	app.PointerDown(x, y)
	app.PointerMove(x, y)
	app.PointerMove(x, y)
	app.PointerUp()

	var full, keyed int
	var key string
	for _, ev := range rec.scene("insert") {
		if ev.Kind != "particle" {
			continue
		}
		if ev.Mesh == nil || ev.Mesh.Key == "" {
			t.Fatalf("shaving %s has no mesh key", ev.ID)
		}
		if key == "" {
			key = ev.Mesh.Key
		} else if ev.Mesh.Key != key {
			t.Errorf("shavings should share one mesh, got %q and %q", key, ev.Mesh.Key)
		}
		if len(ev.Mesh.Vertices) > 0 {
			full++
		} else {
			keyed++
		}
	}
	if full != 1 || keyed != 9 {
		t.Errorf("expected 1 full and 9 keyed shaving meshes, got %d and %d", full, keyed)
	}
	if !strings.HasPrefix(key, "particle-") {
		t.Errorf("unexpected mesh key %q", key)
	}
}

func TestE2EGlazeTexture(t *testing.T) {
	app, rec := newTestApp(t)

	url, err := app.GlazeTexture()
	if err != nil || url != "" {
		t.Fatalf("expected no texture before glazing, got %q, %v", url, err)
	}

	advance(t, app, stage.Glazing)
	url, err = app.GlazeTexture()
	if err != nil {
		t.Fatalf("texture: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("expected a PNG data URL, got %.40q", url)
	}
	inserts := rec.scene("insert")
	last := inserts[len(inserts)-1]
	if last.Kind != "vessel" || last.Material == nil || !last.Material.Textured {
		t.Errorf("the glazing vessel should ask the renderer for the color map, got %+v", last)
	}

	x, y := upperWall(app)
	app.PointerDown(x-5, y)
	app.PointerMove(x, y)
	app.PointerUp()
	if rec.count(EventGlaze) != 1 {
		t.Errorf("expected one glaze event after a stroke, got %d", rec.count(EventGlaze))
	}

	// No new paint, no new event.
	app.step()
	if rec.count(EventGlaze) != 1 {
		t.Errorf("glaze event repeated without new paint")
	}
}

func TestE2EFiringFromControls(t *testing.T) {
	app, _ := newTestApp(t)
	advance(t, app, stage.Firing)

	if err := app.SetAtmosphere("oxidation"); err != nil {
		t.Fatalf("set atmosphere: %v", err)
	}
	view := app.View()
	var light *stage.Action
	for _, c := range view.Controls {
		if c.Action != nil && c.Action.Kind == stage.ActionStartFiring {
			light = c.Action
		}
	}
	if light == nil {
		t.Fatal("firing view offers no way to light the kiln")
	}
	if err := app.Perform(*light); err != nil {
		t.Fatalf("light the kiln: %v", err)
	}
	for i := 0; i < 200; i++ {
		app.step()
	}
	st := app.Status()
	if st.IsFiring || st.Result == nil {
		t.Fatalf("expected the firing to resolve after 200 frames, got %+v", st)
	}
	if st.Atmosphere != "oxidation" {
		t.Errorf("atmosphere = %q", st.Atmosphere)
	}
}
