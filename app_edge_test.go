package main

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/kiln/pkg/pottery"
	"github.com/chazu/kiln/pkg/stage"
	"github.com/chazu/kiln/pkg/vessel"
)

// ---------------------------------------------------------------------------
// 1. Script edge cases through the binding.
// ---------------------------------------------------------------------------

func TestE2EScriptCommentsOnly(t *testing.T) {
	app, _ := newTestApp(t)
	result := app.RunScript(";; nothing but a comment\n; and another")
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if result.Status == nil || result.Status.Stage != stage.Intro {
		t.Errorf("expected intro, got %+v", result.Status)
	}
}

func TestE2EScriptRuntimeErrorKeepsMessage(t *testing.T) {
	app, _ := newTestApp(t)
	result := app.RunScript("(next)\n(glaze 12)")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a bad palette index")
	}
	if !strings.Contains(result.Errors[0].Message, "no such glaze color") {
		t.Errorf("unexpected message %q", result.Errors[0].Message)
	}
}

func TestE2EScriptArithmetic(t *testing.T) {
	app, _ := newTestApp(t)
	result := app.RunScript(`
(def n (* 2 30))
(next)
(tick n)
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Frames != 60 {
		t.Errorf("expected 60 frames, got %d", result.Frames)
	}
	if r := result.Status.Rotation; r < 1.19 || r > 1.21 {
		t.Errorf("expected 60 frames of spin, got rotation %f", r)
	}
}

// ---------------------------------------------------------------------------
// 2. Rapid rehearsals: sequential calls, mixed valid and invalid.
//    zygomys keeps global state that is not safe for concurrent sandbox
//    creation, so calls are sequential.
// ---------------------------------------------------------------------------

func TestE2ERapidScriptsAlternating(t *testing.T) {
	app, _ := newTestApp(t)

	sources := []string{
		`(next)`,
		`(next`,
		``,
		`(enter :firing)`,
		`(next) (pull -50)`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(next) (next) (stage)`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.RunScript(source)
		}()
	}
}

// ---------------------------------------------------------------------------
// 3. Input edge cases.
// ---------------------------------------------------------------------------

func TestE2EResizeIgnoresEmptySizes(t *testing.T) {
	app, rec := newTestApp(t)

	app.Resize(0, 600)
	app.Resize(800, -1)
	if n := len(rec.scene("resize")); n != 0 {
		t.Errorf("degenerate sizes should be dropped, got %d resize events", n)
	}

	app.Resize(1280, 720)
	evs := rec.scene("resize")
	if len(evs) != 1 {
		t.Fatalf("expected one resize event, got %d", len(evs))
	}
	if evs[0].Width != 1280 || evs[0].Height != 720 {
		t.Errorf("resize event carried %vx%v", evs[0].Width, evs[0].Height)
	}
}

func TestE2EMoveWithoutPressIsIgnored(t *testing.T) {
	app, rec := newTestApp(t)
	advance(t, app, stage.Pulling)

	app.PointerMove(400, 100)
	if n := len(rec.scene("replace")); n != 0 {
		t.Errorf("hover should not shape the clay, got %d replaces", n)
	}
	if h := app.Status().Height; h != vessel.DefaultHeight {
		t.Errorf("height changed to %f", h)
	}
}

func TestE2ETwoFingerPinch(t *testing.T) {
	app, rec := newTestApp(t)
	advance(t, app, stage.Pulling)

	app.TouchStart([]vessel.Point{{X: 350, Y: 300}, {X: 450, Y: 300}})
	// A webview may also deliver each finger as a pointer of its own.
	app.PointerDown(350, 300)
	app.PointerDown(450, 300)
	for i := 0; i < 20; i++ {
		app.PointerMove(350-float64(i), 300)
		app.PointerMove(450+float64(i), 300)
	}
	app.TouchMove([]vessel.Point{{X: 310, Y: 300}, {X: 490, Y: 300}})
	app.PointerUp()
	app.TouchEnd()

	st := app.Status()
	if st.Opening <= vessel.DefaultOpening {
		t.Errorf("spreading fingers should widen the opening, got %f", st.Opening)
	}
	if st.Height != vessel.DefaultHeight || st.Smoothness != vessel.DefaultSmoothness {
		t.Errorf("a pinch must not read as a fast pull, got height %f smoothness %f", st.Height, st.Smoothness)
	}
	if st.Feedback != "" {
		t.Errorf("unexpected warning %q", st.Feedback)
	}
	if n := len(rec.scene("replace")); n != 0 {
		t.Errorf("the opening does not change the lathed mesh, got %d replaces", n)
	}
}

// ---------------------------------------------------------------------------
// 4. Control edge cases.
// ---------------------------------------------------------------------------

func TestE2EBadControls(t *testing.T) {
	app, _ := newTestApp(t)

	if err := app.SelectGlaze(-1); !errors.Is(err, pottery.ErrNoSuchColor) {
		t.Errorf("SelectGlaze(-1) = %v, want ErrNoSuchColor", err)
	}
	if err := app.SetAtmosphere("neutral"); err == nil {
		t.Error("expected an error for an unknown atmosphere")
	}
	if err := app.StartFiring(); !errors.Is(err, pottery.ErrNotFiringStage) {
		t.Errorf("StartFiring() = %v, want ErrNotFiringStage", err)
	}
	if err := app.Perform(stage.Action{Kind: stage.ActionKind(99)}); err == nil {
		t.Error("expected an error for an unknown action")
	}

	advance(t, app, stage.Firing)
	if _, err := app.Next(); !errors.Is(err, stage.ErrTerminal) {
		t.Errorf("Next() at the kiln = %v, want ErrTerminal", err)
	}
}

func TestE2ERestart(t *testing.T) {
	app, rec := newTestApp(t)
	advance(t, app, stage.Trimming)

	app.Restart()
	if rec.count(EventReset) != 1 {
		t.Errorf("expected a reset event, got %d", rec.count(EventReset))
	}
	if st := app.Status(); st.Stage != stage.Intro || st.Height != vessel.DefaultHeight {
		t.Errorf("expected a fresh piece, got %+v", st)
	}
	if n := len(app.Scene()); n != 0 {
		t.Errorf("expected an empty stage after restart, got %d objects", n)
	}
}

func TestE2ESceneSnapshot(t *testing.T) {
	app, _ := newTestApp(t)
	advance(t, app, stage.Pulling)

	evs := app.Scene()
	if len(evs) != 2 {
		t.Fatalf("expected wheel and vessel, got %d objects", len(evs))
	}
	for _, ev := range evs {
		if ev.Op != "insert" {
			t.Errorf("snapshot op = %q", ev.Op)
		}
		if ev.Mesh == nil || len(ev.Mesh.Vertices) == 0 {
			t.Errorf("snapshot of %s should carry full geometry", ev.ID)
		}
	}

	// A second snapshot is just as complete.
	for _, ev := range app.Scene() {
		if ev.Mesh == nil || len(ev.Mesh.Vertices) == 0 {
			t.Errorf("repeat snapshot of %s lost its geometry", ev.ID)
		}
	}
}

// ---------------------------------------------------------------------------
// 5. Concurrent bindings: input and the frame clock arrive on different
//    goroutines. Run with `go test -race` to detect data races.
// ---------------------------------------------------------------------------

func TestE2EConcurrentInputAndClock(t *testing.T) {
	app, _ := newTestApp(t)
	advance(t, app, stage.Pulling)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			app.step()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			app.PointerDown(400, 300)
			app.PointerMove(400, 290)
			app.PointerUp()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = app.Status()
			_ = app.View()
		}
	}()
	wg.Wait()

	st := app.Status()
	if st.Stage != stage.Pulling {
		t.Errorf("stage drifted to %s", st.Stage)
	}
	if st.Height <= vessel.DefaultHeight || st.Height > vessel.MaxHeight {
		t.Errorf("height %f out of the expected range", st.Height)
	}
}
