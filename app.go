package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chazu/kiln/pkg/audio"
	"github.com/chazu/kiln/pkg/config"
	"github.com/chazu/kiln/pkg/engine"
	"github.com/chazu/kiln/pkg/kernel"
	"github.com/chazu/kiln/pkg/pottery"
	"github.com/chazu/kiln/pkg/scene"
	"github.com/chazu/kiln/pkg/stage"
	"github.com/chazu/kiln/pkg/vessel"
	"github.com/faiface/beep"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Events emitted to the webview.
const (
	EventScene  = "scene"  // one SceneEvent
	EventStatus = "status" // pottery.Status, once per frame
	EventGlaze  = "glaze"  // color map version; fetch it with GlazeTexture
	EventReset  = "reset"  // a new session started; drop every object
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bound methods arrive on arbitrary goroutines; every call into the session
// holds mu.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu        sync.Mutex
	settings  *config.Settings
	kernel    kernel.Kernel
	player    audio.Player
	graph     *scene.Graph
	session   *pottery.Controller
	engine    *engine.Engine
	shared    map[*kernel.Mesh]string
	glazeSeen uint64

	emit func(event string, data ...interface{})
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Key      string    `json:"key,omitempty"`
	Vertices []float32 `json:"vertices,omitempty"`
	Normals  []float32 `json:"normals,omitempty"`
	UVs      []float32 `json:"uvs,omitempty"`
	Indices  []uint32  `json:"indices,omitempty"`
	PartName string    `json:"partName,omitempty"`
}

// SceneEvent mirrors one scene change. Meshes shared between nodes (the
// wheel head, shavings) are sent in full once and referenced by key
// afterwards.
type SceneEvent struct {
	Op        string           `json:"op"`
	ID        string           `json:"id,omitempty"`
	Kind      string           `json:"kind,omitempty"`
	Name      string           `json:"name,omitempty"`
	Mesh      *MeshData        `json:"mesh,omitempty"`
	Transform *scene.Transform `json:"transform,omitempty"`
	Material  *scene.Material  `json:"material,omitempty"`
	Width     float64          `json:"width,omitempty"`
	Height    float64          `json:"height,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ScriptResult is the outcome of a rehearsal script.
type ScriptResult struct {
	Status *pottery.Status `json:"status,omitempty"`
	Frames uint64          `json:"frames"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with default settings, the sdfx kernel and no
// sound. startup loads the real settings and opens the speaker.
func NewApp() *App {
	return newApp(config.Default(), nil)
}

func newApp(s *config.Settings, k kernel.Kernel) *App {
	a := &App{
		logger:   slog.Default(),
		settings: s,
		kernel:   k,
		emit:     func(string, ...interface{}) {},
	}
	a.reset(800, 600)
	return a
}

// startup is called by Wails on app startup.
func (a *App) startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	settings := config.Default()
	if path, err := config.DefaultPath(); err != nil {
		runtime.LogWarningf(ctx, "no settings directory: %v", err)
	} else if s, err := config.Load(path, a.logger); err != nil {
		runtime.LogWarningf(ctx, "settings: %v", err)
	} else {
		settings = s
		runtime.LogInfof(ctx, "settings loaded from %s", path)
	}

	var player audio.Player
	if settings.Audio.Enabled {
		sp, err := audio.OpenSpeaker(beep.SampleRate(settings.Audio.SampleRate))
		if err != nil {
			runtime.LogWarningf(ctx, "wheel hum disabled: %v", err)
		} else {
			player = sp
		}
	}

	a.mu.Lock()
	a.settings = settings
	a.player = player
	a.emit = func(event string, data ...interface{}) {
		runtime.EventsEmit(ctx, event, data...)
	}
	vp := a.graph.Viewport()
	a.reset(vp.Width, vp.Height)
	a.mu.Unlock()

	go a.run(a.ctx)
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Close()
}

// run is the frame clock.
func (a *App) run(ctx context.Context) {
	t := time.NewTicker(a.frameInterval())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.step()
		}
	}
}

func (a *App) frameInterval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.FrameInterval()
}

// step advances the session by one frame and publishes its status.
func (a *App) step() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Tick(a.settings.FrameInterval())
	a.emit(EventStatus, a.session.Status())
	a.publishGlaze()
}

// reset starts a fresh session on a fresh scene. Callers hold mu, except
// during construction.
func (a *App) reset(width, height float64) {
	if a.session != nil {
		a.session.Close()
	}
	a.shared = make(map[*kernel.Mesh]string)
	a.glazeSeen = 0
	a.graph = pottery.NewScene(a.settings, width, height)
	a.graph.Observe(scene.ObserverFunc(a.sceneChanged))

	au := a.settings.Audio
	tone := audio.NewWheel(a.player, beep.SampleRate(au.SampleRate), au.Gain, a.logger)
	a.session = pottery.New(a.graph,
		pottery.WithSettings(a.settings),
		pottery.WithLogger(a.logger),
		pottery.WithTone(tone),
		pottery.WithKernel(a.kernel))
	a.engine = engine.NewEngine(a.scriptFactory())
	a.emit(EventReset)
}

// scriptFactory builds the headless sessions rehearsal scripts run in.
func (a *App) scriptFactory() engine.Factory {
	if a.kernel == nil {
		return engine.DefaultFactory(a.settings)
	}
	s, k, l := a.settings, a.kernel, a.logger
	return func() *pottery.Controller {
		return pottery.New(pottery.NewScene(s, 800, 600),
			pottery.WithSettings(s),
			pottery.WithKernel(k),
			pottery.WithLogger(l),
			pottery.WithRand(rand.New(rand.NewPCG(engine.Seed, engine.Seed))))
	}
}

func (a *App) sceneChanged(c scene.Change) {
	a.emit(EventScene, a.sceneEvent(c))
}

func (a *App) sceneEvent(c scene.Change) SceneEvent {
	ev := SceneEvent{Op: c.Op.String()}
	if c.Op == scene.OpResize {
		vp := a.graph.Viewport()
		ev.Width, ev.Height = vp.Width, vp.Height
		return ev
	}
	n := c.Node
	if n == nil {
		return ev
	}
	ev.ID = string(n.ID)
	switch c.Op {
	case scene.OpInsert:
		ev.Kind = n.Kind.String()
		ev.Name = n.Name
		ev.Mesh = a.meshData(n)
		tr, mat := n.Transform, n.Material
		ev.Transform, ev.Material = &tr, &mat
	case scene.OpReplace:
		ev.Mesh = a.meshData(n)
	case scene.OpTransform:
		tr := n.Transform
		ev.Transform = &tr
	case scene.OpMaterial:
		mat := n.Material
		ev.Material = &mat
	}
	return ev
}

// meshData converts a node's mesh for the webview. The vessel is rebuilt
// on every pull and always travels in full; other meshes are shared and
// travel once.
func (a *App) meshData(n *scene.Node) *MeshData {
	m := n.Mesh
	if m == nil {
		return nil
	}
	if n.Kind != scene.KindVessel {
		if key, ok := a.shared[m]; ok {
			return &MeshData{Key: key}
		}
		key := fmt.Sprintf("%s-%d", n.Kind, len(a.shared))
		a.shared[m] = key
		md := fullMesh(m)
		md.Key = key
		return md
	}
	return fullMesh(m)
}

func fullMesh(m *kernel.Mesh) *MeshData {
	return &MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		UVs:      m.UVs,
		Indices:  m.Indices,
		PartName: m.PartName,
	}
}

func (a *App) publishGlaze() {
	c := a.session.Canvas()
	if c == nil || c.Version() == a.glazeSeen {
		return
	}
	a.glazeSeen = c.Version()
	a.emit(EventGlaze, a.glazeSeen)
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

func (a *App) PointerDown(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.PointerDown(x, y)
}

func (a *App) PointerMove(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.PointerMove(x, y)
}

func (a *App) PointerUp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.PointerUp()
	a.publishGlaze()
}

func (a *App) TouchStart(points []vessel.Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.TouchStart(points)
}

func (a *App) TouchMove(points []vessel.Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.TouchMove(points)
}

func (a *App) TouchEnd() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.TouchEnd()
	a.publishGlaze()
}

// Resize tells the session how large the webview canvas is.
func (a *App) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Resize(width, height)
}

// ---------------------------------------------------------------------------
// Controls
// ---------------------------------------------------------------------------

// Perform carries out a control from the current View.
func (a *App) Perform(action stage.Action) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Perform(action)
}

// Next confirms the current stage and returns the new one.
func (a *App) Next() (stage.Stage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Next()
}

func (a *App) SelectGlaze(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.SelectGlaze(index)
}

// SetAtmosphere takes "reduction" or "oxidation".
func (a *App) SetAtmosphere(name string) error {
	at, err := vessel.ParseAtmosphere(name)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.SetAtmosphere(at)
}

func (a *App) StartFiring() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.StartFiring()
}

// Restart throws the piece away and begins again at the intro.
func (a *App) Restart() {
	a.mu.Lock()
	defer a.mu.Unlock()
	vp := a.graph.Viewport()
	a.reset(vp.Width, vp.Height)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func (a *App) Status() pottery.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Status()
}

func (a *App) View() stage.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.View()
}

// Scene returns every object on stage as insert events, for a webview
// that (re)loads mid-session. The shared mesh cache starts over, so the
// snapshot stands on its own.
func (a *App) Scene() []SceneEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shared = make(map[*kernel.Mesh]string)
	nodes := a.graph.Ordered()
	out := make([]SceneEvent, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, a.sceneEvent(scene.Change{Op: scene.OpInsert, Node: n}))
	}
	return out
}

// GlazeTexture returns the glaze color map as a PNG data URL, or "" before
// the piece reaches the glazing bench.
func (a *App) GlazeTexture() (string, error) {
	a.mu.Lock()
	c := a.session.Canvas()
	if c == nil {
		a.mu.Unlock()
		return "", nil
	}
	data, err := c.PNG()
	a.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("encode glaze texture: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// RunScript rehearses a session script in a headless session. The live
// session is not touched.
func (a *App) RunScript(source string) ScriptResult {
	a.mu.Lock()
	eng := a.engine
	a.mu.Unlock()

	result := ScriptResult{Errors: []EvalErrorData{}}
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		a.logger.Error("script failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if res != nil {
		st := res.Status
		result.Status = &st
		result.Frames = res.Frames
		res.Controller.Close()
	}
	return result
}
