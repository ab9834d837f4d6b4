package gui

import (
	"fmt"
	"math"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/flowlab/internal/analysis"
	"github.com/san-kum/flowlab/internal/audio"
	"github.com/san-kum/flowlab/internal/compute"
	"github.com/san-kum/flowlab/internal/config"
	"github.com/san-kum/flowlab/internal/field"
	"github.com/san-kum/flowlab/internal/fluid"
	"github.com/san-kum/flowlab/internal/particles"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

const (
	winW = 1280
	winH = 720
)

// presetOrder maps the number-row hotkeys to preset names.
var presetOrder = []string{"smoke", "ink", "storm", "glass", "tracers"}

// paramRef binds a panel row to a field of Params. Edits go through
// the setter so the snapshot the solver reads stays a plain value.
type paramRef struct {
	name     string
	step     float64
	min, max float64
	get      func(p *config.Params) float64
	set      func(p *config.Params, v float64)
}

var panelParams = []paramRef{
	{"viscosity", 0.0005, 0, 0.01,
		func(p *config.Params) float64 { return p.Viscosity },
		func(p *config.Params, v float64) { p.Viscosity = v }},
	{"diffusion", 0.00002, 0, 0.0003,
		func(p *config.Params) float64 { return p.Diffusion },
		func(p *config.Params, v float64) { p.Diffusion = v }},
	{"delta time", 0.1, 0.1, 5.0,
		func(p *config.Params) float64 { return p.DeltaTime },
		func(p *config.Params, v float64) { p.DeltaTime = v }},
	{"vorticity", 1.0, 0, 50,
		func(p *config.Params) float64 { return p.VorticityStrength },
		func(p *config.Params, v float64) { p.VorticityStrength = v }},
	{"fade speed", 0.001, 0, 0.1,
		func(p *config.Params) float64 { return p.FadeSpeed },
		func(p *config.Params, v float64) { p.FadeSpeed = v }},
	{"iterations", 1, 1, 50,
		func(p *config.Params) float64 { return float64(p.SolverIterations) },
		func(p *config.Params, v float64) { p.SolverIterations = int(v) }},
	{"force", 1.0, 0, 100,
		func(p *config.Params) float64 { return p.ForceMultiplier },
		func(p *config.Params, v float64) { p.ForceMultiplier = v }},
	{"color", 0.5, 0, 100,
		func(p *config.Params) float64 { return p.ColorMultiplier },
		func(p *config.Params, v float64) { p.ColorMultiplier = v }},
	{"brightness", 0.05, 0, 2.0,
		func(p *config.Params) float64 { return p.Brightness },
		func(p *config.Params, v float64) { p.Brightness = v }},
	{"radius", 0.5, 0.5, 50,
		func(p *config.Params) float64 { return p.ForceRadius },
		func(p *config.Params, v float64) { p.ForceRadius = v }},
	{"momentum", 0.05, 0, 1,
		func(p *config.Params) float64 { return p.Particles.Momentum },
		func(p *config.Params, v float64) { p.Particles.Momentum = v }},
	{"fluid pull", 0.05, 0, 1,
		func(p *config.Params) float64 { return p.Particles.FluidForce },
		func(p *config.Params, v float64) { p.Particles.FluidForce = v }},
	{"spawn count", 1, 1, 50,
		func(p *config.Params) float64 { return float64(p.Particles.SpawnCount) },
		func(p *config.Params, v float64) { p.Particles.SpawnCount = int(v) }},
}

type App struct {
	Solver *fluid.Solver
	Tracer *particles.System
	Params config.Params

	Running   bool
	ShowPanel bool
	ParamSel  int
	Preset    string

	Font      rl.Font
	FieldTex  rl.Texture2D
	Telemetry []float64

	dragging bool
	lastErr  error

	// Audio
	Audio *audio.Processor

	// Compute
	GLBackend *compute.OpenGLBackend
}

func initWindow() {
	rl.InitWindow(winW, winH, "flowlab")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp builds the interactive app. The window must already exist:
// texture upload and the optional compute backend both need a live GL
// context.
func NewApp(p config.Params, useGL bool) (*App, error) {
	var glb *compute.OpenGLBackend
	if useGL {
		glb = compute.NewOpenGLBackend()
		if err := glb.Init(p.Width * p.Height); err != nil {
			fmt.Printf("compute init: %v (falling back to CPU)\n", err)
			glb = nil
		} else {
			compute.SetBackend(glb)
		}
	}

	solver, err := fluid.NewSolver(p)
	if err != nil {
		return nil, err
	}

	app := &App{
		Solver:    solver,
		Tracer:    particles.NewSystem(time.Now().UnixNano()),
		Params:    p,
		Running:   true,
		Font:      loadFont(),
		Telemetry: make([]float64, 0, 200),
		Audio:     audio.NewProcessor(),
		GLBackend: glb,
	}
	app.makeFieldTexture()
	return app, nil
}

// RunInteractive opens the window, runs the main loop, and blocks
// until the user quits.
func RunInteractive(p config.Params, useGL bool) error {
	initWindow()
	defer rl.CloseWindow()

	app, err := NewApp(p, useGL)
	if err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
	a.shutdown()
}

func (a *App) shutdown() {
	if a.Audio.Active {
		a.Audio.Stop()
	}
	if a.GLBackend != nil {
		a.GLBackend.Cleanup()
	}
}

func (a *App) makeFieldTexture() {
	g := a.Solver.Grid()
	img := rl.GenImageColor(g.W, g.H, rl.Black)
	a.FieldTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(a.FieldTex, rl.FilterBilinear)
}

func (a *App) applyPreset(name string) {
	p := config.GetPreset(name)
	if p == nil {
		return
	}
	// Keep the current resolution; presets tune behavior, not memory.
	p.Width, p.Height = a.Params.Width, a.Params.Height
	a.Params = *p
	a.Preset = name
	a.Tracer.SetCapacity(particles.MaxParticles)
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.shutdown()
		os.Exit(0)
	}

	a.handleKeys()
	a.handleMouse()

	if a.Running {
		a.lastErr = a.Solver.Step(a.Params)
		a.updateTracer()

		energy := analysis.KineticEnergy(a.Solver.Grid())
		a.Telemetry = append(a.Telemetry, energy)
		if len(a.Telemetry) > 200 {
			a.Telemetry = a.Telemetry[1:]
		}
		if a.Audio.Active {
			a.Audio.UpdateEnergy(energy)
		}
	}
}

func (a *App) handleKeys() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.Solver.Reset()
		a.Tracer = particles.NewSystem(time.Now().UnixNano())
		a.Telemetry = a.Telemetry[:0]
	}
	if rl.IsKeyPressed(rl.KeyM) {
		a.Params.DisplayMode = nextMode(a.Params.DisplayMode)
	}
	if rl.IsKeyPressed(rl.KeyP) {
		a.Params.Particles.Enabled = !a.Params.Particles.Enabled
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ShowPanel = !a.ShowPanel
	}
	if rl.IsKeyPressed(rl.KeyA) {
		if a.Audio.Active {
			a.Audio.Stop()
		} else if err := a.Audio.Start(); err != nil {
			fmt.Printf("audio: %v\n", err)
		}
	}

	for i, name := range presetOrder {
		if rl.IsKeyPressed(int32(rl.KeyOne) + int32(i)) {
			a.applyPreset(name)
		}
	}

	if !a.ShowPanel {
		return
	}
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.ParamSel = (a.ParamSel + 1) % len(panelParams)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.ParamSel--
		if a.ParamSel < 0 {
			a.ParamSel = len(panelParams) - 1
		}
	}

	ref := panelParams[a.ParamSel]
	step := ref.step
	if rl.IsKeyDown(rl.KeyLeftShift) {
		step *= 10
	}
	if rl.IsKeyPressed(rl.KeyRight) || rl.IsKeyPressed(rl.KeyL) {
		ref.set(&a.Params, math.Min(ref.max, ref.get(&a.Params)+step))
	}
	if rl.IsKeyPressed(rl.KeyLeft) || rl.IsKeyPressed(rl.KeyH) {
		ref.set(&a.Params, math.Max(ref.min, ref.get(&a.Params)-step))
	}
}

func (a *App) handleMouse() {
	pos := rl.GetMousePosition()
	window := field.Vec2{X: winW, Y: winH}
	cursor := field.Vec2{X: float64(pos.X), Y: float64(pos.Y)}

	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		a.Solver.AddForce(cursor, window, a.Params)
		a.dragging = true
	} else if a.dragging {
		a.Solver.EndInteraction()
		a.dragging = false
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) && a.Params.Particles.Enabled {
		a.Tracer.Spawn(cursor, a.Params.Particles.SpawnCount, a.Params.Particles.SpawnRadius)
	}
}

// updateTracer advects the particle layer in window pixel space.
func (a *App) updateTracer() {
	if !a.Params.Particles.Enabled {
		return
	}
	g := a.Solver.Grid()
	window := field.Vec2{X: winW, Y: winH}
	sampler := particles.GridSampler(a.Solver.SampleVelocity, g.W, g.H, window)
	a.Tracer.Update(a.Params, sampler, window)
}

func nextMode(mode config.DisplayMode) config.DisplayMode {
	for i, v := range config.Modes {
		if v == mode {
			return config.Modes[(i+1)%len(config.Modes)]
		}
	}
	return config.Modes[0]
}
