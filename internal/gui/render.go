package gui

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawField()
	if a.Params.Particles.Enabled {
		a.drawParticles()
	}
	a.DrawHUD()
	if a.ShowPanel {
		a.drawPanel()
	}

	rl.EndDrawing()
}

// drawField uploads the solver's display buffer and stretches it over
// the window.
func (a *App) drawField() {
	g := a.Solver.Grid()
	display := a.Solver.Display()

	pixels := make([]color.RGBA, g.W*g.H)
	for i := range pixels {
		o := i * 4
		pixels[i] = color.RGBA{display[o], display[o+1], display[o+2], display[o+3]}
	}
	rl.UpdateTexture(a.FieldTex, pixels)

	src := rl.NewRectangle(0, 0, float32(g.W), float32(g.H))
	dst := rl.NewRectangle(0, 0, winW, winH)
	rl.DrawTexturePro(a.FieldTex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
}

// drawParticles strokes each tracer as a short motion segment. The
// additive blend lets dense clusters bloom instead of occlude.
func (a *App) drawParticles() {
	verts := a.Tracer.Vertices(a.Params.Particles.ParticleSize)
	thickness := float32(a.Params.Particles.ParticleSize)
	if thickness < 1 {
		thickness = 1
	}

	rl.BeginBlendMode(rl.BlendAdditive)
	for i := 0; i+1 < len(verts); i += 2 {
		head := rl.NewVector2(verts[i].X, verts[i].Y)
		tail := rl.NewVector2(verts[i+1].X, verts[i+1].Y)
		alpha := uint8(verts[i].Alpha * 220)
		rl.DrawLineEx(tail, head, thickness, rl.NewColor(235, 235, 255, alpha))
	}
	rl.EndBlendMode()
}

func (a *App) DrawHUD() {
	a.drawText("flowlab", 30, 30, 24, ColSelect)
	mode := string(a.Params.DisplayMode)
	if a.Preset != "" {
		mode += " / " + a.Preset
	}
	a.drawText(fmt.Sprintf(":: %s", mode), 140, 34, 16, ColText)

	a.DrawTelemetry()

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)
	if a.lastErr != nil {
		a.drawText(a.lastErr.Error(), 30, 60, 14, rl.Red)
	}

	a.drawText("[LMB] STIR  [RMB] SEED  [SPACE] PAUSE  [M] MODE  [P] PARTICLES  [TAB] PANEL  [1-5] PRESET  [A] AUDIO  [R] RESET  [Q] QUIT", 180, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)

	backend := "cpu"
	if a.GLBackend != nil && a.GLBackend.Available() {
		backend = a.GLBackend.Name()
	}
	a.drawText(fmt.Sprintf("solver: %s  particles: %d  tick: %d",
		backend, a.Tracer.Len(), a.Solver.Tick()), 30, 650, 14, ColAccent)
}

func (a *App) drawPanel() {
	rl.DrawRectangle(940, 70, 320, 40+28*int32(len(panelParams)), rl.NewColor(10, 10, 10, 220))
	a.drawText("parameters", 960, 80, 16, ColAccent)

	y := 110
	for i, ref := range panelParams {
		val := ref.get(&a.Params)
		if i == a.ParamSel {
			a.drawText(fmt.Sprintf("> %-12s %.5g", ref.name, val), 960, y, 16, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %-12s %.5g", ref.name, val), 960, y, 16, ColText)
		}
		y += 28
	}
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
