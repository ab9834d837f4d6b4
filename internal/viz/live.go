// Package viz renders the simulation in the terminal: the display
// buffer dithered onto a braille canvas, particle segments as line
// strokes, and an energy sparkline, all inside a bubbletea program.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/flowlab/internal/analysis"
	"github.com/san-kum/flowlab/internal/config"
	"github.com/san-kum/flowlab/internal/field"
	"github.com/san-kum/flowlab/internal/fluid"
	"github.com/san-kum/flowlab/internal/particles"
)

const (
	canvasW = 64
	canvasH = 24

	historyCap = 240
)

type TickMsg time.Time

// Model drives the solver from the bubbletea event loop. A scripted
// circular stir gesture stands in for the pointer; terminals have no
// drag input worth supporting.
type Model struct {
	solver *fluid.Solver
	tracer *particles.System
	params config.Params

	canvas        *Canvas
	energyHistory []float64

	running   bool
	stirring  bool
	stirPhase float64

	err error
}

func NewModel(p config.Params) (Model, error) {
	s, err := fluid.NewSolver(p)
	if err != nil {
		return Model{}, err
	}
	return Model{
		solver:        s,
		tracer:        particles.NewSystem(time.Now().UnixNano()),
		params:        p,
		canvas:        NewCanvas(canvasW, canvasH),
		energyHistory: make([]float64, 0, historyCap),
		running:       true,
		stirring:      true,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) viewport() field.Vec2 {
	return field.Vec2{X: canvasW * 2, Y: canvasH * 4}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			m.stirring = !m.stirring
			if !m.stirring {
				m.solver.EndInteraction()
			}
		case "r":
			m.solver.Reset()
			m.energyHistory = m.energyHistory[:0]
		case "m":
			m.params.DisplayMode = nextMode(m.params.DisplayMode)
		case "p":
			m.params.Particles.Enabled = !m.params.Particles.Enabled
		case "[":
			m.params.VorticityStrength = math.Max(0, m.params.VorticityStrength-2)
		case "]":
			m.params.VorticityStrength = math.Min(50, m.params.VorticityStrength+2)
		}
		return m, nil

	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	vp := m.viewport()

	if m.stirring {
		m.stirPhase += 0.045
		pos := field.Vec2{
			X: vp.X/2 + math.Cos(m.stirPhase)*vp.X*0.3,
			Y: vp.Y/2 + math.Sin(m.stirPhase)*vp.Y*0.3,
		}
		m.solver.AddForce(pos, vp, m.params)
		if m.params.Particles.Enabled && m.solver.Tick()%12 == 0 {
			m.tracer.Spawn(pos, m.params.Particles.SpawnCount, m.params.Particles.SpawnRadius)
		}
	}

	m.err = m.solver.Step(m.params)

	if m.params.Particles.Enabled {
		g := m.solver.Grid()
		sampler := particles.GridSampler(m.solver.SampleVelocity, g.W, g.H, vp)
		m.tracer.Update(m.params, sampler, vp)
	}

	m.energyHistory = append(m.energyHistory, analysis.KineticEnergy(m.solver.Grid()))
	if len(m.energyHistory) > historyCap {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m Model) View() string {
	m.drawCanvas()

	var stats strings.Builder
	stats.WriteString(headerStyle.Render("flowlab live") + "\n\n")
	writeStat(&stats, "tick", fmt.Sprintf("%d", m.solver.Tick()))
	writeStat(&stats, "mode", string(m.params.DisplayMode))
	writeStat(&stats, "vorticity", fmt.Sprintf("%.0f", m.params.VorticityStrength))
	writeStat(&stats, "particles", fmt.Sprintf("%d", m.tracer.Len()))
	if n := len(m.energyHistory); n > 0 {
		writeStat(&stats, "energy", fmt.Sprintf("%.1f", m.energyHistory[n-1]))
	}
	_, res := analysis.ResidualStats(m.solver.Grid())
	writeStat(&stats, "residual", fmt.Sprintf("%.2e", res))

	state := "running"
	if !m.running {
		state = activeStyle.Render("paused")
	}
	writeStat(&stats, "state", state)
	if m.err != nil {
		stats.WriteString("\n" + activeStyle.Render(m.err.Error()) + "\n")
	}

	if len(m.energyHistory) > 2 {
		graph := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6), asciigraph.Width(34))
		stats.WriteString(graphStyle.Render(graph))
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.Render()),
		statsStyle.Render(stats.String()),
	)
	help := helpStyle.Render("space pause · s stir · m mode · p particles · [/] vorticity · r reset · q quit")
	return main + "\n" + help
}

// drawCanvas dithers the solver's display buffer onto the braille
// grid, then strokes particle segments over it.
func (m Model) drawCanvas() {
	m.canvas.Clear()
	g := m.solver.Grid()
	display := m.solver.Display()

	subW, subH := canvasW*2, canvasH*4
	for y := 0; y < subH; y++ {
		gy := y * g.H / subH
		for x := 0; x < subW; x++ {
			gx := x * g.W / subW
			o := (gy*g.W + gx) * 4
			lum := (int(display[o]) + int(display[o+1]) + int(display[o+2])) / 3
			m.canvas.Shade(x, y, float64(lum)/255)
		}
	}

	if m.params.Particles.Enabled {
		verts := m.tracer.Vertices(m.params.Particles.ParticleSize)
		for i := 0; i+1 < len(verts); i += 2 {
			m.canvas.DrawLine(
				int(verts[i].X), int(verts[i].Y),
				int(verts[i+1].X), int(verts[i+1].Y),
			)
		}
	}
}

func writeStat(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
}

func nextMode(mode config.DisplayMode) config.DisplayMode {
	for i, v := range config.Modes {
		if v == mode {
			return config.Modes[(i+1)%len(config.Modes)]
		}
	}
	return config.Modes[0]
}

// Run blocks inside the bubbletea event loop until the user quits.
func Run(p config.Params) error {
	m, err := NewModel(p)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
