package fluid

import (
	"fmt"
	"math"

	"github.com/san-kum/flowlab/internal/compute"
	"github.com/san-kum/flowlab/internal/config"
	"github.com/san-kum/flowlab/internal/field"
)

// Solver owns the grid fields and runs the fixed stable-fluids stage
// sequence every tick. It is not safe for concurrent use: the cadence
// driver calls Step, and reconfiguration (Reset, SetResolution) must
// happen between ticks.
type Solver struct {
	grid    *field.Grid
	backend compute.Backend
	tick    uint64

	// Last gesture position in grid space; nil means the next AddForce
	// is a first contact and injects dye with zero force.
	prevPos *field.Vec2
}

func NewSolver(p config.Params) (*Solver, error) {
	return NewSolverWithBackend(p, compute.GetBackend())
}

func NewSolverWithBackend(p config.Params, b compute.Backend) (*Solver, error) {
	g, err := field.Allocate(p.Width, p.Height)
	if err != nil {
		return nil, err
	}
	return &Solver{grid: g, backend: b}, nil
}

func (s *Solver) Grid() *field.Grid { return s.grid }
func (s *Solver) Tick() uint64      { return s.tick }

// Display returns the RGBA8 display buffer written by the last Step.
func (s *Solver) Display() []uint8 { return s.grid.Display }

// Step advances the simulation one tick. The stage order is fixed;
// the only branches are the documented guards. Each stage call
// completes (backend barrier) before the next begins.
func (s *Solver) Step(p config.Params) error {
	dt := p.DeltaTime

	// 1. vorticity confinement, skipped entirely at zero strength
	if p.VorticityStrength > 0 {
		s.computeVorticity()
		s.applyVorticity(p.VorticityStrength, dt)
	}

	// 2. velocity diffusion (viscosity)
	if p.Viscosity > 0 {
		s.diffuse(s.grid.U, p.Viscosity, dt, p.SolverIterations)
		s.diffuse(s.grid.V, p.Viscosity, dt, p.SolverIterations)
	}

	// 3-6. projection
	s.computeDivergence()
	s.grid.Pressure.Clear()
	s.solvePressure(p.SolverIterations)
	s.subtractGradient()

	// 7. velocity self-advection
	s.advectVelocity(dt)

	// 8. dye diffusion
	if p.Diffusion > 0 {
		for _, ch := range s.grid.Dye() {
			s.diffuse(ch, p.Diffusion, dt, p.SolverIterations)
		}
	}

	// 9-10. dye transport and fade
	s.advectDensity(dt)
	s.fadeDensity(p.FadeSpeed)

	// 11. display mapping
	s.renderDisplay(p)

	s.tick++

	if p.CheckFinite && !s.finite() {
		failed := s.tick - 1
		s.Reset()
		return &StepError{Tick: failed, Stage: "finite-check", Wrapped: ErrNonFinite}
	}
	return nil
}

// SampleVelocity reads the settled velocity field at a continuous grid
// position. Used by the particle tracer after the tick's stages have
// run.
func (s *Solver) SampleVelocity(x, y float64) field.Vec2 {
	g := s.grid
	return field.Vec2{
		X: field.Sample(g.U.Cur, g.W, g.H, x, y),
		Y: field.Sample(g.V.Cur, g.W, g.H, x, y),
	}
}

// Reset clears every field and forgets any in-progress gesture. The
// grid allocation is kept.
func (s *Solver) Reset() {
	s.grid.ClearAll()
	s.prevPos = nil
	s.tick = 0
}

// SetResolution reallocates the grid. On failure the previous grid
// remains valid and active; on success all fields start cleared.
func (s *Solver) SetResolution(w, h int) error {
	if w == s.grid.W && h == s.grid.H {
		return nil
	}
	g, err := field.Allocate(w, h)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadResolution, err)
	}
	s.grid = g
	s.prevPos = nil
	return nil
}

// finite scans the live generation of every field for NaN/Inf.
func (s *Solver) finite() bool {
	g := s.grid
	for _, buf := range [][]float64{
		g.U.Cur, g.V.Cur, g.R.Cur, g.G.Cur, g.B.Cur, g.A.Cur, g.Pressure.Cur,
	} {
		for _, v := range buf {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
