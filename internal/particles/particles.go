// Package particles implements the Lagrangian tracer layer: a bounded
// pool of particles advected by sampling the settled grid velocity
// each tick, emitted as a line-segment vertex stream for additive
// drawing.
package particles

import (
	"math/rand"

	"github.com/san-kum/flowlab/internal/config"
	"github.com/san-kum/flowlab/internal/field"
)

const (
	// MaxParticles bounds the pool; overflow evicts oldest-first and
	// is never an error.
	MaxParticles = 50000

	// Margin beyond the viewport, in pixels, before a particle is
	// force-expired.
	Margin = 50.0

	// Fixed per-tick life decay. Deliberately a constant: the original
	// design exposes a fade knob the update never reads, and that
	// behavior is preserved (see config.ParticleParams).
	lifeDecay = 0.999

	// Particles age by a fixed frame duration, independent of the
	// actual elapsed wall time.
	frameSeconds = 1.0 / 60.0

	// Life below this no longer exists.
	minLife = 0.01

	// Fluid force is calibrated against a 1280-wide viewport and
	// scales proportionally with the actual one.
	refViewportWidth = 1280.0
)

// Particle state. Position and velocity are in viewport pixels.
// Color is fixed at spawn: white scaled by the spawn alpha. Renderers
// currently tint all particles uniformly, so only the alpha channel
// (mirrored into Life) affects the picture.
type Particle struct {
	Pos   field.Vec2
	Vel   field.Vec2
	Color [4]float64
	Life  float64
	Mass  float64
	Age   float64
}

// VelocitySampler reads the grid velocity at a viewport position,
// already converted to viewport units.
type VelocitySampler func(x, y float64) field.Vec2

// GridSampler adapts a grid-space sampler to viewport coordinates:
// positions map into grid cells, and the returned velocity converts
// from cells per tick to viewport pixels per tick. Each axis carries
// its own scale; viewport and grid aspect ratios need not match.
func GridSampler(sample VelocitySampler, gridW, gridH int, viewport field.Vec2) VelocitySampler {
	sx := viewport.X / float64(gridW)
	sy := viewport.Y / float64(gridH)
	return func(x, y float64) field.Vec2 {
		v := sample(x/sx, y/sy)
		return field.Vec2{X: v.X * sx, Y: v.Y * sy}
	}
}

// Vertex is one endpoint of a particle line segment.
type Vertex struct {
	X, Y  float32
	Alpha float32
}

// System owns the particle pool. Spawn order is pool order; eviction
// removes from the front.
type System struct {
	parts []Particle
	max   int
	rng   *rand.Rand
}

func NewSystem(seed int64) *System {
	return &System{
		parts: make([]Particle, 0, 1024),
		max:   MaxParticles,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *System) Len() int { return len(s.parts) }

// SetCapacity overrides the pool bound. Shrinking below the current
// population evicts oldest-first immediately.
func (s *System) SetCapacity(n int) {
	if n < 1 {
		n = 1
	}
	s.max = n
	if over := len(s.parts) - n; over > 0 {
		s.evict(over)
	}
}

// Spawn inserts count particles jittered around pos. When the pool is
// full the oldest entries are evicted first; survivors keep their
// relative order.
func (s *System) Spawn(pos field.Vec2, count int, spawnRadius float64) {
	if count <= 0 {
		return
	}
	if count > s.max {
		count = s.max
	}
	if over := len(s.parts) + count - s.max; over > 0 {
		s.evict(over)
	}
	for i := 0; i < count; i++ {
		alpha := 0.3 + s.rng.Float64()*0.7
		s.parts = append(s.parts, Particle{
			Pos: field.Vec2{
				X: pos.X + (s.rng.Float64()*2-1)*spawnRadius,
				Y: pos.Y + (s.rng.Float64()*2-1)*spawnRadius,
			},
			Color: [4]float64{alpha, alpha, alpha, alpha},
			Life:  alpha,
			Mass:  0.1 + s.rng.Float64()*0.9,
		})
	}
}

func (s *System) evict(n int) {
	if n >= len(s.parts) {
		s.parts = s.parts[:0]
		return
	}
	copy(s.parts, s.parts[n:])
	s.parts = s.parts[:len(s.parts)-n]
}

// Update advances every particle against the settled velocity field.
// The velocity assignment each tick is a weighted blend of fluid pull
// and carried momentum, not an acceleration integration: young
// particles follow the fluid, old ones coast.
func (s *System) Update(p config.Params, sample VelocitySampler, viewport field.Vec2) {
	pp := p.Particles
	viewportScale := viewport.X / refViewportWidth

	fluidForce := pp.FluidForce
	if pp.LinkToViscosity {
		fluidForce = 0.1 + (p.Viscosity/0.01)*0.9
	}

	w := 0
	for i := range s.parts {
		pt := &s.parts[i]

		ageDecay := 1 - pt.Age*pp.FluidDecayRate
		if ageDecay < 0 {
			ageDecay = 0
		}

		flow := sample(pt.Pos.X, pt.Pos.Y)
		pull := pt.Mass * fluidForce * ageDecay * viewportScale

		blend := min(1, pt.Age*2)
		momentum := pp.Momentum + (1-pp.Momentum)*blend

		pt.Vel.X = flow.X*pull + pt.Vel.X*momentum
		pt.Vel.Y = flow.Y*pull + pt.Vel.Y*momentum
		pt.Pos.X += pt.Vel.X
		pt.Pos.Y += pt.Vel.Y
		pt.Age += frameSeconds

		if pt.Pos.X < -Margin || pt.Pos.X > viewport.X+Margin ||
			pt.Pos.Y < -Margin || pt.Pos.Y > viewport.Y+Margin {
			pt.Life = 0
		}

		pt.Life *= lifeDecay
		if pt.Life < minLife {
			continue // removed; compaction skips it
		}
		s.parts[w] = *pt
		w++
	}
	s.parts = s.parts[:w]
}

// Vertices emits two endpoints per live particle: the trailing point
// position − velocity·scale, then the position, with alpha = life.
// The consumer draws them as additive-blended line segments.
func (s *System) Vertices(particleScale float64) []Vertex {
	out := make([]Vertex, 0, len(s.parts)*2)
	for i := range s.parts {
		pt := &s.parts[i]
		a := float32(pt.Life)
		out = append(out,
			Vertex{
				X:     float32(pt.Pos.X - pt.Vel.X*particleScale),
				Y:     float32(pt.Pos.Y - pt.Vel.Y*particleScale),
				Alpha: a,
			},
			Vertex{
				X:     float32(pt.Pos.X),
				Y:     float32(pt.Pos.Y),
				Alpha: a,
			},
		)
	}
	return out
}
