package fluid

import (
	"math"

	"github.com/san-kum/flowlab/internal/config"
	"github.com/san-kum/flowlab/internal/field"
)

// AddForce injects an impulse and dye around a pointer position given
// in window coordinates. Force is the pointer's travel since the last
// call scaled by ForceMultiplier; the first sample of a gesture (after
// EndInteraction) carries zero force but still deposits dye.
func (s *Solver) AddForce(pos, window field.Vec2, p config.Params) {
	g := s.grid
	if window.X <= 0 || window.Y <= 0 {
		return
	}
	gridPos := field.Vec2{
		X: pos.X / window.X * float64(g.W),
		Y: pos.Y / window.Y * float64(g.H),
	}

	var force field.Vec2
	if s.prevPos != nil {
		force.X = (gridPos.X - s.prevPos.X) * p.ForceMultiplier
		force.Y = (gridPos.Y - s.prevPos.Y) * p.ForceMultiplier
	}
	s.prevPos = &gridPos

	dye := DyeColor(s.tick)
	s.splat(gridPos, force, dye, p.ColorMultiplier, p.ForceRadius, p.DeltaTime)
}

// EndInteraction closes the current gesture; the next AddForce is a
// first contact again.
func (s *Solver) EndInteraction() {
	s.prevPos = nil
}

// splat applies a Gaussian-weighted impulse under a hard radius
// cutoff: cells at or beyond radius are untouched, not merely
// negligibly affected. Interior cells only.
func (s *Solver) splat(pos, force field.Vec2, dye [3]float64, colorMul, radius, dt float64) {
	g := s.grid
	r2 := radius * radius
	twoSigma2 := 2 * r2

	x0 := clampInt(int(pos.X-radius), 1, g.W-2)
	x1 := clampInt(int(pos.X+radius)+1, 1, g.W-2)
	y0 := clampInt(int(pos.Y-radius), 1, g.H-2)
	y1 := clampInt(int(pos.Y+radius)+1, 1, g.H-2)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) - pos.X
			dy := float64(y) - pos.Y
			d2 := dx*dx + dy*dy
			if d2 >= r2 {
				continue
			}
			infl := math.Exp(-d2/twoSigma2) * dt
			i := g.Idx(x, y)
			g.U.Cur[i] += force.X * infl
			g.V.Cur[i] += force.Y * infl
			g.R.Cur[i] += dye[0] * colorMul * infl
			g.G.Cur[i] += dye[1] * colorMul * infl
			g.B.Cur[i] += dye[2] * colorMul * infl
			g.A.Cur[i] += colorMul * infl
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
