package fluid

import "math"

// gradEpsilon keeps the vorticity gradient normalization away from a
// divide by zero in flat regions.
const gradEpsilon = 1e-5

// computeVorticity writes the velocity curl into g.Curl. Interior
// stencil only; boundary curl is zero.
func (s *Solver) computeVorticity() {
	g := s.grid
	w, h := g.W, g.H
	u, v, curl := g.U.Cur, g.V.Cur, g.Curl

	s.backend.ForRows(0, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w
			if y == 0 || y == h-1 {
				for x := 0; x < w; x++ {
					curl[row+x] = 0
				}
				continue
			}
			curl[row] = 0
			curl[row+w-1] = 0
			for x := 1; x < w-1; x++ {
				i := row + x
				curl[i] = (u[i+w] - u[i-w]) - (v[i+1] - v[i-1])
			}
		}
	})
}

// applyVorticity pushes velocity along the normalized gradient of
// |curl|, rotated a quarter turn, reinjecting the rotational energy
// the numerics dissipate. Reads curl, writes velocity in place;
// interior only.
func (s *Solver) applyVorticity(strength, dt float64) {
	g := s.grid
	w := g.W
	u, v, curl := g.U.Cur, g.V.Cur, g.Curl

	s.backend.ForRows(1, g.H-1, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w
			for x := 1; x < w-1; x++ {
				i := row + x
				gx := math.Abs(curl[i+1]) - math.Abs(curl[i-1])
				gy := math.Abs(curl[i+w]) - math.Abs(curl[i-w])
				mag := math.Sqrt(gx*gx+gy*gy) + gradEpsilon
				nx := gx / mag
				ny := gy / mag

				f := strength * curl[i]
				u[i] += f * ny * dt
				v[i] += -f * nx * dt
			}
		}
	})
}
