package fluid

import "github.com/san-kum/flowlab/internal/compute"

// computeDivergence writes the velocity divergence into g.Div.
// Interior stencil only; boundary divergence is zero.
func (s *Solver) computeDivergence() {
	g := s.grid
	w, h := g.W, g.H
	u, v, div := g.U.Cur, g.V.Cur, g.Div

	s.backend.ForRows(0, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w
			if y == 0 || y == h-1 {
				for x := 0; x < w; x++ {
					div[row+x] = 0
				}
				continue
			}
			div[row] = 0
			div[row+w-1] = 0
			for x := 1; x < w-1; x++ {
				i := row + x
				div[i] = -0.5 * ((u[i+1] - u[i-1]) + (v[i+w] - v[i-w]))
			}
		}
	})
}

// solvePressure relaxes the pressure Poisson system with iters Jacobi
// passes, ping-ponging the pressure pair. Boundary pressure is pinned
// to zero every pass. A backend implementing the PressureSolver
// capability may run the whole solve itself.
func (s *Solver) solvePressure(iters int) {
	g := s.grid
	w, h := g.W, g.H

	if ps, ok := s.backend.(compute.PressureSolver); ok {
		if ps.SolvePressure(g.Pressure.Cur, g.Div, w, h, iters) {
			return
		}
	}

	div := g.Div
	for it := 0; it < iters; it++ {
		src, dst := g.Pressure.Cur, g.Pressure.Tmp
		s.backend.ForRows(0, h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				row := y * w
				if y == 0 || y == h-1 {
					for x := 0; x < w; x++ {
						dst[row+x] = 0
					}
					continue
				}
				dst[row] = 0
				dst[row+w-1] = 0
				for x := 1; x < w-1; x++ {
					i := row + x
					sum := src[i-1] + src[i+1] + src[i-w] + src[i+w]
					dst[i] = (div[i] + sum) * 0.25
				}
			}
		})
		g.Pressure.Swap()
	}
}

// subtractGradient removes the pressure gradient from the velocity
// field, leaving its approximately divergence-free component. In-place
// is safe: it reads pressure, writes velocity. Boundary velocity is
// untouched.
func (s *Solver) subtractGradient() {
	g := s.grid
	w, h := g.W, g.H
	u, v, p := g.U.Cur, g.V.Cur, g.Pressure.Cur

	s.backend.ForRows(1, h-1, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w
			for x := 1; x < w-1; x++ {
				i := row + x
				u[i] -= 0.5 * (p[i+1] - p[i-1])
				v[i] -= 0.5 * (p[i+w] - p[i-w])
			}
		}
	})
}
