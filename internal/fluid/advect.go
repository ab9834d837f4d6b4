package fluid

import "github.com/san-kum/flowlab/internal/field"

// advectInto semi-Lagrangian-transports one field pair: each interior
// cell traces backward along (u, v) by dt, clamps the traced position
// to [0.5, dim-1.5], and bilinearly samples the source generation into
// Tmp. Boundary cells copy through. The caller swaps; velocity
// self-advection needs both component Tmps written before either pair
// swaps.
func (s *Solver) advectInto(p *field.Pair, u, v []float64, dt float64) {
	g := s.grid
	w, h := g.W, g.H
	src, dst := p.Cur, p.Tmp

	s.backend.ForRows(0, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w
			if y == 0 || y == h-1 {
				copy(dst[row:row+w], src[row:row+w])
				continue
			}
			dst[row] = src[row]
			dst[row+w-1] = src[row+w-1]
			for x := 1; x < w-1; x++ {
				i := row + x
				tx := float64(x) - u[i]*dt
				ty := float64(y) - v[i]*dt
				dst[i] = field.Sample(src, w, h, tx, ty)
			}
		}
	})
}

// advectVelocity transports the velocity field along itself. Both
// components trace through the same pre-advection velocity.
func (s *Solver) advectVelocity(dt float64) {
	g := s.grid
	u, v := g.U.Cur, g.V.Cur
	s.advectInto(g.U, u, v, dt)
	s.advectInto(g.V, u, v, dt)
	g.U.Swap()
	g.V.Swap()
}

// advectDensity transports the dye channels through the already
// advected velocity field.
func (s *Solver) advectDensity(dt float64) {
	g := s.grid
	u, v := g.U.Cur, g.V.Cur
	for _, ch := range g.Dye() {
		s.advectInto(ch, u, v, dt)
		ch.Swap()
	}
}
