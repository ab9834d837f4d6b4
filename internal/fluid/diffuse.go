package fluid

import "github.com/san-kum/flowlab/internal/field"

// diffuse runs iters Jacobi relaxation passes over one field pair.
// Each iteration reads the previous iteration's fully-written output
// (ping-pong swap after every pass); boundary cells copy through
// unchanged. With rate 0 the coefficient vanishes and every pass is an
// exact identity on interior cells.
func (s *Solver) diffuse(p *field.Pair, rate, dt float64, iters int) {
	g := s.grid
	w, h := g.W, g.H
	a := dt * rate * float64(w) * float64(h)
	inv := 1.0 / (1.0 + 4.0*a)

	for it := 0; it < iters; it++ {
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
					sum := src[i-1] + src[i+1] + src[i-w] + src[i+w]
					dst[i] = (src[i] + a*sum) * inv
				}
			}
		})
		p.Swap()
	}
}
