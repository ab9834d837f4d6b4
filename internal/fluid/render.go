package fluid

import (
	"math"

	"github.com/san-kum/flowlab/internal/config"
)

const (
	// Fixed encode scale for the signed velocity display modes.
	velocityScale = 0.1
	// Fixed brightness for the vorticity display mode; the user
	// brightness knob applies to density only.
	vorticityBrightness = 0.5
)

// fadeDensity multiplies every dye channel by (1-rate), clamped at
// zero. rate 0 is skipped outright; rate 1 zeroes in a single call.
func (s *Solver) fadeDensity(rate float64) {
	if rate == 0 {
		return
	}
	g := s.grid
	keep := 1.0 - rate

	for _, ch := range g.Dye() {
		buf := ch.Cur
		s.backend.ForRows(0, g.H, func(y0, y1 int) {
			for i := y0 * g.W; i < y1*g.W; i++ {
				v := buf[i] * keep
				if v < 0 {
					v = 0
				}
				buf[i] = v
			}
		})
	}
}

// renderDisplay encodes the active display mode into the RGBA8 display
// buffer. In particles mode the buffer is cleared; the tracer layer
// supplies all visible output.
func (s *Solver) renderDisplay(p config.Params) {
	g := s.grid
	w := g.W
	out := g.Display

	switch p.DisplayMode {
	case config.ModeVelocity:
		u, v := g.U.Cur, g.V.Cur
		s.backend.ForRows(0, g.H, func(y0, y1 int) {
			for i := y0 * w; i < y1*w; i++ {
				speed := math.Sqrt(u[i]*u[i] + v[i]*v[i])
				o := i * 4
				out[o] = encode(u[i]*velocityScale + 0.5)
				out[o+1] = encode(v[i]*velocityScale + 0.5)
				out[o+2] = encode(speed * velocityScale)
				out[o+3] = 255
			}
		})

	case config.ModeSpeed:
		u, v := g.U.Cur, g.V.Cur
		s.backend.ForRows(0, g.H, func(y0, y1 int) {
			for i := y0 * w; i < y1*w; i++ {
				c := encode(math.Sqrt(u[i]*u[i]+v[i]*v[i]) * velocityScale)
				o := i * 4
				out[o] = c
				out[o+1] = c
				out[o+2] = c
				out[o+3] = 255
			}
		})

	case config.ModeVorticity:
		curl := g.Curl
		s.backend.ForRows(0, g.H, func(y0, y1 int) {
			for i := y0 * w; i < y1*w; i++ {
				c := encode(curl[i] * vorticityBrightness)
				o := i * 4
				out[o] = c
				out[o+1] = c
				out[o+2] = c
				out[o+3] = 255
			}
		})

	case config.ModeParticlesOnly:
		s.backend.ForRows(0, g.H, func(y0, y1 int) {
			for i := y0 * w * 4; i < y1*w*4; i++ {
				out[i] = 0
			}
		})

	default: // density
		r, gr, b := g.R.Cur, g.G.Cur, g.B.Cur
		br := p.Brightness
		s.backend.ForRows(0, g.H, func(y0, y1 int) {
			for i := y0 * w; i < y1*w; i++ {
				o := i * 4
				out[o] = encode(r[i] * br)
				out[o+1] = encode(gr[i] * br)
				out[o+2] = encode(b[i] * br)
				out[o+3] = 255
			}
		})
	}
}

// encode clamps a [0,1] intensity to an 8-bit channel. NaN encodes as
// zero; the negated comparison catches it alongside the low clamp.
func encode(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
