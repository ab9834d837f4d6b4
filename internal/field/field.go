package field

import (
	"errors"
	"fmt"
)

// MaxCells caps grid allocations. Matches what a mid-range GPU backend
// comfortably holds as four RGBA float textures plus scalars.
const MaxCells = 4096 * 4096

var (
	// ErrBadDimensions indicates non-positive grid dimensions.
	ErrBadDimensions = errors.New("field: grid dimensions must be positive")

	// ErrTooLarge indicates the requested grid exceeds backend capacity.
	ErrTooLarge = errors.New("field: grid exceeds backend capacity")
)

// Vec2 is a 2D point or vector in grid or window space.
type Vec2 struct {
	X, Y float64
}

// Pair is a double-buffered scalar field. Iterative stages read Cur and
// write Tmp, then Swap; in-place updates are unsafe because cell
// evaluation order is unspecified under parallel dispatch.
type Pair struct {
	Cur, Tmp []float64
}

func newPair(n int) *Pair {
	return &Pair{
		Cur: make([]float64, n),
		Tmp: make([]float64, n),
	}
}

// Swap exchanges the current and temp buffer identities in O(1).
func (p *Pair) Swap() {
	p.Cur, p.Tmp = p.Tmp, p.Cur
}

// Clear zeroes both generations, interior and boundary.
func (p *Pair) Clear() {
	for i := range p.Cur {
		p.Cur[i] = 0
		p.Tmp[i] = 0
	}
}

// Grid owns every simulation field at a shared resolution. Velocity is
// stored as two scalar pairs (U, V) and dye as four channel pairs so
// that the same relaxation kernels apply to every component.
type Grid struct {
	W, H int

	U, V       *Pair // velocity components
	R, G, B, A *Pair // dye color channels
	Pressure   *Pair

	Div  []float64 // velocity divergence, single generation
	Curl []float64 // vorticity, single generation

	Display []uint8 // RGBA8, W*H*4
}

// Allocate builds a zero-initialized grid. It fails on non-positive
// dimensions or when the cell count exceeds MaxCells; on failure no
// partially-valid grid is returned.
func Allocate(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, w, h)
	}
	if w*h > MaxCells {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	n := w * h
	return &Grid{
		W: w, H: h,
		U: newPair(n), V: newPair(n),
		R: newPair(n), G: newPair(n), B: newPair(n), A: newPair(n),
		Pressure: newPair(n),
		Div:      make([]float64, n),
		Curl:     make([]float64, n),
		Display:  make([]uint8, n*4),
	}, nil
}

// Idx maps grid coordinates to the flat buffer index.
func (g *Grid) Idx(x, y int) int {
	return y*g.W + x
}

// Dye returns the four density channel pairs in RGBA order.
func (g *Grid) Dye() [4]*Pair {
	return [4]*Pair{g.R, g.G, g.B, g.A}
}

// Velocity returns the two velocity component pairs.
func (g *Grid) Velocity() [2]*Pair {
	return [2]*Pair{g.U, g.V}
}

// ClearAll zeroes every field including the display buffer. Called at
// initialization and after a resolution change; no stale data from a
// previous allocation may survive.
func (g *Grid) ClearAll() {
	for _, p := range []*Pair{g.U, g.V, g.R, g.G, g.B, g.A, g.Pressure} {
		p.Clear()
	}
	for i := range g.Div {
		g.Div[i] = 0
		g.Curl[i] = 0
	}
	for i := range g.Display {
		g.Display[i] = 0
	}
}

// Sample bilinearly interpolates a single-generation buffer at a
// continuous grid position. The position is clamped to the valid
// interpolation range so the four taps stay in bounds. The lower
// clamps are written negated so a NaN coordinate also lands on the
// clamp instead of poisoning the index arithmetic.
func Sample(buf []float64, w, h int, x, y float64) float64 {
	if !(x >= 0.5) {
		x = 0.5
	}
	if x > float64(w)-1.5 {
		x = float64(w) - 1.5
	}
	if !(y >= 0.5) {
		y = 0.5
	}
	if y > float64(h)-1.5 {
		y = float64(h) - 1.5
	}
	x0 := int(x)
	y0 := int(y)
	fx := x - float64(x0)
	fy := y - float64(y0)

	i00 := y0*w + x0
	i10 := i00 + 1
	i01 := i00 + w
	i11 := i01 + 1

	top := buf[i00]*(1-fx) + buf[i10]*fx
	bot := buf[i01]*(1-fx) + buf[i11]*fx
	return top*(1-fy) + bot*fy
}
