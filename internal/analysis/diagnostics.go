// Package analysis computes diagnostics over the grid fields: energy,
// divergence residuals, and spectra of per-tick series. Everything
// here is read-only over the live field generation.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/flowlab/internal/field"
)

// KineticEnergy sums 0.5(u²+v²) over the grid.
func KineticEnergy(g *field.Grid) float64 {
	e := 0.0
	for i := range g.U.Cur {
		u, v := g.U.Cur[i], g.V.Cur[i]
		e += 0.5 * (u*u + v*v)
	}
	return e
}

// TotalDensity sums the alpha channel; a proxy for how much dye is in
// the domain.
func TotalDensity(g *field.Grid) float64 {
	return floats.Sum(g.A.Cur)
}

// ResidualStats reports mean and max absolute interior divergence.
// The boundary is excluded: it is pinned to zero by construction.
func ResidualStats(g *field.Grid) (mean, max float64) {
	abs := make([]float64, 0, (g.W-2)*(g.H-2))
	for y := 1; y < g.H-1; y++ {
		row := y * g.W
		for x := 1; x < g.W-1; x++ {
			abs = append(abs, math.Abs(g.Div[row+x]))
		}
	}
	if len(abs) == 0 {
		return 0, 0
	}
	return stat.Mean(abs, nil), floats.Max(abs)
}

// SeriesSummary condenses a per-tick series for reports.
type SeriesSummary struct {
	Mean, StdDev, Min, Max float64
}

func Summarize(series []float64) SeriesSummary {
	if len(series) == 0 {
		return SeriesSummary{}
	}
	mean, std := stat.MeanStdDev(series, nil)
	if len(series) == 1 {
		std = 0
	}
	return SeriesSummary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(series),
		Max:    floats.Max(series),
	}
}

// PowerSpectrum returns magnitude per frequency bin for a per-tick
// series, zero-padded to the next power of two. Bin f corresponds to
// f/(n·tickSeconds) Hz; only the positive-frequency half is returned.
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	n := 1
	for n < len(series) {
		n <<= 1
	}
	padded := make([]float64, n)
	copy(padded, series)

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// Finite reports whether every live field value is finite.
func Finite(g *field.Grid) bool {
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
