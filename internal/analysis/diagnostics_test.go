package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/flowlab/internal/field"
)

func testGrid(t *testing.T) *field.Grid {
	t.Helper()
	g, err := field.Allocate(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestKineticEnergy(t *testing.T) {
	g := testGrid(t)
	if KineticEnergy(g) != 0 {
		t.Error("rest field should have zero energy")
	}
	g.U.Cur[10] = 3
	g.V.Cur[10] = 4
	if got := KineticEnergy(g); got != 12.5 {
		t.Errorf("energy = %v, want 12.5", got)
	}
}

func TestResidualStats(t *testing.T) {
	g := testGrid(t)
	g.Div[g.Idx(3, 3)] = -0.4
	g.Div[g.Idx(4, 4)] = 0.2
	// Boundary values must not count.
	g.Div[g.Idx(0, 5)] = 100

	mean, max := ResidualStats(g)
	if max != 0.4 {
		t.Errorf("max = %v, want 0.4", max)
	}
	want := 0.6 / 36.0
	if math.Abs(mean-want) > 1e-12 {
		t.Errorf("mean = %v, want %v", mean, want)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Errorf("summary wrong: %+v", s)
	}
	if Summarize(nil) != (SeriesSummary{}) {
		t.Error("empty series should summarize to zero")
	}
}

func TestPowerSpectrumPeak(t *testing.T) {
	// A pure oscillation at bin 8 of a 64-sample window.
	n := 64
	series := make([]float64, n)
	for i := range series {
		series[i] = math.Sin(2 * math.Pi * 8 * float64(i) / float64(n))
	}

	ps := PowerSpectrum(series)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}
	peak := 0
	for i, v := range ps {
		if v > ps[peak] {
			peak = i
		}
		_ = v
	}
	if peak != 8 {
		t.Errorf("spectral peak at bin %d, want 8", peak)
	}

	if PowerSpectrum([]float64{1}) != nil {
		t.Error("degenerate series should return nil")
	}
}

func TestFinite(t *testing.T) {
	g := testGrid(t)
	if !Finite(g) {
		t.Error("fresh grid should be finite")
	}
	g.Pressure.Cur[5] = math.Inf(1)
	if Finite(g) {
		t.Error("Inf not detected")
	}
	g.Pressure.Cur[5] = 0
	g.B.Cur[2] = math.NaN()
	if Finite(g) {
		t.Error("NaN not detected")
	}
}
