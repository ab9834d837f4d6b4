package compute

// Backend dispatches per-row kernels over a 2D grid. ForRows must not
// return until every row in [y0, y1) has been processed; the pipeline
// relies on that as the inter-stage barrier.
type Backend interface {
	Name() string
	Available() bool
	ForRows(y0, y1 int, fn func(yStart, yEnd int))
	Cleanup()
}

// PressureSolver is an optional capability: a backend that can run the
// whole Jacobi pressure solve itself (e.g. as a compute shader).
// Discovered via type assertion. SolvePressure returns false when the
// backend cannot serve the request and the caller must take the CPU
// path instead.
type PressureSolver interface {
	SolvePressure(pressure, div []float64, w, h, iterations int) bool
}

var activeBackend Backend

func init() {
	activeBackend = NewCPUBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}
