package compute

import (
	"runtime"
	"sync"
)

// Below this many rows the goroutine fan-out costs more than it saves.
const minParallelRows = 32

type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

// ForRows chunks [y0, y1) across workers and waits for all of them, so
// returning doubles as the stage barrier. Chunks never overlap: each
// row is processed exactly once.
func (c *CPUBackend) ForRows(y0, y1 int, fn func(yStart, yEnd int)) {
	rows := y1 - y0
	if rows <= 0 {
		return
	}
	if rows < minParallelRows || c.workers <= 1 {
		fn(y0, y1)
		return
	}

	workers := c.workers
	if rows < workers {
		workers = rows
	}
	chunk := (rows + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := y0 + w*chunk
		end := start + chunk
		if end > y1 {
			end = y1
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// SerialBackend runs every dispatch on the calling goroutine. Used by
// tests that need deterministic, single-lane execution.
type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) ForRows(y0, y1 int, fn func(yStart, yEnd int)) {
	if y1 > y0 {
		fn(y0, y1)
	}
}
