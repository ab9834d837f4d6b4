// Package compute provides the per-stage dispatch backends.
//
// The solver assumes a parallel-for over grid rows with a barrier on
// return: stage N+1 never observes a partially-written output of
// stage N. The CPU backend chunks rows across workers; a serial
// backend exists for deterministic tests.
//
// The OpenGL backend additionally implements the PressureSolver
// capability, running the Jacobi pressure iterations as a compute
// shader once a GL context is current:
//
//	b := compute.NewOpenGLBackend()
//	if err := b.Init(grid.W * grid.H); err == nil {
//	    compute.SetBackend(b)
//	}
package compute
