// Package fluid implements the grid solver: a stable-fluids scheme
// trading accuracy for unconditional stability at interactive rates.
//
// Every tick runs a fixed stage sequence over the double-buffered
// fields: vorticity confinement, viscous diffusion, projection
// (divergence, Jacobi pressure solve, gradient subtraction),
// semi-Lagrangian advection of velocity then dye, density fade, and
// display encoding. Iterative stages ping-pong between two buffers per
// pass; stages are separated by the backend's dispatch barrier.
//
// Boundary policy per stage: diffusion and advection copy boundary
// cells through unchanged; divergence, pressure and curl pin the
// boundary to zero; gradient subtraction and confinement leave
// boundary velocity untouched.
package fluid
