package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrParamRange indicates a parameter outside its documented range.
var ErrParamRange = errors.New("config: parameter out of range")

// DisplayMode selects which field feeds the display buffer.
type DisplayMode string

const (
	ModeDensity       DisplayMode = "density"
	ModeVelocity      DisplayMode = "velocity"
	ModeSpeed         DisplayMode = "speed"
	ModeVorticity     DisplayMode = "vorticity"
	ModeParticlesOnly DisplayMode = "particles"
)

// Modes lists the display modes in cycle order.
var Modes = []DisplayMode{ModeDensity, ModeVelocity, ModeSpeed, ModeVorticity, ModeParticlesOnly}

// Params is the full per-tick configuration snapshot. The solver reads
// it by value each tick so UI edits mid-tick can never tear a stage.
// The hot path performs no range clamping; out-of-range values are the
// caller's problem (Validate exists for the edges that care).
type Params struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Viscosity         float64     `yaml:"viscosity"`          // [0, 0.01]
	Diffusion         float64     `yaml:"diffusion"`          // [0, 0.0003]
	DeltaTime         float64     `yaml:"delta_time"`         // [0.1, 5.0]
	VorticityStrength float64     `yaml:"vorticity_strength"` // [0, 50]
	FadeSpeed         float64     `yaml:"fade_speed"`         // [0, 0.1]
	SolverIterations  int         `yaml:"solver_iterations"`  // [1, 50]
	ForceMultiplier   float64     `yaml:"force_multiplier"`   // [0, 100]
	ColorMultiplier   float64     `yaml:"color_multiplier"`   // [0, 100]
	Brightness        float64     `yaml:"brightness"`         // [0, 2.0]
	ForceRadius       float64     `yaml:"force_radius"`       // [0.5, 50]
	DisplayMode       DisplayMode `yaml:"display_mode"`

	// CheckFinite enables the per-tick NaN/Inf scan with field reset on
	// detection. Off by default; it costs a full field pass.
	CheckFinite bool `yaml:"check_finite"`

	Particles ParticleParams `yaml:"particles"`
}

// ParticleParams configures the tracer layer.
//
// FluidDecayRate damps the fluid force by particle age; the per-tick
// life decay itself is a fixed 0.999 factor and intentionally not a
// knob here (the vestigial fade setting of the original design).
type ParticleParams struct {
	Enabled         bool    `yaml:"enabled"`
	Momentum        float64 `yaml:"momentum"`         // [0, 1]
	FluidForce      float64 `yaml:"fluid_force"`      // [0, 1]
	SpawnCount      int     `yaml:"spawn_count"`      // [1, 50]
	SpawnRadius     float64 `yaml:"spawn_radius"`     // [0, 30]
	FluidDecayRate  float64 `yaml:"fluid_decay_rate"` // [0.5, 10]
	ParticleSize    float64 `yaml:"particle_size"`    // [0.1, 5]
	LinkToViscosity bool    `yaml:"link_to_viscosity"`
}

func DefaultParams() Params {
	return Params{
		Width:  256,
		Height: 256,

		Viscosity:         0.0,
		Diffusion:         0.0,
		DeltaTime:         1.0,
		VorticityStrength: 8.0,
		FadeSpeed:         0.004,
		SolverIterations:  20,
		ForceMultiplier:   30.0,
		ColorMultiplier:   12.0,
		Brightness:        1.0,
		ForceRadius:       6.0,
		DisplayMode:       ModeDensity,

		Particles: ParticleParams{
			Enabled:         true,
			Momentum:        0.6,
			FluidForce:      0.4,
			SpawnCount:      12,
			SpawnRadius:     8.0,
			FluidDecayRate:  2.0,
			ParticleSize:    1.0,
			LinkToViscosity: false,
		},
	}
}

func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func Save(path string, p Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type rangeCheck struct {
	name     string
	val      float64
	min, max float64
}

// Validate reports the first parameter outside its documented range.
// Called at the CLI/GUI edge, never per tick.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrParamRange, p.Width, p.Height)
	}
	checks := []rangeCheck{
		{"viscosity", p.Viscosity, 0, 0.01},
		{"diffusion", p.Diffusion, 0, 0.0003},
		{"delta_time", p.DeltaTime, 0.1, 5.0},
		{"vorticity_strength", p.VorticityStrength, 0, 50},
		{"fade_speed", p.FadeSpeed, 0, 0.1},
		{"solver_iterations", float64(p.SolverIterations), 1, 50},
		{"force_multiplier", p.ForceMultiplier, 0, 100},
		{"color_multiplier", p.ColorMultiplier, 0, 100},
		{"brightness", p.Brightness, 0, 2.0},
		{"force_radius", p.ForceRadius, 0.5, 50},
		{"particles.momentum", p.Particles.Momentum, 0, 1},
		{"particles.fluid_force", p.Particles.FluidForce, 0, 1},
		{"particles.spawn_count", float64(p.Particles.SpawnCount), 1, 50},
		{"particles.spawn_radius", p.Particles.SpawnRadius, 0, 30},
		{"particles.fluid_decay_rate", p.Particles.FluidDecayRate, 0.5, 10},
		{"particles.particle_size", p.Particles.ParticleSize, 0.1, 5},
	}
	for _, c := range checks {
		if c.val < c.min || c.val > c.max {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrParamRange, c.name, c.val, c.min, c.max)
		}
	}
	switch p.DisplayMode {
	case ModeDensity, ModeVelocity, ModeSpeed, ModeVorticity, ModeParticlesOnly:
	default:
		return fmt.Errorf("%w: display_mode %q", ErrParamRange, p.DisplayMode)
	}
	return nil
}
