package config

// Presets are bulk parameter assignments. Applying one never triggers
// reallocation by itself; the caller compares resolution and decides.
var Presets = map[string]Params{
	"smoke": func() Params {
		p := DefaultParams()
		p.FadeSpeed = 0.002
		p.VorticityStrength = 14.0
		p.Diffusion = 0.00008
		p.ForceRadius = 9.0
		p.Brightness = 1.2
		return p
	}(),
	"ink": func() Params {
		p := DefaultParams()
		p.Viscosity = 0.004
		p.FadeSpeed = 0.0
		p.VorticityStrength = 0.0
		p.ForceMultiplier = 18.0
		p.ForceRadius = 3.5
		return p
	}(),
	"storm": func() Params {
		p := DefaultParams()
		p.VorticityStrength = 35.0
		p.ForceMultiplier = 70.0
		p.DeltaTime = 1.6
		p.FadeSpeed = 0.008
		p.Particles.SpawnCount = 30
		return p
	}(),
	"glass": func() Params {
		p := DefaultParams()
		p.DisplayMode = ModeVelocity
		p.Viscosity = 0.008
		p.SolverIterations = 40
		p.FadeSpeed = 0.01
		return p
	}(),
	"tracers": func() Params {
		p := DefaultParams()
		p.DisplayMode = ModeParticlesOnly
		p.Particles.SpawnCount = 40
		p.Particles.Momentum = 0.85
		p.Particles.FluidForce = 0.7
		p.Particles.SpawnRadius = 18.0
		return p
	}(),
}

func GetPreset(name string) *Params {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
