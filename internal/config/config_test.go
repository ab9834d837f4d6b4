package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.Width <= 0 || p.Height <= 0 {
		t.Error("default resolution should be positive")
	}
	if p.SolverIterations < 1 {
		t.Error("solver iterations should be at least 1")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"viscosity high", func(p *Params) { p.Viscosity = 0.5 }},
		{"negative diffusion", func(p *Params) { p.Diffusion = -1 }},
		{"dt low", func(p *Params) { p.DeltaTime = 0.01 }},
		{"iterations zero", func(p *Params) { p.SolverIterations = 0 }},
		{"radius low", func(p *Params) { p.ForceRadius = 0.1 }},
		{"bad mode", func(p *Params) { p.DisplayMode = "plasma" }},
		{"momentum high", func(p *Params) { p.Particles.Momentum = 1.5 }},
		{"zero resolution", func(p *Params) { p.Width = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrParamRange) {
				t.Errorf("expected ErrParamRange, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("smoke")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.VorticityStrength != 14.0 {
		t.Errorf("expected vorticity 14, got %v", p.VorticityStrength)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetsAllValid(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %q: %v", name, err)
		}
	}
}

func TestPresetIsCopy(t *testing.T) {
	a := GetPreset("ink")
	a.Viscosity = 0.009
	b := GetPreset("ink")
	if b.Viscosity == 0.009 {
		t.Error("GetPreset returned shared state")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")

	p := DefaultParams()
	p.Viscosity = 0.003
	p.DisplayMode = ModeSpeed
	p.Particles.SpawnCount = 7

	if err := Save(path, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Viscosity != 0.003 || got.DisplayMode != ModeSpeed || got.Particles.SpawnCount != 7 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/params.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
