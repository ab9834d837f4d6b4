package export

import (
	"strings"
	"testing"

	"github.com/san-kum/flowlab/internal/particles"
)

func TestFieldSVGSkipsDarkCells(t *testing.T) {
	// 2x1 grid: one bright cell, one black.
	display := []uint8{
		200, 100, 50, 255,
		0, 0, 0, 255,
	}
	svg := FieldSVG(display, 2, 1, 4.0)

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing xml header")
	}
	if !strings.Contains(svg, `fill="#c86432"`) {
		t.Errorf("bright cell missing from output:\n%s", svg)
	}
	if strings.Contains(svg, `fill="#000000"`) {
		t.Error("black cell should be skipped")
	}
	if !strings.Contains(svg, `width="8"`) {
		t.Error("output size should be grid size times cell size")
	}
}

func TestTrailsSVG(t *testing.T) {
	verts := []particles.Vertex{
		{X: 10, Y: 20, Alpha: 0.5},
		{X: 8, Y: 18, Alpha: 0.5},
	}
	svg := TrailsSVG(verts, 100, 100)

	if !strings.Contains(svg, `x1="8.0" y1="18.0" x2="10.0" y2="20.0"`) {
		t.Errorf("segment missing:\n%s", svg)
	}
	if !strings.Contains(svg, `stroke-opacity="0.50"`) {
		t.Error("opacity should follow particle life")
	}
}
