package fluid

import "math"

// Degrees of hue rotation per tick. Full cycle in ~25s at 60Hz.
const hueStepPerTick = 0.24

// DyeColor returns the injected dye color for a tick. Driven by the
// orchestrator's monotonic tick counter rather than wall clock, so
// identical tick sequences inject identical colors.
func DyeColor(tick uint64) [3]float64 {
	hue := math.Mod(float64(tick)*hueStepPerTick, 360)
	return hsv(hue, 0.85, 1.0)
}

func hsv(h, s, v float64) [3]float64 {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return [3]float64{r + m, g + m, b + m}
}
