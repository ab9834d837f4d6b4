// Package export writes simulation snapshots as standalone SVG files.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/flowlab/internal/particles"
)

// FieldSVG renders an RGBA8 display buffer as one rect per grid cell,
// cell pixels across in the output. Near-black cells are skipped; on a
// faded field they are the vast majority and the background rect
// already covers them.
func FieldSVG(display []uint8, w, h int, cell float64) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, float64(w)*cell, float64(h)*cell, float64(w)*cell, float64(h)*cell))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			r, g, b := display[o], display[o+1], display[o+2]
			if int(r)+int(g)+int(b) < 24 {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#%02x%02x%02x"/>
`, float64(x)*cell, float64(y)*cell, cell, cell, r, g, b))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrailsSVG overlays particle motion segments on a dark background.
// Coordinates are taken as already being in output pixels; opacity
// follows each particle's life.
func TrailsSVG(verts []particles.Vertex, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#ebebff" stroke-width="1.2" stroke-linecap="round">
`, width, height, width, height))

	for i := 0; i+1 < len(verts); i += 2 {
		head, tail := verts[i], verts[i+1]
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke-opacity="%.2f"/>
`, tail.X, tail.Y, head.X, head.Y, head.Alpha))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
