package render

import (
	"image"
	"image/color"

	"github.com/example/regionmark/internal/geom"
)

var opaque = color.Alpha{A: 0xff}

func setThickPixel(m *image.Alpha, x, y, thick int) {
	r := thick / 2
	b := m.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if p := image.Pt(x+dx, y+dy); p.In(b) {
				m.SetAlpha(p.X, p.Y, opaque)
			}
		}
	}
}

// drawLine marks a thick Bresenham line from a to b in m. The segment is
// clipped to the mask first, so only visible pixels are stepped.
func drawLine(m *image.Alpha, a, b geom.Point, thick int) {
	a, b, ok := geom.ClipSegment(a, b, geom.BoxFromRect(m.Bounds()).Inset(-float64(thick)))
	if !ok {
		return
	}
	p0, p1 := a.Image(), b.Image()
	x0, y0, x1, y1 := p0.X, p0.Y, p1.X, p1.Y
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(m, x0, y0, thick)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawFilledCircle(m *image.Alpha, cx, cy, r int) {
	b := m.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			if p := image.Pt(cx+dx, cy+dy); p.In(b) {
				m.SetAlpha(p.X, p.Y, opaque)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
