package geom

import (
	"errors"
	"fmt"
	"math"
)

// MaxCoord bounds the magnitude of coordinates accepted from documents and
// typed commands. Anything larger cannot be a pixel of a real image.
const MaxCoord = 1 << 20

// ErrCoordRange reports a coordinate that is not finite or exceeds MaxCoord.
var ErrCoordRange = errors.New("coordinate out of range")

// Valid reports whether both coordinates of p are finite and within MaxCoord.
func (p Point) Valid() bool {
	return inRange(p.X) && inRange(p.Y)
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func inRange(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) <= MaxCoord
}

// Validate returns ErrCoordRange for the first vertex of s that is not Valid.
func (s Shape) Validate() error {
	for i, p := range s {
		if !p.Valid() {
			return fmt.Errorf("point %d (%g, %g): %w", i, p.X, p.Y, ErrCoordRange)
		}
	}
	return nil
}

// Inset returns b shrunk by n on every side; a negative n grows it.
func (b Box) Inset(n float64) Box {
	return Box{Left: b.Left + n, Top: b.Top + n, Width: b.Width - 2*n, Height: b.Height - 2*n}
}

// Contains reports whether p lies inside b or on its edge.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.right() && p.Y >= b.Top && p.Y <= b.bottom()
}

// Clamp returns the point of b nearest to p. NaN coordinates clamp to the
// top left corner.
func (b Box) Clamp(p Point) Point {
	if math.IsNaN(p.X) {
		p.X = b.Left
	}
	if math.IsNaN(p.Y) {
		p.Y = b.Top
	}
	return Point{
		X: math.Max(b.Left, math.Min(b.right(), p.X)),
		Y: math.Max(b.Top, math.Min(b.bottom(), p.Y)),
	}
}

func (b Box) right() float64  { return b.Left + b.Width }
func (b Box) bottom() float64 { return b.Top + b.Height }

// ClipSegment clips the segment a-c to b (Liang-Barsky). ok is false when no
// part of the segment lies inside the box or an endpoint is not finite.
func ClipSegment(a, c Point, b Box) (Point, Point, bool) {
	if !a.finite() || !c.finite() {
		return Point{}, Point{}, false
	}
	dx, dy := c.X-a.X, c.Y-a.Y
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, a.X - b.Left},
		{dx, b.right() - a.X},
		{-dy, a.Y - b.Top},
		{dy, b.bottom() - a.Y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return Point{}, Point{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return Point{}, Point{}, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return Point{}, Point{}, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return Point{X: a.X + t0*dx, Y: a.Y + t0*dy}, Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

// ClipShape clips the closed outline s to b (Sutherland-Hodgman). The result
// covers the same area of b as s does. A shape with a non-finite vertex clips
// to nothing.
func ClipShape(s Shape, b Box) Shape {
	for _, p := range s {
		if !p.finite() {
			return nil
		}
	}
	out := s
	for _, edge := range []struct {
		inside func(Point) bool
		cross  func(p, q Point) Point
	}{
		{func(p Point) bool { return p.X >= b.Left }, func(p, q Point) Point { return atX(p, q, b.Left) }},
		{func(p Point) bool { return p.X <= b.right() }, func(p, q Point) Point { return atX(p, q, b.right()) }},
		{func(p Point) bool { return p.Y >= b.Top }, func(p, q Point) Point { return atY(p, q, b.Top) }},
		{func(p Point) bool { return p.Y <= b.bottom() }, func(p, q Point) Point { return atY(p, q, b.bottom()) }},
	} {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make(Shape, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, p := range in {
			switch {
			case edge.inside(p):
				if !edge.inside(prev) {
					out = append(out, edge.cross(prev, p))
				}
				out = append(out, p)
			case edge.inside(prev):
				out = append(out, edge.cross(prev, p))
			}
			prev = p
		}
	}
	return out
}

func atX(p, q Point, x float64) Point {
	t := (x - p.X) / (q.X - p.X)
	return Point{X: x, Y: p.Y + t*(q.Y-p.Y)}
}

func atY(p, q Point, y float64) Point {
	t := (y - p.Y) / (q.Y - p.Y)
	return Point{X: p.X + t*(q.X-p.X), Y: y}
}
