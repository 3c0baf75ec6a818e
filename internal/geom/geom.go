package geom

import (
	"image"
	"math"
)

// CircleVertices is the number of vertices used to approximate circles.
const CircleVertices = 32

// Point is a location in image pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Image truncates p to integer pixel coordinates.
func (p Point) Image() image.Point {
	return image.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
}

// Shape is an ordered outline. The last point implicitly connects to the first.
type Shape []Point

// Clone returns a copy of s that shares no storage with it.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Flatten returns the coordinates of s as x0, y0, x1, y1, ...
func (s Shape) Flatten() []float64 {
	out := make([]float64, 0, len(s)*2)
	for _, p := range s {
		out = append(out, p.X, p.Y)
	}
	return out
}

// Unflatten is the inverse of Flatten. A trailing odd coordinate is dropped.
func Unflatten(coords []float64) Shape {
	out := make(Shape, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

// Bounds returns the integer rectangle covering every vertex of s.
func (s Shape) Bounds() image.Rectangle {
	if len(s) == 0 {
		return image.Rectangle{}
	}
	minX, minY := s[0].X, s[0].Y
	maxX, maxY := minX, minY
	for _, p := range s[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
}

// Rectangle returns the axis aligned outline spanned by start and end:
// start, (end.X, start.Y), end, (start.X, end.Y).
// Zero width or height is allowed and yields a line.
func Rectangle(start, end Point) Shape {
	return Shape{
		start,
		{X: end.X, Y: start.Y},
		end,
		{X: start.X, Y: end.Y},
	}
}

// Ellipse approximates the ellipse inscribed in the box with opposite
// corners a and b using n vertices spread evenly over [0, 2π).
func Ellipse(a, b Point, n int) Shape {
	if n <= 0 {
		return nil
	}
	cx := (a.X + b.X) / 2
	cy := (a.Y + b.Y) / 2
	rx := math.Abs(b.X-a.X) / 2
	ry := math.Abs(b.Y-a.Y) / 2
	out := make(Shape, n)
	for i := range out {
		angle := 2 * math.Pi * float64(i) / float64(n)
		out[i] = Point{X: cx + rx*math.Cos(angle), Y: cy + ry*math.Sin(angle)}
	}
	return out
}

// Centroid returns the arithmetic mean of the vertices of s.
func Centroid(s Shape) Point {
	if len(s) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range s {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(s))
	return Point{X: sx / n, Y: sy / n}
}
