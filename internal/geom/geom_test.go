package geom

import (
	"image"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

func TestRectangleVertexOrder(t *testing.T) {
	got := Rectangle(Pt(10, 10), Pt(50, 30))
	want := Shape{Pt(10, 10), Pt(50, 10), Pt(50, 30), Pt(10, 30)}
	if len(got) != len(want) {
		t.Fatalf("got %d vertices, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRectangleDegenerate(t *testing.T) {
	got := Rectangle(Pt(5, 5), Pt(5, 20))
	if len(got) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(got))
	}
	for _, p := range got {
		if p.X != 5 {
			t.Fatalf("expected all vertices on x=5, got %v", p)
		}
	}
}

func TestEllipseOnCurve(t *testing.T) {
	got := Ellipse(Pt(0, 0), Pt(20, 10), CircleVertices)
	if len(got) != 32 {
		t.Fatalf("expected 32 vertices, got %d", len(got))
	}
	for i, p := range got {
		dx := (p.X - 10) / 10
		dy := (p.Y - 5) / 5
		if v := dx*dx + dy*dy; !scalar.EqualWithinAbs(v, 1, tol) {
			t.Fatalf("vertex %d %v off the ellipse: %v", i, p, v)
		}
	}
	if !scalar.EqualWithinAbs(got[0].X, 20, tol) || !scalar.EqualWithinAbs(got[0].Y, 5, tol) {
		t.Fatalf("first vertex should sit at angle 0, got %v", got[0])
	}
}

func TestEllipseReversedCorners(t *testing.T) {
	a := Ellipse(Pt(20, 10), Pt(0, 0), 8)
	b := Ellipse(Pt(0, 0), Pt(20, 10), 8)
	for i := range a {
		if !scalar.EqualWithinAbs(a[i].X, b[i].X, tol) || !scalar.EqualWithinAbs(a[i].Y, b[i].Y, tol) {
			t.Fatalf("vertex %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid(Rectangle(Pt(0, 0), Pt(10, 4)))
	if !scalar.EqualWithinAbs(c.X, 5, tol) || !scalar.EqualWithinAbs(c.Y, 2, tol) {
		t.Fatalf("unexpected centroid %v", c)
	}
	if got := Centroid(nil); got != (Point{}) {
		t.Fatalf("empty centroid should be origin, got %v", got)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	s := Shape{Pt(1, 2), Pt(3.5, 4), Pt(5, 6.25)}
	flat := s.Flatten()
	want := []float64{1, 2, 3.5, 4, 5, 6.25}
	for i := range want {
		if flat[i] != want[i] {
			t.Fatalf("flat[%d] = %v, want %v", i, flat[i], want[i])
		}
	}
	back := Unflatten(append(flat, 99))
	if len(back) != 3 {
		t.Fatalf("expected trailing coordinate to be dropped, got %d points", len(back))
	}
	for i := range s {
		if back[i] != s[i] {
			t.Fatalf("point %d = %v, want %v", i, back[i], s[i])
		}
	}
}

func TestBounds(t *testing.T) {
	r := Shape{Pt(2.5, 3), Pt(10, 1), Pt(4, 8.2)}.Bounds()
	want := image.Rect(2, 1, 11, 10)
	if r != want {
		t.Fatalf("bounds %v, want %v", r, want)
	}
}

func TestMapPointer(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		box    Box
		nw, nh int
		want   Point
	}{
		{"identity", 30, 45, Box{Left: 10, Top: 5, Width: 100, Height: 50}, 100, 50, Pt(20, 40)},
		{"half scale", 60, 30, Box{Left: 10, Top: 5, Width: 50, Height: 25}, 100, 50, Pt(100, 50)},
		{"anisotropic", 20, 20, Box{Width: 10, Height: 40}, 40, 20, Pt(80, 10)},
		{"unsized box", 30, 45, Box{}, 100, 50, Point{}},
		{"no image", 30, 45, Box{Width: 10, Height: 10}, 0, 0, Point{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapPointer(tc.x, tc.y, tc.box, tc.nw, tc.nh)
			if math.Abs(got.X-tc.want.X) > tol || math.Abs(got.Y-tc.want.Y) > tol {
				t.Fatalf("MapPointer = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBoxFromRect(t *testing.T) {
	b := BoxFromRect(image.Rect(48, 24, 248, 124))
	if b != (Box{Left: 48, Top: 24, Width: 200, Height: 100}) {
		t.Fatalf("unexpected box %+v", b)
	}
}
