package palette

import (
	"errors"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

type fixedSource []int

func (f *fixedSource) Intn(n int) int {
	v := (*f)[0] % n
	*f = append((*f)[1:], (*f)[0])
	return v
}

func TestFillUsesSourceChannels(t *testing.T) {
	src := &fixedSource{12, 200, 255}
	d := NewDeriver(src, 0.3)
	c := d.Fill()
	if c.R != 12 || c.G != 200 || c.B != 255 {
		t.Fatalf("unexpected channels %+v", c)
	}
	if c.A != 0.3 {
		t.Fatalf("unexpected alpha %v", c.A)
	}
}

func TestStrokeKeepsChannelsAndRaisesOpacity(t *testing.T) {
	d := NewDeriver(rand.New(rand.NewSource(7)), DefaultFillOpacity)
	for i := 0; i < 200; i++ {
		fill := d.Fill()
		stroke := fill.Stroke()
		if stroke.R != fill.R || stroke.G != fill.G || stroke.B != fill.B {
			t.Fatalf("stroke channels %+v differ from fill %+v", stroke, fill)
		}
		if stroke.A < fill.A {
			t.Fatalf("stroke alpha %v below fill alpha %v", stroke.A, fill.A)
		}
		if stroke.A > Opaque {
			t.Fatalf("stroke alpha %v exceeds opaque", stroke.A)
		}
	}
}

func TestStrokeClampsAtOpaque(t *testing.T) {
	d := NewDeriver(&fixedSource{1}, 0.9)
	if got := d.Fill().Stroke().A; got != Opaque {
		t.Fatalf("expected clamped alpha 1, got %v", got)
	}
	if got := NewDeriver(&fixedSource{1}, 3).Opacity(); got != Opaque {
		t.Fatalf("expected opacity clamp, got %v", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"rgba(1, 2, 3, 0.35)", Color{1, 2, 3, 0.35}},
		{"RGBA(255,0,10,1)", Color{255, 0, 10, 1}},
		{"rgb(9, 8, 7)", Color{9, 8, 7, 1}},
		{"#ff8000", Color{255, 128, 0, 1}},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "red", "rgba(1,2,3)", "rgba(1,2,300,0.5)", "rgba(1,2,3,2)", "#zzzzzz"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	c := Color{R: 10, G: 20, B: 30, A: 0.35}
	if got := c.String(); got != "rgba(10, 20, 30, 0.35)" {
		t.Fatalf("String() = %q", got)
	}
	back, err := Parse(c.String())
	if err != nil || back != c {
		t.Fatalf("round trip = %+v, %v", back, err)
	}
}

func TestMustStrokePanicsOnMalformedFill(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustStroke("not a colour")
}

func TestMustStroke(t *testing.T) {
	got := MustStroke("rgba(4, 5, 6, 0.35)")
	if got.R != 4 || got.G != 5 || got.B != 6 || math.Abs(got.A-0.75) > 1e-9 {
		t.Fatalf("unexpected stroke %+v", got)
	}
}

func TestContrast(t *testing.T) {
	if got := (Color{R: 250, G: 250, B: 250, A: 1}).Contrast(); got != color.Black {
		t.Fatalf("light fill should use black text, got %v", got)
	}
	if got := (Color{R: 10, G: 10, B: 40, A: 1}).Contrast(); got != color.White {
		t.Fatalf("dark fill should use white text, got %v", got)
	}
}

func TestRGBAPremultiplied(t *testing.T) {
	r, g, b, a := Color{R: 255, G: 0, B: 0, A: 0.5}.RGBA()
	if a != 0x8000 || g != 0 || b != 0 {
		t.Fatalf("unexpected rgba %x %x %x %x", r, g, b, a)
	}
	if r != a {
		t.Fatalf("full red should equal alpha after premultiplication, got r=%x a=%x", r, a)
	}
}
