package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultFillOpacity is the alpha given to new fill colours.
	DefaultFillOpacity = 0.35
	// StrokeIncrement is added to a fill's alpha to obtain its stroke alpha.
	StrokeIncrement = 0.4
	// Opaque is the maximum alpha value.
	Opaque = 1.0
)

// ErrMalformed reports a colour string that could not be parsed.
var ErrMalformed = errors.New("malformed color")

// Color is an RGB colour with a fractional opacity in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

var _ color.Color = Color{}

// RGBA implements color.Color with premultiplied alpha.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := clamp(c.A)
	a = uint32(math.Round(alpha * 0xffff))
	r = uint32(c.R) * 0x101 * a / 0xffff
	g = uint32(c.G) * 0x101 * a / 0xffff
	b = uint32(c.B) * 0x101 * a / 0xffff
	return
}

// NRGBA returns the non-premultiplied 8-bit form of c.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp(c.A) * 255))}
}

// String formats c as a CSS rgba() value.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Stroke returns the border colour paired with fill colour c: the same
// channels with a higher opacity, never exceeding Opaque.
func (c Color) Stroke() Color {
	c.A = math.Min(c.A+StrokeIncrement, Opaque)
	return c
}

// Contrast returns black or white, whichever reads better on top of c.
func (c Color) Contrast() color.Color {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	l, _, _ := cf.Lab()
	if l < 0.55 {
		return color.White
	}
	return color.Black
}

// Source yields uniform integers in [0, n).
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Deriver produces random fill colours.
type Deriver struct {
	src     Source
	opacity float64
}

// NewDeriver returns a Deriver drawing channels from src. A nil src uses a
// time seeded generator. The opacity is clamped to [0, 1].
func NewDeriver(src Source, opacity float64) *Deriver {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Deriver{src: src, opacity: clamp(opacity)}
}

// Opacity returns the alpha used for fills.
func (d *Deriver) Opacity() float64 { return d.opacity }

// Fill samples a new fill colour.
func (d *Deriver) Fill() Color {
	return Color{
		R: uint8(d.src.Intn(256)),
		G: uint8(d.src.Intn(256)),
		B: uint8(d.src.Intn(256)),
		A: d.opacity,
	}
}

// Parse reads a colour written as rgba(r, g, b, a), rgb(r, g, b) or #rrggbb.
func Parse(s string) (Color, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(spec, "#"):
		cf, err := colorful.Hex(spec)
		if err != nil {
			return Color{}, fmt.Errorf("%w %q: %v", ErrMalformed, s, err)
		}
		r, g, b := cf.RGB255()
		return Color{R: r, G: g, B: b, A: Opaque}, nil
	case strings.HasPrefix(spec, "rgba(") && strings.HasSuffix(spec, ")"):
		return parseFunc(s, spec[len("rgba("):len(spec)-1], 4)
	case strings.HasPrefix(spec, "rgb(") && strings.HasSuffix(spec, ")"):
		return parseFunc(s, spec[len("rgb("):len(spec)-1], 3)
	}
	return Color{}, fmt.Errorf("%w %q", ErrMalformed, s)
}

// MustStroke derives the stroke colour for a serialised fill colour.
// An unparseable fill means the colour was not produced by this package,
// so it panics.
func MustStroke(fill string) Color {
	c, err := Parse(fill)
	if err != nil {
		panic(fmt.Sprintf("palette: stroke for invalid fill: %v", err))
	}
	return c.Stroke()
}

func parseFunc(orig, body string, want int) (Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return Color{}, fmt.Errorf("%w %q: expected %d components", ErrMalformed, orig, want)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return Color{}, fmt.Errorf("%w %q: channel %d", ErrMalformed, orig, i)
		}
		ch[i] = uint8(v)
	}
	c := Color{R: ch[0], G: ch[1], B: ch[2], A: Opaque}
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("%w %q: alpha", ErrMalformed, orig)
		}
		c.A = a
	}
	return c, nil
}

func clamp(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > Opaque {
		return Opaque
	}
	return a
}
