// Package render draws annotation frames onto an RGBA surface.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/theme"
)

const (
	strokeWidth  = 2
	markerRadius = 3
)

// Renderer redraws a whole Frame on every call. It keeps its surface and
// scratch buffers between calls and is not safe for concurrent use.
type Renderer struct {
	theme *theme.Theme
	face  font.Face

	surface *image.RGBA
	mask    *image.Alpha
	raster  vector.Rasterizer
}

// New returns a Renderer using t for overlay colors and labels of labelSize
// points.
func New(t *theme.Theme, labelSize float64) (*Renderer, error) {
	if t == nil {
		t = theme.Default()
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: labelSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return &Renderer{theme: t, face: face}, nil
}

// Render clears the surface and draws the image, every annotation in order,
// the unfinished polygon and the drag preview. The surface always matches the
// image's native size. A frame without an image renders to nil.
//
// The returned image is reused by the next call.
func (r *Renderer) Render(f annotation.Frame) *image.RGBA {
	if f.Image == nil {
		return nil
	}
	src := f.Image.Bounds()
	size := image.Rect(0, 0, src.Dx(), src.Dy())
	if r.surface == nil || r.surface.Bounds() != size {
		r.surface = image.NewRGBA(size)
		r.mask = image.NewAlpha(size)
	}
	dst := r.surface
	draw.Draw(dst, size, image.Transparent, image.Point{}, draw.Src)
	draw.Draw(dst, size, f.Image, src.Min, draw.Src)

	// Each label is drawn with its own annotation, so later regions cover
	// earlier labels.
	for _, a := range f.Annotations {
		r.fill(a.Points, a.Fill)
		r.outline(a.Points, a.Stroke(), true)
		if a.Label != "" {
			r.label(a.Label, a.Centroid(), a.Fill.Contrast())
		}
	}
	if len(f.Freehand) > 0 {
		r.outline(f.Freehand, straight(r.theme.Highlight), false)
		r.markers(f.Freehand, straight(r.theme.Highlight))
	}
	if len(f.Preview) > 0 {
		r.fill(f.Preview, straight(r.theme.PreviewFill))
		r.outline(f.Preview, straight(r.theme.PreviewStroke), true)
	}
	return dst
}

// fill rasterizes the polygon s with anti-aliased edges.
func (r *Renderer) fill(s geom.Shape, col color.Color) {
	if len(s) < annotation.MinPoints {
		return
	}
	b := r.surface.Bounds()
	s = geom.ClipShape(s, geom.BoxFromRect(b).Inset(-1))
	if len(s) < annotation.MinPoints {
		return
	}
	r.raster.Reset(b.Dx(), b.Dy())
	r.raster.DrawOp = draw.Over
	r.raster.MoveTo(float32(s[0].X), float32(s[0].Y))
	for _, p := range s[1:] {
		r.raster.LineTo(float32(p.X), float32(p.Y))
	}
	r.raster.ClosePath()
	r.raster.Draw(r.surface, b, image.NewUniform(col), image.Point{})
}

// outline strokes the edges of s. Pixels are collected in the mask first so
// overlapping segments do not compound a translucent color.
func (r *Renderer) outline(s geom.Shape, col color.Color, closed bool) {
	if len(s) < 2 {
		return
	}
	area := r.beginMask(s, strokeWidth)
	for i := 1; i < len(s); i++ {
		drawLine(r.mask, s[i-1], s[i], strokeWidth)
	}
	if closed {
		drawLine(r.mask, s[len(s)-1], s[0], strokeWidth)
	}
	r.commitMask(area, col)
}

func (r *Renderer) markers(s geom.Shape, col color.Color) {
	area := r.beginMask(s, markerRadius)
	for _, p := range s {
		if !geom.BoxFromRect(area).Inset(-markerRadius).Contains(p) {
			continue
		}
		q := p.Image()
		drawFilledCircle(r.mask, q.X, q.Y, markerRadius)
	}
	r.commitMask(area, col)
}

func (r *Renderer) beginMask(s geom.Shape, pad int) image.Rectangle {
	area := clampBounds(s, pad, r.mask.Bounds())
	draw.Draw(r.mask, area, image.Transparent, image.Point{}, draw.Src)
	return area
}

func (r *Renderer) commitMask(area image.Rectangle, col color.Color) {
	draw.DrawMask(r.surface, area, image.NewUniform(col), image.Point{}, r.mask, area.Min, draw.Over)
}

// label draws text centred on p.
func (r *Renderer) label(text string, p geom.Point, col color.Color) {
	d := &font.Drawer{
		Dst:  r.surface,
		Src:  image.NewUniform(col),
		Face: r.face,
	}
	m := r.face.Metrics()
	w := d.MeasureString(text)
	reach := float64(w)/64 + float64(m.Height)/64
	if !geom.BoxFromRect(r.surface.Bounds()).Inset(-reach).Contains(p) {
		return
	}
	x := fixed.Int26_6(p.X*64) - w/2
	y := fixed.Int26_6(p.Y*64) + (m.Ascent-m.Descent)/2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(text)
}

// clampBounds returns the pixels of b within pad of the vertices of s. The
// vertices are clamped before conversion so far-off points cannot overflow.
func clampBounds(s geom.Shape, pad int, b image.Rectangle) image.Rectangle {
	if len(s) == 0 {
		return image.Rectangle{}
	}
	box := geom.BoxFromRect(b)
	clamped := make(geom.Shape, len(s))
	for i, p := range s {
		clamped[i] = box.Clamp(p)
	}
	return clamped.Bounds().Inset(-pad).Intersect(b)
}

// straight reinterprets a theme color, written as plain #RRGGBBAA, as
// non-premultiplied.
func straight(c color.RGBA) color.NRGBA { return color.NRGBA(c) }
