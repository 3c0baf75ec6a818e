package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/palette"
	"github.com/example/regionmark/internal/theme"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(theme.Default(), 12)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func square(label string) annotation.Annotation {
	return annotation.Annotation{
		ID:     1,
		Label:  label,
		Kind:   annotation.KindRectangle,
		Points: geom.Rectangle(geom.Pt(10, 10), geom.Pt(50, 50)),
		Fill:   palette.Color{R: 200, G: 0, B: 0, A: 0.5},
	}
}

func TestRenderWithoutImage(t *testing.T) {
	if got := newRenderer(t).Render(annotation.Frame{}); got != nil {
		t.Fatalf("expected nil, got %v", got.Bounds())
	}
}

func TestRenderMatchesNativeSize(t *testing.T) {
	r := newRenderer(t)
	src := image.NewRGBA(image.Rect(5, 5, 85, 65))
	out := r.Render(annotation.Frame{Image: src})
	if out.Bounds() != image.Rect(0, 0, 80, 60) {
		t.Fatalf("surface bounds %v", out.Bounds())
	}
	out = r.Render(annotation.Frame{Image: whiteImage(20, 10)})
	if out.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("surface not resized: %v", out.Bounds())
	}
}

func TestRenderFillAndStroke(t *testing.T) {
	r := newRenderer(t)
	out := r.Render(annotation.Frame{Image: whiteImage(64, 64), Annotations: []annotation.Annotation{square("")}})

	inside := out.RGBAAt(30, 20)
	if inside.R <= inside.G || inside.G == 0xff || inside.G == 0 {
		t.Fatalf("inside pixel should blend fill over white, got %+v", inside)
	}
	edge := out.RGBAAt(10, 30)
	if edge.G >= inside.G {
		t.Fatalf("stroke should be more opaque than fill: edge %+v inside %+v", edge, inside)
	}
	if outside := out.RGBAAt(60, 60); outside != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("outside pixel changed: %+v", outside)
	}
}

func TestRenderIsFullRedraw(t *testing.T) {
	r := newRenderer(t)
	img := whiteImage(64, 64)
	r.Render(annotation.Frame{Image: img, Annotations: []annotation.Annotation{square("x")}})
	out := r.Render(annotation.Frame{Image: img})
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if c := out.RGBAAt(x, y); c != (color.RGBA{255, 255, 255, 255}) {
				t.Fatalf("residue at %d,%d: %+v", x, y, c)
			}
		}
	}
}

func TestRenderLabel(t *testing.T) {
	r := newRenderer(t)
	img := whiteImage(64, 64)
	plain := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(plain, plain.Bounds(), r.Render(annotation.Frame{Image: img, Annotations: []annotation.Annotation{square("")}}), image.Point{}, draw.Src)
	labelled := r.Render(annotation.Frame{Image: img, Annotations: []annotation.Annotation{square("AB")}})

	diff := 0
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			if plain.RGBAAt(x, y) != labelled.RGBAAt(x, y) {
				diff++
			}
		}
	}
	if diff == 0 {
		t.Fatal("label did not change pixels around the centroid")
	}
}

func TestRenderFreehandMarkers(t *testing.T) {
	r := newRenderer(t)
	out := r.Render(annotation.Frame{
		Image:    whiteImage(40, 40),
		Freehand: geom.Shape{geom.Pt(5, 5), geom.Pt(30, 5)},
	})
	if got := out.RGBAAt(5, 5); got != theme.Default().Highlight {
		t.Fatalf("vertex marker = %+v, want highlight", got)
	}
	if got := out.RGBAAt(18, 5); got != theme.Default().Highlight {
		t.Fatalf("polyline pixel = %+v, want highlight", got)
	}
	if got := out.RGBAAt(18, 30); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("open polyline should not be filled, got %+v", got)
	}
}

func TestRenderPreview(t *testing.T) {
	r := newRenderer(t)
	out := r.Render(annotation.Frame{
		Image:   whiteImage(40, 40),
		Preview: geom.Rectangle(geom.Pt(5, 5), geom.Pt(35, 35)),
	})
	if got := out.RGBAAt(5, 20); got != theme.Default().PreviewStroke {
		t.Fatalf("preview outline = %+v", got)
	}
	if got := out.RGBAAt(20, 20); got == (color.RGBA{255, 255, 255, 255}) {
		t.Fatal("preview should be filled")
	}
}

func TestLaterRegionCoversEarlierLabel(t *testing.T) {
	r := newRenderer(t)
	img := whiteImage(64, 64)
	cover := annotation.Annotation{
		ID:     2,
		Kind:   annotation.KindRectangle,
		Points: geom.Rectangle(geom.Pt(0, 0), geom.Pt(63, 63)),
		Fill:   palette.Color{R: 0, G: 0, B: 200, A: 1},
	}
	plain := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(plain, plain.Bounds(), r.Render(annotation.Frame{Image: img, Annotations: []annotation.Annotation{square(""), cover}}), image.Point{}, draw.Src)
	labelled := r.Render(annotation.Frame{Image: img, Annotations: []annotation.Annotation{square("AB"), cover}})
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			if plain.RGBAAt(x, y) != labelled.RGBAAt(x, y) {
				t.Fatalf("label shows through a later region at %d,%d", x, y)
			}
		}
	}
}

func TestRenderFarOffSurface(t *testing.T) {
	r := newRenderer(t)
	far := annotation.Annotation{
		ID:     1,
		Label:  "far",
		Kind:   annotation.KindPolygon,
		Points: geom.Shape{geom.Pt(0, 0), geom.Pt(1e12, 0), geom.Pt(0, 1e12)},
		Fill:   palette.Color{R: 200, G: 0, B: 0, A: 0.5},
	}
	done := make(chan *image.RGBA, 1)
	go func() {
		done <- r.Render(annotation.Frame{
			Image:       whiteImage(10, 10),
			Annotations: []annotation.Annotation{far},
			Freehand:    geom.Shape{geom.Pt(-1e15, 5), geom.Pt(1e15, 5)},
		})
	}()
	select {
	case out := <-done:
		if got := out.RGBAAt(5, 2); got == (color.RGBA{255, 255, 255, 255}) {
			t.Fatal("visible part of the region was not filled")
		}
		if got := out.RGBAAt(5, 5); got != theme.Default().Highlight {
			t.Fatalf("clipped polyline pixel = %+v, want highlight", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("render did not finish")
	}
}
