package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/render"
	"github.com/example/regionmark/internal/theme"
)

const (
	bottomHeight = 24
	buttonHeight = 24
)

var toolbarWidth = 96

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// fitToolbar widens the toolbar so every label fits.
func fitToolbar() {
	d := &font.Drawer{Face: basicfont.Face7x13}
	for _, it := range toolbarItems {
		if w := d.MeasureString(it.label).Ceil() + 8; w > toolbarWidth {
			toolbarWidth = w
		}
	}
}

// toolbarIndex returns the toolbar row at window y, or -1.
func toolbarIndex(y int) int {
	if y < 0 {
		return -1
	}
	idx := y / buttonHeight
	if idx >= len(toolbarItems) {
		return -1
	}
	return idx
}

// fitZoom returns the zoom at which img fills the canvas area of a winW by
// winH window.
func fitZoom(img *image.RGBA, winW, winH int) float64 {
	availW := winW - toolbarWidth
	availH := winH - bottomHeight
	if availW <= 0 || availH <= 0 {
		return 1
	}
	zx := float64(availW) / float64(img.Bounds().Dx())
	zy := float64(availH) / float64(img.Bounds().Dy())
	if zx < zy {
		return zx
	}
	return zy
}

// imageRect returns the destination rectangle for drawing the image. It is
// anchored just right of the toolbar so the image stays put while the window
// is resized.
func imageRect(img *image.RGBA, zoom float64) image.Rectangle {
	w := int(float64(img.Bounds().Dx()) * zoom)
	h := int(float64(img.Bounds().Dy()) * zoom)
	return image.Rect(toolbarWidth, 0, toolbarWidth+w, h)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// backdrop caches the checkerboard behind the canvas. It is used by the
// painter goroutine only.
type backdrop struct {
	cache *image.RGBA
}

func (b *backdrop) draw(dst *image.RGBA, th *theme.Theme) {
	r := dst.Bounds()
	if b.cache == nil || b.cache.Bounds() != r {
		b.cache = image.NewRGBA(r)
		drawCheckerboard(b.cache, r, 8, th.CheckerLight, th.CheckerDark)
	}
	draw.Draw(dst, r, b.cache, r.Min, draw.Src)
}

func drawRectOutline(dst *image.RGBA, r image.Rectangle, col color.Color) {
	u := image.NewUniform(col)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

func drawToolbar(dst *image.RGBA, th *theme.Theme, height int, mode annotation.Mode, hover int) {
	draw.Draw(dst, image.Rect(0, 0, toolbarWidth, height), image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	for i, it := range toolbarItems {
		r := image.Rect(0, i*buttonHeight, toolbarWidth, (i+1)*buttonHeight)
		bg := th.ButtonBackground
		switch {
		case it.isMode && it.mode == mode:
			bg = th.ButtonBackgroundPress
		case i == hover:
			bg = th.ButtonBackgroundHover
		}
		draw.Draw(dst, r, image.NewUniform(bg), image.Point{}, draw.Src)
		drawRectOutline(dst, r, th.ButtonBorder)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13}
		d.Dot = fixed.P(r.Min.X+4, r.Min.Y+16)
		d.DrawString(it.label)
	}
}

func drawStatus(dst *image.RGBA, th *theme.Theme, width, height int, text string) {
	r := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, r, image.NewUniform(th.Background), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13}
	d.Dot = fixed.P(toolbarWidth+4, r.Min.Y+16)
	d.DrawString(text)
}

func drawMessage(dst *image.RGBA, width, height int, msg string) {
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: messageFace}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := (width - wmsg) / 2
	py := (height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawRectOutline(dst, rect, color.Black)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}

// paintState is a snapshot of everything drawFrame needs, taken on the event
// loop and handed to the painter goroutine.
type paintState struct {
	width, height int
	frame         annotation.Frame
	zoom          float64
	mode          annotation.Mode
	hover         int
	status        string
	message       string
	messageUntil  time.Time
}

// painter owns the renderer and backdrop used for on-screen frames.
type painter struct {
	theme    *theme.Theme
	renderer *render.Renderer
	backdrop backdrop
}

func (p *painter) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	p.backdrop.draw(dst, p.theme)
	if ctx.Err() != nil {
		return
	}

	if img := p.renderer.Render(st.frame); img != nil {
		if ctx.Err() != nil {
			return
		}
		rect := imageRect(st.frame.Image, st.zoom)
		scaler := xdraw.Interpolator(xdraw.NearestNeighbor)
		if st.zoom < 1 {
			scaler = xdraw.ApproxBiLinear
		}
		scaler.Scale(dst, rect, img, img.Bounds(), draw.Over, nil)
	}
	if ctx.Err() != nil {
		return
	}

	drawToolbar(dst, p.theme, st.height, st.mode, st.hover)
	drawStatus(dst, p.theme, st.width, st.height, st.status)
	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, st.width, st.height, st.message)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
