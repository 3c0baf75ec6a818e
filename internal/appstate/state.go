package appstate

import (
	"context"
	"image"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/config"
	"github.com/example/regionmark/internal/export"
	"github.com/example/regionmark/internal/imageio"
	"github.com/example/regionmark/internal/notify"
	"github.com/example/regionmark/internal/palette"
	"github.com/example/regionmark/internal/render"
	"github.com/example/regionmark/internal/theme"
)

const (
	defaultWidth  = 1024
	defaultHeight = 768
)

// AppState holds application configuration for the UI.
type AppState struct {
	Image     *image.RGBA
	Source    string
	Output    string
	Mode      annotation.Mode
	Label     string
	Theme     *theme.Theme
	LabelSize float64

	store    *annotation.Store
	deriver  *palette.Deriver
	sink     export.Sink
	notifier *notify.Notifier

	copyImage  func(image.Image) error
	pasteImage func() (*image.RGBA, error)

	updateCh chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithImage sets the image displayed by the application.
func WithImage(img *image.RGBA) Option { return func(a *AppState) { a.Image = img } }

// WithSource sets an image file decoded in the background once the window
// opens.
func WithSource(path string) Option { return func(a *AppState) { a.Source = path } }

// WithOutput sets the output file path used when saving the rendered image.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithMode sets the initial drawing mode.
func WithMode(mode annotation.Mode) Option { return func(a *AppState) { a.Mode = mode } }

// WithLabel sets the label applied to the first finished region.
func WithLabel(label string) Option { return func(a *AppState) { a.Label = label } }

// WithTheme sets the colours used for the window chrome and previews.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithLabelSize sets the font size of region labels.
func WithLabelSize(size float64) Option { return func(a *AppState) { a.LabelSize = size } }

// WithDeriver sets the fill colour source for new regions.
func WithDeriver(d *palette.Deriver) Option { return func(a *AppState) { a.deriver = d } }

// WithSink sets where exported annotations are written.
func WithSink(s export.Sink) Option { return func(a *AppState) { a.sink = s } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithImageClipboard sets the functions used to copy the rendered image and
// paste a new one.
func WithImageClipboard(copyFn func(image.Image) error, pasteFn func() (*image.RGBA, error)) Option {
	return func(a *AppState) {
		a.copyImage = copyFn
		a.pasteImage = pasteFn
	}
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Output:    "annotated.png",
		Mode:      annotation.ModePolygon,
		Theme:     theme.Default(),
		LabelSize: config.DefaultLabelSize,
		updateCh:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if a.deriver == nil {
		a.deriver = palette.NewDeriver(nil, palette.DefaultFillOpacity)
	}
	a.store = annotation.New(
		annotation.WithDeriver(a.deriver),
		annotation.WithMode(a.Mode),
		annotation.WithImage(a.Image),
		annotation.WithListener(a.NotifyImageChanged),
	)
	a.store.SetLabel(a.Label)
	return a
}

// Store returns the annotation store driven by the window.
func (a *AppState) Store() *annotation.Store { return a.store }

// NotifyImageChanged requests a repaint of the UI when the session mutates.
func (a *AppState) NotifyImageChanged() {
	if a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) newSession() (*session, error) {
	r, err := render.New(a.Theme, a.LabelSize)
	if err != nil {
		return nil, err
	}
	sess := newSession(a.store)
	sess.sink = a.sink
	sess.notifier = a.notifier
	sess.output = a.Output
	sess.renderer = r
	sess.copyImage = a.copyImage
	sess.pasteImage = a.pasteImage
	return sess, nil
}

func (a *AppState) Main(s screen.Screen) {
	fitToolbar()

	width, height := defaultWidth, defaultHeight
	if img := a.Image; img != nil {
		width = img.Bounds().Dx() + toolbarWidth
		height = img.Bounds().Dy() + bottomHeight
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "regionmark"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	defer a.notifyClose()

	sess, err := a.newSession()
	if err != nil {
		log.Printf("session: %v", err)
		return
	}
	sess.width, sess.height = width, height
	if img := a.store.Image(); img != nil {
		sess.setZoom(fitZoom(img, width, height))
	}

	screenRenderer, err := render.New(a.Theme, a.LabelSize)
	if err != nil {
		log.Printf("renderer: %v", err)
		return
	}
	p := &painter{theme: a.Theme, renderer: screenRenderer}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	if a.Source != "" {
		path := a.Source
		go func() {
			img, err := imageio.Load(path)
			w.Send(imageLoadedEvent{path: path, img: img, err: err})
		}()
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			p.drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPainting := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPainting()
				return
			}
		case size.Event:
			sess.width = e.WidthPx
			sess.height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{
				width:        sess.width,
				height:       sess.height,
				frame:        a.store.Frame(),
				zoom:         sess.zoom,
				mode:         a.store.Mode(),
				hover:        sess.hover,
				status:       sess.status(),
				message:      sess.message,
				messageUntil: sess.messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case imageLoadedEvent:
			sess.imageLoaded(e)
			w.Send(paint.Event{})
		case mouse.Event:
			if sess.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if sess.handleKey(e) {
				stopPainting()
				return
			}
			if e.Direction == key.DirPress {
				w.Send(paint.Event{})
			}
		case error:
			log.Print(e)
		}
	}
}
