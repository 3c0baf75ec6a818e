package appstate

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"time"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/export"
	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/imageio"
	"github.com/example/regionmark/internal/notify"
	"github.com/example/regionmark/internal/render"
)

const (
	messageDuration = 2 * time.Second
	minZoom         = 0.1
	maxZoom         = 16
	zoomStep        = 1.25
)

// KeyShortcut identifies a key press bound to an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts lists the key presses that trigger an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// toolbarItem is one row of the toolbar. Mode items highlight while their
// mode is active.
type toolbarItem struct {
	label  string
	action string
	mode   annotation.Mode
	isMode bool
}

var toolbarItems = []toolbarItem{
	{label: "P:Polygon", action: "mode-polygon", mode: annotation.ModePolygon, isMode: true},
	{label: "R:Rect", action: "mode-rect", mode: annotation.ModeRectangle, isMode: true},
	{label: "O:Circle", action: "mode-circle", mode: annotation.ModeCircle, isMode: true},
	{label: "T:Label", action: "label"},
	{label: "Enter:Done", action: "complete"},
	{label: "Esc:Cancel", action: "cancel"},
	{label: "^C:Copy", action: "copy"},
	{label: "^S:Save", action: "save"},
	{label: "^D:Clear", action: "clear"},
}

// session owns the store and turns window input into store operations. It
// runs on the event loop goroutine only.
type session struct {
	store    *annotation.Store
	sink     export.Sink
	notifier *notify.Notifier
	output   string
	renderer *render.Renderer

	copyImage  func(image.Image) error
	pasteImage func() (*image.RGBA, error)
	now        func() time.Time

	width, height int
	zoom          float64
	hover         int

	labelEditing bool
	labelDraft   string
	confirmClear bool

	message      string
	messageUntil time.Time
	loadFailed   bool

	actions map[string]func()
	keys    map[KeyShortcut]string
}

func newSession(store *annotation.Store) *session {
	s := &session{
		store:   store,
		zoom:    1,
		hover:   -1,
		now:     time.Now,
		actions: map[string]func(){},
		keys:    map[KeyShortcut]string{},
	}
	s.registerActions()
	return s
}

func (s *session) register(name string, keys KeyboardShortcuts, fn func()) {
	s.actions[name] = fn
	if keys == nil {
		return
	}
	for _, sc := range keys.KeyboardShortcuts() {
		s.keys[sc] = name
	}
}

func (s *session) registerActions() {
	mode := func(m annotation.Mode) func() {
		return func() {
			s.store.SetMode(m)
			s.flash("mode: %s", m)
		}
	}
	s.register("mode-polygon", shortcutList{{Rune: 'p'}}, mode(annotation.ModePolygon))
	s.register("mode-rect", shortcutList{{Rune: 'r'}}, mode(annotation.ModeRectangle))
	s.register("mode-circle", shortcutList{{Rune: 'o'}}, mode(annotation.ModeCircle))

	s.register("label", shortcutList{{Rune: 't'}}, func() {
		s.labelEditing = true
		s.labelDraft = s.store.Label()
	})

	s.register("complete", shortcutList{{Code: key.CodeReturnEnter}}, func() {
		a, err := s.store.Complete()
		if err != nil {
			s.flash("%v", err)
			return
		}
		s.flash("added %s %d", a.Kind, a.ID)
	})

	s.register("cancel", shortcutList{{Code: key.CodeEscape}}, func() {
		s.store.ClearInProgress()
	})

	s.register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		if s.sink == nil {
			s.flash("no clipboard available")
			return
		}
		if err := export.Export(s.store, s.sink); err != nil {
			log.Printf("copy: %v", err)
			s.flash("copy failed: %v", err)
			return
		}
		s.notifier.Copy("annotations")
		s.flash("copied %d regions", s.store.Len())
	})

	s.register("copy-image", shortcutList{{Rune: 'i', Modifiers: key.ModControl}}, func() {
		img := s.rendered()
		if img == nil || s.copyImage == nil {
			return
		}
		if err := s.copyImage(img); err != nil {
			log.Printf("copy image: %v", err)
			s.flash("copy failed: %v", err)
			return
		}
		s.notifier.Copy("image")
		s.flash("image copied to clipboard")
	})

	s.register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		img := s.rendered()
		if img == nil {
			return
		}
		if err := imageio.Save(img, s.output); err != nil {
			log.Printf("save: %v", err)
			s.flash("save failed: %v", err)
			return
		}
		s.notifier.Save(s.output)
		s.flash("saved %s", s.output)
	})

	s.register("paste", shortcutList{{Rune: 'v', Modifiers: key.ModControl}}, func() {
		if s.pasteImage == nil {
			return
		}
		img, err := s.pasteImage()
		if err != nil {
			log.Printf("paste: %v", err)
			s.flash("paste failed: %v", err)
			return
		}
		s.setImage(img)
		s.flash("pasted image")
	})

	s.register("clear", shortcutList{{Rune: 'd', Modifiers: key.ModControl}}, func() {
		s.store.ClearAll()
		s.flash("cleared all regions")
	})

	s.register("zoom-in", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { s.setZoom(s.zoom * zoomStep) })
	s.register("zoom-out", shortcutList{{Rune: '-'}}, func() { s.setZoom(s.zoom / zoomStep) })
	s.register("zoom-fit", shortcutList{{Rune: '0'}}, func() { s.setZoom(s.fitZoom()) })
}

// flash shows a transient status message and logs it.
func (s *session) flash(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.messageUntil = s.now().Add(messageDuration)
	log.Print(s.message)
}

func (s *session) messageVisible() bool {
	return s.message != "" && s.now().Before(s.messageUntil)
}

func (s *session) trigger(action string) {
	if fn, ok := s.actions[action]; ok {
		fn()
	}
}

func (s *session) rendered() *image.RGBA {
	if s.renderer == nil {
		return nil
	}
	return s.renderer.Render(s.store.Frame())
}

// setImage replaces the session image and fits it to the window.
func (s *session) setImage(img *image.RGBA) {
	s.loadFailed = false
	s.store.SetImage(img)
	s.setZoom(math.Min(s.fitZoom(), 1))
}

func (s *session) fitZoom() float64 {
	img := s.store.Image()
	if img == nil {
		return 1
	}
	return fitZoom(img, s.width, s.height)
}

func (s *session) setZoom(z float64) {
	s.zoom = math.Max(minZoom, math.Min(maxZoom, z))
}

// canvas is the screen rectangle showing the image, empty before one loads.
func (s *session) canvas() image.Rectangle {
	img := s.store.Image()
	if img == nil {
		return image.Rectangle{}
	}
	return imageRect(img, s.zoom)
}

// toImage maps a window position to image pixel space, clamped to the image.
func (s *session) toImage(x, y float32) geom.Point {
	img := s.store.Image()
	if img == nil {
		return geom.Point{}
	}
	b := img.Bounds()
	p := geom.MapPointer(float64(x), float64(y), geom.BoxFromRect(s.canvas()), b.Dx(), b.Dy())
	p.X = math.Max(0, math.Min(float64(b.Dx()), p.X))
	p.Y = math.Max(0, math.Min(float64(b.Dy()), p.Y))
	return p
}

// handleKey applies a key event and reports whether to quit.
func (s *session) handleKey(e key.Event) (quit bool) {
	if e.Direction != key.DirPress {
		return false
	}
	if s.labelEditing {
		s.editLabel(e)
		return false
	}
	action, ok := s.lookup(e)
	if action != "clear" {
		s.confirmClear = false
	}
	switch {
	case ok && action == "clear" && !s.confirmClear:
		s.confirmClear = true
		s.flash("press D again to clear all regions")
	case ok:
		s.confirmClear = false
		s.trigger(action)
	case e.Rune == 'q' || e.Rune == 'Q':
		return true
	}
	return false
}

// lookup resolves a key press. Shortcuts bind either a key code or a rune;
// only the control modifier is significant.
func (s *session) lookup(e key.Event) (string, bool) {
	mods := e.Modifiers & key.ModControl
	if e.Code != key.CodeUnknown {
		if a, ok := s.keys[KeyShortcut{Code: e.Code, Modifiers: mods}]; ok {
			return a, true
		}
	}
	if e.Rune > 0 {
		a, ok := s.keys[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}]
		return a, ok
	}
	return "", false
}

func (s *session) editLabel(e key.Event) {
	switch e.Code {
	case key.CodeReturnEnter:
		s.labelEditing = false
		s.store.SetLabel(s.labelDraft)
	case key.CodeEscape:
		s.labelEditing = false
	case key.CodeDeleteBackspace:
		if r := []rune(s.labelDraft); len(r) > 0 {
			s.labelDraft = string(r[:len(r)-1])
		}
	default:
		if e.Rune > 0 && unicode.IsPrint(e.Rune) {
			s.labelDraft += string(e.Rune)
		}
	}
}

// handleMouse applies a mouse event and reports whether the window needs a
// repaint that the store listener will not request.
func (s *session) handleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	dismissed := false
	if s.messageVisible() && e.Direction == mouse.DirPress {
		s.messageUntil = time.Time{}
		dismissed = true
		// Presses on the image still draw; elsewhere they only dismiss.
		if p.X < toolbarWidth || !p.In(s.canvas()) {
			return true
		}
	}
	if p.X < toolbarWidth {
		idx := toolbarIndex(p.Y)
		if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && idx >= 0 {
			s.trigger(toolbarItems[idx].action)
			return true
		}
		if idx != s.hover {
			s.hover = idx
			return true
		}
		return false
	}
	repaint := dismissed || s.hover != -1
	s.hover = -1
	if e.Button != mouse.ButtonLeft && !(e.Button == mouse.ButtonNone && s.store.Dragging()) {
		return repaint
	}
	pt := s.toImage(e.X, e.Y)
	switch e.Direction {
	case mouse.DirPress:
		if p.In(s.canvas()) {
			s.store.Press(pt)
		}
	case mouse.DirNone:
		s.store.Move(pt)
	case mouse.DirRelease:
		if a, ok := s.store.Release(pt); ok {
			s.flash("added %s %d", a.Kind, a.ID)
		}
	}
	return repaint
}

// imageLoadedEvent delivers the result of the background image decode to the
// event loop.
type imageLoadedEvent struct {
	path string
	img  *image.RGBA
	err  error
}

func (s *session) imageLoaded(e imageLoadedEvent) {
	if e.err != nil {
		log.Printf("load %s: %v", e.path, e.err)
		s.loadFailed = true
		if errors.Is(e.err, imageio.ErrNotImage) {
			s.flash("%s is not an image", e.path)
			return
		}
		s.flash("load failed: %v", e.err)
		return
	}
	s.setImage(e.img)
	s.notifier.Load(e.path, e.img)
	s.flash("loaded %s", e.path)
}

func (s *session) status() string {
	if s.labelEditing {
		return "label: " + s.labelDraft + "|"
	}
	if s.store.Image() == nil {
		if s.loadFailed {
			return "no image (paste one with Ctrl+V)"
		}
		return "loading..."
	}
	st := fmt.Sprintf("%s  %d regions", s.store.Mode(), s.store.Len())
	if n := len(s.store.Freehand()); n > 0 {
		st += fmt.Sprintf("  %d pts", n)
	}
	if l := s.store.Label(); l != "" {
		st += "  label: " + l
	}
	return st + fmt.Sprintf("  %.0f%%", s.zoom*100)
}
