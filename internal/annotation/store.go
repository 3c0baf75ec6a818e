package annotation

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/palette"
)

// ErrTooFewPoints is returned when a shape is finalized with fewer than
// MinPoints vertices.
var ErrTooFewPoints = errors.New("a shape needs at least 3 points")

// Frame is an immutable snapshot of everything the renderer draws.
type Frame struct {
	Image       *image.RGBA
	Annotations []Annotation
	// Freehand holds the points of an unfinished polygon.
	Freehand geom.Shape
	// Preview is the live rectangle or circle of an active drag.
	Preview geom.Shape
}

// Store is the single source of truth for an annotation session: the loaded
// image, the finalized annotations in insertion order and the shape being
// drawn. Every method that changes state notifies the listener once.
//
// A Store is not safe for concurrent use.
type Store struct {
	image *image.RGBA
	items []Annotation
	ids   map[int]struct{}

	freehand geom.Shape

	dragging bool
	start    geom.Point
	preview  geom.Shape

	mode   Mode
	label  string
	nextID int

	deriver  *palette.Deriver
	listener func()
}

// Option modifies a Store during creation.
type Option func(*Store)

// WithDeriver sets the colour source for new annotations.
func WithDeriver(d *palette.Deriver) Option { return func(s *Store) { s.deriver = d } }

// WithMode sets the initial drawing mode.
func WithMode(m Mode) Option { return func(s *Store) { s.mode = m } }

// WithImage sets the initial image.
func WithImage(img *image.RGBA) Option { return func(s *Store) { s.image = img } }

// WithListener registers the redraw callback.
func WithListener(fn func()) Option { return func(s *Store) { s.listener = fn } }

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{ids: make(map[int]struct{}), nextID: 1}
	for _, o := range opts {
		o(s)
	}
	if s.deriver == nil {
		s.deriver = palette.NewDeriver(nil, palette.DefaultFillOpacity)
	}
	return s
}

// SetListener replaces the redraw callback.
func (s *Store) SetListener(fn func()) { s.listener = fn }

func (s *Store) changed() {
	if s.listener != nil {
		s.listener()
	}
}

// Image returns the loaded image or nil.
func (s *Store) Image() *image.RGBA { return s.image }

// Mode returns the current drawing mode.
func (s *Store) Mode() Mode { return s.mode }

// Label returns the label buffer applied to the next finalized shape.
func (s *Store) Label() string { return s.label }

// Len returns the number of finalized annotations.
func (s *Store) Len() int { return len(s.items) }

// Dragging reports whether a rectangle or circle gesture is active.
func (s *Store) Dragging() bool { return s.dragging }

// Annotations returns a copy of the finalized annotations in insertion order.
func (s *Store) Annotations() []Annotation {
	out := make([]Annotation, len(s.items))
	for i, a := range s.items {
		out[i] = a.clone()
	}
	return out
}

// Freehand returns a copy of the unfinished polygon's points.
func (s *Store) Freehand() geom.Shape { return s.freehand.Clone() }

// Preview returns a copy of the live drag shape, or nil.
func (s *Store) Preview() geom.Shape { return s.preview.Clone() }

// Frame snapshots the store for rendering.
func (s *Store) Frame() Frame {
	return Frame{
		Image:       s.image,
		Annotations: s.Annotations(),
		Freehand:    s.Freehand(),
		Preview:     s.Preview(),
	}
}

// SetImage replaces the image and drops every annotation and in-progress
// shape. A nil image clears the session.
func (s *Store) SetImage(img *image.RGBA) {
	s.image = img
	s.resetItems()
	s.resetInProgress()
	s.changed()
}

// SetMode switches the drawing mode. An active drag is discarded; freehand
// points are kept.
func (s *Store) SetMode(m Mode) {
	s.mode = m
	s.resetDrag()
	s.changed()
}

// SetLabel replaces the label buffer.
func (s *Store) SetLabel(text string) {
	s.label = text
	s.changed()
}

// Append adds a to the end of the collection and returns the stored copy.
// A missing or duplicate ID is replaced with a fresh one.
func (s *Store) Append(a Annotation) (Annotation, error) {
	if len(a.Points) < MinPoints {
		return Annotation{}, fmt.Errorf("append %s: %w", a.Kind, ErrTooFewPoints)
	}
	a = s.add(a)
	s.changed()
	return a.clone(), nil
}

// ClearAll removes every annotation and any in-progress shape.
func (s *Store) ClearAll() {
	s.resetItems()
	s.resetInProgress()
	s.changed()
}

// ClearInProgress discards the unfinished shape, keeping finalized ones.
func (s *Store) ClearInProgress() {
	s.resetInProgress()
	s.changed()
}

// Press handles a pointer press at p in image space. In polygon mode it adds
// a vertex; in drag modes it starts a gesture. Input before an image is
// loaded is ignored.
func (s *Store) Press(p geom.Point) {
	if s.image == nil {
		return
	}
	if s.mode.Dragged() {
		s.dragging = true
		s.start = p
		s.preview = nil
	} else {
		s.freehand = append(s.freehand, p)
	}
	s.changed()
}

// Move updates the drag preview for a pointer at p.
func (s *Store) Move(p geom.Point) {
	if !s.dragging {
		return
	}
	s.updatePreview(p)
	s.changed()
}

// Release ends a drag at p. The last preview becomes an annotation unless the
// pointer never left the start point.
func (s *Store) Release(p geom.Point) (Annotation, bool) {
	if !s.dragging {
		return Annotation{}, false
	}
	s.updatePreview(p)
	shape := s.preview
	s.resetDrag()
	if len(shape) < MinPoints {
		s.changed()
		return Annotation{}, false
	}
	a := s.finalize(s.mode.Kind(), shape)
	s.changed()
	return a, true
}

// Complete finalizes the freehand polygon. With fewer than MinPoints points
// the buffer is left untouched and ErrTooFewPoints is returned.
func (s *Store) Complete() (Annotation, error) {
	if n := len(s.freehand); n < MinPoints {
		return Annotation{}, fmt.Errorf("complete polygon with %d points: %w", n, ErrTooFewPoints)
	}
	shape := s.freehand
	s.freehand = nil
	a := s.finalize(KindPolygon, shape)
	s.changed()
	return a, nil
}

func (s *Store) finalize(kind Kind, shape geom.Shape) Annotation {
	a := s.add(Annotation{
		Label:  s.label,
		Kind:   kind,
		Points: shape.Clone(),
		Fill:   s.deriver.Fill(),
	})
	s.label = ""
	return a.clone()
}

func (s *Store) add(a Annotation) Annotation {
	if _, taken := s.ids[a.ID]; a.ID <= 0 || taken {
		a.ID = s.nextID
	}
	if a.ID >= s.nextID {
		s.nextID = a.ID + 1
	}
	a.Points = a.Points.Clone()
	s.ids[a.ID] = struct{}{}
	s.items = append(s.items, a)
	return a
}

// updatePreview reshapes the preview for a pointer at p. A pointer back on
// the start point keeps the last preview.
func (s *Store) updatePreview(p geom.Point) {
	if p == s.start {
		return
	}
	switch s.mode {
	case ModeRectangle:
		s.preview = geom.Rectangle(s.start, p)
	case ModeCircle:
		s.preview = geom.Ellipse(s.start, p, geom.CircleVertices)
	}
}

func (s *Store) resetItems() {
	s.items = nil
	s.ids = make(map[int]struct{})
}

func (s *Store) resetInProgress() {
	s.freehand = nil
	s.resetDrag()
}

func (s *Store) resetDrag() {
	s.dragging = false
	s.start = geom.Point{}
	s.preview = nil
}
