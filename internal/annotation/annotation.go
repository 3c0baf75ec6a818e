package annotation

import (
	"fmt"
	"strings"

	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/palette"
)

// MinPoints is the smallest number of vertices an Annotation may have.
const MinPoints = 3

// Kind tags how an Annotation's outline was drawn.
type Kind string

const (
	KindPolygon   Kind = "polygon"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
)

// Mode selects how pointer input is turned into shapes.
type Mode int

const (
	ModePolygon Mode = iota
	ModeRectangle
	ModeCircle
)

// Modes lists the drawing modes in toolbar order.
func Modes() []Mode { return []Mode{ModePolygon, ModeRectangle, ModeCircle} }

func (m Mode) String() string {
	switch m {
	case ModePolygon:
		return "polygon"
	case ModeRectangle:
		return "rect"
	case ModeCircle:
		return "circle"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Kind returns the annotation kind produced by m.
func (m Mode) Kind() Kind {
	switch m {
	case ModeRectangle:
		return KindRectangle
	case ModeCircle:
		return KindCircle
	default:
		return KindPolygon
	}
}

// Dragged reports whether m builds shapes from a press-drag-release gesture.
func (m Mode) Dragged() bool { return m == ModeRectangle || m == ModeCircle }

// ParseMode accepts the names used on the command line and in config files.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "polygon", "poly", "freehand":
		return ModePolygon, nil
	case "rect", "rectangle":
		return ModeRectangle, nil
	case "circle", "ellipse":
		return ModeCircle, nil
	}
	return ModePolygon, fmt.Errorf("unknown mode %q", s)
}

// Annotation is a finalized, labelled shape.
type Annotation struct {
	ID     int
	Label  string
	Kind   Kind
	Points geom.Shape
	Fill   palette.Color
}

// Stroke returns the outline colour, always derived from Fill.
func (a Annotation) Stroke() palette.Color { return a.Fill.Stroke() }

// Centroid returns the label anchor of a.
func (a Annotation) Centroid() geom.Point { return geom.Centroid(a.Points) }

func (a Annotation) clone() Annotation {
	a.Points = a.Points.Clone()
	return a
}
