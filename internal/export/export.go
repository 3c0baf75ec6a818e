// Package export serializes an annotation session to JSON.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/palette"
)

// ErrClipboard wraps a rejected clipboard write.
var ErrClipboard = errors.New("clipboard write failed")

// Record is the serialized form of one annotation.
type Record struct {
	ID     int       `json:"id"`
	Label  string    `json:"label"`
	Kind   string    `json:"kind"`
	Fill   string    `json:"fill"`
	Stroke string    `json:"stroke"`
	Points []float64 `json:"points"`
}

// Document is the exported session: finalized annotations in insertion order
// and the points of the unfinished polygon.
type Document struct {
	Polygons       []Record     `json:"polygons"`
	CurrentPolygon []geom.Point `json:"currentPolygon"`
}

// Sink receives exported text. The clipboard satisfies it.
type Sink interface {
	WriteText(text string) error
}

// Source is the read side of an annotation.Store.
type Source interface {
	Annotations() []annotation.Annotation
	Freehand() geom.Shape
}

// FromStore builds a Document from the current session. Empty collections
// serialize as [] rather than null.
func FromStore(s Source) Document {
	anns := s.Annotations()
	doc := Document{
		Polygons:       make([]Record, 0, len(anns)),
		CurrentPolygon: make([]geom.Point, 0),
	}
	for _, a := range anns {
		fill := a.Fill.String()
		doc.Polygons = append(doc.Polygons, Record{
			ID:     a.ID,
			Label:  a.Label,
			Kind:   string(a.Kind),
			Fill:   fill,
			Stroke: palette.MustStroke(fill).String(),
			Points: a.Points.Flatten(),
		})
	}
	doc.CurrentPolygon = append(doc.CurrentPolygon, s.Freehand()...)
	return doc
}

// Marshal encodes doc with two-space indentation.
func Marshal(doc Document) ([]byte, error) {
	if doc.Polygons == nil {
		doc.Polygons = []Record{}
	}
	if doc.CurrentPolygon == nil {
		doc.CurrentPolygon = []geom.Point{}
	}
	for i := range doc.Polygons {
		if doc.Polygons[i].Points == nil {
			doc.Polygons[i].Points = []float64{}
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Parse decodes an exported document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse annotations: %w", err)
	}
	return doc, nil
}

// Export serializes s and writes it to sink. A sink failure is returned
// wrapped in ErrClipboard; s is only read.
func Export(s Source, sink Sink) error {
	data, err := Marshal(FromStore(s))
	if err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}
	if err := sink.WriteText(string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrClipboard, err)
	}
	return nil
}

// Annotations converts the records back into annotations. Records with fewer
// than three points or an unreadable fill are rejected.
func (d Document) Annotations() ([]annotation.Annotation, error) {
	out := make([]annotation.Annotation, 0, len(d.Polygons))
	for i, r := range d.Polygons {
		pts := geom.Unflatten(r.Points)
		if len(pts) < annotation.MinPoints {
			return nil, fmt.Errorf("polygon %d: %w", i, annotation.ErrTooFewPoints)
		}
		if err := pts.Validate(); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		fill, err := palette.Parse(r.Fill)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		kind := annotation.Kind(r.Kind)
		if kind == "" {
			kind = annotation.KindPolygon
		}
		out = append(out, annotation.Annotation{
			ID:     r.ID,
			Label:  r.Label,
			Kind:   kind,
			Points: pts,
			Fill:   fill,
		})
	}
	return out, nil
}

// Frame builds a render frame drawing d over img.
func (d Document) Frame(img *image.RGBA) (annotation.Frame, error) {
	anns, err := d.Annotations()
	if err != nil {
		return annotation.Frame{}, err
	}
	if err := geom.Shape(d.CurrentPolygon).Validate(); err != nil {
		return annotation.Frame{}, fmt.Errorf("current polygon: %w", err)
	}
	return annotation.Frame{
		Image:       img,
		Annotations: anns,
		Freehand:    geom.Shape(d.CurrentPolygon).Clone(),
	}, nil
}
