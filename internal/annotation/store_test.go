package annotation

import (
	"errors"
	"image"
	"math/rand"
	"testing"

	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/palette"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *int) {
	t.Helper()
	calls := new(int)
	base := []Option{
		WithImage(image.NewRGBA(image.Rect(0, 0, 100, 80))),
		WithDeriver(palette.NewDeriver(rand.New(rand.NewSource(1)), palette.DefaultFillOpacity)),
		WithListener(func() { *calls++ }),
	}
	return New(append(base, opts...)...), calls
}

func TestCompleteNeedsThreePoints(t *testing.T) {
	s, _ := newTestStore(t)
	s.Press(geom.Pt(1, 1))
	s.Press(geom.Pt(5, 1))
	if _, err := s.Complete(); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
	if s.Len() != 0 || len(s.Freehand()) != 2 {
		t.Fatalf("failed completion should leave state alone: len=%d freehand=%d", s.Len(), len(s.Freehand()))
	}
	s.Press(geom.Pt(3, 6))
	a, err := s.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if a.Kind != KindPolygon || len(a.Points) != 3 {
		t.Fatalf("unexpected annotation %+v", a)
	}
	if s.Len() != 1 || len(s.Freehand()) != 0 {
		t.Fatalf("expected one annotation and an empty buffer, got len=%d freehand=%d", s.Len(), len(s.Freehand()))
	}
}

func TestRectangleDrag(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeRectangle))
	s.Press(geom.Pt(10, 10))
	s.Move(geom.Pt(30, 20))
	if got := len(s.Preview()); got != 4 {
		t.Fatalf("expected 4 preview vertices, got %d", got)
	}
	a, ok := s.Release(geom.Pt(50, 30))
	if !ok {
		t.Fatal("expected an annotation")
	}
	want := geom.Shape{geom.Pt(10, 10), geom.Pt(50, 10), geom.Pt(50, 30), geom.Pt(10, 30)}
	for i := range want {
		if a.Points[i] != want[i] {
			t.Fatalf("vertex %d = %v, want %v", i, a.Points[i], want[i])
		}
	}
	if a.Kind != KindRectangle {
		t.Fatalf("kind = %q", a.Kind)
	}
	if s.Dragging() || s.Preview() != nil {
		t.Fatal("drag state should be cleared after release")
	}
}

func TestCircleDrag(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeCircle))
	s.Press(geom.Pt(0, 0))
	a, ok := s.Release(geom.Pt(40, 20))
	if !ok {
		t.Fatal("expected an annotation")
	}
	if a.Kind != KindCircle || len(a.Points) != geom.CircleVertices {
		t.Fatalf("unexpected circle %s with %d points", a.Kind, len(a.Points))
	}
}

func TestReleaseWithoutMovementIsDiscarded(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeRectangle))
	s.Press(geom.Pt(10, 10))
	if _, ok := s.Release(geom.Pt(10, 10)); ok {
		t.Fatal("a click without movement should not create an annotation")
	}
	if s.Len() != 0 {
		t.Fatalf("expected no annotations, got %d", s.Len())
	}
}

func TestReleaseBackAtStartKeepsPreview(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeRectangle))
	s.Press(geom.Pt(10, 10))
	s.Move(geom.Pt(40, 30))
	s.Move(geom.Pt(10, 10))
	a, ok := s.Release(geom.Pt(10, 10))
	if !ok {
		t.Fatal("a drag that returned to its start should still finalize")
	}
	want := geom.Rectangle(geom.Pt(10, 10), geom.Pt(40, 30))
	for i := range want {
		if a.Points[i] != want[i] {
			t.Fatalf("vertex %d = %v, want %v", i, a.Points[i], want[i])
		}
	}
}

func TestStrokeDerivedFromFill(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeRectangle))
	for i := 0; i < 20; i++ {
		s.Press(geom.Pt(0, 0))
		s.Release(geom.Pt(float64(i+1), 5))
	}
	for _, a := range s.Annotations() {
		st := a.Stroke()
		if st.R != a.Fill.R || st.G != a.Fill.G || st.B != a.Fill.B || st.A < a.Fill.A || st.A > palette.Opaque {
			t.Fatalf("stroke %+v does not match fill %+v", st, a.Fill)
		}
	}
}

func TestListenerCalledOncePerMutation(t *testing.T) {
	s, calls := newTestStore(t)
	steps := []struct {
		name string
		fn   func()
	}{
		{"press", func() { s.Press(geom.Pt(1, 1)) }},
		{"label", func() { s.SetLabel("tree") }},
		{"press", func() { s.Press(geom.Pt(9, 1)) }},
		{"press", func() { s.Press(geom.Pt(5, 7)) }},
		{"complete", func() { s.Complete() }},
		{"mode", func() { s.SetMode(ModeCircle) }},
		{"drag start", func() { s.Press(geom.Pt(2, 2)) }},
		{"drag move", func() { s.Move(geom.Pt(8, 8)) }},
		{"drag end", func() { s.Release(geom.Pt(9, 9)) }},
		{"clear in progress", func() { s.ClearInProgress() }},
		{"clear all", func() { s.ClearAll() }},
	}
	for _, step := range steps {
		before := *calls
		step.fn()
		if got := *calls - before; got != 1 {
			t.Fatalf("%s: listener called %d times", step.name, got)
		}
	}
}

func TestInputIgnoredWithoutImage(t *testing.T) {
	calls := 0
	s := New(WithListener(func() { calls++ }))
	s.Press(geom.Pt(1, 1))
	s.Move(geom.Pt(2, 2))
	if _, ok := s.Release(geom.Pt(3, 3)); ok {
		t.Fatal("release without image should not finalize")
	}
	if calls != 0 || len(s.Freehand()) != 0 {
		t.Fatalf("expected no effect, calls=%d freehand=%d", calls, len(s.Freehand()))
	}
}

func TestLabelClearedAfterFinalize(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetLabel("roof")
	for _, p := range []geom.Point{geom.Pt(0, 0), geom.Pt(4, 0), geom.Pt(2, 3)} {
		s.Press(p)
	}
	a, err := s.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if a.Label != "roof" {
		t.Fatalf("label = %q", a.Label)
	}
	if s.Label() != "" {
		t.Fatalf("label buffer should be empty, got %q", s.Label())
	}
}

func TestSetModeKeepsFreehandDropsDrag(t *testing.T) {
	s, _ := newTestStore(t)
	s.Press(geom.Pt(1, 1))
	s.SetMode(ModeRectangle)
	if len(s.Freehand()) != 1 {
		t.Fatalf("freehand points should survive a mode switch")
	}
	s.Press(geom.Pt(5, 5))
	s.Move(geom.Pt(9, 9))
	s.SetMode(ModeCircle)
	if s.Dragging() || s.Preview() != nil {
		t.Fatal("mode switch should discard the active drag")
	}
}

func TestSetImageResetsSession(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeRectangle))
	s.Press(geom.Pt(1, 1))
	s.Release(geom.Pt(20, 20))
	s.SetMode(ModePolygon)
	s.Press(geom.Pt(3, 3))
	s.SetImage(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if s.Len() != 0 || len(s.Freehand()) != 0 {
		t.Fatalf("expected empty session, len=%d freehand=%d", s.Len(), len(s.Freehand()))
	}
	if s.Image().Bounds().Dx() != 10 {
		t.Fatal("image not replaced")
	}
}

func TestIDsUniqueAcrossClearAll(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeRectangle))
	seen := map[int]bool{}
	for round := 0; round < 3; round++ {
		for i := 0; i < 4; i++ {
			s.Press(geom.Pt(0, 0))
			a, ok := s.Release(geom.Pt(10, float64(i+1)))
			if !ok {
				t.Fatal("expected annotation")
			}
			if seen[a.ID] {
				t.Fatalf("id %d reused", a.ID)
			}
			seen[a.ID] = true
		}
		s.ClearAll()
	}
}

func TestAppend(t *testing.T) {
	s, _ := newTestStore(t)
	tri := geom.Shape{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(0, 1)}
	first, err := s.Append(Annotation{ID: 7, Kind: KindPolygon, Points: tri})
	if err != nil || first.ID != 7 {
		t.Fatalf("Append = %+v, %v", first, err)
	}
	dup, err := s.Append(Annotation{ID: 7, Kind: KindPolygon, Points: tri})
	if err != nil || dup.ID == 7 {
		t.Fatalf("duplicate id should be replaced, got %+v, %v", dup, err)
	}
	if _, err := s.Append(Annotation{Kind: KindPolygon, Points: tri[:2]}); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
	got := s.Annotations()
	if len(got) != 2 || got[0].ID != 7 {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestAnnotationsReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeRectangle))
	s.Press(geom.Pt(0, 0))
	s.Release(geom.Pt(5, 5))
	got := s.Annotations()
	got[0].Points[0] = geom.Pt(99, 99)
	if s.Annotations()[0].Points[0] == geom.Pt(99, 99) {
		t.Fatal("caller mutated store state")
	}
}

func TestFrameSnapshot(t *testing.T) {
	s, _ := newTestStore(t, WithMode(ModeCircle))
	s.Press(geom.Pt(0, 0))
	s.Move(geom.Pt(10, 10))
	f := s.Frame()
	if f.Image == nil || len(f.Preview) != geom.CircleVertices {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModePolygon, "Rect": ModeRectangle, "ellipse": ModeCircle} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("triangle"); err == nil {
		t.Fatal("expected error")
	}
}
