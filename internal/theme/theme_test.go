package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# comment
Name: Mine
background: #112233
PreviewFill: #0078FF40
Unknown: #FFFFFF
`
	th, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if th.Name != "Mine" {
		t.Errorf("Name = %q", th.Name)
	}
	if th.Background != (color.RGBA{0x11, 0x22, 0x33, 0xFF}) {
		t.Errorf("Background = %+v", th.Background)
	}
	if th.PreviewFill != (color.RGBA{0x00, 0x78, 0xFF, 0x40}) {
		t.Errorf("PreviewFill = %+v", th.PreviewFill)
	}
	if th.Highlight != Default().Highlight {
		t.Errorf("missing keys should keep defaults, got %+v", th.Highlight)
	}
}

func TestParseInvalidColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: 112233\n")); err == nil {
		t.Fatal("expected error for color without #")
	}
	if _, err := Parse(strings.NewReader("Background: #1122\n")); err == nil {
		t.Fatal("expected error for short hex")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	th := Default()
	th.Name = "Round"
	th.PreviewFill = color.RGBA{1, 2, 3, 4}
	var sb strings.Builder
	if err := Format(&sb, th); err != nil {
		t.Fatalf("Format: %v", err)
	}
	back, err := Parse(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *back != *th {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", back, th)
	}
}

func TestEmbeddedThemesLoad(t *testing.T) {
	names := Embedded()
	if len(names) < 3 {
		t.Fatalf("expected built-in themes, got %v", names)
	}
	l := &Loader{}
	for _, name := range names {
		if _, err := l.Load(name); err != nil {
			t.Errorf("Load(%q): %v", name, err)
		}
	}
	dark, err := l.Load("dark")
	if err != nil {
		t.Fatalf("Load(dark): %v", err)
	}
	if dark.Background == Default().Background {
		t.Error("dark theme should override the background")
	}
}

func TestLoaderSearchesConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.theme")
	if err := os.WriteFile(path, []byte("Name: Mine\nHighlight: #010203\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}
	th, err := l.Load("mine")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Highlight != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("Highlight = %+v", th.Highlight)
	}
	byPath, err := l.Load(path)
	if err != nil || byPath.Name != "Mine" {
		t.Fatalf("Load by path = %+v, %v", byPath, err)
	}
	if _, err := l.Load("missing"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
	if th, err := l.Load(""); err != nil || th.Name != "Default" {
		t.Fatalf("empty name = %+v, %v", th, err)
	}
}
