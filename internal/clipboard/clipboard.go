// Package clipboard moves exported annotations and rendered images to and
// from the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/example/regionmark/internal/imageio"
)

type format int

const (
	formatText format = iota
	formatPNG
)

func (f format) String() string {
	if f == formatPNG {
		return "image"
	}
	return "text"
}

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

// TextSink writes exported text to the system clipboard.
type TextSink struct{}

// WriteText implements export.Sink.
func (TextSink) WriteText(text string) error { return WriteText(text) }

// WriteText writes UTF-8 text to the clipboard.
func WriteText(text string) error {
	return write(formatText, []byte(text))
}

// ReadText returns UTF-8 text from the clipboard.
func ReadText() (string, error) {
	data, err := readNonEmpty(formatText)
	if err != nil {
		return "", err
	}
	// Some applications include a trailing NUL in STRING responses.
	return string(bytes.TrimRight(data, "\x00")), nil
}

// WriteImage publishes img to the clipboard as PNG.
func WriteImage(img image.Image) error {
	data, err := imageio.EncodePNG(img)
	if err != nil {
		return err
	}
	return write(formatPNG, data)
}

// ReadImage decodes the image on the clipboard.
func ReadImage() (*image.RGBA, error) {
	data, err := readNonEmpty(formatPNG)
	if err != nil {
		return nil, err
	}
	return imageio.Decode(bytes.NewReader(data))
}

func readNonEmpty(f format) ([]byte, error) {
	data, err := read(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain %s data", f)
	}
	return data, nil
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
