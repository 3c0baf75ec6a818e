package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/example/regionmark/internal/export"
	"github.com/example/regionmark/internal/imageio"
	"github.com/example/regionmark/internal/render"
)

// renderCmd draws an exported document over an image without a window.
type renderCmd struct {
	*root
	fs *flag.FlagSet

	file        string
	annotations string
	output      string
	toClipboard bool
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	c := &renderCmd{root: r.subcommand("render")}
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c.fs = fs
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "image file to draw on")
	fs.StringVar(&c.annotations, "annotations", "", "exported JSON document (empty reads the clipboard, - reads stdin)")
	fs.StringVar(&c.output, "output", "", "output image path (default annotated.png unless -to-clipboard)")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the rendered image to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" {
		return nil, &UsageError{of: c}
	}
	if c.output == "" && !c.toClipboard {
		c.output = "annotated.png"
	}
	return c, nil
}

func (c *renderCmd) document() (export.Document, error) {
	var (
		data []byte
		err  error
	)
	switch c.annotations {
	case "":
		var text string
		text, err = readClipboardText()
		data = []byte(text)
	case "-":
		data, err = io.ReadAll(c.in())
	default:
		data, err = os.ReadFile(c.annotations)
	}
	if err != nil {
		return export.Document{}, fmt.Errorf("failed to read annotations: %w", err)
	}
	return export.Parse(data)
}

func (c *renderCmd) Run() error {
	img, err := imageio.Load(c.file)
	if err != nil {
		return err
	}
	doc, err := c.document()
	if err != nil {
		return err
	}
	frame, err := doc.Frame(img)
	if err != nil {
		return err
	}
	rd, err := render.New(c.currentTheme(), c.settings().Annotate.LabelSize)
	if err != nil {
		return err
	}
	return c.emit(rd.Render(frame))
}

func (c *renderCmd) emit(out *image.RGBA) error {
	if out == nil {
		return errors.New("nothing to render")
	}
	if c.toClipboard {
		if err := writeClipboardImage(out); err != nil {
			return fmt.Errorf("%w: %w", export.ErrClipboard, err)
		}
		c.notifyCopy("image")
		fmt.Fprintln(c.out(), "copied rendered image to clipboard")
	}
	if c.output == "" {
		return nil
	}
	path := c.outputPath(c.output)
	if err := imageio.Save(out, path); err != nil {
		return err
	}
	c.notifySave(path)
	fmt.Fprintf(c.out(), "saved %s\n", path)
	return nil
}
