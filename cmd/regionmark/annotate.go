package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/appstate"
	"github.com/example/regionmark/internal/clipboard"
)

var (
	readClipboardImage  = clipboard.ReadImage
	writeClipboardImage = clipboard.WriteImage
	readClipboardText   = clipboard.ReadText
)

// runWindow opens the annotation window; tests replace it.
var runWindow = func(st *appstate.AppState) { st.Run() }

// annotateCmd represents the annotate subcommand.
type annotateCmd struct {
	*root
	fs *flag.FlagSet

	file          string
	mode          annotation.Mode
	label         string
	output        string
	fromClipboard bool
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	a := &annotateCmd{root: r.subcommand("annotate")}
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a.fs = fs
	fs.Usage = usageFunc(a)
	modeName := a.settings().Annotate.Mode
	fs.StringVar(&a.file, "file", "", "image file to annotate")
	fs.StringVar(&modeName, "mode", modeName, "initial drawing mode (polygon, rect, circle)")
	fs.StringVar(&a.label, "label", "", "label for the first region")
	fs.StringVar(&a.output, "output", "annotated.png", "output file path for Ctrl+S")
	fs.BoolVar(&a.fromClipboard, "from-clipboard", false, "annotate the image on the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" && fs.NArg() > 0 {
		a.file = fs.Arg(0)
	}
	if a.file != "" && a.fromClipboard {
		return nil, errors.New("-file and -from-clipboard cannot be used together")
	}
	if a.file == "" && !a.fromClipboard {
		return nil, &UsageError{of: a}
	}
	mode, err := annotation.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	a.mode = mode
	return a, nil
}

func (a *annotateCmd) options() ([]appstate.Option, error) {
	opts := []appstate.Option{
		appstate.WithMode(a.mode),
		appstate.WithLabel(a.label),
		appstate.WithOutput(a.outputPath(a.output)),
		appstate.WithTheme(a.currentTheme()),
		appstate.WithLabelSize(a.settings().Annotate.LabelSize),
		appstate.WithDeriver(a.deriver()),
		appstate.WithSink(clipboard.TextSink{}),
		appstate.WithNotifier(a.notifier),
		appstate.WithImageClipboard(writeClipboardImage, readClipboardImage),
		appstate.WithOnClose(func() { log.Printf("%s: window closed", a.Program()) }),
	}
	if a.fromClipboard {
		img, err := readClipboardImage()
		if err != nil {
			return nil, fmt.Errorf("failed to read clipboard image: %w", err)
		}
		a.notifyLoad("clipboard")
		return append(opts, appstate.WithImage(img)), nil
	}
	return append(opts, appstate.WithSource(a.file)), nil
}

func (a *annotateCmd) Run() error {
	opts, err := a.options()
	if err != nil {
		return err
	}
	runWindow(appstate.New(opts...))
	return nil
}
