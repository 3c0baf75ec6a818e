package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/regionmark/internal/annotation"
	"github.com/example/regionmark/internal/clipboard"
	"github.com/example/regionmark/internal/export"
	"github.com/example/regionmark/internal/geom"
	"github.com/example/regionmark/internal/imageio"
	"github.com/example/regionmark/internal/render"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd drives an annotation store from text commands.
type interactiveCmd struct {
	*root
	fs *flag.FlagSet

	file  string
	execs commandList

	store    *annotation.Store
	sink     export.Sink
	renderer *render.Renderer
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func newInteractiveCmd(r *root) *interactiveCmd {
	i := &interactiveCmd{root: r.subcommand("interactive"), sink: clipboard.TextSink{}}
	mode, err := annotation.ParseMode(i.settings().Annotate.Mode)
	if err != nil {
		mode = annotation.ModePolygon
	}
	i.store = annotation.New(annotation.WithDeriver(i.deriver()), annotation.WithMode(mode))
	return i
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	i := newInteractiveCmd(r)
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	i.fs = fs
	fs.Usage = usageFunc(i)
	fs.StringVar(&i.file, "file", "", "image file to load before reading commands")
	fs.Var(&i.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *interactiveCmd) Run() error {
	if i.file != "" {
		if err := i.load(i.file); err != nil {
			return err
		}
	}
	if len(i.execs) > 0 {
		for _, cmd := range i.execs {
			done, err := i.executeLine(cmd)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(i.out(), "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(i.in())
	for {
		fmt.Fprint(i.out(), "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.errOut(), err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

// executeLine runs one command and reports whether the session should end.
func (i *interactiveCmd) executeLine(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprint(i.out(), (&UsageError{of: i}).Error())
	case "load":
		if len(rest) != 1 {
			return false, errors.New("usage: load PATH")
		}
		return false, i.load(rest[0])
	case "mode":
		if len(rest) != 1 {
			return false, fmt.Errorf("usage: mode %s", modeNames())
		}
		m, err := annotation.ParseMode(rest[0])
		if err != nil {
			return false, err
		}
		i.store.SetMode(m)
	case "label":
		i.store.SetLabel(strings.Join(rest, " "))
	case "point", "press", "move", "release":
		p, err := parsePoint(cmd, rest)
		if err != nil {
			return false, err
		}
		if i.store.Image() == nil {
			return false, errors.New("no image loaded")
		}
		return false, i.pointer(cmd, p)
	case "complete":
		a, err := i.store.Complete()
		if err != nil {
			return false, err
		}
		i.printAnnotation(a)
	case "cancel":
		i.store.ClearInProgress()
	case "clear":
		i.store.ClearAll()
	case "list":
		for _, a := range i.store.Annotations() {
			i.printAnnotation(a)
		}
		if n := len(i.store.Freehand()); n > 0 {
			fmt.Fprintf(i.out(), "in progress: %d points\n", n)
		}
	case "export":
		data, err := export.Marshal(export.FromStore(i.store))
		if err != nil {
			return false, err
		}
		fmt.Fprintln(i.out(), string(data))
	case "copy":
		if err := export.Export(i.store, i.sink); err != nil {
			return false, err
		}
		i.notifyCopy("annotations")
		fmt.Fprintf(i.out(), "copied %d regions\n", i.store.Len())
	case "save":
		if len(rest) != 1 {
			return false, errors.New("usage: save PATH")
		}
		return false, i.save(rest[0])
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func (i *interactiveCmd) load(path string) error {
	img, err := imageio.Load(path)
	if err != nil {
		return err
	}
	i.store.SetImage(img)
	i.notifyLoad(path)
	fmt.Fprintf(i.out(), "loaded %s (%dx%d)\n", path, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func (i *interactiveCmd) pointer(cmd string, p geom.Point) error {
	switch cmd {
	case "point":
		if i.store.Mode().Dragged() {
			return fmt.Errorf("point needs polygon mode, current mode is %s", i.store.Mode())
		}
		i.store.Press(p)
	case "press":
		i.store.Press(p)
	case "move":
		i.store.Move(p)
	case "release":
		if a, ok := i.store.Release(p); ok {
			i.printAnnotation(a)
		}
	}
	return nil
}

func (i *interactiveCmd) save(path string) error {
	if i.renderer == nil {
		rd, err := render.New(i.currentTheme(), i.settings().Annotate.LabelSize)
		if err != nil {
			return err
		}
		i.renderer = rd
	}
	img := i.renderer.Render(i.store.Frame())
	if img == nil {
		return errors.New("no image loaded")
	}
	path = i.outputPath(path)
	if err := imageio.Save(img, path); err != nil {
		return err
	}
	i.notifySave(path)
	fmt.Fprintf(i.out(), "saved %s\n", path)
	return nil
}

func (i *interactiveCmd) printAnnotation(a annotation.Annotation) {
	label := a.Label
	if label == "" {
		label = "-"
	}
	fmt.Fprintf(i.out(), "%d %s %s %d points %s\n", a.ID, a.Kind, label, len(a.Points), a.Fill)
}

func parsePoint(cmd string, args []string) (geom.Point, error) {
	if len(args) != 2 {
		return geom.Point{}, fmt.Errorf("usage: %s X Y", cmd)
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid x %q: %w", args[0], err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid y %q: %w", args[1], err)
	}
	p := geom.Pt(x, y)
	if !p.Valid() {
		return geom.Point{}, fmt.Errorf("point %s %s: %w", args[0], args[1], geom.ErrCoordRange)
	}
	return p, nil
}

func modeNames() string {
	names := make([]string, 0, len(annotation.Modes()))
	for _, m := range annotation.Modes() {
		names = append(names, m.String())
	}
	return strings.Join(names, "|")
}
