package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/regionmark/internal/theme"
)

const (
	// DefaultFillOpacity is the alpha of new annotation fills.
	DefaultFillOpacity = 0.35
	// DefaultLabelSize is the label font size in points.
	DefaultLabelSize = 16.0
)

// Notify holds notification settings.
type Notify struct {
	Load bool
	Save bool
	Copy bool
}

// Annotate holds drawing defaults.
type Annotate struct {
	Mode        string
	FillOpacity float64
	LabelSize   float64
}

// Config holds the application configuration.
type Config struct {
	Theme    string
	SaveDir  string
	Notify   Notify
	Annotate Annotate
	Themes   map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Annotate: Annotate{
			Mode:        "polygon",
			FillOpacity: DefaultFillOpacity,
			LabelSize:   DefaultLabelSize,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "load = %v\n", c.Notify.Load)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[annotate]\n")
	fmt.Fprintf(&sb, "mode = %s\n", c.Annotate.Mode)
	fmt.Fprintf(&sb, "fill_opacity = %s\n", strconv.FormatFloat(c.Annotate.FillOpacity, 'f', -1, 64))
	fmt.Fprintf(&sb, "label_size = %s\n", strconv.FormatFloat(c.Annotate.LabelSize, 'f', -1, 64))
	sb.WriteString("\n")

	// Sort keys for deterministic output
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = theme.Format(&sb, c.Themes[name])
		sb.WriteString("\n")
	}

	return sb.String()
}
