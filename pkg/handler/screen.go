package handler

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/linewatch/pkg/config"
	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/types"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var colorAttributes = map[string][]color.Attribute{
	"black":     {color.FgBlack},
	"red":       {color.FgRed},
	"green":     {color.FgGreen},
	"yellow":    {color.FgYellow},
	"blue":      {color.FgBlue},
	"magenta":   {color.FgMagenta},
	"cyan":      {color.FgCyan},
	"white":     {color.FgWhite},
	"bold":      {color.Bold},
	"underline": {color.Underline},
	"reverse":   {color.ReverseVideo},
}

// ParseColor resolves a colour name such as "red", "bright_red" or
// "bold_yellow". Names are case-insensitive.
func ParseColor(name string) (*color.Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if attrs, ok := colorAttributes[name]; ok {
		return color.New(attrs...), nil
	}
	if base, ok := strings.CutPrefix(name, "bright_"); ok {
		if attrs, ok := colorAttributes[base]; ok && attrs[0] >= color.FgBlack && attrs[0] <= color.FgWhite {
			// FgHi* colours sit 60 above their base colour
			return color.New(attrs[0] + 60), nil
		}
	}
	if base, ok := strings.CutPrefix(name, "bold_"); ok {
		if attrs, ok := colorAttributes[base]; ok {
			return color.New(append([]color.Attribute{color.Bold}, attrs...)...), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown colour %q", config.ErrInvalid, name)
}

// colorEnabled decides whether escapes are written to w
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// screenHandler writes matched lines to the terminal, at most once per line
type screenHandler struct {
	out     io.Writer
	runtime *Runtime
	colors  map[int]*color.Color
}

func newScreenHandler(env *Env) (interfaces.Handler, error) {
	enabled := colorEnabled(env.ColorMode, env.Screen)

	colors := make(map[int]*color.Color)
	for index, arg := range env.Registry.Args(types.KindScreen) {
		name := env.Colors[index]
		if name == "" {
			name = arg
		}
		if name == "" {
			continue
		}
		c, err := ParseColor(name)
		if err != nil {
			return nil, fmt.Errorf("screen%d: %w", index, err)
		}
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		colors[index] = c
	}

	return &screenHandler{
		out:     env.Screen,
		runtime: env.Runtime,
		colors:  colors,
	}, nil
}

func (h *screenHandler) Invoke(index int, line string) error {
	if h.runtime.Emitted() {
		return nil
	}
	h.runtime.MarkEmitted()

	if c, ok := h.colors[index]; ok {
		line = c.Sprint(line)
	}
	_, err := fmt.Fprintln(h.out, line)
	return err
}
