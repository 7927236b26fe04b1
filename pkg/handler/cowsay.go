package handler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/linewatch/pkg/config"
	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/types"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const cow = `        \   ^__^
         \  (oo)\_______
            (__)\       )\/\
                ||----w |
                ||     ||
`

// cowsayHandler draws matched lines in a speech bubble when the index has a
// wrap width. Without a width it behaves like a plain screen handler.
type cowsayHandler struct {
	out     io.Writer
	runtime *Runtime
	widths  map[int]int
}

func newCowsayHandler(env *Env) (interfaces.Handler, error) {
	widths := make(map[int]int)
	for index, arg := range env.Registry.Args(types.KindCowsay) {
		if arg == "" {
			continue
		}
		width, err := strconv.Atoi(arg)
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("%w: cowsay%d width must be a positive integer, got %q", config.ErrInvalid, index, arg)
		}
		widths[index] = width
	}
	return &cowsayHandler{
		out:     env.Screen,
		runtime: env.Runtime,
		widths:  widths,
	}, nil
}

func (h *cowsayHandler) Invoke(index int, line string) error {
	width, ok := h.widths[index]
	if !ok {
		if h.runtime.Emitted() {
			return nil
		}
		h.runtime.MarkEmitted()
		_, err := fmt.Fprintln(h.out, line)
		return err
	}

	_, err := io.WriteString(h.out, Cowsay(line, width))
	return err
}

// Cowsay renders text in a bubble at most width columns wide, followed by the
// cow. Words longer than width are broken.
func Cowsay(text string, width int) string {
	wrapped := wrap.String(wordwrap.String(text, width), width)
	lines := strings.Split(wrapped, "\n")

	longest := 0
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
		if w := ansi.PrintableRuneWidth(lines[i]); w > longest {
			longest = w
		}
	}

	var b strings.Builder
	b.WriteString(" " + strings.Repeat("_", longest+2) + "\n")
	for i, l := range lines {
		left, right := "|", "|"
		switch {
		case len(lines) == 1:
			left, right = "<", ">"
		case i == 0:
			left, right = "/", "\\"
		case i == len(lines)-1:
			left, right = "\\", "/"
		}
		pad := strings.Repeat(" ", longest-ansi.PrintableRuneWidth(l))
		b.WriteString(left + " " + l + pad + " " + right + "\n")
	}
	b.WriteString(" " + strings.Repeat("-", longest+2) + "\n")
	b.WriteString(cow)
	return b.String()
}
