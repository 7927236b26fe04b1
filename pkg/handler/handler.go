// Package handler implements the actions linewatch runs for matched lines.
//
// Every kind in types.Kinds has a constructor in the table below. A built
// handler receives (index, line) for each match of the pattern with that
// index; kinds that need lifecycle events also implement
// interfaces.HookParticipant.
package handler

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/notification"
	"github.com/Veraticus/linewatch/pkg/types"
)

// Sender delivers outbound mail
type Sender interface {
	Send(n notification.Notification) error
}

// PatternLookup returns the expression text of a pattern index
type PatternLookup interface {
	Expr(index int) string
}

// Env carries what handlers need from the rest of the program
type Env struct {
	Runtime  *Runtime
	Registry *Registry

	// Screen receives screen and cowsay output; defaults to os.Stdout
	Screen io.Writer
	// ColorMode is auto, always or never
	ColorMode string
	// Colors holds the per-index colour option
	Colors map[int]string

	Commands    interfaces.CommandRunner
	Placeholder string
	// CommandGrace bounds how long the close hook waits for running
	// commands; zero does not wait
	CommandGrace time.Duration

	Mail     Sender
	Patterns PatternLookup

	Logger *slog.Logger
}

type constructor func(env *Env) (interfaces.Handler, error)

// constructors covers the closed set of kinds
var constructors = map[types.Kind]constructor{
	types.KindLog:    newLogHandler,
	types.KindExec:   newExecHandler,
	types.KindPexec:  newPexecHandler,
	types.KindScreen: newScreenHandler,
	types.KindEmail:  newEmailHandler,
	types.KindCowsay: newCowsayHandler,
}

// Build constructs one handler for every kind present in env.Registry
func Build(env Env) (map[types.Kind]interfaces.Handler, error) {
	if env.Registry == nil {
		return nil, fmt.Errorf("handler registry is required")
	}
	if env.Runtime == nil {
		return nil, fmt.Errorf("handler runtime is required")
	}
	if env.Screen == nil {
		env.Screen = os.Stdout
	}
	if env.Logger == nil {
		env.Logger = slog.Default()
	}

	handlers := make(map[types.Kind]interfaces.Handler)
	for _, kind := range env.Registry.Kinds() {
		build, ok := constructors[kind]
		if !ok {
			return nil, fmt.Errorf("no handler for kind %s", kind)
		}
		h, err := build(&env)
		if err != nil {
			return nil, fmt.Errorf("%s handler: %w", kind, err)
		}
		handlers[kind] = h
	}
	return handlers, nil
}
