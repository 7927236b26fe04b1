package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/types"
)

// commandHandler runs a shell command per match with the placeholder in the
// command replaced by the line. The line is inserted verbatim; commands are
// trusted operator input. With pipe set the line is also written to the
// command's stdin. Commands are never waited for while lines are dispatched;
// the close hook gives them at most grace to finish.
type commandHandler struct {
	kind        types.Kind
	commands    map[int]string
	placeholder string
	runner      interfaces.CommandRunner
	runtime     *Runtime
	grace       time.Duration
	pipe        bool
}

func newExecHandler(env *Env) (interfaces.Handler, error) {
	return newCommandHandler(env, types.KindExec, false)
}

func newPexecHandler(env *Env) (interfaces.Handler, error) {
	return newCommandHandler(env, types.KindPexec, true)
}

func newCommandHandler(env *Env, kind types.Kind, pipe bool) (interfaces.Handler, error) {
	if env.Commands == nil {
		return nil, errors.New("no command runner configured")
	}
	placeholder := env.Placeholder
	if placeholder == "" {
		placeholder = "{}"
	}
	return &commandHandler{
		kind:        kind,
		commands:    env.Registry.Args(kind),
		placeholder: placeholder,
		runner:      env.Commands,
		runtime:     env.Runtime,
		grace:       env.CommandGrace,
		pipe:        pipe,
	}, nil
}

// Expand substitutes every occurrence of placeholder in command with line
func Expand(command, placeholder, line string) string {
	return strings.ReplaceAll(command, placeholder, line)
}

func (h *commandHandler) Invoke(index int, line string) error {
	command, ok := h.commands[index]
	if !ok || command == "" {
		return nil
	}

	var stdin []byte
	if h.pipe {
		stdin = []byte(line + "\n")
	}
	return h.runner.Run(Expand(command, h.placeholder, line), stdin)
}

func (h *commandHandler) Events() []types.Event {
	return []types.Event{types.EventClose}
}

func (h *commandHandler) OnHook(event types.Event) error {
	if event != types.EventClose {
		return nil
	}

	grace := h.grace
	if h.runtime.Interrupted() {
		grace = 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return h.runner.Wait(ctx)
}
