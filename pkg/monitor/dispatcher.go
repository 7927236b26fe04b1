package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/linewatch/pkg/handler"
	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/status"
	"github.com/Veraticus/linewatch/pkg/types"
)

// Options holds what a Dispatcher is built from
type Options struct {
	Patterns PatternMatcher
	Registry *handler.Registry
	Handlers map[types.Kind]interfaces.Handler
	Runtime  *handler.Runtime
	// Summary is optional
	Summary *status.Summary
	Logger  *slog.Logger
}

// Dispatcher runs every input line through the patterns and hands matches to
// the bound handlers. All run state hangs off the dispatcher; lines are
// processed one at a time on the goroutine that calls Run.
type Dispatcher struct {
	patterns PatternMatcher
	registry *handler.Registry
	handlers map[types.Kind]interfaces.Handler
	hooks    *HookTable
	runtime  *handler.Runtime
	summary  *status.Summary
	logger   *slog.Logger

	openOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
}

// NewDispatcher creates a dispatcher
func NewDispatcher(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rt := opts.Runtime
	if rt == nil {
		rt = handler.NewRuntime(false, time.Now())
	}
	return &Dispatcher{
		patterns: opts.Patterns,
		registry: opts.Registry,
		handlers: opts.Handlers,
		hooks:    NewHookTable(opts.Registry.Kinds(), opts.Handlers, logger),
		runtime:  rt,
		summary:  opts.Summary,
		logger:   logger,
	}
}

// Hooks returns the dispatcher's hook table
func (d *Dispatcher) Hooks() *HookTable {
	return d.hooks
}

// Open runs the open hooks. It is idempotent and called by Run.
func (d *Dispatcher) Open() {
	d.openOnce.Do(func() {
		_ = d.hooks.Run(types.EventOpen)
	})
}

// Run reads src until it is exhausted or ctx is cancelled. It returns nil at
// end of input and ctx.Err() on cancellation. Close hooks are not run; call
// Close for that.
func (d *Dispatcher) Run(ctx context.Context, src interfaces.LineSource) error {
	d.Open()

	repositioner, canReposition := src.(interfaces.Repositioner)
	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		d.ProcessLine(line.Text)

		if d.runtime.Follow && canReposition {
			if err := repositioner.Reposition(); err != nil {
				d.logger.Warn("failed to reposition input", "line", line.Number, "error", err)
			}
		}
	}
}

// ProcessLine evaluates one line: pre_search hooks, matching handlers in
// ascending index order, post_search hooks, then the per-line state reset.
func (d *Dispatcher) ProcessLine(text string) {
	_ = d.hooks.Run(types.EventPreSearch)

	if d.summary != nil {
		d.summary.RecordLine()
	}

	for _, index := range d.patterns.Match(text) {
		if d.summary != nil {
			d.summary.RecordMatch(index)
		}
		for _, kind := range d.registry.KindsFor(index) {
			h, ok := d.handlers[kind]
			if !ok {
				continue
			}
			if err := h.Invoke(index, text); err != nil {
				// Handler failures never stop matching or other handlers
				d.logger.Warn("handler failed", "kind", kind, "index", index, "error", err)
			}
		}
	}

	_ = d.hooks.Run(types.EventPostSearch)
	d.runtime.EndLine()
}

// Close runs the close hooks once and returns their joined errors
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.hooks.Run(types.EventClose)
	})
	return d.closeErr
}
