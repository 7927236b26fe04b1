package monitor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/types"
)

type hookEntry struct {
	kind        types.Kind
	participant interfaces.HookParticipant
}

// HookTable holds, per lifecycle event, the handlers that declared it
type HookTable struct {
	entries map[types.Event][]hookEntry
	logger  *slog.Logger
}

// NewHookTable collects the declared events of handlers. kinds fixes the order
// in which participants run.
func NewHookTable(kinds []types.Kind, handlers map[types.Kind]interfaces.Handler, logger *slog.Logger) *HookTable {
	if logger == nil {
		logger = slog.Default()
	}
	t := &HookTable{
		entries: make(map[types.Event][]hookEntry),
		logger:  logger,
	}
	for _, kind := range kinds {
		p, ok := handlers[kind].(interfaces.HookParticipant)
		if !ok {
			continue
		}
		for _, event := range p.Events() {
			t.entries[event] = append(t.entries[event], hookEntry{kind: kind, participant: p})
		}
	}
	return t
}

// Participants returns the kinds taking part in event, in run order
func (t *HookTable) Participants(event types.Event) []types.Kind {
	kinds := make([]types.Kind, 0, len(t.entries[event]))
	for _, e := range t.entries[event] {
		kinds = append(kinds, e.kind)
	}
	return kinds
}

// Run calls every participant of event. A failing participant is logged and
// does not stop the others; all failures are returned joined.
func (t *HookTable) Run(event types.Event) error {
	var errs []error
	for _, e := range t.entries[event] {
		if err := e.participant.OnHook(event); err != nil {
			t.logger.Warn("hook failed", "kind", e.kind, "event", event, "error", err)
			errs = append(errs, fmt.Errorf("%s %s hook: %w", e.kind, event, err))
		}
	}
	return errors.Join(errs...)
}
