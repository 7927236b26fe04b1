package handler

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/linewatch/pkg/config"
	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/testutil"
	"github.com/Veraticus/linewatch/pkg/types"
)

var runStart = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// testEnv returns an Env with in-memory collaborators for bindings
func testEnv(follow bool, bindings ...types.Binding) (Env, *bytes.Buffer, *testutil.MockRunner, *testutil.MockNotifier) {
	screen := &bytes.Buffer{}
	runner := testutil.NewMockRunner()
	mail := testutil.NewMockNotifier()

	rt := NewRuntime(follow, runStart)
	rt.SetClock(func() time.Time { return runStart.Add(time.Minute) })

	return Env{
		Runtime:     rt,
		Registry:    NewRegistry(bindings),
		Screen:      screen,
		ColorMode:   config.ColorNever,
		Colors:      map[int]string{},
		Commands:    runner,
		Placeholder: "{}",
		Mail:        mail,
		Patterns:    testutil.StaticPatterns{0: "ERROR", 1: ".*"},
	}, screen, runner, mail
}

func TestConstructorForEveryKind(t *testing.T) {
	for _, kind := range types.Kinds() {
		if _, ok := constructors[kind]; !ok {
			t.Errorf("no constructor for %s", kind)
		}
	}
	if len(constructors) != len(types.Kinds()) {
		t.Errorf("constructor table has %d entries, want %d", len(constructors), len(types.Kinds()))
	}
}

func TestBuildEveryKind(t *testing.T) {
	dir := t.TempDir()
	env, _, _, _ := testEnv(false,
		types.Binding{Kind: types.KindLog, Index: 0, Arg: dir + "/out.txt"},
		types.Binding{Kind: types.KindExec, Index: 0, Arg: "echo {}"},
		types.Binding{Kind: types.KindPexec, Index: 0, Arg: "cat"},
		types.Binding{Kind: types.KindScreen, Index: 0},
		types.Binding{Kind: types.KindEmail, Index: 0, Arg: "a@example.com"},
		types.Binding{Kind: types.KindCowsay, Index: 0},
	)

	handlers, err := Build(env)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, kind := range types.Kinds() {
		if handlers[kind] == nil {
			t.Errorf("no handler built for %s", kind)
		}
	}

	// Only the kinds that need lifecycle events declare them
	participants := map[types.Kind]bool{}
	for kind, h := range handlers {
		if p, ok := h.(interfaces.HookParticipant); ok && len(p.Events()) > 0 {
			participants[kind] = true
		}
	}
	for _, kind := range []types.Kind{types.KindLog, types.KindExec, types.KindPexec, types.KindEmail} {
		if !participants[kind] {
			t.Errorf("%s should take part in close", kind)
		}
	}
	if participants[types.KindScreen] || participants[types.KindCowsay] {
		t.Error("screen handlers should not declare hooks")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		binding types.Binding
		modify  func(*Env)
		wantErr error
	}{
		{
			name:    "unknown colour",
			binding: types.Binding{Kind: types.KindScreen, Index: 0, Arg: "chartreuse"},
			wantErr: config.ErrInvalid,
		},
		{
			name:    "unknown per-index colour",
			binding: types.Binding{Kind: types.KindScreen, Index: 0},
			modify:  func(e *Env) { e.Colors[0] = "mauve" },
			wantErr: config.ErrInvalid,
		},
		{
			name:    "bad cowsay width",
			binding: types.Binding{Kind: types.KindCowsay, Index: 0, Arg: "wide"},
			wantErr: config.ErrInvalid,
		},
		{
			name:    "zero cowsay width",
			binding: types.Binding{Kind: types.KindCowsay, Index: 0, Arg: "0"},
			wantErr: config.ErrInvalid,
		},
		{
			name:    "log without path",
			binding: types.Binding{Kind: types.KindLog, Index: 0},
		},
		{
			name:    "email without transport",
			binding: types.Binding{Kind: types.KindEmail, Index: 0, Arg: "a@example.com"},
			modify:  func(e *Env) { e.Mail = nil },
		},
		{
			name:    "exec without runner",
			binding: types.Binding{Kind: types.KindExec, Index: 0, Arg: "true"},
			modify:  func(e *Env) { e.Commands = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _, _ := testEnv(false, tt.binding)
			if tt.modify != nil {
				tt.modify(&env)
			}
			_, err := Build(env)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRuntimeDedupFlag(t *testing.T) {
	rt := NewRuntime(false, runStart)
	if rt.Emitted() {
		t.Fatal("flag set before any line")
	}
	rt.MarkEmitted()
	if !rt.Emitted() {
		t.Fatal("flag not set")
	}
	rt.EndLine()
	if rt.Emitted() {
		t.Error("flag not cleared by EndLine")
	}
}
