package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Veraticus/linewatch/pkg/types"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name         string
		argv         []string
		wantPatterns []types.Pattern
		wantBindings []types.Binding
		wantColors   map[int]string
		wantRest     []string
	}{
		{
			name: "long flags with equals",
			argv: []string{"--regex0=ERROR", "--log0=out.txt", "input.log"},
			wantPatterns: []types.Pattern{
				{Index: 0, Regex: "ERROR"},
			},
			wantBindings: []types.Binding{
				{Kind: types.KindLog, Index: 0, Arg: "out.txt"},
			},
			wantRest: []string{"input.log"},
		},
		{
			name: "aliases and separate values",
			argv: []string{"-r2", "disk (full|gone)", "-x2", "logger {}", "-m2=ops@example.com", "-f"},
			wantPatterns: []types.Pattern{
				{Index: 2, Regex: "disk (full|gone)"},
			},
			wantBindings: []types.Binding{
				{Kind: types.KindExec, Index: 2, Arg: "logger {}"},
				{Kind: types.KindEmail, Index: 2, Arg: "ops@example.com"},
			},
			wantRest: []string{"-f"},
		},
		{
			name: "optional values do not consume the file argument",
			argv: []string{"--regex1=.*", "--screen1", "--cowsay1=40", "input.log"},
			wantPatterns: []types.Pattern{
				{Index: 1, Regex: ".*"},
			},
			wantBindings: []types.Binding{
				{Kind: types.KindScreen, Index: 1, Arg: ""},
				{Kind: types.KindCowsay, Index: 1, Arg: "40"},
			},
			wantRest: []string{"input.log"},
		},
		{
			name: "single dash long names and colors",
			argv: []string{"-regex0=a", "-screen0", "--color0=red", "-X0=wc -l"},
			wantPatterns: []types.Pattern{
				{Index: 0, Regex: "a"},
			},
			wantBindings: []types.Binding{
				{Kind: types.KindScreen, Index: 0},
				{Kind: types.KindPexec, Index: 0, Arg: "wc -l"},
			},
			wantColors: map[int]string{0: "red"},
		},
		{
			name:     "unknown and global flags pass through",
			argv:     []string{"--follow", "--complete=me@example.com", "--foo1=bar", "-v"},
			wantRest: []string{"--follow", "--complete=me@example.com", "--foo1=bar", "-v"},
		},
		{
			name:     "double dash stops parsing",
			argv:     []string{"--regex0=a", "--", "--log0=x"},
			wantRest: []string{"--", "--log0=x"},
			wantPatterns: []types.Pattern{
				{Index: 0, Regex: "a"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ParseArgs(tt.argv)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(args.Patterns) != len(tt.wantPatterns) {
				t.Fatalf("got %d patterns, want %d", len(args.Patterns), len(tt.wantPatterns))
			}
			for i, p := range tt.wantPatterns {
				if args.Patterns[i].Index != p.Index || args.Patterns[i].Regex != p.Regex {
					t.Errorf("pattern[%d] = %+v, want %+v", i, args.Patterns[i], p)
				}
			}
			if len(args.Bindings) != len(tt.wantBindings) {
				t.Fatalf("got %d bindings, want %d", len(args.Bindings), len(tt.wantBindings))
			}
			for i, b := range tt.wantBindings {
				if args.Bindings[i] != b {
					t.Errorf("binding[%d] = %+v, want %+v", i, args.Bindings[i], b)
				}
			}
			wantColors := tt.wantColors
			if wantColors == nil {
				wantColors = map[int]string{}
			}
			if !reflect.DeepEqual(args.Colors, wantColors) {
				t.Errorf("colors = %v, want %v", args.Colors, wantColors)
			}
			if len(args.Rest) != len(tt.wantRest) {
				t.Fatalf("rest = %v, want %v", args.Rest, tt.wantRest)
			}
			for i := range tt.wantRest {
				if args.Rest[i] != tt.wantRest[i] {
					t.Errorf("rest[%d] = %q, want %q", i, args.Rest[i], tt.wantRest[i])
				}
			}
		})
	}
}

func TestParseArgsMissingValue(t *testing.T) {
	tests := [][]string{
		{"--log0"},
		{"--exec3", "--follow"},
		{"-r1"},
	}

	for _, argv := range tests {
		t.Run(strings.Join(argv, " "), func(t *testing.T) {
			_, err := ParseArgs(argv)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid but got %v", err)
			}
		})
	}
}

func TestUsageListsEveryKind(t *testing.T) {
	usage := Usage()
	for _, kind := range types.Kinds() {
		if !strings.Contains(usage, "--"+kind.String()+"<N>") {
			t.Errorf("usage does not mention %s", kind)
		}
	}
}
