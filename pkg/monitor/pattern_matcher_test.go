package monitor

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/Veraticus/linewatch/pkg/types"
)

func compiledPatterns(t *testing.T, patterns ...types.Pattern) []types.Pattern {
	t.Helper()
	for i := range patterns {
		re, err := regexp.Compile(patterns[i].Regex)
		if err != nil {
			t.Fatalf("failed to compile pattern %d: %v", patterns[i].Index, err)
		}
		patterns[i].SetCompiledRegex(re)
	}
	return patterns
}

func TestPatternTable_Match(t *testing.T) {
	pt := NewPatternTable(compiledPatterns(t,
		types.Pattern{Index: 7, Regex: `net`},
		types.Pattern{Index: 0, Regex: `ERROR`},
		types.Pattern{Index: 3, Regex: `\d+`},
	))

	tests := []struct {
		name string
		text string
		want []int
	}{
		{
			name: "no match",
			text: "INFO ok",
			want: nil,
		},
		{
			name: "single match",
			text: "ERROR disk full",
			want: []int{0},
		},
		{
			name: "ascending index order regardless of declaration order",
			text: "ERROR net down after 3 retries",
			want: []int{0, 3, 7},
		},
		{
			name: "substring anywhere",
			text: "subnet mask",
			want: []int{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pt.Match(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPatternTable_LastWriteWins(t *testing.T) {
	pt := NewPatternTable(compiledPatterns(t,
		types.Pattern{Index: 1, Regex: `first`},
		types.Pattern{Index: 1, Regex: `second`},
	))

	if pt.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", pt.Len())
	}
	if got := pt.Expr(1); got != "second" {
		t.Errorf("Expr(1) = %q, want second", got)
	}
	if got := pt.Match("first"); len(got) != 0 {
		t.Errorf("replaced pattern still matches: %v", got)
	}
}

func TestPatternTable_SkipsUncompiled(t *testing.T) {
	pt := NewPatternTable([]types.Pattern{{Index: 2, Regex: "never compiled"}})

	if pt.Len() != 0 {
		t.Errorf("Len() = %d, want 0", pt.Len())
	}
	if got := pt.Expr(2); got != "" {
		t.Errorf("Expr(2) = %q, want empty", got)
	}
}

func TestPatternTable_Indexes(t *testing.T) {
	pt := NewPatternTable(nil)
	pt.Set(10, regexp.MustCompile("a"))
	pt.Set(2, regexp.MustCompile("b"))
	pt.Set(5, regexp.MustCompile("c"))

	got := pt.Indexes()
	if !reflect.DeepEqual(got, []int{2, 5, 10}) {
		t.Errorf("Indexes() = %v, want [2 5 10]", got)
	}

	// The returned slice is a copy
	got[0] = 99
	if pt.Indexes()[0] != 2 {
		t.Error("Indexes() exposed internal state")
	}
}
