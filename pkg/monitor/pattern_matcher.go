package monitor

import (
	"regexp"
	"sort"

	"github.com/Veraticus/linewatch/pkg/types"
)

// PatternTable holds the compiled patterns keyed by index
type PatternTable struct {
	indexes []int
	regexes map[int]*regexp.Regexp
}

// NewPatternTable creates a pattern table. Patterns without a compiled
// regex are skipped; a later pattern replaces an earlier one with the same
// index.
func NewPatternTable(patterns []types.Pattern) *PatternTable {
	pt := &PatternTable{
		regexes: make(map[int]*regexp.Regexp),
	}
	for _, p := range patterns {
		if re := p.CompiledRegex(); re != nil {
			pt.Set(p.Index, re)
		}
	}
	return pt
}

// Set adds or replaces the pattern at index
func (pt *PatternTable) Set(index int, re *regexp.Regexp) {
	if _, ok := pt.regexes[index]; !ok {
		pt.indexes = append(pt.indexes, index)
		sort.Ints(pt.indexes)
	}
	pt.regexes[index] = re
}

// Match returns the indexes of every pattern found anywhere in text, in
// ascending index order
func (pt *PatternTable) Match(text string) []int {
	var matched []int
	for _, index := range pt.indexes {
		if pt.regexes[index].MatchString(text) {
			matched = append(matched, index)
		}
	}
	return matched
}

// Expr returns the source of the pattern at index
func (pt *PatternTable) Expr(index int) string {
	if re, ok := pt.regexes[index]; ok {
		return re.String()
	}
	return ""
}

// Indexes returns the pattern indexes in ascending order
func (pt *PatternTable) Indexes() []int {
	out := make([]int, len(pt.indexes))
	copy(out, pt.indexes)
	return out
}

// Len returns the number of patterns
func (pt *PatternTable) Len() int {
	return len(pt.indexes)
}
