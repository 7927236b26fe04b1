// Package types contains shared data structures used across the application.
package types

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies a handler implementation.
type Kind int

// The closed set of handler kinds. Declaration order here is not dispatch
// order; dispatch follows binding declaration order.
const (
	KindLog Kind = iota
	KindExec
	KindPexec
	KindScreen
	KindEmail
	KindCowsay
)

var kindNames = [...]string{
	KindLog:    "log",
	KindExec:   "exec",
	KindPexec:  "pexec",
	KindScreen: "screen",
	KindEmail:  "email",
	KindCowsay: "cowsay",
}

// Kinds returns every handler kind.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// String returns the flag name of the kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a kind from its name
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown handler kind %q", name)
}

// UnmarshalText lets kinds be written by name in config files.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText writes kinds by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a dispatch lifecycle event.
type Event int

const (
	EventOpen Event = iota
	EventPreSearch
	EventPostSearch
	EventClose
)

var eventNames = [...]string{
	EventOpen:       "open",
	EventPreSearch:  "pre_search",
	EventPostSearch: "post_search",
	EventClose:      "close",
}

// Events returns the lifecycle events in the order a run goes through them.
func Events() []Event {
	return []Event{EventOpen, EventPreSearch, EventPostSearch, EventClose}
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

// Pattern represents an indexed, configurable pattern
type Pattern struct {
	Index    int            `yaml:"index"`
	Regex    string         `yaml:"regex"`
	compiled *regexp.Regexp `yaml:"-"`
}

// CompiledRegex returns the compiled regular expression
func (p *Pattern) CompiledRegex() *regexp.Regexp {
	return p.compiled
}

// SetCompiledRegex sets the compiled regular expression
func (p *Pattern) SetCompiledRegex(re *regexp.Regexp) {
	p.compiled = re
}

// Binding attaches one configured handler to the pattern with the same index.
type Binding struct {
	Kind  Kind   `yaml:"kind"`
	Index int    `yaml:"index"`
	Arg   string `yaml:"arg"`
}

// Line is a single input line with its terminator stripped.
type Line struct {
	Text   string
	Number int
	// Offset is the byte offset just past the line, or 0 when the source
	// cannot seek.
	Offset int64
}
