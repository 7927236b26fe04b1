package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/linewatch/pkg/types"
)

// Args holds the indexed command line flags. Everything else is left in Rest
// for the global flag set.
type Args struct {
	Patterns []types.Pattern
	Bindings []types.Binding
	Colors   map[int]string
	Rest     []string
}

// indexedFlag describes one family of --<name><index> flags
type indexedFlag struct {
	name     string
	alias    string
	kind     types.Kind
	handler  bool
	optional bool // value may be omitted; only --name<N>=value sets one
}

const (
	flagRegex = "regex"
	flagColor = "color"
)

var indexedFlags = []indexedFlag{
	{name: flagRegex, alias: "r"},
	{name: flagColor},
	{name: "log", alias: "l", kind: types.KindLog, handler: true},
	{name: "exec", alias: "x", kind: types.KindExec, handler: true},
	{name: "pexec", alias: "X", kind: types.KindPexec, handler: true},
	{name: "screen", alias: "s", kind: types.KindScreen, handler: true, optional: true},
	{name: "email", alias: "m", kind: types.KindEmail, handler: true},
	{name: "cowsay", alias: "c", kind: types.KindCowsay, handler: true, optional: true},
}

var indexedFlagRe = regexp.MustCompile(`(?s)^(--?)([A-Za-z]+)(\d+)(=(.*))?$`)

// lookupIndexed resolves the flag family for a name given with one or two dashes
func lookupIndexed(dashes, name string) (indexedFlag, bool) {
	for _, f := range indexedFlags {
		if f.name == name {
			return f, true
		}
		if dashes == "-" && f.alias != "" && f.alias == name {
			return f, true
		}
	}
	return indexedFlag{}, false
}

// ParseArgs separates indexed pattern and handler flags from the rest of the
// command line. Values are taken from "=value" or, for flags that require one,
// from the following argument.
func ParseArgs(argv []string) (*Args, error) {
	args := &Args{Colors: map[int]string{}}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if arg == "--" {
			args.Rest = append(args.Rest, argv[i:]...)
			break
		}

		m := indexedFlagRe.FindStringSubmatch(arg)
		if m == nil {
			args.Rest = append(args.Rest, arg)
			continue
		}

		flag, ok := lookupIndexed(m[1], m[2])
		if !ok {
			args.Rest = append(args.Rest, arg)
			continue
		}

		index, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("%w: bad index in %q: %v", ErrInvalid, arg, err)
		}

		value, hasValue := m[5], m[4] != ""
		if !hasValue && !flag.optional {
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "-") {
				return nil, fmt.Errorf("%w: flag %q needs a value", ErrInvalid, arg)
			}
			value = argv[i+1]
			i++
		}

		switch {
		case flag.handler:
			args.Bindings = append(args.Bindings, types.Binding{Kind: flag.kind, Index: index, Arg: value})
		case flag.name == flagRegex:
			args.Patterns = append(args.Patterns, types.Pattern{Index: index, Regex: value})
		case flag.name == flagColor:
			args.Colors[index] = value
		}
	}

	return args, nil
}

// Usage describes the indexed flags for help output.
func Usage() string {
	var b strings.Builder
	for _, f := range indexedFlags {
		long := "--" + f.name + "<N>"
		switch {
		case f.optional:
			long += "[=value]"
		default:
			long += "=value"
		}
		if f.alias != "" {
			fmt.Fprintf(&b, "  -%s<N>, %s\n", f.alias, long)
		} else {
			fmt.Fprintf(&b, "      %s\n", long)
		}
	}
	return b.String()
}
