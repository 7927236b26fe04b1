package handler

import (
	"sort"

	"github.com/Veraticus/linewatch/pkg/types"
)

// Registry maps handler kinds to their per-index arguments and keeps, for
// every index, the kinds bound to it in declaration order.
type Registry struct {
	args    map[types.Kind]map[int]string
	byIndex map[int][]types.Kind
	kinds   []types.Kind
}

// NewRegistry creates a registry from bindings in declaration order
func NewRegistry(bindings []types.Binding) *Registry {
	r := &Registry{
		args:    make(map[types.Kind]map[int]string),
		byIndex: make(map[int][]types.Kind),
	}
	for _, b := range bindings {
		r.Add(b)
	}
	return r
}

// Add registers a binding. Declaring the same kind for the same index again
// replaces the argument and keeps the original position.
func (r *Registry) Add(b types.Binding) {
	perIndex, ok := r.args[b.Kind]
	if !ok {
		perIndex = make(map[int]string)
		r.args[b.Kind] = perIndex
		r.kinds = append(r.kinds, b.Kind)
	}
	if _, seen := perIndex[b.Index]; !seen {
		r.byIndex[b.Index] = append(r.byIndex[b.Index], b.Kind)
	}
	perIndex[b.Index] = b.Arg
}

// Arg returns the argument of the kind bound to index
func (r *Registry) Arg(kind types.Kind, index int) (string, bool) {
	arg, ok := r.args[kind][index]
	return arg, ok
}

// Args returns a copy of every index -> argument pair of kind
func (r *Registry) Args(kind types.Kind) map[int]string {
	out := make(map[int]string, len(r.args[kind]))
	for index, arg := range r.args[kind] {
		out[index] = arg
	}
	return out
}

// IndexesOf returns the indexes kind is bound to, ascending
func (r *Registry) IndexesOf(kind types.Kind) []int {
	out := make([]int, 0, len(r.args[kind]))
	for index := range r.args[kind] {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// KindsFor returns the kinds bound to index in declaration order.
// The returned slice must not be modified.
func (r *Registry) KindsFor(index int) []types.Kind {
	return r.byIndex[index]
}

// Kinds returns the distinct kinds in order of first declaration
func (r *Registry) Kinds() []types.Kind {
	out := make([]types.Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// Len returns the number of distinct (kind, index) bindings
func (r *Registry) Len() int {
	n := 0
	for _, perIndex := range r.args {
		n += len(perIndex)
	}
	return n
}
