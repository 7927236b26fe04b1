package handler

import (
	"reflect"
	"testing"

	"github.com/Veraticus/linewatch/pkg/types"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry([]types.Binding{
		{Kind: types.KindScreen, Index: 1},
		{Kind: types.KindLog, Index: 0, Arg: "a.log"},
		{Kind: types.KindEmail, Index: 1, Arg: "ops@example.com"},
		{Kind: types.KindLog, Index: 1, Arg: "b.log"},
		{Kind: types.KindScreen, Index: 1, Arg: "red"},
	})

	t.Run("declaration order per index", func(t *testing.T) {
		want := []types.Kind{types.KindScreen, types.KindEmail, types.KindLog}
		if got := r.KindsFor(1); !reflect.DeepEqual(got, want) {
			t.Errorf("KindsFor(1) = %v, want %v", got, want)
		}
		if got := r.KindsFor(9); len(got) != 0 {
			t.Errorf("KindsFor(9) = %v, want none", got)
		}
	})

	t.Run("redeclaration replaces argument", func(t *testing.T) {
		arg, ok := r.Arg(types.KindScreen, 1)
		if !ok || arg != "red" {
			t.Errorf("Arg(screen, 1) = %q, %v", arg, ok)
		}
		if r.Len() != 4 {
			t.Errorf("Len() = %d, want 4", r.Len())
		}
	})

	t.Run("kinds in first declaration order", func(t *testing.T) {
		want := []types.Kind{types.KindScreen, types.KindLog, types.KindEmail}
		if got := r.Kinds(); !reflect.DeepEqual(got, want) {
			t.Errorf("Kinds() = %v, want %v", got, want)
		}
	})

	t.Run("args and indexes", func(t *testing.T) {
		args := r.Args(types.KindLog)
		if !reflect.DeepEqual(args, map[int]string{0: "a.log", 1: "b.log"}) {
			t.Errorf("Args(log) = %v", args)
		}
		args[0] = "changed"
		if arg, _ := r.Arg(types.KindLog, 0); arg != "a.log" {
			t.Error("Args exposed internal map")
		}
		if got := r.IndexesOf(types.KindLog); !reflect.DeepEqual(got, []int{0, 1}) {
			t.Errorf("IndexesOf(log) = %v", got)
		}
	})
}
