package core

import (
	"reflect"
	"testing"

	"github.com/Comcast/corrcheck/ast"
)

func path(s string) *ast.Path {
	return ast.MustParsePath(s)
}

func TestPathSetOrder(t *testing.T) {
	s := NewPathSet()
	for _, p := range []string{"c", "a", "b", "a"} {
		s.Add(path(p), false)
	}
	if got, want := s.Strings(), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("%v != %v", got, want)
	}

	s.Remove(path("a"))
	s.Remove(path("nope"))
	if got, want := s.Strings(), []string{"c", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("%v != %v", got, want)
	}
}

func TestPathSetFreshOr(t *testing.T) {
	s := NewPathSet()
	s.Add(path("csets.sid"), false)
	s.Add(path("csets.sid"), true)
	s.Add(path("csets.sid"), false)
	e, have := s.Get(path("csets.sid[0]"))
	if !have {
		t.Fatal("lost")
	}
	if !e.Fresh {
		t.Fatal("not fresh")
	}
}

func TestPathSetCopy(t *testing.T) {
	s := NewPathSet()
	s.Add(path("csets.sid"), false)
	c := s.Copy()
	c.Add(path("csets.sid"), true)
	c.Add(path("x"), false)

	if s.Len() != 1 {
		t.Fatal(s.Len())
	}
	if e, _ := s.Get(path("csets.sid")); e.Fresh {
		t.Fatal("copy shared an entry")
	}
}

func TestTypingResultRouting(t *testing.T) {
	r := NewTypingResult()
	r.Provide(path("csets.sid"), true)
	r.Provide(path("x"), true)
	r.Need(path("csets.user"))
	r.Need(path("y"))

	if r.ProvidedCorr.Len() != 1 || r.ProvidedVar.Len() != 1 {
		t.Fatal("provide routing")
	}
	if e, _ := r.ProvidedVar.Get(path("x")); e.Fresh {
		t.Fatal("ordinary paths are never fresh")
	}
	if !r.Needs(path("csets.user")) || !r.Needs(path("y")) {
		t.Fatal("need routing")
	}
	if r.NeededVar.Contains(path("csets.user")) {
		t.Fatal("correlation need in NeededVar")
	}
}

func TestInvalidateRemovesProvide(t *testing.T) {
	r := NewTypingResult()
	r.Provide(path("x"), false)
	r.Invalidate(path("x"))
	if r.Provides(path("x")) {
		t.Fatal("still provided")
	}
	if !r.InvalidatedVar.Contains(path("x")) {
		t.Fatal("not invalidated")
	}
}

func TestIsEmpty(t *testing.T) {
	r := NewTypingResult()
	if !r.IsEmpty() {
		t.Fatal("new result isn't empty")
	}
	r.Invalidate(path("x"))
	if r.IsEmpty() {
		t.Fatal("invalidation didn't count")
	}
}
