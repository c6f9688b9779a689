package core

import (
	"testing"
)

func provides(ps ...string) *TypingResult {
	r := NewTypingResult()
	for _, p := range ps {
		r.Provide(path(p), false)
	}
	return r
}

func needs(ps ...string) *TypingResult {
	r := NewTypingResult()
	for _, p := range ps {
		r.Need(path(p))
	}
	return r
}

func TestMergeSequenceSatisfies(t *testing.T) {
	r, dups := MergeSequence(provides("csets.sid", "x"), needs("csets.sid", "x"))
	if 0 < len(dups) {
		t.Fatal(dups)
	}
	if r.NeededCorr.Len() != 0 || r.NeededVar.Len() != 0 {
		t.Fatalf("needs leaked: %v %v", r.NeededCorr.Strings(), r.NeededVar.Strings())
	}
	if !r.Provides(path("csets.sid")) || !r.Provides(path("x")) {
		t.Fatal("lost provides")
	}
}

func TestMergeSequenceOrder(t *testing.T) {
	// A need on the left isn't satisfied by a later provide.
	r, _ := MergeSequence(needs("csets.sid"), provides("csets.sid"))
	if !r.Needs(path("csets.sid")) {
		t.Fatal("need disappeared")
	}
}

func TestMergeSequenceDuplicate(t *testing.T) {
	r, dups := MergeSequence(provides("csets.sid"), provides("csets.sid", "csets.user"))
	if len(dups) != 1 {
		t.Fatalf("dups: %v", dups)
	}
	if dups[0].String() != "csets.sid" {
		t.Fatal(dups[0])
	}
	if r.ProvidedCorr.Len() != 2 {
		t.Fatal(r.ProvidedCorr.Strings())
	}

	// Ordinary variables can be set twice.
	if _, dups := MergeSequence(provides("x"), provides("x")); len(dups) != 0 {
		t.Fatal(dups)
	}
}

func TestMergeSequenceInvalidation(t *testing.T) {
	b := needs("x")
	b.Invalidate(path("x"))
	r, _ := MergeSequence(provides("x"), b)
	if r.Provides(path("x")) {
		t.Fatal("invalidated path still provided")
	}
	if !r.Needs(path("x")) {
		t.Fatal("need for an invalidated path was satisfied")
	}

	// Re-initialization after invalidation.
	a := NewTypingResult()
	a.Invalidate(path("y"))
	r, _ = MergeSequence(a, provides("y"))
	if !r.Provides(path("y")) || r.InvalidatedVar.Contains(path("y")) {
		t.Fatal("re-initialization didn't stick")
	}
}

func TestMergeSequenceInvalidatedCorrelation(t *testing.T) {
	a := NewTypingResult()
	a.Provide(path("csets.sid"), true)
	a.Invalidate(path("csets.sid"))
	if a.Available(path("csets.sid")) {
		t.Fatal("invalidated path is available")
	}

	r, _ := MergeSequence(a, needs("csets.sid"))
	if !r.Needs(path("csets.sid")) {
		t.Fatal("need satisfied by an invalidated path")
	}

	r = MergeHandler(a, needs("csets.sid"))
	if !r.Needs(path("csets.sid")) {
		t.Fatal("handler need satisfied by an invalidated path")
	}

	// Providing again makes it available.
	b := NewTypingResult()
	b.Invalidate(path("csets.sid"))
	r, dups := MergeSequence(b, provides("csets.sid"))
	if 0 < len(dups) || !r.Available(path("csets.sid")) {
		t.Fatal("re-initialization didn't stick")
	}
}

// A need that precedes its own fragment's invalidation is still
// propagated.
func TestMergeSequenceNeedBeforeInvalidation(t *testing.T) {
	b := needs("x")
	b.Invalidate(path("x"))
	r, _ := MergeSequence(provides("x"), b)
	if !r.Needs(path("x")) {
		t.Fatal("need was satisfied")
	}
}

func TestMergeParallelNeverSatisfies(t *testing.T) {
	for _, order := range []bool{true, false} {
		a, b := provides("csets.sid", "x"), needs("csets.sid", "x")
		if order {
			a, b = b, a
		}
		r, dups := MergeParallel(a, b)
		if 0 < len(dups) {
			t.Fatal(dups)
		}
		if !r.Needs(path("csets.sid")) || !r.Needs(path("x")) {
			t.Fatalf("order %v: needs satisfied by a parallel sibling", order)
		}
	}
}

func TestMergeParallelDuplicate(t *testing.T) {
	_, dups := MergeParallel(provides("csets.sid"), provides("csets.sid"))
	if len(dups) != 1 {
		t.Fatal(dups)
	}
}

func TestMergeParallelInvalidation(t *testing.T) {
	a := NewTypingResult()
	a.Invalidate(path("x"))
	r, _ := MergeParallel(a, provides("x"))
	if r.Provides(path("x")) {
		t.Fatal("provide survived a parallel invalidation")
	}
}

func TestMergeChoice(t *testing.T) {
	a := provides("csets.sid", "x", "y")
	a.Need(path("csets.user"))
	b := provides("csets.sid", "x")
	b.Need(path("z"))

	r, mismatched := MergeChoice(a, b)
	if 0 < len(mismatched) {
		t.Fatal(mismatched)
	}
	if !r.Provides(path("x")) || r.Provides(path("y")) {
		t.Fatalf("ordinary provides: %v", r.ProvidedVar.Strings())
	}
	if !r.Needs(path("csets.user")) || !r.Needs(path("z")) {
		t.Fatal("needs weren't unioned")
	}

	_, mismatched = MergeChoice(provides("csets.sid"), provides())
	if len(mismatched) != 1 {
		t.Fatal(mismatched)
	}
	_, mismatched = MergeChoice(provides(), provides("csets.sid"))
	if len(mismatched) != 1 {
		t.Fatal(mismatched)
	}
}

func TestMergeChoiceFreshness(t *testing.T) {
	fresh := NewTypingResult()
	fresh.Provide(path("csets.sid"), true)

	r, _ := MergeChoice(fresh, provides("csets.sid"))
	if e, _ := r.ProvidedCorr.Get(path("csets.sid")); e.Fresh {
		t.Fatal("fresh on only one side")
	}

	other := NewTypingResult()
	other.Provide(path("csets.sid"), true)
	r, _ = MergeChoice(fresh, other)
	if e, _ := r.ProvidedCorr.Get(path("csets.sid")); !e.Fresh {
		t.Fatal("fresh on both sides")
	}
}

func TestMergeHandler(t *testing.T) {
	op := provides("csets.sid")
	body := NewTypingResult()
	body.Provide(path("csets.sid"), true)
	body.Need(path("csets.sid"))
	body.Provide(path("x"), false)

	r := MergeHandler(op, body)
	if r.NeededCorr.Len() != 0 {
		t.Fatal("body need wasn't satisfied by the operation")
	}
	if e, _ := r.ProvidedCorr.Get(path("csets.sid")); !e.Fresh {
		t.Fatal("freshness wasn't upgraded")
	}
	if !r.Provides(path("x")) {
		t.Fatal("lost body provide")
	}
}

func TestMergeDoesNotModify(t *testing.T) {
	a, b := provides("csets.sid", "x"), provides("csets.sid", "csets.user")
	b.Need(path("y"))
	b.Invalidate(path("x"))

	MergeSequence(a, b)
	MergeParallel(a, b)
	MergeChoice(a, b)
	MergeHandler(a, b)

	if a.ProvidedCorr.Len() != 1 || a.ProvidedVar.Len() != 1 || a.NeededVar.Len() != 0 {
		t.Fatal("a was modified")
	}
	if b.ProvidedCorr.Len() != 2 || b.NeededVar.Len() != 1 {
		t.Fatal("b was modified")
	}
}
