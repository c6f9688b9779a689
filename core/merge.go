/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"github.com/Comcast/corrcheck/ast"
)

// The merge functions never modify their arguments.  Each returns a
// new TypingResult and the correlation paths that conflict.  The
// caller decides what a conflict means.

// MergeSequence combines a fragment a with a fragment b that runs
// after it.
//
// Conflicts are correlation paths that both a and b provide.
func MergeSequence(a, b *TypingResult) (*TypingResult, []*ast.Path) {
	r := a.Copy()
	var dups []*ast.Path

	// Needs first, against what a provides.  A need for a path
	// that b itself invalidates can't be satisfied by a.  The
	// facts don't record whether b's need came before or after its
	// invalidation, so this over-approximates: a need that precedes
	// the invalidation is propagated too.
	for _, p := range b.NeededVar.Paths() {
		if !a.ProvidedVar.Contains(p) || b.InvalidatedVar.Contains(p) {
			r.Need(p)
		}
	}
	for _, p := range b.NeededCorr.Paths() {
		if !a.Available(p) {
			r.Need(p)
		}
	}

	r.InvalidateAll(b)

	for _, e := range b.ProvidedCorr.Entries() {
		if r.ProvidedCorr.Contains(e.Path) {
			dups = append(dups, e.Path)
		} else {
			r.ProvidedCorr.Add(e.Path, e.Fresh)
		}
		r.InvalidatedVar.Remove(e.Path)
	}

	// Re-initialization after invalidation is legal.
	for _, p := range b.ProvidedVar.Paths() {
		r.ProvidedVar.Add(p, false)
		r.InvalidatedVar.Remove(p)
	}

	return r, dups
}

// MergeParallel combines two fragments that run with no relative
// order.  Neither side's provides can satisfy the other's needs.
//
// Conflicts are correlation paths that both sides provide.
func MergeParallel(a, b *TypingResult) (*TypingResult, []*ast.Path) {
	r := a.Copy()
	var dups []*ast.Path

	r.NeedAll(b)
	r.InvalidateAll(b)

	for _, e := range b.ProvidedCorr.Entries() {
		if r.ProvidedCorr.Contains(e.Path) {
			dups = append(dups, e.Path)
			continue
		}
		r.ProvidedCorr.Add(e.Path, e.Fresh)
	}

	// A path the other branch invalidates might be invalidated
	// after it's provided.
	for _, p := range b.ProvidedVar.Paths() {
		if a.InvalidatedVar.Contains(p) {
			continue
		}
		r.ProvidedVar.Add(p, false)
	}

	return r, dups
}

// MergeChoice combines two mutually exclusive alternatives.
//
// Conflicts are correlation paths that only one side provides.  The
// merged result provides an ordinary path only if both sides do.  A
// correlation path provided by both sides is fresh only if it's
// fresh on both sides.
func MergeChoice(a, b *TypingResult) (*TypingResult, []*ast.Path) {
	r := NewTypingResult()
	var mismatched []*ast.Path

	r.NeedAll(a)
	r.NeedAll(b)

	for _, e := range a.ProvidedCorr.Entries() {
		if f, have := b.ProvidedCorr.Get(e.Path); have {
			r.ProvidedCorr.Add(e.Path, e.Fresh && f.Fresh)
		} else {
			mismatched = append(mismatched, e.Path)
			r.ProvidedCorr.Add(e.Path, e.Fresh)
		}
	}
	for _, e := range b.ProvidedCorr.Entries() {
		if !a.ProvidedCorr.Contains(e.Path) {
			mismatched = append(mismatched, e.Path)
			r.ProvidedCorr.Add(e.Path, e.Fresh)
		}
	}

	for _, p := range a.ProvidedVar.Paths() {
		if b.ProvidedVar.Contains(p) {
			r.ProvidedVar.Add(p, false)
		}
	}

	r.InvalidateAll(a)
	r.InvalidateAll(b)

	return r, mismatched
}

// MergeHandler combines a request-response operation's own facts
// with the facts of the handler body that runs while serving the
// request.  The body's needs can be satisfied by the operation.  The
// body may bind a correlation variable that the operation also
// binds, which upgrades its freshness rather than conflicting.
func MergeHandler(op, body *TypingResult) *TypingResult {
	r := op.Copy()

	for _, p := range body.NeededVar.Paths() {
		if !op.ProvidedVar.Contains(p) || body.InvalidatedVar.Contains(p) {
			r.Need(p)
		}
	}
	for _, p := range body.NeededCorr.Paths() {
		if !op.Available(p) {
			r.Need(p)
		}
	}

	r.InvalidateAll(body)
	for _, p := range body.ProvidedVar.Paths() {
		r.InvalidatedVar.Remove(p)
	}
	for _, p := range body.ProvidedCorr.Paths() {
		r.InvalidatedVar.Remove(p)
	}
	r.ProvideAll(body)

	return r
}
