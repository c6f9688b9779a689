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

// Entry is a member of a PathSet.  Fresh is only meaningful for
// provided correlation paths.
type Entry struct {
	Path  *ast.Path
	Fresh bool
}

// PathSet is a set of paths keyed by their content.  Iteration
// order is insertion order, which keeps diagnostics deterministic.
type PathSet struct {
	keys    []string
	entries map[string]*Entry
}

// NewPathSet makes an empty PathSet.
func NewPathSet() *PathSet {
	return &PathSet{
		entries: make(map[string]*Entry),
	}
}

// Add adds the path.  If the path is already present, the fresh
// flags are combined with OR and the original Path (and its
// Context) is kept.
func (s *PathSet) Add(p *ast.Path, fresh bool) {
	k := p.Key()
	if e, have := s.entries[k]; have {
		e.Fresh = e.Fresh || fresh
		return
	}
	s.keys = append(s.keys, k)
	s.entries[k] = &Entry{Path: p, Fresh: fresh}
}

// Remove removes the path if present.
func (s *PathSet) Remove(p *ast.Path) {
	k := p.Key()
	if _, have := s.entries[k]; !have {
		return
	}
	delete(s.entries, k)
	for i, key := range s.keys {
		if key == k {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Contains reports whether the path is in the set.
func (s *PathSet) Contains(p *ast.Path) bool {
	_, have := s.entries[p.Key()]
	return have
}

// Get returns the entry for the path, if any.
func (s *PathSet) Get(p *ast.Path) (*Entry, bool) {
	e, have := s.entries[p.Key()]
	return e, have
}

// Len is the size of the set.
func (s *PathSet) Len() int {
	return len(s.keys)
}

// Entries returns the entries in insertion order.
func (s *PathSet) Entries() []*Entry {
	acc := make([]*Entry, 0, len(s.keys))
	for _, k := range s.keys {
		acc = append(acc, s.entries[k])
	}
	return acc
}

// Paths returns the paths in insertion order.
func (s *PathSet) Paths() []*ast.Path {
	acc := make([]*ast.Path, 0, len(s.keys))
	for _, k := range s.keys {
		acc = append(acc, s.entries[k].Path)
	}
	return acc
}

// Strings renders the paths in insertion order.
func (s *PathSet) Strings() []string {
	acc := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		acc = append(acc, s.entries[k].Path.String())
	}
	return acc
}

// Copy makes a copy that shares no mutable state with s.
func (s *PathSet) Copy() *PathSet {
	c := &PathSet{
		keys:    append([]string(nil), s.keys...),
		entries: make(map[string]*Entry, len(s.entries)),
	}
	for k, e := range s.entries {
		ce := *e
		c.entries[k] = &ce
	}
	return c
}

// TypingResult is the dataflow fact for a program fragment.
//
// ProvidedVar and ProvidedCorr hold the locations that are certainly
// initialized when the fragment completes.  NeededVar and NeededCorr
// hold the locations the fragment uses without first initializing
// them.  InvalidatedVar holds the locations whose initialization can
// no longer be tracked (because of aliasing or undefinition).
type TypingResult struct {
	ProvidedVar    *PathSet
	ProvidedCorr   *PathSet
	NeededVar      *PathSet
	NeededCorr     *PathSet
	InvalidatedVar *PathSet
}

// NewTypingResult makes an empty TypingResult.
func NewTypingResult() *TypingResult {
	return &TypingResult{
		ProvidedVar:    NewPathSet(),
		ProvidedCorr:   NewPathSet(),
		NeededVar:      NewPathSet(),
		NeededCorr:     NewPathSet(),
		InvalidatedVar: NewPathSet(),
	}
}

// Copy makes a deep copy.
func (r *TypingResult) Copy() *TypingResult {
	return &TypingResult{
		ProvidedVar:    r.ProvidedVar.Copy(),
		ProvidedCorr:   r.ProvidedCorr.Copy(),
		NeededVar:      r.NeededVar.Copy(),
		NeededCorr:     r.NeededCorr.Copy(),
		InvalidatedVar: r.InvalidatedVar.Copy(),
	}
}

// Provide records that the path is initialized.  The fresh flag is
// ignored for ordinary paths.
func (r *TypingResult) Provide(p *ast.Path, fresh bool) {
	if p.IsCorrelation() {
		r.ProvidedCorr.Add(p, fresh)
	} else {
		r.ProvidedVar.Add(p, false)
	}
}

// Provides reports whether the path is provided.
func (r *TypingResult) Provides(p *ast.Path) bool {
	if p.IsCorrelation() {
		return r.ProvidedCorr.Contains(p)
	}
	return r.ProvidedVar.Contains(p)
}

// Need records that the path must be initialized by the context.
func (r *TypingResult) Need(p *ast.Path) {
	if p.IsCorrelation() {
		r.NeededCorr.Add(p, false)
	} else {
		r.NeededVar.Add(p, false)
	}
}

// Needs reports whether the path is needed.
func (r *TypingResult) Needs(p *ast.Path) bool {
	if p.IsCorrelation() {
		return r.NeededCorr.Contains(p)
	}
	return r.NeededVar.Contains(p)
}

// Invalidate records that the path's initialization can no longer
// be proven.  Invalidation is stronger than absence: it removes the
// path from ProvidedVar.
func (r *TypingResult) Invalidate(p *ast.Path) {
	r.InvalidatedVar.Add(p, false)
	r.ProvidedVar.Remove(p)
}

// Available reports whether the correlation path is provided and
// hasn't been invalidated since.  An alias or deep copy of a
// correlation path leaves it in ProvidedCorr (so a second
// initialization is still a duplicate) but it can no longer satisfy
// a need or count as fresh.
func (r *TypingResult) Available(p *ast.Path) bool {
	return r.ProvidedCorr.Contains(p) && !r.InvalidatedVar.Contains(p)
}

// NeedAll adds all of other's needs.
func (r *TypingResult) NeedAll(other *TypingResult) {
	for _, p := range other.NeededCorr.Paths() {
		r.Need(p)
	}
	for _, p := range other.NeededVar.Paths() {
		r.Need(p)
	}
}

// ProvideAll adds all of other's provides, keeping freshness.
func (r *TypingResult) ProvideAll(other *TypingResult) {
	for _, e := range other.ProvidedCorr.Entries() {
		r.Provide(e.Path, e.Fresh)
	}
	for _, p := range other.ProvidedVar.Paths() {
		r.Provide(p, false)
	}
}

// InvalidateAll adds all of other's invalidations.
func (r *TypingResult) InvalidateAll(other *TypingResult) {
	for _, p := range other.InvalidatedVar.Paths() {
		r.Invalidate(p)
	}
}

// IsEmpty reports whether the result carries no facts at all.
func (r *TypingResult) IsEmpty() bool {
	return r.ProvidedVar.Len() == 0 && r.ProvidedCorr.Len() == 0 &&
		r.NeededVar.Len() == 0 && r.NeededCorr.Len() == 0 &&
		r.InvalidatedVar.Len() == 0
}
