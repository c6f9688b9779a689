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

// Package corr models the correlation metadata that an earlier
// compiler pass computes: the declared correlation sets and which set
// each input operation is correlated by.
package corr

import (
	"sort"

	"github.com/Comcast/corrcheck/ast"
)

// Variable is a named component of a correlation Set.
type Variable struct {
	Name string

	// Path is the variable's location relative to the
	// correlation root.
	Path *ast.Path
}

// Set is a correlation set: an ordered collection of Variables that
// together identify a session.
type Set struct {
	Name      string
	Context   ast.Context
	Variables []*Variable
}

// Paths returns the correlation path of each variable, in order.
// These are the paths an input operation provides (when it starts a
// session) or needs (otherwise).
func (s *Set) Paths() []*ast.Path {
	acc := make([]*ast.Path, 0, len(s.Variables))
	for _, v := range s.Variables {
		acc = append(acc, ast.NewCorrelationPath(s.Context, v.Path))
	}
	return acc
}

// Info is the whole correlation table for one program.
type Info struct {
	// Sets are the declared correlation sets in declaration
	// order.
	Sets []*Set

	// Operations maps an operation name to the name of the Set
	// that correlates it.  An operation might have no set.
	Operations map[string]string
}

// NewInfo makes an empty Info.
func NewInfo() *Info {
	return &Info{
		Operations: make(map[string]string),
	}
}

// Set finds a set by name.
func (i *Info) Set(name string) *Set {
	if i == nil {
		return nil
	}
	for _, s := range i.Sets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SetFor returns the set correlating the given operation, if any.
func (i *Info) SetFor(operation string) *Set {
	if i == nil {
		return nil
	}
	name, have := i.Operations[operation]
	if !have || name == "" {
		return nil
	}
	return i.Set(name)
}

// Validate checks that set names are unique, that every set has at
// least one variable, and that every operation refers to a declared
// set.
func (i *Info) Validate() error {
	seen := make(map[string]bool, len(i.Sets))
	for _, s := range i.Sets {
		if seen[s.Name] {
			return &DuplicateSet{Name: s.Name}
		}
		seen[s.Name] = true
		if len(s.Variables) == 0 {
			return &EmptySet{Name: s.Name}
		}
	}
	ops := make([]string, 0, len(i.Operations))
	for op := range i.Operations {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		name := i.Operations[op]
		if name == "" {
			continue
		}
		if !seen[name] {
			return &UnknownSet{Operation: op, Name: name}
		}
	}
	return nil
}
