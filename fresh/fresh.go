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

// Package fresh decides which outbound calls produce fresh
// (unguessable) values.
//
// Recognition is a fixed allow-list of (service, operation) pairs
// rather than any kind of taint analysis.  An AllowList can also carry
// an ECMAScript predicate for sites that need something more
// flexible.
package fresh

import (
	"github.com/Comcast/corrcheck/util"

	"github.com/dop251/goja"
)

// Recognizer decides whether a call to operation@service yields a
// fresh value.
type Recognizer interface {
	IsFresh(service, operation string) bool
}

// Source is an allow-list entry.  Either field can be a pattern
// variable: "?" matches anything, and "?x" matches anything but must
// bind to the same value everywhere it appears in the entry.
type Source struct {
	Service   string `json:"service" yaml:"service"`
	Operation string `json:"operation" yaml:"operation"`
}

func (s Source) String() string {
	return s.Operation + "@" + s.Service
}

// AllowList is the standard Recognizer.
type AllowList struct {
	Sources []Source `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Predicate is optional ECMAScript code that's consulted when
	// no Source matches.  The code is a function body that can
	// see "_.service" and "_.operation" and should return a
	// boolean.
	Predicate string `json:"predicate,omitempty" yaml:"predicate,omitempty"`

	program *goja.Program
}

// DefaultAllowList trusts only createSecureToken@SecurityUtils.
func DefaultAllowList() *AllowList {
	return &AllowList{
		Sources: []Source{
			{Service: "SecurityUtils", Operation: "createSecureToken"},
		},
	}
}

// Compile prepares the Predicate (if any).  Call it before sharing
// the AllowList.  IsFresh compiles lazily if necessary.
func (a *AllowList) Compile() error {
	if a.Predicate == "" || a.program != nil {
		return nil
	}
	p, err := compilePredicate(a.Predicate)
	if err != nil {
		return err
	}
	a.program = p
	return nil
}

// IsFresh implements Recognizer.
func (a *AllowList) IsFresh(service, operation string) bool {
	if a == nil {
		return false
	}
	for _, s := range a.Sources {
		if Matches(s, service, operation) {
			return true
		}
	}
	if a.Predicate == "" {
		return false
	}
	if err := a.Compile(); err != nil {
		util.Logf("fresh predicate compile error: %v", err)
		return false
	}
	is, err := runPredicate(a.program, service, operation)
	if err != nil {
		util.Logf("fresh predicate error for %s@%s: %v", operation, service, err)
		return false
	}
	return is
}

// Matches reports whether the entry matches the call site.
func Matches(s Source, service, operation string) bool {
	bs := make(map[string]string, 2)
	return match(s.Service, service, bs) && match(s.Operation, operation, bs)
}

func isVariable(s string) bool {
	return 0 < len(s) && s[0] == '?'
}

func match(pattern, fact string, bs map[string]string) bool {
	if !isVariable(pattern) {
		return pattern == fact
	}
	if pattern == "?" {
		return true
	}
	if bound, have := bs[pattern]; have {
		return bound == fact
	}
	bs[pattern] = fact
	return true
}
