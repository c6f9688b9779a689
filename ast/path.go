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

package ast

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CorrelationRoot is the reserved system-level root under which all
// correlation variables live.
const CorrelationRoot = "csets"

// Context locates a node (or a path) in its source.
type Context struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
}

func (c Context) String() string {
	switch {
	case c.Source == "" && c.Line == 0:
		return ""
	case c.Line == 0:
		return c.Source
	default:
		return c.Source + ":" + strconv.Itoa(c.Line)
	}
}

// Step is one (name, index) element of a Path.
//
// A nil Index means index 0.
type Step struct {
	Name  string
	Index Expr
}

func (s Step) indexString() string {
	if s.Index == nil {
		return "0"
	}
	return s.Index.String()
}

func (s Step) static() bool {
	if s.Index == nil {
		return true
	}
	c, is := s.Index.(*Constant)
	if !is {
		return false
	}
	_, is = c.Value.(int64)
	return is
}

// Path is a storage location: an ordered sequence of Steps from a
// root.
//
// A Path is either ordinary or a correlation path.  The kind is
// decided when the Path is made and never changes.  Two Paths are
// equal when their Keys are equal; Context plays no part in
// equality.
type Path struct {
	Context Context

	steps       []Step
	correlation bool
	key         string
}

// NewPath makes a Path from the given steps.  A path whose first
// step is CorrelationRoot is a correlation path.
func NewPath(ctx Context, steps ...Step) *Path {
	p := &Path{
		Context: ctx,
		steps:   append([]Step(nil), steps...),
	}
	p.correlation = 0 < len(steps) && steps[0].Name == CorrelationRoot
	p.key = p.render(true)
	return p
}

// NewCorrelationPath makes the correlation path for a correlation
// variable whose own path (relative to the correlation root) is
// given.
func NewCorrelationPath(ctx Context, variable *Path) *Path {
	steps := make([]Step, 0, len(variable.steps)+1)
	steps = append(steps, Step{Name: CorrelationRoot})
	steps = append(steps, variable.steps...)
	return NewPath(ctx, steps...)
}

// Steps returns a copy of the path's steps.
func (p *Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Len is the number of steps.
func (p *Path) Len() int {
	return len(p.steps)
}

// IsCorrelation reports whether this path is rooted at
// CorrelationRoot.
func (p *Path) IsCorrelation() bool {
	return p.correlation
}

// IsStatic reports whether every index is a constant integer.
func (p *Path) IsStatic() bool {
	for _, s := range p.steps {
		if !s.static() {
			return false
		}
	}
	return true
}

// Key is the canonical rendering used for equality and hashing.
func (p *Path) Key() string {
	return p.key
}

// Equal compares paths by content.
func (p *Path) Equal(q *Path) bool {
	if p == nil || q == nil {
		return p == q
	}
	return p.key == q.key
}

// StartsWith reports whether the given path is a prefix of this one.
func (p *Path) StartsWith(prefix *Path) bool {
	if prefix == nil {
		return true
	}
	if len(prefix.steps) > len(p.steps) {
		return false
	}
	for i, s := range prefix.steps {
		t := p.steps[i]
		if s.Name != t.Name || s.indexString() != t.indexString() {
			return false
		}
	}
	return true
}

// WithContext returns a copy of the path located at ctx.
func (p *Path) WithContext(ctx Context) *Path {
	q := *p
	q.Context = ctx
	return &q
}

// String renders the path without implicit zero indexes.
func (p *Path) String() string {
	return p.render(false)
}

func (p *Path) render(full bool) string {
	var b strings.Builder
	for i, s := range p.steps {
		if 0 < i {
			b.WriteByte('.')
		}
		b.WriteString(s.Name)
		if idx := s.indexString(); full || idx != "0" {
			b.WriteString("[" + idx + "]")
		}
	}
	return b.String()
}

var ErrEmptyPath = errors.New("empty path")

// BadPath occurs when path text can't be parsed.
type BadPath struct {
	Text   string
	Reason string
}

func (e *BadPath) Error() string {
	return `bad path "` + e.Text + `": ` + e.Reason
}

// ParsePath parses the interchange notation for paths:
//
//	a.b[2].c[i]
//
// An index is either an integer or another path (a dynamic index).
func ParsePath(ctx Context, text string) (*Path, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPath
	}
	segs, err := splitSegments(text)
	if err != nil {
		return nil, &BadPath{Text: text, Reason: err.Error()}
	}
	steps := make([]Step, 0, len(segs))
	for _, seg := range segs {
		name, idx := seg, ""
		if open := strings.IndexByte(seg, '['); 0 <= open {
			if !strings.HasSuffix(seg, "]") {
				return nil, &BadPath{Text: text, Reason: "unterminated index in " + seg}
			}
			name, idx = seg[:open], seg[open+1:len(seg)-1]
		}
		if name == "" {
			return nil, &BadPath{Text: text, Reason: "empty step"}
		}
		step := Step{Name: name}
		if idx != "" {
			if n, err := strconv.ParseInt(idx, 10, 64); err == nil {
				if n != 0 {
					step.Index = &Constant{Context: ctx, Value: n}
				}
			} else {
				ip, err := ParsePath(ctx, idx)
				if err != nil {
					return nil, &BadPath{Text: text, Reason: fmt.Sprintf("index %q: %v", idx, err)}
				}
				step.Index = &Var{Context: ctx, Path: ip}
			}
		}
		steps = append(steps, step)
	}
	return NewPath(ctx, steps...), nil
}

// MustParsePath is ParsePath that panics.  For tests and literals.
func MustParsePath(text string) *Path {
	p, err := ParsePath(Context{}, text)
	if err != nil {
		panic(err)
	}
	return p
}

// splitSegments splits on dots that are not inside brackets.
func splitSegments(text string) ([]string, error) {
	var (
		acc   []string
		depth int
		start int
	)
	for i, c := range text {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced ]")
			}
		case '.':
			if depth == 0 {
				acc = append(acc, text[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced [")
	}
	return append(acc, text[start:]), nil
}
