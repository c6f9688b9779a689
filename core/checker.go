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
	"fmt"

	"github.com/Comcast/corrcheck/ast"
	"github.com/Comcast/corrcheck/corr"
	"github.com/Comcast/corrcheck/fresh"
	"github.com/Comcast/corrcheck/util"
)

var (
	// DefaultEntry is the name of the entry-point definition.
	DefaultEntry = "main"

	// DefaultInit is the name of the definition that runs before
	// the entry point.
	DefaultInit = "init"
)

// Checker verifies that every session of a program can be
// identified by correlation.
//
// A Checker holds no state between runs, so Check is idempotent.
type Checker struct {
	Program     *ast.Program
	Mode        ast.Mode
	Correlation *corr.Info

	// Fresh recognizes calls that yield fresh values.  Defaults
	// to fresh.DefaultAllowList().
	Fresh fresh.Recognizer

	// Entry and Init default to DefaultEntry and DefaultInit.
	Entry string
	Init  string
}

// NewChecker makes a Checker with the default fresh-value sources.
func NewChecker(p *ast.Program, mode ast.Mode, info *corr.Info) *Checker {
	return &Checker{
		Program:     p,
		Mode:        mode,
		Correlation: info,
		Fresh:       fresh.DefaultAllowList(),
	}
}

// Check walks the program and returns the verdict with all
// diagnostics.
func (c *Checker) Check() *Report {
	p := &pass{
		Checker: c,
		entry:   c.Entry,
		init:    c.Init,
		defs:    make(map[string]*ast.Definition),
		table:   make(map[string]*TypingResult),
		active:  make(map[string]bool),
		report:  &Report{Valid: true},
	}
	if p.entry == "" {
		p.entry = DefaultEntry
	}
	if p.init == "" {
		p.init = DefaultInit
	}
	if p.Fresh == nil {
		p.Fresh = fresh.DefaultAllowList()
	}

	if c.Program != nil {
		for _, d := range c.Program.Definitions() {
			if _, have := p.defs[d.Name]; have {
				util.Logf("ignoring duplicate definition %s", d.Name)
				continue
			}
			p.defs[d.Name] = d
			p.order = append(p.order, d.Name)
		}
		for _, name := range p.order {
			p.definition(name)
		}
	}

	p.finalize()

	for _, name := range p.order {
		if r, have := p.table[name]; have {
			p.report.Definitions = append(p.report.Definitions, Summarize(name, r))
		}
	}

	return p.report
}

// pass is the state for one run: the definition table and the
// diagnostic log.
type pass struct {
	*Checker

	entry, init string

	defs   map[string]*ast.Definition
	order  []string
	table  map[string]*TypingResult
	active map[string]bool
	report *Report
}

func (p *pass) errorf(kind Kind, ctx ast.Context, path *ast.Path, format string, args ...interface{}) {
	d := &Diagnostic{
		Kind:    kind,
		Context: ctx,
		Message: fmt.Sprintf(format, args...),
	}
	if path != nil {
		d.Path = path.String()
	}
	util.Logf("%s", d.Error())
	p.report.Valid = false
	p.report.Diagnostics = append(p.report.Diagnostics, d)
}

// definition returns the memoized facts for the named definition,
// checking its body on first use.  A definition that's still being
// checked (recursion) contributes no facts.  Returns nil for an
// unknown name.
func (p *pass) definition(name string) *TypingResult {
	if r, have := p.table[name]; have {
		return r
	}
	d, have := p.defs[name]
	if !have {
		return nil
	}
	if p.active[name] {
		return NewTypingResult()
	}
	p.active[name] = true
	r, _ := p.check(d.Body, name == p.entry)
	p.active[name] = false
	p.table[name] = r
	return r
}

// check computes the facts for a process.  starter is true while the
// session-starting input operation hasn't been seen yet; the updated
// value is returned.
func (p *pass) check(n ast.Process, starter bool) (*TypingResult, bool) {
	switch vv := n.(type) {
	case nil:
		return NewTypingResult(), starter

	case *ast.Sequence:
		return p.sequence(vv.Children, starter)

	case *ast.Parallel:
		return p.parallel(vv.Children, starter)

	case *ast.Choice:
		return p.choice(vv, starter)

	case *ast.If:
		return p.conditional(vv, starter)

	case *ast.While:
		return p.loop(vv.Context, vv.Body, starter)

	case *ast.ForEach:
		return p.loop(vv.Context, vv.Body, starter)

	case *ast.For:
		first, starter := p.check(vv.Init, starter)
		body, starter := p.check(vv.Body, starter)
		post, starter := p.check(vv.Post, starter)
		iteration := p.seq(body, post)
		p.forbidLoopInit(vv.Context, iteration)
		return p.seq(first, iteration), starter

	case *ast.Call:
		r := p.definition(vv.Name)
		if r == nil {
			p.errorf(UndefinedDefinition, vv.Context, nil, "can not find definition %s", vv.Name)
			return NewTypingResult(), starter
		}
		return r.Copy(), starter

	case *ast.OneWay:
		return p.input(vv.Context, vv.Operation, vv.Input, starter), false

	case *ast.RequestResponse:
		op := p.input(vv.Context, vv.Operation, vv.Input, starter)
		body, _ := p.check(vv.Handler, false)
		return MergeHandler(op, body), false

	case *ast.SolicitResponse:
		r := NewTypingResult()
		if vv.Input != nil && vv.Input.IsCorrelation() {
			r.Provide(vv.Input, p.Fresh.IsFresh(vv.Port, vv.Operation))
		}
		return r, starter

	case *ast.Assign:
		return p.assign(vv), starter

	case *ast.IncDec:
		if vv.Path.IsCorrelation() {
			p.errorf(NonLiteralCorrelationAssign, vv.Context, vv.Path,
				"correlation variable %s can not be incremented or decremented", vv.Path)
		}
		return NewTypingResult(), starter

	case *ast.Scope:
		return p.check(vv.Body, starter)

	case *ast.Synchronized:
		return p.check(vv.Body, starter)

	case *ast.Install:
		// Handlers only run on faults, so their facts aren't
		// exported.  Their diagnostics are.
		for _, h := range vv.Handlers {
			p.check(h.Body, false)
		}
		return NewTypingResult(), starter

	case *ast.Pointer:
		r := NewTypingResult()
		r.Invalidate(vv.Right)
		r.Invalidate(vv.Left)
		return r, starter

	case *ast.DeepCopy:
		r := NewTypingResult()
		r.Invalidate(vv.Right)
		r.Invalidate(vv.Left)
		return r, starter

	case *ast.Undef:
		r := NewTypingResult()
		r.Invalidate(vv.Target)
		return r, starter

	case *ast.Notification, *ast.Nil, *ast.Exit, *ast.Throw, *ast.Compensate,
		*ast.LinkIn, *ast.LinkOut, *ast.Run, *ast.Spawn, *ast.CurrentHandler:
		return NewTypingResult(), starter

	default:
		util.Logf("unexpected process %T at %s", n, n.Ctx())
		return NewTypingResult(), starter
	}
}

// seq is MergeSequence with reporting.
func (p *pass) seq(a, b *TypingResult) *TypingResult {
	r, dups := MergeSequence(a, b)
	for _, path := range dups {
		p.duplicate(path)
	}
	return r
}

func (p *pass) duplicate(path *ast.Path) {
	p.errorf(DuplicateCorrelationInit, path.Context, path,
		"correlation variable %s can not be initialised more than once", path)
}

func (p *pass) sequence(children []ast.Process, starter bool) (*TypingResult, bool) {
	if len(children) == 0 {
		return NewTypingResult(), starter
	}
	acc, starter := p.check(children[0], starter)
	for _, child := range children[1:] {
		var r *TypingResult
		r, starter = p.check(child, starter)
		acc = p.seq(acc, r)
	}
	return acc, starter
}

func (p *pass) parallel(children []ast.Process, starter bool) (*TypingResult, bool) {
	if len(children) == 0 {
		return NewTypingResult(), starter
	}
	acc, starter := p.check(children[0], starter)
	for _, child := range children[1:] {
		var r *TypingResult
		r, starter = p.check(child, starter)
		var dups []*ast.Path
		acc, dups = MergeParallel(acc, r)
		for _, path := range dups {
			p.duplicate(path)
		}
	}
	return acc, starter
}

func (p *pass) choice(n *ast.Choice, starter bool) (*TypingResult, bool) {
	if len(n.Branches) == 0 {
		return NewTypingResult(), starter
	}
	var (
		acc      *TypingResult
		reported = make(map[string]bool)
	)
	for i, b := range n.Branches {
		guard, s := p.check(b.Guard, starter)
		body, _ := p.check(b.Body, s)
		r := p.seq(guard, body)
		if i == 0 {
			acc = r
			continue
		}
		var mismatched []*ast.Path
		acc, mismatched = MergeChoice(acc, r)
		// The session-start dispatch may bind a different set
		// in each branch.
		if starter {
			continue
		}
		for _, path := range mismatched {
			if reported[path.Key()] {
				continue
			}
			reported[path.Key()] = true
			p.errorf(MismatchedBranchInit, path.Context, path,
				"correlation variable %s must be initialised in every branch", path)
		}
	}
	return acc, false
}

func (p *pass) conditional(n *ast.If, starter bool) (*TypingResult, bool) {
	if len(n.Branches) == 0 {
		return p.check(n.Else, starter)
	}
	var (
		acc      *TypingResult
		after    = starter
		reported = make(map[string]bool)
	)
	merge := func(r *TypingResult) {
		if acc == nil {
			acc = r
			return
		}
		var mismatched []*ast.Path
		acc, mismatched = MergeChoice(acc, r)
		for _, path := range mismatched {
			if reported[path.Key()] {
				continue
			}
			reported[path.Key()] = true
			p.errorf(MismatchedBranchInit, path.Context, path,
				"correlation variable %s must be initialised in every if-then-else branch", path)
		}
	}
	for _, b := range n.Branches {
		r, s := p.check(b.Body, starter)
		if !s {
			after = false
		}
		merge(r)
	}
	// No else is an empty else.
	r, s := p.check(n.Else, starter)
	if !s {
		after = false
	}
	merge(r)
	return acc, after
}

func (p *pass) loop(ctx ast.Context, body ast.Process, starter bool) (*TypingResult, bool) {
	r, starter := p.check(body, starter)
	p.forbidLoopInit(ctx, r)
	return r, starter
}

func (p *pass) forbidLoopInit(ctx ast.Context, r *TypingResult) {
	if 0 < r.ProvidedCorr.Len() {
		p.errorf(LoopInitForbidden, ctx, nil,
			"initialising correlation variables in loops is forbidden (%v)", r.ProvidedCorr.Strings())
	}
}

// input handles the correlation side of a one-way or
// request-response operation.
func (p *pass) input(ctx ast.Context, operation string, input *ast.Path, starter bool) *TypingResult {
	r := NewTypingResult()

	if input != nil && input.IsCorrelation() {
		p.errorf(CorrelationOnInput, ctx, input,
			"input operation %s can not receive on correlation variable %s", operation, input)
	}

	if p.Mode == ast.Single {
		return r
	}

	set := p.Correlation.SetFor(operation)
	if !starter && (set == nil || len(set.Variables) == 0) {
		p.errorf(MissingCorrelationSet, ctx, nil, "no correlation set defined for operation %s", operation)
	}
	if set == nil {
		return r
	}

	// The values of a session starter's correlation variables
	// come from the inbound message, so they aren't fresh.
	for _, path := range set.Paths() {
		path = path.WithContext(ctx)
		if starter {
			r.Provide(path, false)
		} else {
			r.Need(path)
		}
	}

	return r
}

func (p *pass) assign(n *ast.Assign) *TypingResult {
	r := NewTypingResult()
	target := n.Target

	switch n.Op {
	case "", "=":
	default:
		if target.IsCorrelation() {
			p.errorf(NonLiteralCorrelationAssign, n.Context, target,
				"correlation variable %s can not be updated with %s", target, n.Op)
		}
		return r
	}

	if target.IsStatic() {
		switch vv := n.Value.(type) {
		case *ast.Constant:
			r.Provide(target, false)
			return r
		case *ast.Fresh:
			r.Provide(target, true)
			return r
		case *ast.IncDec:
			if vv.Path.Equal(target) {
				r.Provide(target, false)
				return r
			}
		}
	}

	if target.IsCorrelation() {
		p.errorf(NonLiteralCorrelationAssign, n.Context, target,
			"correlation variable %s must either be initialised with a constant or with a fresh value", target)
	}

	return r
}
