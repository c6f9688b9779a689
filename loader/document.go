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

// Package loader reads the interchange documents that carry a
// parsed program and its correlation metadata.
//
// A document is YAML (or JSON) that looks like
//
//	format: 1.0.0
//	source: login.ol
//	mode: concurrent
//	correlation:
//	  sets:
//	    - name: S
//	      vars: [sid]
//	  operations:
//	    login: S
//	program:
//	  - kind: define
//	    name: main
//	    body: ...
//
// Every node is a map with a "kind" and an optional "line".
package loader

import (
	"fmt"

	"github.com/Comcast/corrcheck/ast"
	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/corr"

	"github.com/Masterminds/semver/v3"
	"github.com/jsccast/yaml"
)

var (
	// FormatVersion is the version of the interchange format
	// that this package writes.
	FormatVersion = "1.0.0"

	// FormatConstraint says which versions this package can
	// read.
	FormatConstraint = "^1"
)

// Document is a decoded interchange document.
type Document struct {
	Format      string
	Source      string
	Mode        ast.Mode
	Correlation *corr.Info
	Program     *ast.Program
}

// Checker makes a core.Checker for the document.
func (d *Document) Checker() *core.Checker {
	return core.NewChecker(d.Program, d.Mode, d.Correlation)
}

// Check is shorthand for d.Checker().Check().
func (d *Document) Check() *core.Report {
	return d.Checker().Check()
}

// CheckFormat returns an UnsupportedFormat error if the given format
// version doesn't satisfy FormatConstraint.  The empty string is
// FormatVersion.
func CheckFormat(format string) error {
	if format == "" {
		format = FormatVersion
	}
	c, err := semver.NewConstraint(FormatConstraint)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(format)
	if err != nil {
		return &UnsupportedFormat{Format: format, Constraint: FormatConstraint}
	}
	if !c.Check(v) {
		return &UnsupportedFormat{Format: format, Constraint: FormatConstraint}
	}
	return nil
}

// Decode parses a YAML or JSON document.  The source name is used in
// node contexts unless the document says otherwise.
func Decode(source string, bs []byte) (*Document, error) {
	if len(bs) == 0 {
		return nil, ErrEmptySource
	}

	var x map[string]interface{}
	if err := yaml.Unmarshal(bs, &x); err != nil {
		return nil, &DecodeError{Source: source, Reason: err.Error()}
	}
	if x == nil {
		return nil, ErrEmptySource
	}

	return DecodeMap(source, x)
}

// DecodeMap is Decode for a document that's already been parsed.
func DecodeMap(source string, x map[string]interface{}) (*Document, error) {
	d := &decoder{source: source}

	doc := &Document{
		Format: d.str(x, "format"),
		Source: d.str(x, "source"),
	}
	if doc.Source != "" {
		d.source = doc.Source
	} else {
		doc.Source = source
	}

	if err := CheckFormat(doc.Format); err != nil {
		return nil, err
	}

	mode, ok := ast.ParseMode(d.str(x, "mode"))
	if !ok {
		return nil, d.errorf(x, "unknown mode %q", d.str(x, "mode"))
	}
	doc.Mode = mode

	info, err := d.correlation(x["correlation"])
	if err != nil {
		return nil, err
	}
	doc.Correlation = info

	raw, have := x["program"]
	if !have || raw == nil {
		return nil, ErrNoProgram
	}
	if doc.Program, err = d.program(raw); err != nil {
		return nil, err
	}

	if d.err != nil {
		return nil, d.err
	}

	return doc, nil
}

func (d *decoder) correlation(x interface{}) (*corr.Info, error) {
	info := corr.NewInfo()
	if x == nil {
		return info, nil
	}
	m, is := asMap(x)
	if !is {
		return nil, d.errorf(nil, "correlation isn't a map")
	}

	sets, _ := m["sets"].([]interface{})
	for _, s := range sets {
		sm, is := asMap(s)
		if !is {
			return nil, d.errorf(m, "correlation set isn't a map")
		}
		set := &corr.Set{
			Name:    d.str(sm, "name"),
			Context: d.context(sm),
		}
		vars, _ := sm["vars"].([]interface{})
		for _, v := range vars {
			cv, err := d.variable(set.Context, v)
			if err != nil {
				return nil, err
			}
			set.Variables = append(set.Variables, cv)
		}
		info.Sets = append(info.Sets, set)
	}

	if ops, have := m["operations"]; have && ops != nil {
		om, is := asMap(ops)
		if !is {
			return nil, d.errorf(m, "correlation operations isn't a map")
		}
		for op, name := range om {
			s, is := name.(string)
			if !is {
				return nil, d.errorf(m, "correlation set name for %s isn't a string", op)
			}
			info.Operations[op] = s
		}
	}

	if err := info.Validate(); err != nil {
		return nil, &DecodeError{Source: d.source, Reason: err.Error()}
	}

	return info, nil
}

// variable accepts "sid" or {name: sid, path: user.sid}.
func (d *decoder) variable(ctx ast.Context, x interface{}) (*corr.Variable, error) {
	var name, text string
	switch vv := x.(type) {
	case string:
		name, text = vv, vv
	default:
		m, is := asMap(x)
		if !is {
			return nil, d.errorf(nil, "correlation variable %v isn't a string or a map", x)
		}
		name, text = d.str(m, "name"), d.str(m, "path")
		if text == "" {
			text = name
		}
	}
	p, err := ast.ParsePath(ctx, text)
	if err != nil {
		return nil, &DecodeError{Source: d.source, Line: ctx.Line, Reason: err.Error()}
	}
	return &corr.Variable{Name: name, Path: p}, nil
}

func asMap(x interface{}) (map[string]interface{}, bool) {
	switch vv := x.(type) {
	case map[string]interface{}:
		return vv, true
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			m[fmt.Sprintf("%v", k)] = v
		}
		return m, true
	}
	return nil, false
}
