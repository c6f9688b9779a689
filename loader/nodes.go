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

package loader

import (
	"fmt"

	"github.com/Comcast/corrcheck/ast"
)

// decoder turns generic maps into AST nodes.  The first error sticks
// in err; after that the decoder keeps going with placeholders so
// the code stays linear.
type decoder struct {
	source string
	err    error
}

func (d *decoder) errorf(m map[string]interface{}, format string, args ...interface{}) error {
	e := &DecodeError{
		Source: d.source,
		Reason: fmt.Sprintf(format, args...),
	}
	if m != nil {
		e.Line = d.line(m)
	}
	return e
}

func (d *decoder) fail(m map[string]interface{}, format string, args ...interface{}) {
	if d.err == nil {
		d.err = d.errorf(m, format, args...)
	}
}

func (d *decoder) line(m map[string]interface{}) int {
	switch vv := m["line"].(type) {
	case int:
		return vv
	case int64:
		return int(vv)
	case uint64:
		return int(vv)
	case float64:
		return int(vv)
	}
	return 0
}

func (d *decoder) context(m map[string]interface{}) ast.Context {
	return ast.Context{Source: d.source, Line: d.line(m)}
}

func (d *decoder) str(m map[string]interface{}, key string) string {
	x, have := m[key]
	if !have || x == nil {
		return ""
	}
	if s, is := x.(string); is {
		return s
	}
	return fmt.Sprintf("%v", x)
}

func (d *decoder) flag(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (d *decoder) path(m map[string]interface{}, key string) *ast.Path {
	text := d.str(m, key)
	if text == "" {
		return nil
	}
	p, err := ast.ParsePath(d.context(m), text)
	if err != nil {
		d.fail(m, "%s: %v", key, err)
		return nil
	}
	return p
}

// requiredPath is path for fields the checker dereferences.
func (d *decoder) requiredPath(m map[string]interface{}, key string) *ast.Path {
	p := d.path(m, key)
	if p == nil {
		d.fail(m, "%s %s needs a %s", d.str(m, "kind"), d.str(m, "name"), key)
		return ast.MustParsePath("_")
	}
	return p
}

func (d *decoder) program(x interface{}) (*ast.Program, error) {
	xs, is := x.([]interface{})
	if !is {
		return nil, &DecodeError{Source: d.source, Reason: "program isn't a list"}
	}
	p := &ast.Program{
		Context:  ast.Context{Source: d.source},
		Children: make([]ast.Node, 0, len(xs)),
	}
	for _, child := range xs {
		m, is := asMap(child)
		if !is {
			d.fail(nil, "program child %v isn't a map", child)
			continue
		}
		switch kind := d.str(m, "kind"); kind {
		case "define":
			name := d.str(m, "name")
			if name == "" {
				d.fail(m, "definition without a name")
			}
			p.Children = append(p.Children, &ast.Definition{
				Context: d.context(m),
				Name:    name,
				Body:    d.process(m["body"]),
			})
		case "decl":
			p.Children = append(p.Children, &ast.Declaration{
				Context: d.context(m),
				What:    ast.DeclKind(d.str(m, "what")),
				Name:    d.str(m, "name"),
			})
		default:
			d.fail(m, "unknown program child kind %q", kind)
		}
	}
	return p, d.err
}

func (d *decoder) processes(x interface{}) []ast.Process {
	xs, _ := x.([]interface{})
	acc := make([]ast.Process, 0, len(xs))
	for _, c := range xs {
		acc = append(acc, d.process(c))
	}
	return acc
}

// process decodes a process node.  A missing node is nil, and a list
// is a sequence.
func (d *decoder) process(x interface{}) ast.Process {
	if x == nil {
		return nil
	}
	if xs, is := x.([]interface{}); is {
		return &ast.Sequence{Children: d.processes(xs)}
	}
	m, is := asMap(x)
	if !is {
		d.fail(nil, "process %v isn't a map", x)
		return &ast.Nil{}
	}

	ctx := d.context(m)

	switch kind := d.str(m, "kind"); kind {
	case "seq":
		return &ast.Sequence{Context: ctx, Children: d.processes(m["children"])}
	case "par":
		return &ast.Parallel{Context: ctx, Children: d.processes(m["children"])}
	case "choice":
		n := &ast.Choice{Context: ctx}
		for _, b := range d.maps(m, "branches") {
			n.Branches = append(n.Branches, ast.ChoiceBranch{
				Guard: d.process(b["guard"]),
				Body:  d.process(b["body"]),
			})
		}
		return n
	case "if":
		n := &ast.If{Context: ctx, Else: d.process(m["else"])}
		for _, b := range d.maps(m, "branches") {
			n.Branches = append(n.Branches, ast.CondBranch{
				Cond: d.expr(b["cond"]),
				Body: d.process(b["body"]),
			})
		}
		return n
	case "while":
		return &ast.While{Context: ctx, Cond: d.expr(m["cond"]), Body: d.process(m["body"])}
	case "for":
		return &ast.For{
			Context: ctx,
			Init:    d.process(m["init"]),
			Cond:    d.expr(m["cond"]),
			Post:    d.process(m["post"]),
			Body:    d.process(m["body"]),
		}
	case "foreach":
		return &ast.ForEach{
			Context: ctx,
			Key:     d.path(m, "key"),
			Target:  d.path(m, "target"),
			Body:    d.process(m["body"]),
		}
	case "call":
		return &ast.Call{Context: ctx, Name: d.str(m, "name")}
	case "oneway":
		return &ast.OneWay{Context: ctx, Operation: d.str(m, "operation"), Input: d.path(m, "input")}
	case "reqres":
		return &ast.RequestResponse{
			Context:   ctx,
			Operation: d.str(m, "operation"),
			Input:     d.path(m, "input"),
			Output:    d.expr(m["output"]),
			Handler:   d.process(m["handler"]),
		}
	case "notify":
		return &ast.Notification{
			Context:   ctx,
			Operation: d.str(m, "operation"),
			Port:      d.str(m, "port"),
			Output:    d.expr(m["output"]),
		}
	case "solicit":
		return &ast.SolicitResponse{
			Context:   ctx,
			Operation: d.str(m, "operation"),
			Port:      d.str(m, "port"),
			Output:    d.expr(m["output"]),
			Input:     d.path(m, "input"),
		}
	case "assign":
		op := d.str(m, "op")
		if op == "" {
			op = "="
		}
		return &ast.Assign{
			Context: ctx,
			Target:  d.requiredPath(m, "target"),
			Op:      op,
			Value:   d.expr(m["value"]),
		}
	case "incdec":
		return d.incdec(ctx, m)
	case "scope":
		return &ast.Scope{Context: ctx, Name: d.str(m, "name"), Body: d.process(m["body"])}
	case "sync":
		return &ast.Synchronized{Context: ctx, ID: d.str(m, "id"), Body: d.process(m["body"])}
	case "pointer":
		return &ast.Pointer{Context: ctx, Left: d.requiredPath(m, "left"), Right: d.requiredPath(m, "right")}
	case "deepcopy":
		return &ast.DeepCopy{Context: ctx, Left: d.requiredPath(m, "left"), Right: d.requiredPath(m, "right")}
	case "undef":
		return &ast.Undef{Context: ctx, Target: d.requiredPath(m, "target")}
	case "install":
		n := &ast.Install{Context: ctx}
		for _, h := range d.maps(m, "handlers") {
			n.Handlers = append(n.Handlers, ast.Handler{
				Fault: d.str(h, "fault"),
				Body:  d.process(h["body"]),
			})
		}
		return n
	case "spawn":
		return &ast.Spawn{Context: ctx, Body: d.process(m["body"])}
	case "nil":
		return &ast.Nil{Context: ctx}
	case "exit":
		return &ast.Exit{Context: ctx}
	case "throw":
		return &ast.Throw{Context: ctx, Fault: d.str(m, "fault")}
	case "compensate":
		return &ast.Compensate{Context: ctx, Scope: d.str(m, "scope")}
	case "linkin":
		return &ast.LinkIn{Context: ctx, Link: d.str(m, "link")}
	case "linkout":
		return &ast.LinkOut{Context: ctx, Link: d.str(m, "link")}
	case "run":
		return &ast.Run{Context: ctx, Code: d.expr(m["code"])}
	case "currentHandler":
		return &ast.CurrentHandler{Context: ctx}
	default:
		d.fail(m, "unknown process kind %q", kind)
		return &ast.Nil{Context: ctx}
	}
}

func (d *decoder) maps(m map[string]interface{}, key string) []map[string]interface{} {
	xs, _ := m[key].([]interface{})
	acc := make([]map[string]interface{}, 0, len(xs))
	for _, x := range xs {
		xm, is := asMap(x)
		if !is {
			d.fail(m, "%s element %v isn't a map", key, x)
			continue
		}
		acc = append(acc, xm)
	}
	return acc
}

func (d *decoder) incdec(ctx ast.Context, m map[string]interface{}) *ast.IncDec {
	return &ast.IncDec{
		Context:   ctx,
		Path:      d.requiredPath(m, "path"),
		Pre:       d.flag(m, "pre"),
		Decrement: d.flag(m, "dec"),
	}
}

func (d *decoder) exprs(x interface{}) []ast.Expr {
	xs, _ := x.([]interface{})
	acc := make([]ast.Expr, 0, len(xs))
	for _, c := range xs {
		acc = append(acc, d.expr(c))
	}
	return acc
}

// expr decodes an expression.  A scalar is a constant.
func (d *decoder) expr(x interface{}) ast.Expr {
	switch vv := x.(type) {
	case nil:
		return nil
	case string, bool, float64:
		return &ast.Constant{Value: vv}
	case int:
		return &ast.Constant{Value: int64(vv)}
	case int64:
		return &ast.Constant{Value: vv}
	case uint64:
		return &ast.Constant{Value: int64(vv)}
	}

	m, is := asMap(x)
	if !is {
		d.fail(nil, "expression %v isn't a scalar or a map", x)
		return &ast.Constant{}
	}

	ctx := d.context(m)

	switch kind := d.str(m, "kind"); kind {
	case "const":
		c, _ := d.expr(m["value"]).(*ast.Constant)
		if c == nil {
			c = &ast.Constant{}
		}
		c.Context = ctx
		return c
	case "var":
		return &ast.Var{Context: ctx, Path: d.requiredPath(m, "path")}
	case "new":
		return &ast.Fresh{Context: ctx}
	case "binary":
		return &ast.Binary{Context: ctx, Op: d.str(m, "op"), Left: d.expr(m["left"]), Right: d.expr(m["right"])}
	case "incdec":
		return d.incdec(ctx, m)
	case "and":
		return &ast.And{Context: ctx, Children: d.exprs(m["children"])}
	case "or":
		return &ast.Or{Context: ctx, Children: d.exprs(m["children"])}
	case "not":
		return &ast.Not{Context: ctx, Expr: d.expr(m["expr"])}
	case "compare":
		return &ast.Compare{Context: ctx, Op: d.str(m, "op"), Left: d.expr(m["left"]), Right: d.expr(m["right"])}
	case "istype":
		return &ast.IsType{Context: ctx, Check: d.str(m, "check"), Path: d.requiredPath(m, "path")}
	case "cast":
		return &ast.Cast{Context: ctx, Type: d.str(m, "type"), Expr: d.expr(m["expr"])}
	case "size":
		return &ast.VectorSize{Context: ctx, Path: d.requiredPath(m, "path")}
	default:
		d.fail(m, "unknown expression kind %q", kind)
		return &ast.Constant{Context: ctx}
	}
}
