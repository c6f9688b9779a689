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
	"fmt"
	"strconv"
	"strings"
)

// Expr is an expression or a condition.  None of them affect
// initialization facts by themselves; the checker only looks at the
// kind of expression on the right-hand side of an assignment.
type Expr interface {
	Node
	String() string
	expr()
}

// Constant is a literal: int64, float64, string, or bool.
type Constant struct {
	Context Context
	Value   interface{}
}

// Var reads a path.
type Var struct {
	Context Context
	Path    *Path
}

// Fresh is the "new" expression, which yields an unguessable token.
type Fresh struct {
	Context Context
}

// Binary is an arithmetic expression such as a sum or a product.
type Binary struct {
	Context     Context
	Op          string
	Left, Right Expr
}

// IncDec is a pre/post increment/decrement.  It's both an
// expression and a statement.
type IncDec struct {
	Context   Context
	Path      *Path
	Pre       bool
	Decrement bool
}

// And is a conjunction.
type And struct {
	Context  Context
	Children []Expr
}

// Or is a disjunction.
type Or struct {
	Context  Context
	Children []Expr
}

// Not is a negation.
type Not struct {
	Context Context
	Expr    Expr
}

// Compare is a comparison like "a < b".
type Compare struct {
	Context     Context
	Op          string
	Left, Right Expr
}

// IsType tests a path's defined-ness or type.
type IsType struct {
	Context Context
	Check   string
	Path    *Path
}

// Cast converts an expression to a basic type.
type Cast struct {
	Context Context
	Type    string
	Expr    Expr
}

// VectorSize is "#path".
type VectorSize struct {
	Context Context
	Path    *Path
}

func (n *Constant) Ctx() Context   { return n.Context }
func (n *Var) Ctx() Context        { return n.Context }
func (n *Fresh) Ctx() Context      { return n.Context }
func (n *Binary) Ctx() Context     { return n.Context }
func (n *IncDec) Ctx() Context     { return n.Context }
func (n *And) Ctx() Context        { return n.Context }
func (n *Or) Ctx() Context         { return n.Context }
func (n *Not) Ctx() Context        { return n.Context }
func (n *Compare) Ctx() Context    { return n.Context }
func (n *IsType) Ctx() Context     { return n.Context }
func (n *Cast) Ctx() Context       { return n.Context }
func (n *VectorSize) Ctx() Context { return n.Context }

func (*Constant) expr()   {}
func (*Var) expr()        {}
func (*Fresh) expr()      {}
func (*Binary) expr()     {}
func (*IncDec) expr()     {}
func (*And) expr()        {}
func (*Or) expr()         {}
func (*Not) expr()        {}
func (*Compare) expr()    {}
func (*IsType) expr()     {}
func (*Cast) expr()       {}
func (*VectorSize) expr() {}

func (n *Constant) String() string {
	switch vv := n.Value.(type) {
	case string:
		return strconv.Quote(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case float64:
		return strconv.FormatFloat(vv, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", vv)
	}
}

func (n *Var) String() string   { return n.Path.String() }
func (n *Fresh) String() string { return "new" }

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

func (n *IncDec) String() string {
	op := "++"
	if n.Decrement {
		op = "--"
	}
	if n.Pre {
		return op + n.Path.String()
	}
	return n.Path.String() + op
}

func (n *And) String() string { return join(n.Children, " && ") }
func (n *Or) String() string  { return join(n.Children, " || ") }
func (n *Not) String() string { return "!" + n.Expr.String() }

func (n *Compare) String() string {
	return n.Left.String() + " " + n.Op + " " + n.Right.String()
}

func (n *IsType) String() string     { return n.Check + "(" + n.Path.String() + ")" }
func (n *Cast) String() string       { return n.Type + "(" + n.Expr.String() + ")" }
func (n *VectorSize) String() string { return "#" + n.Path.String() }

func join(xs []Expr, sep string) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = x.String()
	}
	return "(" + strings.Join(ss, sep) + ")"
}

// IsLiteral reports whether the expression is a constant.
func IsLiteral(e Expr) bool {
	_, is := e.(*Constant)
	return is
}
