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

// Node is any element of a program tree.
type Node interface {
	Ctx() Context
}

// Process is a statement.  The set of Processes is closed: only
// the types in this package implement it.
type Process interface {
	Node
	process()
}

// Mode is a program's execution mode.
type Mode int

const (
	// Concurrent runs many sessions at the same time; every
	// session must be identifiable by correlation.
	Concurrent Mode = iota

	// Sequential runs sessions one after another.  Sessions still
	// exist, so correlation still matters.
	Sequential

	// Single runs one process and no sessions.  Operation
	// correlation checks are skipped.
	Single
)

func (m Mode) String() string {
	switch m {
	case Concurrent:
		return "concurrent"
	case Sequential:
		return "sequential"
	case Single:
		return "single"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.  The empty string is
// Concurrent.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "concurrent":
		return Concurrent, true
	case "sequential":
		return Sequential, true
	case "single":
		return Single, true
	}
	return Concurrent, false
}

// Program is the root: definitions and declarations in declaration
// order.
type Program struct {
	Context  Context
	Children []Node
}

// Definitions returns the program's definitions in declaration
// order.
func (p *Program) Definitions() []*Definition {
	acc := make([]*Definition, 0, len(p.Children))
	for _, n := range p.Children {
		if d, is := n.(*Definition); is {
			acc = append(acc, d)
		}
	}
	return acc
}

// Definition is a named procedure.  "main" is the entry point and
// "init" runs before it.
type Definition struct {
	Context Context
	Name    string
	Body    Process
}

// DeclKind says what a Declaration declares.
type DeclKind string

const (
	DeclInterface      DeclKind = "interface"
	DeclType           DeclKind = "type"
	DeclInputPort      DeclKind = "inputPort"
	DeclOutputPort     DeclKind = "outputPort"
	DeclExecution      DeclKind = "execution"
	DeclCorrelationSet DeclKind = "cset"
	DeclOperation      DeclKind = "operation"
	DeclEmbedded       DeclKind = "embedded"
)

// Declaration is a program-level declaration with no effect on
// initialization facts.
type Declaration struct {
	Context Context
	What    DeclKind
	Name    string
}

// Sequence runs its children in order.
type Sequence struct {
	Context  Context
	Children []Process
}

// Parallel runs its children with no relative order.
type Parallel struct {
	Context  Context
	Children []Process
}

// ChoiceBranch is a guarding input operation and its continuation.
type ChoiceBranch struct {
	Guard Process
	Body  Process
}

// Choice is a non-deterministic (input-guarded) choice.
type Choice struct {
	Context  Context
	Branches []ChoiceBranch
}

// CondBranch is one "if" or "else if" arm.
type CondBranch struct {
	Cond Expr
	Body Process
}

// If is if / else-if / else.  Else may be nil.
type If struct {
	Context  Context
	Branches []CondBranch
	Else     Process
}

// While is a while loop.
type While struct {
	Context Context
	Cond    Expr
	Body    Process
}

// For is a C-style for loop.  Init runs once; Post runs after each
// iteration.
type For struct {
	Context Context
	Init    Process
	Cond    Expr
	Post    Process
	Body    Process
}

// ForEach iterates Key over the children of Target.
type ForEach struct {
	Context Context
	Key     *Path
	Target  *Path
	Body    Process
}

// Call invokes a definition by name.
type Call struct {
	Context Context
	Name    string
}

// OneWay receives a message.
type OneWay struct {
	Context   Context
	Operation string
	Input     *Path
}

// RequestResponse receives a request, runs Handler, and replies
// with Output.
type RequestResponse struct {
	Context   Context
	Operation string
	Input     *Path
	Output    Expr
	Handler   Process
}

// Notification sends a message through an output port.
type Notification struct {
	Context   Context
	Operation string
	Port      string
	Output    Expr
}

// SolicitResponse sends a request through an output port and binds
// the reply to Input.
type SolicitResponse struct {
	Context   Context
	Operation string
	Port      string
	Output    Expr
	Input     *Path
}

// Assign is "target op value" where Op is one of "=", "+=", "-=",
// "*=", "/=".
type Assign struct {
	Context Context
	Target  *Path
	Op      string
	Value   Expr
}

// Scope is a named fault-handling scope.
type Scope struct {
	Context Context
	Name    string
	Body    Process
}

// Synchronized is a critical section.
type Synchronized struct {
	Context Context
	ID      string
	Body    Process
}

// Pointer makes Left an alias of Right.
type Pointer struct {
	Context     Context
	Left, Right *Path
}

// DeepCopy copies the tree at Right into Left.
type DeepCopy struct {
	Context     Context
	Left, Right *Path
}

// Undef removes a path.
type Undef struct {
	Context Context
	Target  *Path
}

// Handler is an installed fault (or termination) handler.
type Handler struct {
	Fault string
	Body  Process
}

// Install installs handlers in the current scope.
type Install struct {
	Context  Context
	Handlers []Handler
}

// Spawn runs Body in parallel instances.
type Spawn struct {
	Context Context
	Body    Process
}

// Nil is the null process.
type Nil struct{ Context Context }

// Exit terminates the program.
type Exit struct{ Context Context }

// Throw raises a fault.
type Throw struct {
	Context Context
	Fault   string
}

// Compensate runs a scope's compensation handler.
type Compensate struct {
	Context Context
	Scope   string
}

// LinkIn waits on an internal link.
type LinkIn struct {
	Context Context
	Link    string
}

// LinkOut signals an internal link.
type LinkOut struct {
	Context Context
	Link    string
}

// Run runs dynamically supplied code.
type Run struct {
	Context Context
	Code    Expr
}

// CurrentHandler refers to the handler being replaced.
type CurrentHandler struct{ Context Context }

func (n *Program) Ctx() Context         { return n.Context }
func (n *Definition) Ctx() Context      { return n.Context }
func (n *Declaration) Ctx() Context     { return n.Context }
func (n *Sequence) Ctx() Context        { return n.Context }
func (n *Parallel) Ctx() Context        { return n.Context }
func (n *Choice) Ctx() Context          { return n.Context }
func (n *If) Ctx() Context              { return n.Context }
func (n *While) Ctx() Context           { return n.Context }
func (n *For) Ctx() Context             { return n.Context }
func (n *ForEach) Ctx() Context         { return n.Context }
func (n *Call) Ctx() Context            { return n.Context }
func (n *OneWay) Ctx() Context          { return n.Context }
func (n *RequestResponse) Ctx() Context { return n.Context }
func (n *Notification) Ctx() Context    { return n.Context }
func (n *SolicitResponse) Ctx() Context { return n.Context }
func (n *Assign) Ctx() Context          { return n.Context }
func (n *Scope) Ctx() Context           { return n.Context }
func (n *Synchronized) Ctx() Context    { return n.Context }
func (n *Pointer) Ctx() Context         { return n.Context }
func (n *DeepCopy) Ctx() Context        { return n.Context }
func (n *Undef) Ctx() Context           { return n.Context }
func (n *Install) Ctx() Context         { return n.Context }
func (n *Spawn) Ctx() Context           { return n.Context }
func (n *Nil) Ctx() Context             { return n.Context }
func (n *Exit) Ctx() Context            { return n.Context }
func (n *Throw) Ctx() Context           { return n.Context }
func (n *Compensate) Ctx() Context      { return n.Context }
func (n *LinkIn) Ctx() Context          { return n.Context }
func (n *LinkOut) Ctx() Context         { return n.Context }
func (n *Run) Ctx() Context             { return n.Context }
func (n *CurrentHandler) Ctx() Context  { return n.Context }

func (*Sequence) process()        {}
func (*Parallel) process()        {}
func (*Choice) process()          {}
func (*If) process()              {}
func (*While) process()           {}
func (*For) process()             {}
func (*ForEach) process()         {}
func (*Call) process()            {}
func (*OneWay) process()          {}
func (*RequestResponse) process() {}
func (*Notification) process()    {}
func (*SolicitResponse) process() {}
func (*Assign) process()          {}
func (*IncDec) process()          {}
func (*Scope) process()           {}
func (*Synchronized) process()    {}
func (*Pointer) process()         {}
func (*DeepCopy) process()        {}
func (*Undef) process()           {}
func (*Install) process()         {}
func (*Spawn) process()           {}
func (*Nil) process()             {}
func (*Exit) process()            {}
func (*Throw) process()           {}
func (*Compensate) process()      {}
func (*LinkIn) process()          {}
func (*LinkOut) process()         {}
func (*Run) process()             {}
func (*CurrentHandler) process()  {}
