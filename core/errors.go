package core

// These diagnostics are user errors, not internal errors.  The
// checker records them and keeps going.

import (
	"github.com/Comcast/corrcheck/ast"
)

// Kind is a stable identifier for a kind of diagnostic.
type Kind string

const (
	// DuplicateCorrelationInit occurs when the same correlation
	// path is provided twice in a sequence, a parallel block, or
	// a merge.
	DuplicateCorrelationInit Kind = "DuplicateCorrelationInit"

	// UsedBeforeInitialized occurs when a needed path is never
	// satisfied by the entry point's accumulated facts.
	UsedBeforeInitialized Kind = "UsedBeforeInitialized"

	// MissingCorrelationSet occurs when an input operation that
	// doesn't start a session has no correlation set.
	MissingCorrelationSet Kind = "MissingCorrelationSet"

	// CorrelationOnInput occurs when an input operation receives
	// directly into a correlation path.
	CorrelationOnInput Kind = "CorrelationOnInput"

	// MismatchedBranchInit occurs when choice or if branches
	// disagree on which correlation paths they provide.
	MismatchedBranchInit Kind = "MismatchedBranchInit"

	// LoopInitForbidden occurs when a loop body provides a
	// correlation path.
	LoopInitForbidden Kind = "LoopInitForbidden"

	// UndefinedDefinition occurs when a call names an unknown
	// definition.
	UndefinedDefinition Kind = "UndefinedDefinition"

	// MissingEntryPoint occurs when there's no "main".
	MissingEntryPoint Kind = "MissingEntryPoint"

	// InitMayNotSetCorrelation occurs when "init" provides a
	// correlation path.
	InitMayNotSetCorrelation Kind = "InitMayNotSetCorrelation"

	// NoFreshCorrelationValue occurs when a declared correlation
	// set has no fresh initializer reachable from the entry
	// point.
	NoFreshCorrelationValue Kind = "NoFreshCorrelationValue"

	// NonLiteralCorrelationAssign occurs when a correlation path
	// is assigned something other than a constant or a fresh
	// value.
	NonLiteralCorrelationAssign Kind = "NonLiteralCorrelationAssign"
)

// Kinds lists every Kind.
var Kinds = []Kind{
	DuplicateCorrelationInit,
	UsedBeforeInitialized,
	MissingCorrelationSet,
	CorrelationOnInput,
	MismatchedBranchInit,
	LoopInitForbidden,
	UndefinedDefinition,
	MissingEntryPoint,
	InitMayNotSetCorrelation,
	NoFreshCorrelationValue,
	NonLiteralCorrelationAssign,
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind    Kind        `json:"kind" yaml:"kind"`
	Context ast.Context `json:"context" yaml:"context"`

	// Path is the offending path, if any.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Message string `json:"message" yaml:"message"`
}

func (d *Diagnostic) Error() string {
	if loc := d.Context.String(); loc != "" {
		return loc + ": " + d.Message
	}
	return d.Message
}
