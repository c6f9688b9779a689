package core

import (
	"fmt"
	"strings"
)

// Report is the outcome of a check.
type Report struct {
	// Valid is false if there's at least one Diagnostic.
	Valid bool `json:"valid" yaml:"valid"`

	// Diagnostics in the order they were found.
	Diagnostics []*Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Definitions summarizes the facts computed for each
	// definition in declaration order.
	Definitions []*DefinitionFacts `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

// DefinitionFacts is a printable summary of a definition's
// TypingResult.
type DefinitionFacts struct {
	Name           string   `json:"name" yaml:"name"`
	ProvidedVar    []string `json:"providedVar,omitempty" yaml:"providedVar,omitempty"`
	ProvidedCorr   []string `json:"providedCorr,omitempty" yaml:"providedCorr,omitempty"`
	FreshCorr      []string `json:"freshCorr,omitempty" yaml:"freshCorr,omitempty"`
	NeededVar      []string `json:"neededVar,omitempty" yaml:"neededVar,omitempty"`
	NeededCorr     []string `json:"neededCorr,omitempty" yaml:"neededCorr,omitempty"`
	InvalidatedVar []string `json:"invalidatedVar,omitempty" yaml:"invalidatedVar,omitempty"`
}

// Summarize makes a DefinitionFacts.
func Summarize(name string, r *TypingResult) *DefinitionFacts {
	f := &DefinitionFacts{
		Name:           name,
		ProvidedVar:    r.ProvidedVar.Strings(),
		ProvidedCorr:   r.ProvidedCorr.Strings(),
		NeededVar:      r.NeededVar.Strings(),
		NeededCorr:     r.NeededCorr.Strings(),
		InvalidatedVar: r.InvalidatedVar.Strings(),
	}
	for _, e := range r.ProvidedCorr.Entries() {
		if e.Fresh && !r.InvalidatedVar.Contains(e.Path) {
			f.FreshCorr = append(f.FreshCorr, e.Path.String())
		}
	}
	return f
}

// Definition finds the facts for the named definition.
func (r *Report) Definition(name string) *DefinitionFacts {
	for _, f := range r.Definitions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Kinds returns the kind of each diagnostic in order.
func (r *Report) Kinds() []Kind {
	acc := make([]Kind, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		acc[i] = d.Kind
	}
	return acc
}

// Count is the number of diagnostics of the given kind.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == k {
			n++
		}
	}
	return n
}

func (r *Report) String() string {
	if r.Valid {
		return "valid"
	}
	lines := make([]string, 0, len(r.Diagnostics)+1)
	lines = append(lines, fmt.Sprintf("invalid (%d problems)", len(r.Diagnostics)))
	for _, d := range r.Diagnostics {
		lines = append(lines, "  "+d.Error())
	}
	return strings.Join(lines, "\n")
}
