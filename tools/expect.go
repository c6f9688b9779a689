package tools

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/loader"
	"github.com/Comcast/corrcheck/util"

	"github.com/jsccast/yaml"
)

// Expectation is a document and the verdict it should get.
type Expectation struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Document is a reference (see loader.Fetcher) to the
	// document to check.  A relative filename is relative to the
	// directory of the file that contains the expectation.
	Document string `json:"document,omitempty" yaml:"document,omitempty"`

	// Inline is a document given directly.  Used if Document is
	// empty.
	Inline map[string]interface{} `json:"inline,omitempty" yaml:"inline,omitempty"`

	// Valid is the expected verdict.
	Valid bool `json:"valid" yaml:"valid"`

	// Kinds are the expected diagnostic kinds in order.  If nil,
	// kinds aren't checked.
	Kinds []string `json:"kinds,omitempty" yaml:"kinds,omitempty"`
}

// ExpectationFailure reports a verdict that didn't match.
type ExpectationFailure struct {
	Doc    string
	Want   *Expectation
	Report *core.Report
}

func (e *ExpectationFailure) Error() string {
	kinds := make([]string, 0, len(e.Report.Diagnostics))
	for _, k := range e.Report.Kinds() {
		kinds = append(kinds, string(k))
	}
	return fmt.Sprintf("%s: wanted valid=%v kinds=%v; got valid=%v kinds=%v",
		e.Doc, e.Want.Valid, e.Want.Kinds, e.Report.Valid, kinds)
}

// ReadExpectations parses a YAML list of Expectations.
func ReadExpectations(bs []byte) ([]*Expectation, error) {
	var xs []*Expectation
	if err := yaml.Unmarshal(bs, &xs); err != nil {
		return nil, err
	}
	return xs, nil
}

func (e *Expectation) document(ctx context.Context, f *loader.Fetcher, dir string) (*loader.Document, error) {
	if e.Document == "" {
		if e.Inline == nil {
			return nil, loader.ErrEmptySource
		}
		return loader.DecodeMap("inline", e.Inline)
	}
	if f == nil {
		var err error
		if f, err = loader.NewFetcher(); err != nil {
			return nil, err
		}
	}
	ref := e.Document
	if !strings.Contains(ref, "://") && !filepath.IsAbs(ref) {
		ref = filepath.Join(dir, ref)
	}
	return f.Load(ctx, ref)
}

// Run checks the document and compares the verdict.  The Fetcher
// can be nil.
func (e *Expectation) Run(ctx context.Context, f *loader.Fetcher, dir string) (*core.Report, error) {
	doc, err := e.document(ctx, f, dir)
	if err != nil {
		return nil, err
	}
	r := doc.Check()

	fail := &ExpectationFailure{
		Doc:    e.Doc,
		Want:   e,
		Report: r,
	}
	if r.Valid != e.Valid {
		return r, fail
	}
	if e.Kinds != nil {
		got := make([]string, 0, len(r.Diagnostics))
		for _, k := range r.Kinds() {
			got = append(got, string(k))
		}
		if !reflect.DeepEqual(got, e.Kinds) {
			return r, fail
		}
	}
	return r, nil
}

// RunExpectations reads the expectations in the file and runs each.
// The result has one error (or nil) per expectation.
func RunExpectations(ctx context.Context, filename string) ([]error, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	xs, err := ReadExpectations(bs)
	if err != nil {
		return nil, err
	}
	f, err := loader.NewFetcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(filename)
	errs := make([]error, len(xs))
	for i, x := range xs {
		if _, errs[i] = x.Run(ctx, f, dir); errs[i] != nil {
			util.Logf("expectation %d (%s): %v", i, x.Doc, errs[i])
		}
	}
	return errs, nil
}
