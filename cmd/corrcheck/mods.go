package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/Comcast/corrcheck/ast"
	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/fresh"
	"github.com/Comcast/corrcheck/loader"
	"github.com/Comcast/corrcheck/tools"

	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"check":   &Checker{},
	"analyze": &Analyzer{},
	"graph":   &Grapher{},
	"mermaid": &Mermaider{},
	"html":    &Pager{},
}

var (
	// ErrInvalid is returned by "check" when the program has
	// problems.  The report has already been written.
	ErrInvalid = errors.New("program is invalid")

	UnknownMode = errors.New("unknown mode")
)

type Mod interface {
	F(ctx context.Context, doc *loader.Document, out io.Writer) error
	Doc() string
	Flags() *flag.FlagSet
}

type Checker struct {
	Mode        string
	Entry       string
	FreshConfig string
	JSON        bool
	Facts       bool
}

// ReadAllowList reads a YAML fresh.AllowList.
func ReadAllowList(filename string) (*fresh.AllowList, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var a fresh.AllowList
	if err = yaml.Unmarshal(bs, &a); err != nil {
		return nil, err
	}
	if err = a.Compile(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (m *Checker) Report(doc *loader.Document) (*core.Report, error) {
	c := doc.Checker()

	if m.Mode != "" {
		mode, ok := ast.ParseMode(m.Mode)
		if !ok {
			return nil, UnknownMode
		}
		c.Mode = mode
	}
	c.Entry = m.Entry

	if m.FreshConfig != "" {
		a, err := ReadAllowList(m.FreshConfig)
		if err != nil {
			return nil, err
		}
		c.Fresh = a
	}

	r := c.Check()
	if !m.Facts {
		r.Definitions = nil
	}
	return r, nil
}

func (m *Checker) F(ctx context.Context, doc *loader.Document, out io.Writer) error {
	r, err := m.Report(doc)
	if err != nil {
		return err
	}

	var bs []byte
	if m.JSON {
		bs, err = json.MarshalIndent(r, "", "  ")
		bs = append(bs, '\n')
	} else {
		bs, err = yaml.Marshal(r)
	}
	if err != nil {
		return err
	}
	if _, err = out.Write(bs); err != nil {
		return err
	}

	if !r.Valid {
		return ErrInvalid
	}
	return nil
}

func (m *Checker) Doc() string {
	return "Checks the program and writes the report."
}

func (m *Checker) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.StringVar(&m.Mode, "m", "", "execution mode override (concurrent, sequential, single)")
	fs.StringVar(&m.Entry, "e", core.DefaultEntry, "entry point")
	fs.StringVar(&m.FreshConfig, "f", "", "YAML file with fresh-value sources")
	fs.BoolVar(&m.JSON, "j", false, "write JSON instead of YAML")
	fs.BoolVar(&m.Facts, "facts", false, "include each definition's facts")
	return fs
}

type Analyzer struct {
}

func (m *Analyzer) F(ctx context.Context, doc *loader.Document, out io.Writer) error {
	a, err := tools.Analyze(doc.Program, doc.Correlation)
	if err != nil {
		return err
	}
	bs, err := yaml.Marshal(&a)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", bs)

	return nil
}

func (m *Analyzer) Doc() string {
	return "Writes a structural summary of the program."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.ContinueOnError)
}

type Grapher struct {
	OutputFilename string
	Highlight      string
	PNG            bool
}

func (m *Grapher) F(ctx context.Context, doc *loader.Document, out io.Writer) error {
	r := doc.Check()
	if m.PNG {
		name, err := tools.PNG(doc.Program, r, m.OutputFilename, m.Highlight)
		if err == nil {
			fmt.Fprintf(out, "%s\n", name)
		}
		return err
	}

	f, err := os.Create(m.OutputFilename)
	if err != nil {
		return err
	}

	return tools.Dot(doc.Program, r, f, m.Highlight) // Will Close f.
}

func (m *Grapher) Doc() string {
	return "Writes a Graphviz call graph with each definition's correlation facts."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "program.dot", "output filename (basename with -png)")
	fs.StringVar(&m.Highlight, "h", "", "definition to highlight")
	fs.BoolVar(&m.PNG, "png", false, "also run dot to make a PNG")
	return fs
}

type Mermaider struct {
	OutputFilename string
	HideFacts      bool
}

func (m *Mermaider) F(ctx context.Context, doc *loader.Document, out io.Writer) error {
	f, err := os.Create(m.OutputFilename)
	if err != nil {
		return err
	}
	opts := &tools.MermaidOpts{
		ShowFacts:   !m.HideFacts,
		EntryFill:   "#bcf2db",
		MissingFill: "#f98b8b",
	}
	return tools.Mermaid(doc.Program, doc.Check(), f, opts) // Will Close f.
}

func (m *Mermaider) Doc() string {
	return "Writes a Mermaid call graph."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "program.mermaid", "output filename")
	fs.BoolVar(&m.HideFacts, "q", false, "don't show facts")
	return fs
}

type Pager struct {
	CSS string
}

func (m *Pager) F(ctx context.Context, doc *loader.Document, out io.Writer) error {
	var css []string
	if m.CSS != "" {
		css = []string{m.CSS}
	}
	return tools.RenderReportPage(doc, doc.Check(), out, css)
}

func (m *Pager) Doc() string {
	return "Writes an HTML report page."
}

func (m *Pager) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	fs.StringVar(&m.CSS, "css", "", "CSS URL")
	return fs
}
