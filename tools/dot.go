package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/corrcheck/ast"
	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/util"

	"gopkg.in/yaml.v2"
)

// factsLabel renders the interesting parts of a definition's facts as
// YAML for a node label.
func factsLabel(f *core.DefinitionFacts) string {
	if f == nil {
		return ""
	}
	x := map[string][]string{}
	if 0 < len(f.ProvidedCorr) {
		x["provides"] = f.ProvidedCorr
	}
	if 0 < len(f.FreshCorr) {
		x["fresh"] = f.FreshCorr
	}
	if 0 < len(f.NeededCorr) {
		x["needs"] = f.NeededCorr
	}
	if 0 < len(f.InvalidatedVar) {
		x["invalidates"] = f.InvalidatedVar
	}
	if len(x) == 0 {
		return ""
	}
	bs, err := yaml.Marshal(x)
	if err != nil {
		return err.Error()
	}
	return string(bs)
}

func htmlEscape(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}

// Dot makes a Graphviz dot file for the program's call graph.  Each
// definition's node shows its correlation facts from the report (if
// any).
//
// The optional highlight is a definition name that will be red.
func Dot(p *ast.Program, r *core.Report, w io.WriteCloser, highlight string) error {

	names, calls := CallGraph(p)

	util.Logf("processing %d definitions", len(names))

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	defs := make(map[string]*ast.Definition, len(names))
	for _, d := range p.Definitions() {
		if _, have := defs[d.Name]; !have {
			defs[d.Name] = d
		}
	}

	seen := make(map[string]bool)
	node := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true

		label := name
		fillcolor := "#99ddc8"
		color := "black"
		style := "filled"

		_, have := defs[name]
		if !have {
			fillcolor = "#f98b8b"
			style += ",dashed"
		}

		if r != nil && have {
			if facts := factsLabel(r.Definition(name)); facts != "" {
				label += `<FONT POINT-SIZE="8">` +
					`<BR/>` + strings.Replace(htmlEscape(facts), "\n", `<BR ALIGN="LEFT"/>`, -1) +
					`</FONT>`
			}
		}
		if have && name == core.DefaultEntry {
			style += ",bold"
			fillcolor = "#2d93ad"
			if r != nil && !r.Valid {
				color = "orange"
			}
		}
		if highlight == name {
			color = "red"
		}

		fmt.Fprintf(w, "  %q [shape=\"record\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			name, style, color, fillcolor, label)
	}

	for _, name := range names {
		node(name)
		for i, to := range calls[name] {
			node(to)
			fmt.Fprintf(w, "  %q -> %q [ label = \"%d/%d\" ]\n", name, to, i+1, len(calls[name]))
		}
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(p *ast.Program, r *core.Report, basename string, highlight string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(p, r, dotfile, highlight); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}
