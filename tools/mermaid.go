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

package tools

import (
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/corrcheck/ast"
	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/util"
)

type MermaidOpts struct {
	// ShowFacts will add each definition's provided and needed
	// correlation paths to its node.
	ShowFacts bool `json:"showFacts"`

	// EntryFill is the fill color for the entry point.
	EntryFill string `json:"entryFill,omitempty"`

	// MissingFill is the fill color for called definitions that
	// don't exist.
	MissingFill string `json:"missingFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the program's call graph.  The report can be nil.
func Mermaid(p *ast.Program, r *core.Report, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowFacts:   true,
			EntryFill:   "#bcf2db",
			MissingFill: "#f98b8b",
		}
	}

	names, calls := CallGraph(p)

	util.Logf("processing %d definitions", len(names))

	fmt.Fprintf(w, "graph TB\n")

	nids := make(map[string]string)
	num := 0

	node := func(name string) string {
		if nid, already := nids[name]; already {
			return nid
		}
		num++
		nid := fmt.Sprintf("n%d", num)
		nids[name] = nid

		label := name
		if opts.ShowFacts && r != nil {
			if f := r.Definition(name); f != nil {
				if 0 < len(f.ProvidedCorr) {
					label += "<br/>provides " + strings.Join(f.ProvidedCorr, ", ")
				}
				if 0 < len(f.NeededCorr) {
					label += "<br/>needs " + strings.Join(f.NeededCorr, ", ")
				}
			}
		}

		_, defined := calls[name]
		switch {
		case !defined:
			fmt.Fprintf(w, "  %s[/\"%s\"/]\n", nid, label)
			if opts.MissingFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.MissingFill)
			}
		case name == core.DefaultEntry:
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, label)
			if opts.EntryFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.EntryFill)
			}
		default:
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, label)
		}

		return nid
	}

	for _, name := range names {
		from := node(name)
		for _, callee := range calls[name] {
			fmt.Fprintf(w, "  %s --> %s\n", from, node(callee))
		}
	}

	fmt.Fprintf(w, "\n")
	util.Logf("mermaid gen done")

	return w.Close()
}
