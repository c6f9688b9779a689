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
	"sort"

	"github.com/Comcast/corrcheck/ast"
	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/corr"
)

// ProgramAnalysis is a structural summary of a program.  Nothing here
// affects the verdict; it's for humans looking at a program.
type ProgramAnalysis struct {
	program *ast.Program

	Definitions  int `json:"definitions" yaml:"definitions"`
	Declarations int `json:"declarations" yaml:"declarations"`
	Calls        int `json:"calls" yaml:"calls"`
	Inputs       int `json:"inputs" yaml:"inputs"`
	Outputs      int `json:"outputs" yaml:"outputs"`
	Assignments  int `json:"assignments" yaml:"assignments"`
	Loops        int `json:"loops" yaml:"loops"`
	Choices      int `json:"choices" yaml:"choices"`
	Parallels    int `json:"parallels" yaml:"parallels"`

	// Orphans are definitions that nothing calls (other than the
	// entry point and init).
	Orphans []string `json:"orphans,omitempty" yaml:"orphans,omitempty"`

	// MissingDefinitions are called but not defined.
	MissingDefinitions []string `json:"missingDefinitions,omitempty" yaml:"missingDefinitions,omitempty"`

	// Operations are the input operations.
	Operations []string `json:"operations,omitempty" yaml:"operations,omitempty"`

	// UncorrelatedOperations are input operations without a
	// correlation set.
	UncorrelatedOperations []string `json:"uncorrelatedOperations,omitempty" yaml:"uncorrelatedOperations,omitempty"`

	// UnusedSets are correlation sets that no input operation
	// uses.
	UnusedSets []string `json:"unusedSets,omitempty" yaml:"unusedSets,omitempty"`
}

// Analyze looks at the program's structure.  The info can be nil.
func Analyze(p *ast.Program, info *corr.Info) (*ProgramAnalysis, error) {
	a := ProgramAnalysis{
		program: p,
	}

	defined := make(map[string]bool)
	called := make(map[string]bool)
	missing := make(map[string]bool)
	operations := make(map[string]bool)
	uncorrelated := make(map[string]bool)
	usedSets := make(map[string]bool)

	for _, d := range p.Definitions() {
		defined[d.Name] = true
	}

	input := func(op string) {
		a.Inputs++
		operations[op] = true
		if s := info.SetFor(op); s != nil {
			usedSets[s.Name] = true
		} else {
			uncorrelated[op] = true
		}
	}

	ast.Inspect(p, func(n ast.Node) bool {
		switch vv := n.(type) {
		case *ast.Definition:
			a.Definitions++
		case *ast.Declaration:
			a.Declarations++
		case *ast.Call:
			a.Calls++
			called[vv.Name] = true
			if !defined[vv.Name] {
				missing[vv.Name] = true
			}
		case *ast.OneWay:
			input(vv.Operation)
		case *ast.RequestResponse:
			input(vv.Operation)
		case *ast.Notification, *ast.SolicitResponse:
			a.Outputs++
		case *ast.Assign:
			a.Assignments++
		case *ast.While, *ast.For, *ast.ForEach:
			a.Loops++
		case *ast.Choice, *ast.If:
			a.Choices++
		case *ast.Parallel:
			a.Parallels++
		}
		return true
	})

	called[core.DefaultEntry] = true
	called[core.DefaultInit] = true

	a.Orphans = keysToStringSlice(diffKeys(defined, called))
	a.MissingDefinitions = keysToStringSlice(missing)
	a.Operations = keysToStringSlice(operations)
	a.UncorrelatedOperations = keysToStringSlice(uncorrelated)

	if info != nil {
		sets := make(map[string]bool, len(info.Sets))
		for _, s := range info.Sets {
			sets[s.Name] = true
		}
		a.UnusedSets = keysToStringSlice(diffKeys(sets, usedSets))
	}

	return &a, nil
}

// CallGraph returns, for each definition in declaration order, the
// names of the definitions it calls in the order of first call.
func CallGraph(p *ast.Program) (names []string, calls map[string][]string) {
	calls = make(map[string][]string)
	for _, d := range p.Definitions() {
		if _, have := calls[d.Name]; have {
			continue
		}
		names = append(names, d.Name)
		seen := make(map[string]bool)
		acc := []string{}
		ast.Inspect(d, func(n ast.Node) bool {
			if c, is := n.(*ast.Call); is && !seen[c.Name] {
				seen[c.Name] = true
				acc = append(acc, c.Name)
			}
			return true
		})
		calls[d.Name] = acc
	}
	return names, calls
}

// keysToStringSlice returns the sorted keys of the map.
func keysToStringSlice(m map[string]bool) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}

// diffKeys returns the keys in all that aren't in used.
func diffKeys(all map[string]bool, used map[string]bool) map[string]bool {
	diff := make(map[string]bool)
	for key := range all {
		if _, found := used[key]; !found {
			diff[key] = true
		}
	}
	return diff
}
