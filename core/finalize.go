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

package core

import (
	"github.com/Comcast/corrcheck/ast"
)

// finalize runs the program-level checks after every definition has
// facts: the init procedure, the entry point's leftover needs, and
// the freshness of each declared correlation set.
func (p *pass) finalize() {
	main, have := p.table[p.entry]
	if !have {
		ctx := ast.Context{}
		if p.Program != nil {
			ctx = p.Program.Context
		}
		p.errorf(MissingEntryPoint, ctx, nil, "can not find the main entry point")
		return
	}

	facts := main
	if init, have := p.table[p.init]; have {
		for _, path := range init.ProvidedCorr.Paths() {
			p.errorf(InitMayNotSetCorrelation, path.Context, path,
				"correlation variable %s can not be initialised in the init procedure", path)
		}
		facts = p.seq(init, main)
	}

	for _, path := range facts.NeededCorr.Paths() {
		p.errorf(UsedBeforeInitialized, path.Context, path,
			"correlation path %s is not initialised before usage", path)
	}
	for _, path := range facts.NeededVar.Paths() {
		p.errorf(UsedBeforeInitialized, path.Context, path,
			"variable %s is not initialised before usage", path)
	}

	if p.Mode == ast.Single || p.Correlation == nil {
		return
	}

	for _, set := range p.Correlation.Sets {
		if isFresh(facts, set.Paths()) {
			continue
		}
		p.errorf(NoFreshCorrelationValue, set.Context, nil,
			"correlation set %s has no fresh value (maybe you are not using createSecureToken@SecurityUtils?)", set.Name)
	}
}

// isFresh reports whether at least one of the paths is provided with
// a fresh value and not invalidated afterwards.
func isFresh(r *TypingResult, paths []*ast.Path) bool {
	for _, path := range paths {
		if !r.Available(path) {
			continue
		}
		if e, _ := r.ProvidedCorr.Get(path); e.Fresh {
			return true
		}
	}
	return false
}
