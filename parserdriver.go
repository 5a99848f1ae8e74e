// Copyright 2023 Google LLC
// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package treerw

// ReverseCodeReleaser is implemented by the vm package's concrete
// reverse-code buffer. It is the one capability Accum needs from a live
// parse that this package cannot name concretely without importing vm
// (which imports this package for Tree/Downref) — see spec.md §4.2 and
// DESIGN.md's note on PdaRun.
type ReverseCodeReleaser interface {
	DownrefAll(p *Program)
}

// StubParserDriver is a minimal PdaRun usable by tests and by
// cmd/treerun's demo mode that do not wire a generated LALR table. It
// tracks only what Accum's lifecycle (spec.md §4.2, §6) requires of a
// driver: a clean/clear pair and a reverse-code releaser to call back into.
type StubParserDriver struct {
	Rcode   ReverseCodeReleaser
	cleaned bool
	cleared bool
}

// Clean implements PdaRun.
func (d *StubParserDriver) Clean(p *Program) {
	d.cleaned = true
}

// ClearContext implements PdaRun.
func (d *StubParserDriver) ClearContext(p *Program) {
	d.cleared = true
}

// ReleaseReverseCode implements PdaRun.
func (d *StubParserDriver) ReleaseReverseCode(p *Program) {
	if d.Rcode != nil {
		d.Rcode.DownrefAll(p)
	}
}
