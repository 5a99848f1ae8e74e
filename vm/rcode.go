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

package vm

import "github.com/ianlewis/treerw"

// Unit is one reverse-code record: an inverse opcode plus the operands
// captured from pre-mutation state (spec.md §4.4.4). The source runtime
// packs units into a byte buffer with a trailing unit-length so a tail-first
// walk can find boundaries without an index; a Go slice of Units gives the
// identical append-at-tail / walk-tail-first / truncate-to-mark behavior
// without hand-rolling that length-trailer bookkeeping, so that is the
// representation used here (recorded as a spec.md §9 open-question
// resolution in DESIGN.md — the byte-buffer-with-trailer is a recommended
// shape, not amandated wire format, and there is no external reader of rcode
// in this module).
type Unit struct {
	Op       Op
	Operands []Slot
}

// RCode is the reverse-code buffer for one parser scope. Units are appended
// in forward-execution order; Rexecute below consumes them tail-first.
type RCode struct {
	units []Unit
}

// NewRCode returns an empty reverse-code buffer.
func NewRCode() *RCode {
	return &RCode{}
}

// Append records one inverse unit, the `_WV` opcode handlers' half of
// reverse-code emission.
func (r *RCode) Append(op Op, operands ...Slot) {
	r.units = append(r.units, Unit{Op: op, Operands: operands})
}

// Mark returns the current buffer length, a boundary a caller can later
// pass to CommitFull or Rexecute to bound a single reduction's undo region.
func (r *RCode) Mark() int {
	return len(r.units)
}

// CommitFull discards every unit appended since mark without replaying it,
// downreffing any tree operand each holds (the pre-mutation value an undo
// would have restored, whose one owning reference lived only in this
// buffer) — the role commitFull/rcode release plays in spec.md §4.4.5.
func (r *RCode) CommitFull(p *treerw.Program, mark int) {
	for _, u := range r.units[mark:] {
		for _, s := range u.Operands {
			if s.Tree != nil {
				treerw.Downref(p, s.Tree)
			}
		}
	}
	r.units = r.units[:mark]
}

// DownrefAll releases every tree operand held across the whole buffer and
// clears it, used when a scope is discarded without replay
// (PdaRun.ReleaseReverseCode / rcodeDownrefAll, spec.md §4.4.4).
func (r *RCode) DownrefAll(p *treerw.Program) {
	r.CommitFull(p, 0)
}
