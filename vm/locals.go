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

// Local variables start life as a plain Slot{Tree: ...}. REF_FROM_LOCAL
// needs a stable *Kid to hand out as a Ref target that later mutations
// through that Ref (SetValue) will still observe — so the first
// GET_LOCAL_REF_*/REF_FROM_LOCAL against a slot promotes it in place to
// hold a *Kid box, and every subsequent local read/write goes through that
// box if present. This is the same "share the slot object, not the value"
// discipline ref.go documents for tree child edges, applied to locals
// (which the source runtime's LOCAL_REF frame type gives a dedicated slot
// kind for; this package reuses the existing Kid/Ref machinery instead of
// adding a second ref variant, a simplification recorded in DESIGN.md).

// localSlot reads local off relative to the current frame.
func (m *VM) localSlot(off int) Slot {
	s := m.Stack[m.Frame+off]
	if s.Kid != nil {
		return TreeSlot(s.Kid.Tree)
	}
	return s
}

// setLocal overwrites local off, downreffing whatever tree was there
// before and writing through the Kid box if the slot has been promoted.
func (m *VM) setLocal(off int, v Slot) {
	idx := m.Frame + off
	cur := m.Stack[idx]
	if cur.Kid != nil {
		old := cur.Kid.Tree
		cur.Kid.Tree = v.Tree
		if old != nil {
			treerw.Downref(m.Prog, old)
		}
		return
	}
	if cur.Tree != nil {
		treerw.Downref(m.Prog, cur.Tree)
	}
	m.Stack[idx] = v
}

// localRef promotes local off to hold a *Kid box (if not already) and
// returns a fresh Ref naming it.
func (m *VM) localRef(off int) *treerw.Ref {
	idx := m.Frame + off
	s := m.Stack[idx]
	if s.Kid == nil {
		s.Kid = &treerw.Kid{Tree: s.Tree}
		m.Stack[idx] = s
	}
	return &treerw.Ref{Kid: s.Kid}
}
