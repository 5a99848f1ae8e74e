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

// MATCH and CONSTRUCT operate against one pattern/replacement table pair
// per reduction; the bindings MATCH fills in are read back by the CONSTRUCT
// that follows it in the same reduction's code, so they are held on the VM
// rather than threaded through the value stack (spec.md §4.4.2 groups
// TREE_NEW/CONSTRUCT/MATCH as one "tree construction" family sharing this
// state).

func (m *VM) execMatch() {
	numBindings := int(m.fetchHalf())
	pat := int32(m.fetchWord())
	r := m.Pop().Ref
	bindings := make([]*treerw.Tree, numBindings)
	ok := treerw.Match(m.Prog, m.Prog.RTD.Patterns, bindings, pat, r.Kid, true)
	m.bindings = bindings
	m.Push(boolInt(ok))
}

func (m *VM) execConstruct() {
	pat := int32(m.fetchWord())
	t := treerw.ConstructReplacement(m.Prog, m.Prog.RTD.Replacements, m.bindings, pat)
	m.Push(TreeSlot(t))
}

// execConstructTerm builds a fresh terminal (token) tree directly from a
// string value already on the stack, the CONSTRUCT_TERM half of literal
// terminals appearing in a replacement (spec.md §4.4.2).
func (m *VM) execConstructTerm() {
	id := int32(m.fetchWord())
	s := m.Pop().Tree
	data := s.StrVal
	treerw.Downref(m.Prog, s)
	m.Push(TreeSlot(&treerw.Tree{ID: id, Refs: 1, TokData: &data}))
}

// execCreateToken builds a token tree from the scanner's most recently
// matched text, reached through the parser handle's FsmRun (spec.md §6:
// "the core consumes matchText/position during CREATE_TOKEN").
func (m *VM) execCreateToken() {
	id := int32(m.fetchWord())
	accumTree := m.Pop().Tree
	acc := treerw.AccumOf(accumTree)
	text := acc.Fsm.MatchText()
	m.Push(TreeSlot(&treerw.Tree{ID: id, Refs: 1, TokData: &text}))
}

// execMakeToken builds a token tree from explicit data supplied on the
// stack rather than pulled from the scanner (MAKE_TOKEN vs. CREATE_TOKEN,
// spec.md §4.4.2).
func (m *VM) execMakeToken() {
	id := int32(m.fetchWord())
	dataTree := m.Pop().Tree
	data := dataTree.StrVal
	treerw.Downref(m.Prog, dataTree)
	m.Push(TreeSlot(&treerw.Tree{ID: id, Refs: 1, TokData: &data}))
}

// execMakeTree assembles a nonterminal tree from n child values already on
// the stack, in left-to-right order.
func (m *VM) execMakeTree() {
	id := int32(m.fetchWord())
	n := int(m.fetchHalf())
	kids := make([]*treerw.Kid, n)
	for i := n - 1; i >= 0; i-- {
		kids[i] = &treerw.Kid{Tree: m.Pop().Tree}
	}
	for i := 0; i < n-1; i++ {
		kids[i].Next = kids[i+1]
	}
	var head *treerw.Kid
	if n > 0 {
		head = kids[0]
	}
	m.Push(TreeSlot(&treerw.Tree{ID: id, Refs: 1, Child: head}))
}

// execInitRhsEl pushes the placeholder slot a reduction's RHS element
// occupies before MAKE_TREE/CONSTRUCT fills it in.
func (m *VM) execInitRhsEl() {
	m.Push(TreeSlot(nil))
}

// execInitCaptures allocates the capture-attribute bindings array a
// following MATCH fills in, sized from the pattern's static capture count.
func (m *VM) execInitCaptures() {
	n := int(m.fetchHalf())
	m.bindings = make([]*treerw.Tree, n)
}

// execTreeSearch does a forward, search-id-filtered walk from the tree on
// top of the stack and pushes the first match (or nil), the TREE_SEARCH
// opcode (spec.md §4.4.2).
func (m *VM) execTreeSearch() {
	id := int32(m.fetchWord())
	t := m.Pop().Tree
	root := &treerw.Kid{Tree: t}
	it := treerw.NewTreeIter(treerw.IterForward, id, root, m.SP())
	if it.Advance(m.Prog) {
		found := it.Ref.Deref()
		treerw.Upref(found)
		m.Push(TreeSlot(found))
	} else {
		m.Push(TreeSlot(nil))
	}
	treerw.Downref(m.Prog, t)
}
