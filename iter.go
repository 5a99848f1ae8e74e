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

// IterKind selects one of the four top-down traversal orders spec.md §4.3
// describes.
type IterKind int

const (
	// IterForward is top-down, left-to-right preorder.
	IterForward IterKind = iota
	// IterRepeat descends into children only at the iteration root or when
	// the current node has no right sibling, so a right-recursive
	// production's spine is not visited as separate nodes.
	IterRepeat
	// IterReverseRepeat visits the same nodes as IterRepeat, in reverse.
	IterReverseRepeat
	// IterReverseChild walks the direct children of the root in reverse
	// sibling order, one level only.
	IterReverseChild
)

// TreeIter is a top-down traversal cursor. It owns no trees; Ref is the
// access path to the node last produced by Advance, which is exactly what
// SplitCurrent needs to call SplitRef against.
//
// The source runtime threads these traversals through the VM's value stack
// so a deep tree cannot recurse on the host call stack. This package gets
// the same guarantee a different way: each descent step allocates one more
// link in the Ref chain (heap objects, not Go call frames) instead of
// pushing onto a flat array, so StackRoot/StackSize are retained only for
// API fidelity with spec.md §4.3's invariant 6 and are not load-bearing for
// correctness here.
type TreeIter struct {
	Kind     IterKind
	SearchID int32
	RootRef  Ref
	Ref      Ref

	StackRoot int
	StackSize int

	// materialized holds the precomputed candidate list for
	// IterReverseRepeat and IterReverseChild, built on the first Advance
	// call and then walked down by index. Each entry is the full access
	// path to that candidate, exactly as advanceDFS would have built it,
	// so SplitCurrent can still see every shared hop along the way.
	materialized []Ref
	matIndex     int
}

// NewTreeIter creates an iterator rooted at root, recording stackRoot as the
// VM stack depth at creation time (spec.md §4.3).
func NewTreeIter(kind IterKind, searchID int32, root *Kid, stackRoot int) *TreeIter {
	return &TreeIter{
		Kind:      kind,
		SearchID:  searchID,
		RootRef:   Ref{Kid: root},
		StackRoot: stackRoot,
	}
}

func (it *TreeIter) matches(p *Program, t *Tree) bool {
	return it.SearchID == p.RTD.AnyID || t.ID == it.SearchID
}

// Advance produces the next matching node, returning false once the
// traversal is exhausted.
func (it *TreeIter) Advance(p *Program) bool {
	switch it.Kind {
	case IterForward:
		return it.advanceDFS(p, func(ref *Ref) bool { return true })
	case IterRepeat:
		return it.advanceDFS(p, func(ref *Ref) bool {
			return ref.Next == nil || ref.Kid.Next == nil
		})
	case IterReverseRepeat:
		return it.advanceMaterialized(p, true)
	case IterReverseChild:
		return it.advanceMaterialized(p, false)
	default:
		panic(&AssertionError{Msg: "unknown iterator kind"})
	}
}

// advanceDFS implements the shared preorder-descent machinery behind the
// forward and repeat iterators (iter_find / iter_find_repeat in the source
// runtime). canDescend reports whether the traversal is allowed to step
// into the children of the node ref currently names.
func (it *TreeIter) advanceDFS(p *Program, canDescend func(*Ref) bool) bool {
	var ref Ref
	tryFirst := false

	if it.Ref.Kid == nil {
		ref = it.RootRef
		tryFirst = true
	} else {
		ref = it.Ref
	}

	for {
		if tryFirst && it.matches(p, ref.Kid.Tree) {
			it.Ref = ref
			return true
		}

		if canDescend(&ref) {
			if child := FirstChild(p, ref.Kid.Tree); child != nil {
				parent := Ref{Kid: ref.Kid, Next: ref.Next}
				ref = Ref{Kid: child, Next: &parent}
				tryFirst = true
				continue
			}
		}

		// No (further) descent from here: move to a sibling, or unwind.
		for {
			if ref.Kid.Next != nil {
				ref = Ref{Kid: ref.Kid.Next, Next: ref.Next}
				tryFirst = true
				break
			}
			if ref.Next == nil {
				it.Ref = Ref{}
				return false
			}
			ref = *ref.Next
		}
	}
}

// advanceMaterialized backs IterReverseRepeat and IterReverseChild: on the
// first call it walks the whole candidate set forward (the repeat order,
// or the direct-children order) into it.materialized, then each call pops
// one entry from the end.
func (it *TreeIter) advanceMaterialized(p *Program, repeat bool) bool {
	if it.materialized == nil && it.Ref.Kid == nil {
		it.materialized = it.buildCandidates(p, repeat)
		it.matIndex = len(it.materialized)
	}

	if it.matIndex == 0 {
		it.Ref = Ref{}
		return false
	}
	it.matIndex--
	it.Ref = it.materialized[it.matIndex]
	return true
}

// buildCandidates walks the candidate set forward exactly once, the same
// way advanceDFS would, and keeps the real (possibly multi-hop) Ref chain
// built along the way for each candidate — not just its Kid — so a later
// write through a reverse iterator still goes through SplitRef against the
// true access path (iter_find_rev_repeat, original_source/colm/tree.cpp).
func (it *TreeIter) buildCandidates(p *Program, repeat bool) []Ref {
	var out []Ref
	if repeat {
		probe := &TreeIter{Kind: IterRepeat, SearchID: it.SearchID, RootRef: it.RootRef}
		for probe.Advance(p) {
			out = append(out, probe.Ref)
		}
		return out
	}

	for kid := FirstChild(p, it.RootRef.Kid.Tree); kid != nil; kid = kid.Next {
		if it.matches(p, kid.Tree) {
			out = append(out, Ref{Kid: kid, Next: &it.RootRef})
		}
	}
	return out
}

// SplitCurrent calls SplitRef against the iterator's current reference so a
// subsequent mutation made through the iterator sees an owned tree
// (spec.md §4.3, split_iter_cur).
func (it *TreeIter) SplitCurrent(p *Program) {
	if it.Ref.Kid == nil {
		return
	}
	SplitRef(p, &it.Ref)
}
