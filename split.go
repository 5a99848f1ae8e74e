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

// Split returns a tree equal to t with Refs == 1: a shallow-deep clone when
// t is shared (grandchildren are shared by upref, but the slot backbone
// itself is unshared so mutating the clone's child list never disturbs the
// original), or t itself, unchanged, when it is already unshared.
//
// Split(Split(t)) == Split(t): a second call against an already-unshared
// tree is a no-op (spec.md §8 round-trip law).
func Split(p *Program, t *Tree) *Tree {
	if t == nil {
		return nil
	}
	if t.Refs < 1 {
		panic(&AssertionError{Msg: "split of tree with refs < 1"})
	}
	if t.Refs == 1 {
		return t
	}

	newTree, _ := copyTree(p, t, nil)
	Upref(newTree)
	t.Refs--
	return newTree
}

// copyTree produces a zero-refcount clone of t. If oldNextDown names a Kid
// reachable from t's own slot list, newNextDown is set to the corresponding
// slot in the clone, so callers threading a reference chain through the
// clone (splitRef) can follow it down into the new storage.
func copyTree(p *Program, t *Tree, oldNextDown *Kid) (newTree *Tree, newNextDown *Kid) {
	switch {
	case t.Generic != nil:
		switch t.Generic.Kind {
		case GenList:
			return copyList(t, oldNextDown)
		case GenMap:
			return copyMap(t, oldNextDown)
		case GenParser:
			panic(&AssertionError{Msg: "attempt to copy parser"})
		default:
			panic(&AssertionError{Msg: "unknown generic kind"})
		}
	case t.ID == IDPtr, t.ID == IDBool, t.ID == IDInt, t.ID == IDStr, t.ID == IDStream:
		// Open question in spec.md §9, resolved per DESIGN.md: scalar
		// variants are a compiler invariant never re-shared past
		// Refs==1, so copying one here means the compiler emitted a
		// split it should not have.
		panic(&AssertionError{Msg: "attempt to copy scalar tree variant"})
	default:
		return copyRealTree(t, oldNextDown)
	}
}

// copyRealTree clones an ordinary (non-generic, non-scalar) tree: a new
// node and a new child-slot backbone, sharing each grandchild tree (upref)
// but never sharing the slot objects themselves.
func copyRealTree(t *Tree, oldNextDown *Kid) (*Tree, *Kid) {
	newTree := &Tree{ID: t.ID}
	if t.TokData != nil {
		s := *t.TokData
		newTree.TokData = &s
	}

	var newNextDown *Kid
	child := t.Child
	var last *Kid

	copyIgnore := func() *Kid {
		newHeader := &Kid{IsIgnoreHeader: true}
		var ilast *Kid
		for ic := child.IgnoreHead; ic != nil; ic = ic.Next {
			Upref(ic.Tree)
			newIc := &Kid{Tree: ic.Tree}
			if ilast == nil {
				newHeader.IgnoreHead = newIc
			} else {
				ilast.Next = newIc
			}
			ilast = newIc
		}
		return newHeader
	}

	if t.Flags&FlagLeftIgnore != 0 {
		newTree.Flags |= FlagLeftIgnore
		h := copyIgnore()
		newTree.Child = h
		last = h
		child = child.Next
	}
	if t.Flags&FlagRightIgnore != 0 {
		newTree.Flags |= FlagRightIgnore
		h := copyIgnore()
		if last == nil {
			newTree.Child = h
		} else {
			last.Next = h
		}
		last = h
		child = child.Next
	}

	for child != nil {
		newKid := &Kid{Tree: child.Tree}
		if child == oldNextDown {
			newNextDown = newKid
		}
		Upref(newKid.Tree)

		if last == nil {
			newTree.Child = newKid
		} else {
			last.Next = newKid
		}
		last = newKid
		child = child.Next
	}

	return newTree, newNextDown
}

// SplitRef extends Split to a multi-hop access path: after the call, every
// Ref in ref's chain still points at a slot whose Tree is the same logical
// subtree, and no slot that is still shared has been rewritten in place
// (spec.md §4.1.2).
//
// Algorithm: reverse the Next chain so it can be walked root-first, then
// walk root to leaf. For each Ref whose Kid.Tree is shared, clone just that
// tree, redirect every contiguous Ref that shared the old Kid onto the
// clone, and relocate descendant Refs whose Kid was the about-to-be-shared
// next-down slot onto the clone's corresponding slot. The chain is reset to
// nil as it is walked so repeated SplitRef calls never re-walk upward
// through stale links.
func SplitRef(p *Program, fromRef *Ref) {
	// Reverse the Next chain in place.
	var last *Ref
	ref := fromRef
	for ref.Next != nil {
		next := ref.Next
		ref.Next = last
		last = ref
		ref = next
	}
	ref.Next = last

	for ref != nil {
		if ref.Kid.Tree.Refs > 1 {
			nextDown := ref.Next
			for nextDown != nil && nextDown.Kid == ref.Kid {
				nextDown = nextDown.Next
			}

			var oldNextKidDown *Kid
			if nextDown != nil {
				oldNextKidDown = nextDown.Kid
			}

			newTree, newNextKidDown := copyTree(p, ref.Kid.Tree, oldNextKidDown)
			Upref(newTree)
			ref.Kid.Tree.Refs--

			for ref != nil && ref != nextDown {
				next := ref.Next
				ref.Next = nil
				ref.Kid.Tree = newTree
				ref = next
			}

			for nextDown != nil && nextDown.Kid == oldNextKidDown {
				nextDown.Kid = newNextKidDown
				nextDown = nextDown.Next
			}
		} else {
			next := ref.Next
			ref.Next = nil
			ref = next
		}
	}
}
