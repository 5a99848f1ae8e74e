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

import "testing"

func TestSplitNoopWhenUnshared(t *testing.T) {
	t.Parallel()
	p := testProgram()
	tree := node(testSeq, token(testWord, "x"))
	got := Split(p, tree)
	if got != tree {
		t.Fatalf("Split of an unshared tree returned a new pointer")
	}
}

func TestSplitClonesSharedTreeAndPreservesEquality(t *testing.T) {
	t.Parallel()
	p := testProgram()
	a0 := token(testWord, "a0")
	a1 := token(testWord, "a1")
	orig := attrNode(testAttrNode, []*Tree{a0, a1})
	Upref(orig) // a second owner, so Refs == 2

	clone := Split(p, orig)
	if clone == orig {
		t.Fatalf("Split of a shared tree (Refs=2) returned the same pointer")
	}
	if clone.Refs != 1 || orig.Refs != 1 {
		t.Fatalf("Refs after split = clone:%d orig:%d, want 1 and 1", clone.Refs, orig.Refs)
	}
	if Cmp(p, orig, clone) != 0 {
		t.Fatalf("Split(t) is not structurally equal to t")
	}

	// Mutating the clone must not disturb orig, even though both still
	// share the unwritten attribute subtree by pointer.
	repl := token(testWord, "a0-new")
	SetAttr(p, clone, 0, repl)
	if GetAttr(p, orig, 0) == repl {
		t.Fatalf("SetAttr on the split clone leaked into the original tree")
	}
	if Cmp(p, orig, clone) == 0 {
		t.Fatalf("orig and clone compare equal after the clone was mutated")
	}
}

func TestSplitIdempotentOnAlreadyUnshared(t *testing.T) {
	t.Parallel()
	p := testProgram()
	orig := node(testSeq, token(testWord, "x"))
	once := Split(p, orig)
	twice := Split(p, once)
	if once != twice {
		t.Fatalf("second Split call on an unshared tree returned a new pointer")
	}
}

// TestSplitRefClonesSharedChainAndRelocatesDescendant exercises the
// multi-hop case: a two-Ref chain naming a direct attribute of a shared root
// must come out the other side pointing at the unshared clone's
// corresponding slot, with the root itself cloned along the way.
func TestSplitRefClonesSharedChainAndRelocatesDescendant(t *testing.T) {
	t.Parallel()
	p := testProgram()

	leaf := token(testWord, "L")
	dummy := token(testWord, "D")
	root := attrNode(testAttrNode, []*Tree{leaf, dummy})
	Upref(root) // a second owner elsewhere, so Refs == 2

	rootKid := &Kid{Tree: root}
	leafKid := GetAttrKid(p, root, 0)
	ref := &Ref{Kid: leafKid, Next: &Ref{Kid: rootKid}}

	SplitRef(p, ref)

	if rootKid.Tree == root {
		t.Fatalf("SplitRef did not clone the shared root")
	}
	if rootKid.Tree.Refs != 1 {
		t.Fatalf("clone refs = %d, want 1", rootKid.Tree.Refs)
	}
	if root.Refs != 1 {
		t.Fatalf("original root refs after split = %d, want 1", root.Refs)
	}
	if leaf.Refs != 1 {
		t.Fatalf("original leaf refs after split = %d, want 1 (still owned by the original root alone)", leaf.Refs)
	}
	if ref.Kid.Tree.Refs != 1 {
		t.Fatalf("ref's final target refs = %d, want 1", ref.Kid.Tree.Refs)
	}
	if Cmp(p, ref.Kid.Tree, leaf) != 0 {
		t.Fatalf("ref's final target is not value-equal to the original leaf")
	}
	if GetAttrKid(p, rootKid.Tree, 0) != ref.Kid {
		t.Fatalf("ref does not name the clone's own attr0 slot")
	}
	if GetAttr(p, rootKid.Tree, 1) != dummy {
		t.Fatalf("clone's untouched attr1 slot should still share the original dummy tree")
	}
}
