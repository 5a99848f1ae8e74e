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

// buildSpineTree constructs:
//
//	root(testSeq) -> [a(testPair) -> [ainner(testSeq) -> [ax(testWord)]], r2(testSeq) -> [b(testWord), r3(testSeq) -> [c(testWord)]]]
//
// a right-recursive "list" spine (root, r2, r3) with one item (a) that
// itself wraps a nested testSeq node (ainner) one level further in. This
// is the shape iter.go's doc comment describes: IterRepeat must not
// descend into a's subtree (a has a following sibling, r2), so it never
// reaches ainner, while IterForward does.
func buildSpineTree() (root, ainner, r2, r3 *Tree) {
	ax := token(testWord, "ax")
	ainner = node(testSeq, ax)
	a := node(testPair, ainner)

	c := token(testWord, "c")
	r3 = node(testSeq, c)

	b := token(testWord, "b")
	r2 = node(testSeq, b, r3)

	root = node(testSeq, a, r2)
	return
}

func TestIterForwardVisitsNestedSpineNode(t *testing.T) {
	t.Parallel()
	p := testProgram()
	root, ainner, r2, r3 := buildSpineTree()

	it := NewTreeIter(IterForward, testSeq, &Kid{Tree: root}, 0)
	var got []*Tree
	for it.Advance(p) {
		got = append(got, it.Ref.Deref())
	}

	want := []*Tree{root, ainner, r2, r3}
	if len(got) != len(want) {
		t.Fatalf("IterForward visited %d nodes, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IterForward[%d] = %p, want %p", i, got[i], want[i])
		}
	}
}

func TestIterRepeatSkipsNestedSpineNode(t *testing.T) {
	t.Parallel()
	p := testProgram()
	root, _, r2, r3 := buildSpineTree()

	it := NewTreeIter(IterRepeat, testSeq, &Kid{Tree: root}, 0)
	var got []*Tree
	for it.Advance(p) {
		got = append(got, it.Ref.Deref())
	}

	want := []*Tree{root, r2, r3}
	if len(got) != len(want) {
		t.Fatalf("IterRepeat visited %d nodes, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IterRepeat[%d] = %p, want %p", i, got[i], want[i])
		}
	}
}

// TestIterReverseRepeatPreservesChainForSplit checks that an
// IterReverseRepeat candidate carries the real multi-hop access path back
// to the root, not a flattened one-hop Ref. r2 is aliased from elsewhere
// (Refs == 2) the way a shared repeat node would be; SplitCurrent on the
// ref for r3 (reached through r2) must therefore clone r2 along the way,
// and a write through the resulting current node must not leak into the
// aliased original.
func TestIterReverseRepeatPreservesChainForSplit(t *testing.T) {
	t.Parallel()
	p := testProgram()
	root, _, r2, r3 := buildSpineTree()

	alias := node(testPair, r2)
	Upref(r2)
	if r2.Refs != 2 {
		t.Fatalf("r2.Refs = %d, want 2", r2.Refs)
	}

	it := NewTreeIter(IterReverseRepeat, testSeq, &Kid{Tree: root}, 0)
	if !it.Advance(p) {
		t.Fatalf("Advance returned false on first call")
	}
	if it.Ref.Deref() != r3 {
		t.Fatalf("first IterReverseRepeat candidate = %v, want r3", it.Ref.Deref())
	}
	if it.Ref.Next == nil || it.Ref.Next.Kid.Tree != r2 {
		t.Fatalf("IterReverseRepeat ref chain skips the r2 hop (flattened to root)")
	}
	if it.Ref.Next.Next == nil || it.Ref.Next.Next.Kid.Tree != root {
		t.Fatalf("IterReverseRepeat ref chain does not terminate at root")
	}

	it.SplitCurrent(p)

	clonedR2 := root.Child.Next.Tree
	if clonedR2 == r2 {
		t.Fatalf("SplitCurrent did not clone the shared r2 node")
	}
	if clonedR2.Refs != 1 {
		t.Fatalf("clonedR2.Refs = %d, want 1", clonedR2.Refs)
	}
	if r2.Refs != 1 {
		t.Fatalf("original r2.Refs = %d, want 1 after split", r2.Refs)
	}
	if Cmp(p, clonedR2, r2) != 0 {
		t.Fatalf("clonedR2 is not structurally equal to the original r2")
	}

	current := it.Ref.Deref()
	if Cmp(p, current, r3) != 0 {
		t.Fatalf("it.Ref's final target is not value-equal to the original r3")
	}

	// Mutate through the split current node and confirm the aliased
	// original (still reachable via alias -> r2 -> r3) is untouched.
	oldLeaf := current.Child.Tree
	newLeaf := token(testWord, "z")
	Downref(p, oldLeaf)
	current.Child.Tree = newLeaf

	origR3 := alias.Child.Tree.Child.Next.Tree
	if origR3 != r3 {
		t.Fatalf("alias path to the original r3 was disturbed by the split")
	}
	if origR3.Child.Tree != oldLeaf {
		t.Fatalf("mutation through the split clone leaked into the aliased original r3")
	}
}

func TestIterReverseChildVisitsDirectChildrenInReverse(t *testing.T) {
	t.Parallel()
	p := testProgram()
	a := token(testWord, "a")
	b := token(testWord, "b")
	c := token(testWord, "c")
	root := node(testPair, a, b, c)

	it := NewTreeIter(IterReverseChild, testWord, &Kid{Tree: root}, 0)
	var got []*Tree
	for it.Advance(p) {
		got = append(got, it.Ref.Deref())
	}

	want := []*Tree{c, b, a}
	if len(got) != len(want) {
		t.Fatalf("IterReverseChild visited %d nodes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IterReverseChild[%d] = %p, want %p", i, got[i], want[i])
		}
	}
}
