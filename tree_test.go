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

func TestUprefDownrefCounts(t *testing.T) {
	t.Parallel()
	leaf := token(testWord, "x")
	if leaf.Refs != 1 {
		t.Fatalf("new token refs = %d, want 1", leaf.Refs)
	}
	Upref(leaf)
	if leaf.Refs != 2 {
		t.Fatalf("after Upref refs = %d, want 2", leaf.Refs)
	}
	p := testProgram()
	Downref(p, leaf)
	if leaf.Refs != 1 {
		t.Fatalf("after one Downref refs = %d, want 1", leaf.Refs)
	}
}

func TestDownrefFreesChildren(t *testing.T) {
	t.Parallel()
	p := testProgram()
	leaf := token(testWord, "x")
	root := node(testSeq, leaf)
	Downref(p, root)
	if leaf.Refs != 0 {
		t.Fatalf("child refs after parent freed = %d, want 0", leaf.Refs)
	}
}

func TestDownrefSharedChildSurvivesOneParentFree(t *testing.T) {
	t.Parallel()
	p := testProgram()
	leaf := token(testWord, "shared")
	Upref(leaf) // a second owner beyond the one token() implies
	root1 := node(testSeq, leaf)
	root2 := &Tree{ID: testSeq, Refs: 1, Child: &Kid{Tree: leaf}}

	Downref(p, root1)
	if leaf.Refs != 1 {
		t.Fatalf("shared leaf refs after one parent freed = %d, want 1", leaf.Refs)
	}
	Downref(p, root2)
	if leaf.Refs != 0 {
		t.Fatalf("shared leaf refs after both parents freed = %d, want 0", leaf.Refs)
	}
}

func TestGetAttrSetAttrSkipPastByFirstChild(t *testing.T) {
	t.Parallel()
	p := testProgram()
	a0 := token(testWord, "a0")
	a1 := token(testWord, "a1")
	c0 := token(testWord, "c0")
	tree := attrNode(testAttrNode, []*Tree{a0, a1})
	tree.Child.Next.Next = &Kid{Tree: c0} // one grammar child past the 2 attrs

	if GetAttr(p, tree, 0) != a0 {
		t.Fatalf("GetAttr(0) did not return a0")
	}
	if GetAttr(p, tree, 1) != a1 {
		t.Fatalf("GetAttr(1) did not return a1")
	}
	fc := FirstChild(p, tree)
	if fc == nil || fc.Tree != c0 {
		t.Fatalf("FirstChild did not skip past the 2 attribute slots")
	}

	repl := token(testWord, "a0-new")
	SetAttr(p, tree, 0, repl)
	if GetAttr(p, tree, 0) != repl {
		t.Fatalf("SetAttr(0) did not take effect")
	}
}
